// Package sanitizer normalizes user supplied text before validation and
// storage.
//
// All functions are idempotent. Non-ASCII letters are preserved as typed;
// only whitespace and control characters are rewritten.
package sanitizer
