package middleware

import (
	"fmt"
	"net/http"

	apperrors "sharedcal/pkg/errors"
	httputil "sharedcal/pkg/http"
)

// MaxRequestSize rejects declared oversize bodies up front and caps the
// rest with http.MaxBytesReader.
func MaxRequestSize(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > limit {
				_ = httputil.WriteError(w, apperrors.New(
					apperrors.CodeInvalidInput,
					fmt.Sprintf("Request body exceeds %d bytes", limit),
					http.StatusRequestEntityTooLarge,
				))
				return
			}

			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, limit)
			}
			next.ServeHTTP(w, r)
		})
	}
}
