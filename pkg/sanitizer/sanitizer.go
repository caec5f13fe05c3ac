package sanitizer

import (
	"strings"
	"unicode"
)

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

func dropControl(keepNewlines bool) Strategy {
	return func(s string) string {
		return strings.Map(func(r rune) rune {
			if r == '\n' && keepNewlines {
				return r
			}
			if r == '\t' || r == '\n' || r == '\r' {
				return ' '
			}
			if unicode.IsControl(r) || r == '\u200b' || r == '\ufeff' {
				return -1
			}
			return r
		}, s)
	}
}

// SanitizeDisplayName cleans a booking holder name: control characters
// removed, whitespace collapsed to single spaces, ends trimmed.
func SanitizeDisplayName(input string) string {
	p := Pipeline{
		dropControl(false),
		TrimAndNormalize,
	}
	return p.Apply(input)
}

// SanitizeFreeText cleans a purpose note. Line breaks survive, each line is
// normalized like a name, and blank leading or trailing lines are dropped.
func SanitizeFreeText(input string) string {
	p := Pipeline{
		func(s string) string { return strings.ReplaceAll(s, "\r\n", "\n") },
		dropControl(true),
		func(s string) string {
			lines := strings.Split(s, "\n")
			for i, line := range lines {
				lines[i] = TrimAndNormalize(line)
			}
			return strings.Trim(strings.Join(lines, "\n"), "\n")
		},
	}
	return p.Apply(input)
}
