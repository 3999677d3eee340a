package service

import (
	"strings"
	"unicode"
)

// sanitizeUTF8 drops invalid UTF-8 bytes and control characters other than
// line breaks and tabs. OCR output carries both, and PostgreSQL rejects NUL
// in text columns.
func sanitizeUTF8(s string) string {
	s = strings.ToValidUTF8(s, "")
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' || r == '\r' || !unicode.IsControl(r) {
			return r
		}
		return -1
	}, s)
}
