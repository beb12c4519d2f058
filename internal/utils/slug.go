package utils

import (
	"strings"
	"unicode"
)

// Slugify lowercases s and joins its runs of letters and digits with
// single dashes.
func Slugify(s string) string {
	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(s) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
			continue
		}
		pendingDash = true
	}
	return b.String()
}

func PtrString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
