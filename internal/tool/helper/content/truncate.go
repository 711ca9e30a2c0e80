package content

import (
	"strings"
	"unicode/utf8"
)

// TruncationMarker is appended to any output cut at its byte budget.
const TruncationMarker = "\n[truncated]"

// Truncate caps s at maxBytes without splitting a multi-byte UTF-8 sequence and
// appends TruncationMarker when anything was dropped. A non-positive maxBytes
// disables the cap. Truncating an already truncated string with the same
// budget returns it unchanged.
func Truncate(s string, maxBytes int) (string, bool) {
	if maxBytes <= 0 || len(s) <= maxBytes {
		return s, false
	}
	if body, ok := strings.CutSuffix(s, TruncationMarker); ok && len(body) <= maxBytes {
		return s, true
	}
	return TrimPartialRune(s[:runeBoundary(s, maxBytes)]) + TruncationMarker, true
}

// TrimPartialRune drops an incomplete UTF-8 sequence left at the end of s by a
// byte-level cut. Complete but invalid bytes are left alone.
func TrimPartialRune(s string) string {
	for i := 1; i < utf8.UTFMax && i <= len(s); i++ {
		b := s[len(s)-i]
		if !utf8.RuneStart(b) {
			continue
		}
		if r, size := utf8.DecodeRuneInString(s[len(s)-i:]); r == utf8.RuneError && size == 1 && i < runeLen(b) {
			return s[:len(s)-i]
		}
		return s
	}
	return s
}

// runeBoundary returns the largest index <= n that does not fall inside a
// multi-byte sequence.
func runeBoundary(s string, n int) int {
	for n > 0 && n < len(s) && !utf8.RuneStart(s[n]) {
		n--
	}
	return n
}

// runeLen returns the sequence length announced by a UTF-8 leading byte.
func runeLen(b byte) int {
	switch {
	case b < 0x80:
		return 1
	case b&0xE0 == 0xC0:
		return 2
	case b&0xF0 == 0xE0:
		return 3
	case b&0xF8 == 0xF0:
		return 4
	}
	return 1
}
