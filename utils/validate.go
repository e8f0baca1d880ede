package utils

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// NormalizeName trims and NFC-normalizes a display name so composed and
// decomposed spellings of the same characters compare and count alike.
func NormalizeName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

// ValidName reports whether a normalized name carries at least min runes.
func ValidName(name string, min int) bool {
	return utf8.RuneCountInString(name) >= min
}
