// Package names canonicalizes entity identifiers so every source joins on
// the same key.
package names

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Normalize replaces hyphens with spaces, collapses whitespace and title-cases
// each word: "alolan-raichu" -> "Alolan Raichu". It is idempotent.
func Normalize(raw string) string {
	fields := strings.Fields(strings.ReplaceAll(raw, "-", " "))
	for i, f := range fields {
		fields[i] = capitalize(f)
	}
	return strings.Join(fields, " ")
}

// NormalizeAll normalizes every name, preserving order.
func NormalizeAll(raw []string) []string {
	out := make([]string, len(raw))
	for i, r := range raw {
		out[i] = Normalize(r)
	}
	return out
}

// capitalize upper-cases the first rune and lower-cases the rest.
func capitalize(word string) string {
	r, size := utf8.DecodeRuneInString(word)
	if r == utf8.RuneError {
		return word
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(word[size:])
}
