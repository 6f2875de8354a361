// Package textutil turns free text into observation symbols.
package textutil

import (
	"regexp"
	"strings"
)

var tokenizeRe = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// Tokenize extracts word tokens from text (Unicode-aware, \w+ runs).
func Tokenize(text string) []string {
	return tokenizeRe.FindAllString(text, -1)
}

var (
	newlineRe    = regexp.MustCompile(`[\n\r]`)
	multiSpaceRe = regexp.MustCompile(`\s{2,}`)
)

// NormalizeWhitespaces replaces newlines and multiple whitespace with a single space.
func NormalizeWhitespaces(text string) string {
	text = newlineRe.ReplaceAllString(text, " ")
	return multiSpaceRe.ReplaceAllString(text, " ")
}

// Normalize lowercases text and normalizes whitespace.
func Normalize(text string) string {
	return NormalizeWhitespaces(strings.ToLower(text))
}

// Words returns the lowercased word tokens of text, for word-level models.
// Punctuation separates tokens, so "no-walk" becomes "no", "walk".
func Words(text string) []string {
	return Tokenize(Normalize(text))
}

// Fields splits text on whitespace and keeps every other character, for
// symbols such as "no-walk" or "N/A".
func Fields(text string) []string {
	return strings.Fields(text)
}
