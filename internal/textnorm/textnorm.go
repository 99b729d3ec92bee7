// Package textnorm cleans text lines recovered from admission-list PDFs and
// matches campus names regardless of accents or capitalization.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultLocation is the campus every extractor filters for unless configured otherwise.
const DefaultLocation = "São Carlos"

// Clean replaces non-breaking spaces, collapses whitespace runs to a single
// space and trims both ends.
func Clean(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	return strings.Join(strings.Fields(s), " ")
}

// Fold strips combining marks after canonical decomposition and lowercases the
// result, so "SÃO Carlos" and "sao carlos" fold to the same string.
func Fold(s string) string {
	// transform.Chain keeps state, so a fresh chain is built per call.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(Clean(folded))
}

// MentionsLocation reports whether text contains target once both are folded.
// An empty target means DefaultLocation.
func MentionsLocation(text, target string) bool {
	if target == "" {
		target = DefaultLocation
	}
	t := Fold(target)
	if t == "" {
		return false
	}
	return strings.Contains(Fold(text), t)
}

// NormalizeDashes rewrites the Unicode minus sign and the en dash PDFs emit in
// codes and headers into an ASCII hyphen.
func NormalizeDashes(s string) string {
	return dashReplacer.Replace(s)
}

var dashReplacer = strings.NewReplacer("\u2212", "-", "\u2013", "-")
