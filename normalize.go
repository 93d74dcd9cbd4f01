// ═══════════════════════════════════════════════════════════════════════════════
// TEXT NORMALIZATION OVERVIEW
// ═══════════════════════════════════════════════════════════════════════════════
// Location strings come from two listing portals that spell the same place in
// different ways:
//
//	"Al-Barsha, Dubai"     (portal A)
//	"al barsha  dubai"     (portal B)
//
// Before any comparison both sides are reduced to one canonical form:
//
//  1. Lowercasing         → "al-barsha, dubai"
//  2. Punctuation removal → "albarsha dubai"     (- _ , are dropped, not spaced)
//  3. Space collapsing    → runs of whitespace become one space
//  4. Trimming            → no leading/trailing space
//
// Hyphens are removed rather than replaced, so "Al-Barsha" and "AlBarsha"
// normalize identically while "Al Barsha" keeps its space. Matching is then
// done by substring containment on the normalized forms.
// ═══════════════════════════════════════════════════════════════════════════════

package listings

import (
	"regexp"
	"strings"
	"unicode"

	snowballeng "github.com/kljensen/snowball/english"
)

// Normalize returns the canonical comparable form of s.
//
// The function is total and idempotent:
//
//	Normalize("Al-Barsha, Dubai") == "albarsha dubai"
//	Normalize(Normalize(s)) == Normalize(s)
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	s = strings.ToLower(s)
	s = stripPunctuation(s)
	return collapseSpaces(s)
}

// NormalizeAny is Normalize with the non-string guard: anything that is not
// a string (nil, numbers, structs) normalizes to "".
func NormalizeAny(v any) string {
	switch s := v.(type) {
	case string:
		return Normalize(s)
	case Text:
		return Normalize(string(s))
	default:
		return ""
	}
}

// stripPunctuation drops the separators the portals disagree on.
func stripPunctuation(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '-', '_', ',':
			return -1
		}
		return r
	}, s)
}

// collapseSpaces trims s and folds every whitespace run into one space.
// strings.Fields already treats any unicode.IsSpace rune as a separator.
func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// tokens splits a normalized string on its single spaces.
//
// Example:
//
//	tokens("business bay tower 2") → ["business", "bay", "tower", "2"]
func tokens(normalized string) []string {
	if normalized == "" {
		return nil
	}
	return strings.Split(normalized, " ")
}

// matchesNormalized reports whether term occurs in field as a substring, or
// inside any one of the field's whitespace tokens. Both arguments must
// already be normalized.
//
// A term with no spaces that is found inside a token is necessarily also a
// substring of the whole field, so the token pass only changes the answer
// for odd inputs; it is kept so both checks stay explicit.
func matchesNormalized(field, term string) bool {
	if field == "" {
		return false
	}
	if strings.Contains(field, term) {
		return true
	}
	for _, tok := range tokens(field) {
		if strings.Contains(tok, term) {
			return true
		}
	}
	return false
}

// locationSeparators splits a raw location string into parts: runs of
// hyphens/commas, or two or more consecutive spaces.
//
// Example:
//
//	"Dubai - Marina Tower 2 - Block A" → ["Dubai ", " Marina Tower 2 ", " Block A"]
var locationSeparators = regexp.MustCompile(`[-,]+|\s{2,}`)

// splitLocation breaks a trimmed location into trimmed, non-empty parts.
func splitLocation(trimmed string) []string {
	raw := locationSeparators.Split(trimmed, -1)
	parts := make([]string, 0, len(raw))
	for _, p := range raw {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

// stemTokens reduces each token of a normalized string to its Snowball
// (Porter2) stem, keeping only letter/digit runs.
//
// Example:
//
//	stemTokens("marina towers") → ["marina", "tower"]
//
// Used only by the suggestion fallback: "towers" should still suggest
// "Ubora Tower".
func stemTokens(normalized string) []string {
	words := strings.FieldsFunc(normalized, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	r := make([]string, 0, len(words))
	for _, w := range words {
		r = append(r, snowballeng.Stem(w, false))
	}
	return r
}
