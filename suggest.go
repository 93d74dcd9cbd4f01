package listings

import (
	"log/slog"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// ═══════════════════════════════════════════════════════════════════════════════
// SUGGESTIONS: Ranking the Location Index for Autocomplete
// ═══════════════════════════════════════════════════════════════════════════════
// Given what the user has typed so far, pick at most Limit entries of the
// location index and order them so the most useful ones come first.
//
// MATCHING:
// ---------
// An entry matches when its normalized form contains the normalized term, or
// one of its whitespace tokens does (the same rule the filter uses).
//
// RANKING:
// --------
//  1. Entries that START with the term beat entries that merely contain it
//  2. Shorter entries beat longer ones ("Marina" before "Dubai Marina Walk")
//  3. Ties are broken alphabetically using English collation
//
// EXAMPLE:
// --------
// Term: "mar"
//
//	"Marina"             starts, len 6   → 1st
//	"Marina Gate"        starts, len 11  → 2nd
//	"Dubai Marina"       contains, len 12 → 3rd
//
// STEM FALLBACK:
// --------------
// When nothing matches literally, "towers" would suggest nothing although the
// index has "Ubora Tower". The fallback compares Snowball stems instead. It
// only changes the suggestion list; the filter itself stays literal.
// ═══════════════════════════════════════════════════════════════════════════════

// SuggestConfig controls Suggest.
type SuggestConfig struct {
	Limit        int  // Maximum suggestions returned (default: 10)
	StemFallback bool // Retry with stemmed tokens when nothing matches (default: true)
}

// DefaultSuggestConfig returns the standard suggestion settings
func DefaultSuggestConfig() SuggestConfig {
	return SuggestConfig{
		Limit:        10,
		StemFallback: true,
	}
}

// candidate is a matching entry with its precomputed sort keys.
type candidate struct {
	display    string
	normalized string
	prefix     bool
}

// Suggest returns display phrases matching term using the default config.
func (idx *LocationIndex) Suggest(term string) []string {
	return idx.SuggestWithConfig(term, DefaultSuggestConfig())
}

// SuggestWithConfig returns at most cfg.Limit display phrases matching term,
// best first. An empty (after normalization) term suggests nothing.
func (idx *LocationIndex) SuggestWithConfig(term string, cfg SuggestConfig) []string {
	needle := Normalize(term)
	if needle == "" || idx.Len() == 0 {
		return nil
	}

	matches := idx.collectLiteral(needle)
	if len(matches) == 0 && cfg.StemFallback {
		matches = idx.collectStemmed(needle)
		slog.Debug("suggestion stem fallback",
			slog.String("term", needle),
			slog.Int("matches", len(matches)))
	}

	sortCandidates(matches)
	return limitSuggestions(matches, cfg.Limit)
}

// collectLiteral walks the index in discovery order and keeps literal matches.
func (idx *LocationIndex) collectLiteral(needle string) []candidate {
	var out []candidate
	for _, key := range idx.keys {
		if matchesNormalized(key, needle) {
			out = append(out, idx.candidate(key, needle))
		}
	}
	return out
}

// collectStemmed keeps entries where every stemmed term token occurs inside
// some stemmed entry token.
func (idx *LocationIndex) collectStemmed(needle string) []candidate {
	want := stemTokens(needle)
	if len(want) == 0 {
		return nil
	}

	var out []candidate
	for _, key := range idx.keys {
		have := stemTokens(key)
		if containsAllStems(have, want) {
			out = append(out, idx.candidate(key, needle))
		}
	}
	return out
}

func containsAllStems(have, want []string) bool {
	for _, w := range want {
		found := false
		for _, h := range have {
			if strings.Contains(h, w) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func (idx *LocationIndex) candidate(key, needle string) candidate {
	return candidate{
		display:    idx.display[key],
		normalized: key,
		prefix:     strings.HasPrefix(key, needle),
	}
}

// sortCandidates orders by prefix-first, then normalized length, then
// collation order of the display phrase.
func sortCandidates(cs []candidate) {
	coll := collate.New(language.English, collate.IgnoreCase)
	sort.SliceStable(cs, func(i, j int) bool {
		a, b := cs[i], cs[j]
		if a.prefix != b.prefix {
			return a.prefix
		}
		if len(a.normalized) != len(b.normalized) {
			return len(a.normalized) < len(b.normalized)
		}
		return coll.CompareString(a.display, b.display) < 0
	})
}

// limitSuggestions truncates to limit; a non-positive limit keeps everything.
func limitSuggestions(cs []candidate, limit int) []string {
	if limit > 0 && len(cs) > limit {
		cs = cs[:limit]
	}
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.display
	}
	return out
}
