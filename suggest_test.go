package listings

import (
	"fmt"
	"reflect"
	"testing"
)

// ═══════════════════════════════════════════════════════════════════════════════
// SUGGESTION TESTS
// ═══════════════════════════════════════════════════════════════════════════════

func setupSuggestIndex(t *testing.T) *LocationIndex {
	t.Helper()
	idx := NewLocationIndex()
	idx.Add("Dubai Marina")
	idx.Add("Marina Gate")
	idx.Add("Marina")
	idx.Add("Ubora Tower - Business Bay")
	return idx
}

func TestSuggest_Ranking(t *testing.T) {
	idx := setupSuggestIndex(t)

	got := idx.Suggest("mar")
	want := []string{"Marina", "Marina Gate", "Dubai Marina"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Suggest(mar) = %q, want %q", got, want)
	}
}

func TestSuggest_AlphabeticalTieBreak(t *testing.T) {
	idx := NewLocationIndex()
	idx.Add("Bay Square")
	idx.Add("Bay Avenue")
	idx.Add("bay Central")

	got := idx.Suggest("bay")
	// "Bay" (from the word windows) is shortest; the rest share length
	// 10 or 11 and sort case-insensitively.
	want := []string{"Bay", "Bay Avenue", "Bay Square", "bay Central"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Suggest(bay) = %q, want %q", got, want)
	}
}

func TestSuggest_EmptyTerm(t *testing.T) {
	idx := setupSuggestIndex(t)

	for _, term := range []string{"", "   ", "-,"} {
		if got := idx.Suggest(term); got != nil {
			t.Errorf("Suggest(%q) = %q, want nil", term, got)
		}
	}
}

func TestSuggest_NoMatch(t *testing.T) {
	idx := setupSuggestIndex(t)

	if got := idx.Suggest("jumeirah"); len(got) != 0 {
		t.Errorf("Suggest(jumeirah) = %q, want none", got)
	}
}

func TestSuggest_Limit(t *testing.T) {
	idx := NewLocationIndex()
	for i := 0; i < 25; i++ {
		idx.Add(fmt.Sprintf("Tower %02d", i))
	}

	if got := idx.Suggest("tower"); len(got) != 10 {
		t.Errorf("Suggest returned %d entries, want 10", len(got))
	}

	cfg := DefaultSuggestConfig()
	cfg.Limit = 3
	if got := idx.SuggestWithConfig("tower", cfg); len(got) != 3 {
		t.Errorf("SuggestWithConfig(limit 3) returned %d entries", len(got))
	}

	// 25 "Tower NN" phrases plus the word "Tower" itself
	cfg.Limit = 0
	if got := idx.SuggestWithConfig("tower", cfg); len(got) != 26 {
		t.Errorf("Limit 0 returned %d entries, want all 26", len(got))
	}
}

func TestSuggest_StemFallback(t *testing.T) {
	idx := setupSuggestIndex(t)

	got := idx.Suggest("towers")
	if len(got) == 0 {
		t.Fatal("Expected stem fallback to suggest entries for 'towers'")
	}
	if got[0] != "Tower" {
		t.Errorf("First suggestion = %q, want %q", got[0], "Tower")
	}

	cfg := DefaultSuggestConfig()
	cfg.StemFallback = false
	if got := idx.SuggestWithConfig("towers", cfg); len(got) != 0 {
		t.Errorf("Without fallback got %q, want none", got)
	}
}

func TestSuggest_NormalizedTerm(t *testing.T) {
	idx := setupSuggestIndex(t)

	a := idx.Suggest("Business-Bay")
	b := idx.Suggest("businessbay")
	if !reflect.DeepEqual(a, b) {
		t.Errorf("Suggest differs for equivalent terms: %q vs %q", a, b)
	}
}
