package listings

import (
	"reflect"
	"testing"
)

// ═══════════════════════════════════════════════════════════════════════════════
// LOCATION INDEX TESTS
// ═══════════════════════════════════════════════════════════════════════════════

func countDisplay(idx *LocationIndex, display string) int {
	n := 0
	for _, v := range idx.Values() {
		if v == display {
			n++
		}
	}
	return n
}

func TestLocationIndex_PartsWordsAndFull(t *testing.T) {
	idx := NewLocationIndex()
	idx.Add("Ubora Tower - Business Bay")

	for _, want := range []string{
		"Ubora", "Tower", "Business", "Bay",
		"Ubora Tower", "Business Bay",
		"Ubora Tower - Business Bay",
	} {
		if n := countDisplay(idx, want); n != 1 {
			t.Errorf("Entry %q appears %d times, want exactly 1", want, n)
		}
	}
}

func TestLocationIndex_DiscoveryOrder(t *testing.T) {
	idx := NewLocationIndex()
	idx.Add("Ubora Tower - Business Bay")

	want := []string{
		"Ubora Tower",
		"Ubora",
		"Tower",
		"Ubora Tower - Business Bay",
		"Business Bay",
		"Business",
		"Bay",
	}
	if got := idx.Values(); !reflect.DeepEqual(got, want) {
		t.Errorf("Values() = %q, want %q", got, want)
	}
}

func TestLocationIndex_FirstDisplayWins(t *testing.T) {
	idx := NewLocationIndex()
	idx.Add("Al-Barsha")
	idx.Add("AL BARSHA")
	idx.Add("albarsha")

	got, ok := idx.Lookup("albarsha")
	if !ok {
		t.Fatal("Expected key 'albarsha'")
	}
	if got != "Al-Barsha" {
		t.Errorf("Lookup(albarsha) = %q, want %q", got, "Al-Barsha")
	}
	// "AL BARSHA" normalizes to "al barsha", which is a different key
	if _, ok := idx.Lookup("al barsha"); !ok {
		t.Error("Expected key 'al barsha'")
	}
}

func TestLocationIndex_RejectsEmpty(t *testing.T) {
	idx := NewLocationIndex()
	idx.Add("")
	idx.Add("   ")
	idx.Add(" - , ")

	if idx.Len() != 0 {
		t.Errorf("Len() = %d, want 0 (keys: %q)", idx.Len(), idx.Keys())
	}
	for _, k := range idx.Keys() {
		if k == "" {
			t.Error("Index contains an empty key")
		}
	}
}

func TestLocationIndex_NoDuplicateKeys(t *testing.T) {
	idx := BuildLocationIndex([]Property{
		{LocationPf: "Dubai Marina - Marina Gate", LocationBayut: "Marina Gate, Dubai Marina"},
		{LocationPf: "Dubai Marina", LocationBayut: "Dubai  Marina"},
	})

	seen := make(map[string]bool)
	for _, k := range idx.Keys() {
		if seen[k] {
			t.Errorf("Duplicate key %q", k)
		}
		seen[k] = true
	}
	if !seen["dubai marina"] || !seen["marina gate"] || !seen["marina"] {
		t.Errorf("Missing expected keys, got %q", idx.Keys())
	}
}

func TestBuildLocationIndex_BothFields(t *testing.T) {
	idx := BuildLocationIndex([]Property{
		{LocationPf: "Downtown Dubai"},
		{LocationBayut: "Palm Jumeirah"},
		{},
	})

	for _, key := range []string{"downtown dubai", "palm jumeirah", "palm", "jumeirah"} {
		if _, ok := idx.Lookup(key); !ok {
			t.Errorf("Missing key %q", key)
		}
	}
}

func TestBuildLocationIndex_Empty(t *testing.T) {
	idx := BuildLocationIndex(nil)
	if idx.Len() != 0 {
		t.Errorf("Len() = %d, want 0", idx.Len())
	}
	if got := idx.Suggest("marina"); got != nil {
		t.Errorf("Suggest on empty index = %q, want nil", got)
	}
}
