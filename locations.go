package listings

import (
	"log/slog"
	"strings"
)

// ═══════════════════════════════════════════════════════════════════════════════
// LOCATION INDEX: Autocomplete Vocabulary
// ═══════════════════════════════════════════════════════════════════════════════
// The location index is the list of phrases offered as the user types. It is
// built from the location fields of every listing:
//
//	"Ubora Tower - Business Bay"
//	  parts:        ["Ubora Tower", "Business Bay"]     (split on - , and 2+ spaces)
//	  words:        "Ubora", "Tower", "Business", "Bay"
//	  phrases:      "Ubora Tower", "Business Bay"
//	  full:         "Ubora Tower - Business Bay"  (also the run of all parts)
//
// Two kinds of windows are registered: every contiguous run of words inside
// a part ("Marina Tower" out of "Marina Tower 2"), and every contiguous run
// of parts joined by one space.
//
// Keys are normalized; the first display string seen for a key wins, and
// iteration follows discovery order.
// ═══════════════════════════════════════════════════════════════════════════════

// LocationIndex maps normalized phrase → display phrase in discovery order.
type LocationIndex struct {
	keys    []string
	display map[string]string
}

// NewLocationIndex creates an empty index.
func NewLocationIndex() *LocationIndex {
	return &LocationIndex{display: make(map[string]string)}
}

// BuildLocationIndex scans both location fields of every property.
func BuildLocationIndex(props []Property) *LocationIndex {
	idx := NewLocationIndex()
	for _, p := range props {
		for _, loc := range p.Locations() {
			idx.Add(loc)
		}
	}
	slog.Debug("location index built",
		slog.Int("properties", len(props)),
		slog.Int("entries", idx.Len()))
	return idx
}

// Add registers every part, every contiguous run of parts, and the full
// string of one raw location value. Empty values are ignored.
func (idx *LocationIndex) Add(location string) {
	trimmed := strings.TrimSpace(location)
	if trimmed == "" {
		return
	}

	parts := splitLocation(trimmed)
	for i, part := range parts {
		idx.register(part)
		idx.addWordWindows(part)

		// parts[i..j) for every j > i; j == i+1 is the part itself again,
		// which register ignores as already seen. The run of all parts
		// normalizes like the full string, which is displayed as typed.
		for j := i + 1; j <= len(parts); j++ {
			if i == 0 && j == len(parts) {
				idx.register(trimmed)
				continue
			}
			idx.register(strings.Join(parts[i:j], " "))
		}
	}

	idx.register(trimmed)
}

// addWordWindows registers each contiguous run of words in a single part.
func (idx *LocationIndex) addWordWindows(part string) {
	words := strings.Fields(part)
	if len(words) < 2 {
		return
	}
	for i := range words {
		for j := i + 1; j <= len(words); j++ {
			idx.register(strings.Join(words[i:j], " "))
		}
	}
}

// register stores display under its normalized key unless the key is empty
// or already present.
func (idx *LocationIndex) register(display string) {
	key := Normalize(display)
	if key == "" {
		return
	}
	if _, seen := idx.display[key]; seen {
		return
	}
	idx.display[key] = display
	idx.keys = append(idx.keys, key)
}

// Lookup returns the display phrase for a normalized key.
func (idx *LocationIndex) Lookup(key string) (string, bool) {
	d, ok := idx.display[key]
	return d, ok
}

// Len returns the number of distinct entries.
func (idx *LocationIndex) Len() int {
	return len(idx.keys)
}

// Keys returns the normalized keys in discovery order.
func (idx *LocationIndex) Keys() []string {
	out := make([]string, len(idx.keys))
	copy(out, idx.keys)
	return out
}

// Values returns the display phrases in discovery order.
func (idx *LocationIndex) Values() []string {
	out := make([]string, len(idx.keys))
	for i, k := range idx.keys {
		out[i] = idx.display[k]
	}
	return out
}
