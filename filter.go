package listings

import (
	"strings"
)

// ═══════════════════════════════════════════════════════════════════════════════
// FILTER: The Composite Predicate
// ═══════════════════════════════════════════════════════════════════════════════
// A listing is kept when ALL four groups agree:
//
//  1. Location  term "" → pass; otherwise the normalized term must occur in
//               either normalized location field (whole string or one token)
//  2. Facets    every non-Any selection must occur, case-insensitively, in
//               the listing's value for that facet; absent values fail
//  3. Price     Selection.Admits(price)
//  4. Area      Selection.Admits(area)
//
// Filter is the reference implementation: one linear pass, output order equal
// to input order. Query (query.go) answers the same question with bitmaps
// and must always agree with it.
// ═══════════════════════════════════════════════════════════════════════════════

// FilterState is the query the user is composing.
type FilterState struct {
	Term   string
	Facets map[Facet]string
	Price  Selection
	Area   Selection
}

// NewFilterState returns the default state: empty term, every facet Any,
// ranges set to the given full bounds.
func NewFilterState(price, area Bounds) FilterState {
	return FilterState{
		Facets: emptyFacets(),
		Price:  price.Full(),
		Area:   area.Full(),
	}
}

// OpenFilterState returns a state that constrains nothing at all, not even
// listings with unparseable prices.
func OpenFilterState() FilterState {
	return FilterState{
		Facets: emptyFacets(),
		Price:  Unbounded(),
		Area:   Unbounded(),
	}
}

func emptyFacets() map[Facet]string {
	m := make(map[Facet]string, len(AllFacets))
	for _, f := range AllFacets {
		m[f] = Any
	}
	return m
}

// Clone returns a deep copy.
func (fs FilterState) Clone() FilterState {
	out := fs
	out.Facets = make(map[Facet]string, len(fs.Facets))
	for k, v := range fs.Facets {
		out.Facets[k] = v
	}
	return out
}

// ActiveFacets returns the facets with a non-Any selection, in AllFacets
// order followed by any unknown facet names.
func (fs FilterState) ActiveFacets() []Facet {
	var out []Facet
	known := make(map[Facet]bool, len(AllFacets))
	for _, f := range AllFacets {
		known[f] = true
		if fs.Facets[f] != Any {
			out = append(out, f)
		}
	}
	for f, v := range fs.Facets {
		if !known[f] && v != Any {
			out = append(out, f)
		}
	}
	return out
}

// Filter returns the properties matching state, in input order.
func Filter(props []Property, state FilterState) []Property {
	term := Normalize(state.Term)
	active := state.ActiveFacets()

	out := make([]Property, 0, len(props))
	for _, p := range props {
		if matchLocation(p, term) &&
			matchFacets(p, active, state.Facets) &&
			state.Price.Admits(PriceField.Value(p)) &&
			state.Area.Admits(AreaField.Value(p)) {
			out = append(out, p)
		}
	}
	return out
}

// FilterByLocation applies only the location predicate (live autocomplete).
func FilterByLocation(props []Property, term string) []Property {
	needle := Normalize(term)
	if needle == "" {
		out := make([]Property, len(props))
		copy(out, props)
		return out
	}
	out := make([]Property, 0, len(props))
	for _, p := range props {
		if matchLocation(p, needle) {
			out = append(out, p)
		}
	}
	return out
}

// Matches reports whether a single property satisfies state.
func Matches(p Property, state FilterState) bool {
	return len(Filter([]Property{p}, state)) == 1
}

// matchLocation is predicate group 1; term must already be normalized.
func matchLocation(p Property, term string) bool {
	if term == "" {
		return true
	}
	for _, loc := range p.Locations() {
		if matchesNormalized(Normalize(loc), term) {
			return true
		}
	}
	return false
}

// matchFacets is predicate group 2.
func matchFacets(p Property, active []Facet, selected map[Facet]string) bool {
	for _, f := range active {
		v, ok := f.Value(p)
		if !ok {
			return false
		}
		if !strings.Contains(strings.ToLower(v), strings.ToLower(selected[f])) {
			return false
		}
	}
	return true
}
