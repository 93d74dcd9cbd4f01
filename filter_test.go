package listings

import (
	"math"
	"reflect"
	"testing"
)

func ids(props []Property) []string {
	out := make([]string, len(props))
	for i, p := range props {
		out[i] = string(p.ID)
	}
	return out
}

func filterFixture() []Property {
	return []Property{
		{ID: "1", Price: "1,000", Size: "800", Bedrooms: CountOf(1), UnitType: "Apartment", LocationPf: "Dubai Marina - Marina Gate", Status: "Published"},
		{ID: "2", Price: "3,000", Size: "1500", Bedrooms: CountOf(3), UnitType: "Villa", LocationBayut: "Al-Barsha, Dubai", Status: "Published"},
		{ID: "3", Price: "5,000", Size: "2200", Bedrooms: CountOf(4), UnitType: "Pool Villa", LocationPf: "Palm Jumeirah", Status: "Draft"},
		{ID: "4", Price: "on request", Size: "n/a", UnitType: "Townhouse", LocationPf: "Ubora Tower - Business Bay"},
	}
}

// ═══════════════════════════════════════════════════════════════════════════════
// FILTER TESTS
// ═══════════════════════════════════════════════════════════════════════════════

func TestFilter_OpenStateReturnsInput(t *testing.T) {
	props := filterFixture()
	got := Filter(props, OpenFilterState())
	if !reflect.DeepEqual(ids(got), []string{"1", "2", "3", "4"}) {
		t.Errorf("Filter(open) = %v, want input unchanged", ids(got))
	}
}

func TestFilter_DefaultStateExcludesUnparseable(t *testing.T) {
	props := filterFixture()
	d := RecomputeDerived(props)

	got := Filter(props, d.DefaultState())
	if !reflect.DeepEqual(ids(got), []string{"1", "2", "3"}) {
		t.Errorf("Filter(default) = %v, want [1 2 3]", ids(got))
	}
}

func TestFilter_PriceRange(t *testing.T) {
	props := priced("1000", "3000", "5000")
	state := OpenFilterState()
	state.Price = Between(2000, 4000)

	got := Filter(props, state)
	if len(got) != 1 || got[0].Price != "3000" {
		t.Errorf("Filter(2000..4000) = %v, want only the 3000 item", got)
	}
}

func TestFilter_NaNAsymmetry(t *testing.T) {
	props := priced("bad", "2000")

	state := OpenFilterState()
	if got := Filter(props, state); len(got) != 2 {
		t.Errorf("Unset bounds: got %d items, want 2", len(got))
	}

	state.Price = Selection{From: 0, To: math.NaN()}
	if got := Filter(props, state); !reflect.DeepEqual(ids(got), []string{"b"}) {
		t.Errorf("Set lower bound: got %v, want [b]", ids(got))
	}

	state.Price = Selection{From: math.NaN(), To: 1e12}
	if got := Filter(props, state); !reflect.DeepEqual(ids(got), []string{"b"}) {
		t.Errorf("Set upper bound: got %v, want [b]", ids(got))
	}
}

func TestFilter_FacetSubstring(t *testing.T) {
	props := []Property{
		{ID: "apt", UnitType: "Apartment"},
		{ID: "pool", UnitType: "Pool Villa"},
		{ID: "villa", UnitType: "villa"},
		{ID: "none"},
	}
	state := OpenFilterState()
	state.Facets[FacetUnitType] = "Villa"

	got := Filter(props, state)
	if !reflect.DeepEqual(ids(got), []string{"pool", "villa"}) {
		t.Errorf("Filter(unitType=Villa) = %v, want [pool villa]", ids(got))
	}
}

func TestFilter_Location(t *testing.T) {
	props := filterFixture()

	tests := []struct {
		term string
		want []string
	}{
		{"marina", []string{"1"}},
		{"Al Barsha", nil},
		{"Al-Barsha", []string{"2"}},
		{"barsha", []string{"2"}},
		{"business-bay", nil},
		{"business bay", []string{"4"}},
		{"  PALM  ", []string{"3"}},
		{"", []string{"1", "2", "3", "4"}},
	}

	for _, tt := range tests {
		state := OpenFilterState()
		state.Term = tt.term
		got := ids(Filter(props, state))
		if len(got) == 0 && len(tt.want) == 0 {
			continue
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Filter(term=%q) = %v, want %v", tt.term, got, tt.want)
		}
	}
}

func TestFilter_AllGroupsCombined(t *testing.T) {
	props := filterFixture()
	state := OpenFilterState()
	state.Term = "dubai"
	state.Facets[FacetStatus] = "published"
	state.Price = Between(2000, 6000)
	state.Area = Selection{From: 1000, To: math.NaN()}

	got := Filter(props, state)
	if !reflect.DeepEqual(ids(got), []string{"2"}) {
		t.Errorf("Filter(combined) = %v, want [2]", ids(got))
	}
}

func TestFilter_EmptyInput(t *testing.T) {
	state := OpenFilterState()
	state.Term = "marina"
	state.Facets[FacetBedrooms] = "2"
	if got := Filter(nil, state); len(got) != 0 {
		t.Errorf("Filter(nil) = %v", got)
	}
}

func TestFilterByLocation(t *testing.T) {
	props := filterFixture()

	if got := FilterByLocation(props, "gate"); !reflect.DeepEqual(ids(got), []string{"1"}) {
		t.Errorf("FilterByLocation(gate) = %v", ids(got))
	}
	if got := FilterByLocation(props, " "); len(got) != len(props) {
		t.Errorf("FilterByLocation(blank) returned %d items, want all", len(got))
	}
}

func TestMatches(t *testing.T) {
	p := Property{Price: "2,500", UnitType: "Villa"}
	state := OpenFilterState()
	state.Price = Between(2000, 3000)
	if !Matches(p, state) {
		t.Error("Expected property to match")
	}
	state.Facets[FacetUnitType] = "apartment"
	if Matches(p, state) {
		t.Error("Expected property not to match")
	}
}

func TestFilterState_CloneIsDeep(t *testing.T) {
	a := OpenFilterState()
	b := a.Clone()
	b.Facets[FacetStatus] = "Draft"
	if a.Facets[FacetStatus] != Any {
		t.Error("Clone shares the facet map")
	}
}

func TestFilterState_ActiveFacets(t *testing.T) {
	s := OpenFilterState()
	s.Facets[FacetOwnerName] = "Omar"
	s.Facets[FacetBedrooms] = "2"

	want := []Facet{FacetBedrooms, FacetOwnerName}
	if got := s.ActiveFacets(); !reflect.DeepEqual(got, want) {
		t.Errorf("ActiveFacets() = %v, want %v", got, want)
	}
}
