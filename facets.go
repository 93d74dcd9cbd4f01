package listings

import (
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/RoaringBitmap/roaring"
)

// ═══════════════════════════════════════════════════════════════════════════════
// FACETS: Categorical Filters
// ═══════════════════════════════════════════════════════════════════════════════
// A facet is a field whose values form a small, closed-ish set the user can
// pick from: bedrooms, unit type, status and so on. For each facet the
// catalog keeps:
//
//	Options:  ["", 0, 1, 2, 3]            (the dropdown; "" means "Any")
//	Postings: "2" → {rows 4, 9, 17}       (which rows carry each value)
//
// Postings are roaring bitmaps, so a facet selection becomes a union of a
// few bitmaps rather than a scan:
//
//	selection "villa" (substring, case-insensitive)
//	  "Villa"      → {1, 5}
//	  "Pool Villa" → {8}
//	  result       → {1, 5, 8}
// ═══════════════════════════════════════════════════════════════════════════════

// Facet names a categorical field of Property.
type Facet string

const (
	FacetBedrooms      Facet = "bedrooms"
	FacetBathrooms     Facet = "bathrooms"
	FacetUnitType      Facet = "unitType"
	FacetStatus        Facet = "status"
	FacetOfferingType  Facet = "offeringType"
	FacetProjectStatus Facet = "projectStatus"
	FacetOwnerName     Facet = "ownerName"
)

// AllFacets lists every facet in display order.
var AllFacets = []Facet{
	FacetBedrooms,
	FacetBathrooms,
	FacetUnitType,
	FacetStatus,
	FacetOfferingType,
	FacetProjectStatus,
	FacetOwnerName,
}

// Any is the sentinel option meaning "no constraint".
const Any = ""

// StudioLabel is how zero bedrooms is displayed.
const StudioLabel = "Studio"

// Numeric reports whether the facet holds counts rather than text.
func (f Facet) Numeric() bool {
	return f == FacetBedrooms || f == FacetBathrooms
}

// Value returns the facet's value on p as text, and whether it is present.
// Counts are rendered in decimal; empty strings count as absent.
func (f Facet) Value(p Property) (string, bool) {
	var s string
	switch f {
	case FacetBedrooms:
		if !p.Bedrooms.Valid {
			return "", false
		}
		return strconv.Itoa(p.Bedrooms.Value), true
	case FacetBathrooms:
		if !p.Bathrooms.Valid {
			return "", false
		}
		return strconv.Itoa(p.Bathrooms.Value), true
	case FacetUnitType:
		s = p.UnitType
	case FacetStatus:
		s = p.Status
	case FacetOfferingType:
		s = p.OfferingType
	case FacetProjectStatus:
		s = p.ProjectStatus
	case FacetOwnerName:
		s = p.OwnerName
	}
	return s, s != ""
}

// Label returns the display text for an option of this facet.
//
//	FacetBedrooms.Label("0") → "Studio"
//	FacetBedrooms.Label("")  → "Any"
func (f Facet) Label(value string) string {
	switch {
	case value == Any:
		return "Any"
	case f == FacetBedrooms && value == "0":
		return StudioLabel
	default:
		return value
	}
}

// FacetOptions configures catalog construction.
type FacetOptions struct {
	// NumericAnySentinel prefixes numeric facets with "" like string facets.
	NumericAnySentinel bool
}

// DefaultFacetOptions returns the standard catalog options.
func DefaultFacetOptions() FacetOptions {
	return FacetOptions{NumericAnySentinel: true}
}

// FacetValues holds the options and postings for one facet.
type FacetValues struct {
	Facet    Facet
	Options  []string                   // Sentinel first (if any), then distinct values
	Postings map[string]*roaring.Bitmap // Distinct value → rows
}

// Distinct returns the options without the sentinel.
func (fv *FacetValues) Distinct() []string {
	if len(fv.Options) > 0 && fv.Options[0] == Any {
		return fv.Options[1:]
	}
	return fv.Options
}

// FacetCatalog is the set of facet values derived from one collection.
type FacetCatalog struct {
	facets map[Facet]*FacetValues
	rows   int
}

// BuildFacetCatalog derives distinct values and postings for every facet.
//
// Numeric facets are sorted ascending; text facets keep first-seen order.
func BuildFacetCatalog(props []Property, opts FacetOptions) *FacetCatalog {
	fc := &FacetCatalog{
		facets: make(map[Facet]*FacetValues, len(AllFacets)),
		rows:   len(props),
	}

	for _, f := range AllFacets {
		fv := &FacetValues{
			Facet:    f,
			Postings: make(map[string]*roaring.Bitmap),
		}
		var distinct []string
		for row, p := range props {
			v, ok := f.Value(p)
			if !ok {
				continue
			}
			bm, seen := fv.Postings[v]
			if !seen {
				bm = roaring.NewBitmap()
				fv.Postings[v] = bm
				distinct = append(distinct, v)
			}
			bm.Add(uint32(row))
		}

		if f.Numeric() {
			sortNumeric(distinct)
		}
		if !f.Numeric() || opts.NumericAnySentinel {
			fv.Options = append([]string{Any}, distinct...)
		} else {
			fv.Options = distinct
		}
		fc.facets[f] = fv
	}

	slog.Debug("facet catalog built", slog.Int("properties", len(props)))
	return fc
}

// sortNumeric sorts decimal strings by numeric value.
func sortNumeric(values []string) {
	sort.SliceStable(values, func(i, j int) bool {
		a, _ := strconv.Atoi(values[i])
		b, _ := strconv.Atoi(values[j])
		return a < b
	})
}

// Values returns the entry for f, or an empty one for an unknown facet.
func (fc *FacetCatalog) Values(f Facet) *FacetValues {
	if fv, ok := fc.facets[f]; ok {
		return fv
	}
	return &FacetValues{Facet: f, Options: []string{Any}, Postings: map[string]*roaring.Bitmap{}}
}

// Options returns the dropdown options for f.
func (fc *FacetCatalog) Options(f Facet) []string {
	return fc.Values(f).Options
}

// Matching returns the rows whose value for f contains selected
// (case-insensitive). An Any selection matches every row, including rows
// where the value is absent.
func (fc *FacetCatalog) Matching(f Facet, selected string) *roaring.Bitmap {
	if selected == Any {
		out := roaring.NewBitmap()
		out.AddRange(0, uint64(fc.rows))
		return out
	}

	needle := strings.ToLower(selected)
	parts := make([]*roaring.Bitmap, 0)
	for value, bm := range fc.Values(f).Postings {
		if strings.Contains(strings.ToLower(value), needle) {
			parts = append(parts, bm)
		}
	}
	return roaring.FastOr(parts...)
}
