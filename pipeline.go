package listings

import (
	"log/slog"
	"time"
)

// Derived is everything computed from one raw collection: range bounds,
// facet options, the autocomplete vocabulary, and the lookup structures the
// bitmap query runs on. It is rebuilt as a whole whenever the collection
// changes and is read-only afterwards.
type Derived struct {
	Properties []Property
	Price      Bounds
	Area       Bounds
	Facets     *FacetCatalog
	Locations  *LocationIndex
	PriceIndex *RangeIndex
	AreaIndex  *RangeIndex

	// normalized location fields per row, so the location predicate does
	// not re-normalize on every keystroke
	locations [][2]string
}

// RecomputeDerived builds a Derived for props in a single call.
func RecomputeDerived(props []Property) *Derived {
	return RecomputeDerivedWithOptions(props, DefaultFacetOptions())
}

// RecomputeDerivedWithOptions is RecomputeDerived with explicit facet options.
func RecomputeDerivedWithOptions(props []Property, opts FacetOptions) *Derived {
	start := time.Now()

	d := &Derived{
		Properties: props,
		Facets:     BuildFacetCatalog(props, opts),
		Locations:  BuildLocationIndex(props),
		PriceIndex: BuildRangeIndex(props, PriceField),
		AreaIndex:  BuildRangeIndex(props, AreaField),
		locations:  make([][2]string, len(props)),
	}
	d.Price = d.PriceIndex.Bounds()
	d.Area = d.AreaIndex.Bounds()

	for row, p := range props {
		d.locations[row] = [2]string{Normalize(p.LocationPf), Normalize(p.LocationBayut)}
	}

	slog.Info("derived metadata recomputed",
		slog.Int("properties", len(props)),
		slog.Int("locations", d.Locations.Len()),
		slog.Duration("took", time.Since(start)))
	return d
}

// Len returns the number of rows.
func (d *Derived) Len() int { return len(d.Properties) }

// DefaultState returns the reset state for this collection.
func (d *Derived) DefaultState() FilterState {
	return NewFilterState(d.Price, d.Area)
}
