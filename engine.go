// Package listings implements the search core of a property listing browser.
//
// ═══════════════════════════════════════════════════════════════════════════════
// WHAT DOES THE ENGINE DO?
// ═══════════════════════════════════════════════════════════════════════════════
// A listing feed is loaded once into memory. From then on everything is local:
//
//	raw listings ──► RecomputeDerived ──► ranges, facets, location vocabulary
//	      │
//	      └──► baseline (first non-empty load, kept forever)
//	                 │
//	   FilterState ──┴──► Search ──► visible listings ──► Paginator
//
// The baseline is captured exactly once. Later loads refresh the derived
// metadata (bounds, facet options, suggestions) but Search and Reset keep
// working over the first snapshot.
// ═══════════════════════════════════════════════════════════════════════════════
package listings

import (
	"errors"
	"log/slog"
	"sync"
)

// ═══════════════════════════════════════════════════════════════════════════════
// ERROR DEFINITIONS
// ═══════════════════════════════════════════════════════════════════════════════
var (
	ErrNoBaseline     = errors.New("no listings loaded yet")
	ErrNotFound       = errors.New("listing not found")
	ErrFetchFailed    = errors.New("failed to fetch listings")
	ErrInvalidPerPage = errors.New("unsupported items per page")
)

// EngineConfig holds the tuning knobs of an Engine.
type EngineConfig struct {
	Facets    FacetOptions
	Suggest   SuggestConfig
	PriceStep float64 // Stepper increment for the price range (default: 1)
	AreaStep  float64 // Stepper increment for the area range (default: 1)
}

// DefaultEngineConfig returns the standard engine configuration
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		Facets:    DefaultFacetOptions(),
		Suggest:   DefaultSuggestConfig(),
		PriceStep: 1,
		AreaStep:  1,
	}
}

// Engine owns the listing collection, the baseline snapshot, the filter
// being composed and the currently visible result.
type Engine struct {
	mu sync.Mutex // Protects everything below

	config EngineConfig

	derived     *Derived   // Metadata over the latest load
	baseline    []Property // First non-empty load; never replaced
	baseDerived *Derived   // Metadata over the baseline, used for searching

	term   string
	facets map[Facet]string
	price  *RangeTracker
	area   *RangeTracker

	visible []Property
}

// NewEngine creates an empty engine. It is usable immediately: every
// operation on an engine with no data returns empty results.
func NewEngine(config EngineConfig) *Engine {
	empty := RecomputeDerivedWithOptions(nil, config.Facets)
	return &Engine{
		config:  config,
		derived: empty,
		facets:  emptyFacets(),
		price:   NewRangeTracker(PriceField, Bounds{}, config.PriceStep),
		area:    NewRangeTracker(AreaField, Bounds{}, config.AreaStep),
	}
}

// ═══════════════════════════════════════════════════════════════════════════════
// LOADING
// ═══════════════════════════════════════════════════════════════════════════════

// Load replaces the raw collection.
//
// STEP-BY-STEP:
// -------------
//  1. Recompute bounds, facets and location vocabulary from raw
//  2. Capture raw as the baseline if none exists and raw is non-empty
//  3. Move both range selections to the new full bounds
//  4. Show raw as the visible collection
func (e *Engine) Load(raw []Property) {
	e.mu.Lock()
	defer e.mu.Unlock()

	slog.Info("loading listings", slog.Int("count", len(raw)))

	e.derived = RecomputeDerivedWithOptions(raw, e.config.Facets)

	if e.baseline == nil && len(raw) > 0 {
		e.baseline = append([]Property(nil), raw...)
		e.baseDerived = e.derived
		slog.Info("baseline captured", slog.Int("count", len(e.baseline)))
	}

	e.price.Rebase(e.derived.Price)
	e.area.Rebase(e.derived.Area)
	e.visible = append([]Property(nil), raw...)
}

// ═══════════════════════════════════════════════════════════════════════════════
// COMPOSING THE FILTER
// ═══════════════════════════════════════════════════════════════════════════════

// SetTerm sets the free-text location term without filtering.
func (e *Engine) SetTerm(term string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.term = term
}

// SetFacet selects a value for f; Any clears it.
func (e *Engine) SetFacet(f Facet, value string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.facets[f] = value
}

// PriceTracker returns the price tracker. The tracker is not synchronized;
// drive it from the same goroutine that calls Search.
func (e *Engine) PriceTracker() *RangeTracker { return e.price }

// AreaTracker returns the floor-area tracker (see PriceTracker).
func (e *Engine) AreaTracker() *RangeTracker { return e.area }

// State returns a copy of the filter being composed.
func (e *Engine) State() FilterState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stateLocked()
}

func (e *Engine) stateLocked() FilterState {
	fs := FilterState{
		Term:   e.term,
		Facets: make(map[Facet]string, len(e.facets)),
		Price:  e.price.Selection(),
		Area:   e.area.Selection(),
	}
	for k, v := range e.facets {
		fs.Facets[k] = v
	}
	return fs
}

// ═══════════════════════════════════════════════════════════════════════════════
// SEARCHING
// ═══════════════════════════════════════════════════════════════════════════════

// Search applies the composed filter to the baseline and makes the result
// visible. Before any data has arrived it returns ErrNoBaseline and leaves
// the visible collection alone.
func (e *Engine) Search() ([]Property, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.baseDerived == nil {
		return e.visibleLocked(), ErrNoBaseline
	}

	state := e.stateLocked()
	e.visible = Search(e.baseDerived, state)

	slog.Info("search",
		slog.String("term", state.Term),
		slog.Int("facets", len(state.ActiveFacets())),
		slog.Bool("priceInvalid", state.Price.Invalid()),
		slog.Bool("areaInvalid", state.Area.Invalid()),
		slog.Int("results", len(e.visible)))
	return e.visibleLocked(), nil
}

// Autocomplete is the live path run on every keystroke: it records term,
// narrows the visible collection by location only, and returns suggestions.
// A blank term restores the baseline and suggests nothing.
func (e *Engine) Autocomplete(term string) []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.term = term
	if Normalize(term) == "" {
		e.restoreBaselineLocked()
		return nil
	}

	suggestions := e.derived.Locations.SuggestWithConfig(term, e.config.Suggest)
	e.filterLocationLocked(term)
	return suggestions
}

// SelectSuggestion adopts a suggestion as the term and filters by it.
func (e *Engine) SelectSuggestion(location string) []Property {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.term = location
	e.filterLocationLocked(location)
	return e.visibleLocked()
}

// ClearTerm empties the term and restores the baseline.
func (e *Engine) ClearTerm() []Property {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.term = ""
	e.restoreBaselineLocked()
	return e.visibleLocked()
}

func (e *Engine) filterLocationLocked(term string) {
	if e.baseDerived == nil {
		return
	}
	q := NewQuery(e.baseDerived)
	e.visible = q.Properties(q.Location(term).Execute())
}

// ═══════════════════════════════════════════════════════════════════════════════
// RESET
// ═══════════════════════════════════════════════════════════════════════════════

// Reset clears the term and every facet, returns both ranges to their full
// bounds, and makes the baseline visible again.
func (e *Engine) Reset() []Property {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.clearQueryLocked()
	e.price.Reset()
	e.area.Reset()
	e.restoreBaselineLocked()

	slog.Info("filters reset", slog.Int("visible", len(e.visible)))
	return e.visibleLocked()
}

// ClearFilters clears the term and every facet but leaves ranges and the
// visible collection as they are (used before a refresh).
func (e *Engine) ClearFilters() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.clearQueryLocked()
}

func (e *Engine) clearQueryLocked() {
	e.term = ""
	e.facets = emptyFacets()
}

func (e *Engine) restoreBaselineLocked() {
	if e.baseline != nil {
		e.visible = append([]Property(nil), e.baseline...)
	}
}

// ═══════════════════════════════════════════════════════════════════════════════
// ACCESSORS
// ═══════════════════════════════════════════════════════════════════════════════

// Visible returns a copy of the current result.
func (e *Engine) Visible() []Property {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.visibleLocked()
}

func (e *Engine) visibleLocked() []Property {
	return append([]Property(nil), e.visible...)
}

// Baseline returns a copy of the captured snapshot, nil before capture.
func (e *Engine) Baseline() []Property {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.baseline == nil {
		return nil
	}
	return append([]Property(nil), e.baseline...)
}

// Derived returns the metadata of the latest load.
func (e *Engine) Derived() *Derived {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.derived
}

// Options returns the facet dropdown options from the latest load.
func (e *Engine) Options(f Facet) []string {
	return e.Derived().Facets.Options(f)
}
