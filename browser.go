package listings

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// LoadState is the outcome of the most recent fetch.
type LoadState int

const (
	LoadPending LoadState = iota
	LoadReady
	LoadFailed
)

func (s LoadState) String() string {
	switch s {
	case LoadPending:
		return "pending"
	case LoadReady:
		return "ready"
	case LoadFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Status is the observable load state plus the message shown on failure.
type Status struct {
	State   LoadState
	Message string
}

// Browser is one listing-browsing session: a source, the search engine over
// what it returned, and the paginator over the visible result.
type Browser struct {
	source    DataSource
	engine    *Engine
	paginator *Paginator

	mu     sync.Mutex
	status Status
}

// NewBrowser wires a session together.
func NewBrowser(source DataSource, engine *Engine, paginator *Paginator) *Browser {
	return &Browser{
		source:    source,
		engine:    engine,
		paginator: paginator,
		status:    Status{State: LoadPending},
	}
}

// Engine returns the search engine.
func (b *Browser) Engine() *Engine { return b.engine }

// Paginator returns the paginator.
func (b *Browser) Paginator() *Paginator { return b.paginator }

// Status returns the current load status.
func (b *Browser) Status() Status {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.status
}

// Load fetches every listing and feeds them to the engine. On failure the
// working collection becomes empty and the status carries a message; the
// returned error wraps the source error.
func (b *Browser) Load(ctx context.Context) error {
	b.setStatus(Status{State: LoadPending})

	props, err := b.source.FetchAll(ctx)
	if err != nil {
		slog.Error("failed to load listings", slog.String("error", err.Error()))
		b.engine.Load(nil)
		b.sync()
		b.setStatus(Status{State: LoadFailed, Message: "Failed to load properties."})
		return err
	}

	b.engine.Load(props)
	b.sync()
	b.setStatus(Status{State: LoadReady})
	return nil
}

// Refresh clears the term and facet selections and fetches again. The
// baseline captured by the first load is kept.
func (b *Browser) Refresh(ctx context.Context) error {
	b.engine.ClearFilters()
	return b.Load(ctx)
}

// Search runs the composed filter and returns to page 1.
func (b *Browser) Search() error {
	_, err := b.engine.Search()
	if err != nil && !errors.Is(err, ErrNoBaseline) {
		return err
	}
	b.sync()
	b.paginator.GoToPage(1)
	return err
}

// Autocomplete forwards a keystroke to the engine.
func (b *Browser) Autocomplete(term string) []string {
	suggestions := b.engine.Autocomplete(term)
	b.sync()
	return suggestions
}

// SelectSuggestion adopts a suggestion and filters by it.
func (b *Browser) SelectSuggestion(location string) {
	b.engine.SelectSuggestion(location)
	b.sync()
}

// Reset restores the default filter and the baseline.
func (b *Browser) Reset() {
	b.engine.Reset()
	b.sync()
	b.paginator.GoToPage(1)
}

// Page returns the listings on the current page.
func (b *Browser) Page() []Property {
	return Page(b.paginator, b.engine.Visible())
}

// Detail fetches a single listing.
func (b *Browser) Detail(ctx context.Context, id string) (Property, error) {
	return b.source.FetchOne(ctx, id)
}

// sync tells the paginator how many rows are visible now.
func (b *Browser) sync() {
	b.paginator.SetTotal(len(b.engine.Visible()))
}

func (b *Browser) setStatus(s Status) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.status = s
}
