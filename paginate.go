package listings

import (
	"fmt"
	"slices"
)

// ═══════════════════════════════════════════════════════════════════════════════
// PAGINATOR
// ═══════════════════════════════════════════════════════════════════════════════
// The paginator never holds the listings themselves, only the numbers that
// describe which part of them is on screen:
//
//	total = 47, perPage = 10  →  totalPages = 5
//	page 3                    →  rows [20, 30)
//
// Page controls are rendered as a bounded window of WindowSize numbers. The
// window starts at the multiple of WindowSize just below the current page, and
// the first and last pages are added (with an ellipsis when there is a gap):
//
//	page 3 of 5:   1 2 [3] 4 5
//	page 8 of 12:  1 … 6 7 [8] 9 10 … 12
// ═══════════════════════════════════════════════════════════════════════════════

// WindowSize is the number of page numbers shown between ellipses.
const WindowSize = 5

// DefaultPerPage is the page size a new session starts with.
const DefaultPerPage = 10

// PerPageOptions are the recognized page sizes.
var PerPageOptions = []int{10, 20, 30, 50, 100}

// PageState is a snapshot of the paginator.
type PageState struct {
	CurrentPage int
	PerPage     int
	TotalItems  int
}

// TotalPages returns ceil(TotalItems / PerPage), never negative.
func (ps PageState) TotalPages() int {
	if ps.PerPage <= 0 || ps.TotalItems <= 0 {
		return 0
	}
	return (ps.TotalItems + ps.PerPage - 1) / ps.PerPage
}

// PageItem is one control in the page window: a page number or an ellipsis.
type PageItem struct {
	Page     int
	Ellipsis bool
}

func (pi PageItem) String() string {
	if pi.Ellipsis {
		return "..."
	}
	return fmt.Sprint(pi.Page)
}

// Paginator tracks the current page over a result of TotalItems rows.
type Paginator struct {
	state     PageState
	listeners []func(PageState)
}

// NewPaginator creates a paginator on page 1 with no items.
func NewPaginator(perPage int) (*Paginator, error) {
	if !slices.Contains(PerPageOptions, perPage) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPerPage, perPage)
	}
	return &Paginator{state: PageState{CurrentPage: 1, PerPage: perPage}}, nil
}

// State returns the current snapshot.
func (p *Paginator) State() PageState { return p.state }

// CurrentPage returns the 1-based current page.
func (p *Paginator) CurrentPage() int { return p.state.CurrentPage }

// TotalPages returns the number of pages for the current total.
func (p *Paginator) TotalPages() int { return p.state.TotalPages() }

// OnPageChange registers fn to be called after every change of the current
// page (the consuming UI scrolls back to the top here).
func (p *Paginator) OnPageChange(fn func(PageState)) {
	p.listeners = append(p.listeners, fn)
}

// GoToPage moves to page n, clamped into [1, max(1, TotalPages)].
func (p *Paginator) GoToPage(n int) {
	p.setPage(p.clamp(n))
}

// Next moves one page forward; a no-op on the last page.
func (p *Paginator) Next() { p.GoToPage(p.state.CurrentPage + 1) }

// Prev moves one page back; a no-op on page 1.
func (p *Paginator) Prev() { p.GoToPage(p.state.CurrentPage - 1) }

// HasNext reports whether Next would move.
func (p *Paginator) HasNext() bool { return p.state.CurrentPage < p.TotalPages() }

// HasPrev reports whether Prev would move.
func (p *Paginator) HasPrev() bool { return p.state.CurrentPage > 1 }

// SetPerPage changes the page size and returns to page 1.
func (p *Paginator) SetPerPage(n int) error {
	if !slices.Contains(PerPageOptions, n) {
		return fmt.Errorf("%w: %d", ErrInvalidPerPage, n)
	}
	p.state.PerPage = n
	p.setPage(1)
	return nil
}

// SetTotal records a new result size. The current page is pulled back into
// range if the result shrank below it.
func (p *Paginator) SetTotal(n int) {
	if n < 0 {
		n = 0
	}
	p.state.TotalItems = n
	p.setPage(p.clamp(p.state.CurrentPage))
}

// Slice returns the [start, end) row bounds of the current page over a
// collection of n rows. Both are clamped to n.
func (p *Paginator) Slice(n int) (start, end int) {
	start = (p.state.CurrentPage - 1) * p.state.PerPage
	end = start + p.state.PerPage
	start = min(max(start, 0), n)
	end = min(max(end, 0), n)
	return start, end
}

// Window returns the page controls to render for the current page.
func (p *Paginator) Window() []PageItem {
	return pageWindow(p.state.CurrentPage, p.TotalPages())
}

func (p *Paginator) clamp(n int) int {
	return min(max(n, 1), max(p.TotalPages(), 1))
}

func (p *Paginator) setPage(n int) {
	if n == p.state.CurrentPage {
		return
	}
	p.state.CurrentPage = n
	for _, fn := range p.listeners {
		fn(p.state)
	}
}

// Page returns the items of the current page.
func Page[T any](p *Paginator, items []T) []T {
	start, end := p.Slice(len(items))
	return items[start:end]
}

// pageWindow builds the window for current out of total pages.
func pageWindow(current, total int) []PageItem {
	if total <= 0 {
		return nil
	}

	first := (current-1)/WindowSize*WindowSize + 1
	last := min(first+WindowSize-1, total)
	if first > last {
		return nil
	}

	var out []PageItem
	if first > 1 {
		out = append(out, PageItem{Page: 1})
		if first > 2 {
			out = append(out, PageItem{Ellipsis: true})
		}
	}
	for i := first; i <= last; i++ {
		out = append(out, PageItem{Page: i})
	}
	if last < total {
		if last < total-1 {
			out = append(out, PageItem{Ellipsis: true})
		}
		out = append(out, PageItem{Page: total})
	}
	return out
}
