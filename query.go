package listings

import (
	"math"

	"github.com/RoaringBitmap/roaring"
)

// ═══════════════════════════════════════════════════════════════════════════════
// QUERY BUILDER: Predicates as Roaring Bitmaps
// ═══════════════════════════════════════════════════════════════════════════════
// Each predicate turns into the set of ROWS (positions in the collection)
// that satisfy it, stored as a roaring bitmap. Combining predicates is then a
// bitmap operation, and reading the final bitmap in ascending order yields
// the listings in their original order.
//
// EXAMPLE USAGE:
// --------------
// Villas in the Marina between 2M and 4M:
//
//	rows := NewQuery(derived).
//	    Location("marina").
//	    And().
//	    Facet(FacetUnitType, "villa").
//	    And().
//	    Price(Between(2_000_000, 4_000_000)).
//	    Execute()
//
// Where the rows come from:
//   - Location: one pass over the pre-normalized location fields
//   - Facet:    union of the facet catalog postings
//   - Price/Area: a walk of the skip list range index
// ═══════════════════════════════════════════════════════════════════════════════

// Query provides a fluent interface for building row-set queries
type Query struct {
	derived *Derived
	stack   []*roaring.Bitmap // Stack of intermediate results
	ops     []QueryOp         // Stack of pending operations
	negate  bool              // Whether next predicate should be negated
}

// QueryOp represents a pending boolean operation
type QueryOp int

const (
	OpNone QueryOp = iota
	OpAnd
	OpOr
)

// NewQuery creates a query over d.
func NewQuery(d *Derived) *Query {
	return &Query{
		derived: d,
		stack:   make([]*roaring.Bitmap, 0),
		ops:     make([]QueryOp, 0),
	}
}

// Location adds the location predicate. An empty term matches every row.
func (q *Query) Location(term string) *Query {
	needle := Normalize(term)
	if needle == "" {
		return q.push(q.all())
	}

	bm := roaring.NewBitmap()
	for row, locs := range q.derived.locations {
		if matchesNormalized(locs[0], needle) || matchesNormalized(locs[1], needle) {
			bm.Add(uint32(row))
		}
	}
	return q.push(bm)
}

// Facet adds a facet predicate. Any matches every row.
func (q *Query) Facet(f Facet, selected string) *Query {
	return q.push(q.derived.Facets.Matching(f, selected))
}

// Price adds the price range predicate.
func (q *Query) Price(sel Selection) *Query {
	return q.push(q.rangeRows(q.derived.PriceIndex, sel))
}

// Area adds the floor-area range predicate.
func (q *Query) Area(sel Selection) *Query {
	return q.push(q.rangeRows(q.derived.AreaIndex, sel))
}

// rangeRows applies the NaN rules: an unbounded selection admits every row
// (numeric or not); otherwise only indexed rows can qualify.
func (q *Query) rangeRows(idx *RangeIndex, sel Selection) *roaring.Bitmap {
	if sel.IsUnbounded() {
		return q.all()
	}
	if !math.IsNaN(sel.From) && !math.IsNaN(sel.To) && sel.From > sel.To {
		return roaring.NewBitmap()
	}
	return idx.Rows(sel)
}

// And combines the next predicate by intersection.
func (q *Query) And() *Query {
	q.ops = append(q.ops, OpAnd)
	return q
}

// Or combines the next predicate by union.
func (q *Query) Or() *Query {
	q.ops = append(q.ops, OpOr)
	return q
}

// Not negates the next predicate.
//
//	q.Facet(FacetStatus, "published").And().Not().Facet(FacetOfferingType, "rent")
func (q *Query) Not() *Query {
	q.negate = true
	return q
}

// Group evaluates a sub-query as one operand, controlling precedence:
//
//	q.Group(func(g *Query) {
//	    g.Facet(FacetUnitType, "villa").Or().Facet(FacetUnitType, "townhouse")
//	}).And().Location("jumeirah")
func (q *Query) Group(fn func(*Query)) *Query {
	sub := NewQuery(q.derived)
	fn(sub)
	return q.push(sub.Execute())
}

// Execute folds the stack left to right and returns the matching rows.
// An empty query matches nothing.
func (q *Query) Execute() *roaring.Bitmap {
	if len(q.stack) == 0 {
		return roaring.NewBitmap()
	}

	result := q.stack[0]
	for i := 1; i < len(q.stack); i++ {
		if i-1 >= len(q.ops) {
			break
		}
		switch q.ops[i-1] {
		case OpAnd:
			result = roaring.And(result, q.stack[i])
		case OpOr:
			result = roaring.Or(result, q.stack[i])
		}
	}
	return result
}

// Properties resolves rows to listings in ascending row order.
func (q *Query) Properties(rows *roaring.Bitmap) []Property {
	out := make([]Property, 0, rows.GetCardinality())
	it := rows.Iterator()
	for it.HasNext() {
		row := int(it.Next())
		if row < len(q.derived.Properties) {
			out = append(out, q.derived.Properties[row])
		}
	}
	return out
}

// push applies any pending negation and stacks bm.
func (q *Query) push(bm *roaring.Bitmap) *Query {
	if q.negate {
		bm = roaring.AndNot(q.all(), bm)
		q.negate = false
	}
	q.stack = append(q.stack, bm)
	return q
}

// all returns every row of the collection.
func (q *Query) all() *roaring.Bitmap {
	bm := roaring.NewBitmap()
	bm.AddRange(0, uint64(q.derived.Len()))
	return bm
}

// ═══════════════════════════════════════════════════════════════════════════════
// CONVENIENCE: Whole FilterState in One Call
// ═══════════════════════════════════════════════════════════════════════════════

// Evaluate builds the four-group AND for state and returns the matching rows.
func Evaluate(d *Derived, state FilterState) *roaring.Bitmap {
	q := NewQuery(d).Location(state.Term)
	for _, f := range state.ActiveFacets() {
		q.And().Facet(f, state.Facets[f])
	}
	return q.And().Price(state.Price).
		And().Area(state.Area).
		Execute()
}

// Search is Filter computed through the bitmap query; results are identical.
func Search(d *Derived, state FilterState) []Property {
	return NewQuery(d).Properties(Evaluate(d, state))
}
