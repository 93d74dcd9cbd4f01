package listings

import (
	"math"
	"math/rand"

	"github.com/RoaringBitmap/roaring"
)

// ═══════════════════════════════════════════════════════════════════════════════
// RANGE INDEX: A Skip List Ordered by (Value, Row)
// ═══════════════════════════════════════════════════════════════════════════════
// A range query asks "which rows have a price between 2,000 and 4,000?".
// Scanning every row works, but when the same dataset is queried on every
// keystroke it pays to keep the rows sorted by value once:
//
// Level 2: HEAD ----------------------> [3000:r1] ------------------> NULL
// Level 1: HEAD ------> [1000:r0] ----> [3000:r1] ------------------> NULL
// Level 0: HEAD ------> [1000:r0] ----> [3000:r1] ----> [5000:r2] --> NULL
//
// QUERY (2000..4000):
// -------------------
//  1. Descend the express lanes to the last entry < (2000, -∞)
//  2. Walk level 0 while value <= 4000, adding each row to a bitmap
//
// Cost: O(log n + k) where k is the number of rows in range.
//
// Rows whose value is NaN are never inserted. That is what makes the
// index agree with the linear filter: a NaN row fails any set bound, and an
// unset selection never consults the index at all.
// ═══════════════════════════════════════════════════════════════════════════════

const MaxHeight = 32 // Maximum tower height (supports billions of entries)

// Entry is one (value, row) pair in the index.
type Entry struct {
	Value float64
	Row   int
}

// Less orders entries by value, then by row.
func (e Entry) Less(other Entry) bool {
	if e.Value != other.Value {
		return e.Value < other.Value
	}
	return e.Row < other.Row
}

// node is a skip list node: a key plus one forward pointer per level.
type node struct {
	key   Entry
	tower [MaxHeight]*node
}

// RangeIndex is a skip list of entries for one numeric field.
type RangeIndex struct {
	Field  Field
	head   *node
	height int
	length int
	rng    *rand.Rand
}

// NewRangeIndex creates an empty index for field.
func NewRangeIndex(field Field) *RangeIndex {
	return &RangeIndex{
		Field:  field,
		head:   &node{},
		height: 1,
		rng:    rand.New(rand.NewSource(int64(field) + 1)),
	}
}

// BuildRangeIndex indexes field over props; the row is the slice position.
func BuildRangeIndex(props []Property, field Field) *RangeIndex {
	ri := NewRangeIndex(field)
	for row, p := range props {
		ri.Insert(row, field.Value(p))
	}
	return ri
}

// Len returns the number of indexed (numeric) rows.
func (ri *RangeIndex) Len() int { return ri.length }

// Insert adds a row. NaN values are skipped; re-inserting the same
// (value, row) is a no-op.
func (ri *RangeIndex) Insert(row int, value float64) {
	if math.IsNaN(value) {
		return
	}
	key := Entry{Value: value, Row: row}
	found, journey := ri.search(key)
	if found != nil {
		return
	}

	height := ri.randomHeight()
	n := &node{key: key}
	for level := 0; level < height; level++ {
		pred := journey[level]
		if pred == nil {
			pred = ri.head
		}
		n.tower[level] = pred.tower[level]
		pred.tower[level] = n
	}
	if height > ri.height {
		ri.height = height
	}
	ri.length++
}

// search descends from the top level and returns the node equal to key (or
// nil) together with the predecessor at every level.
func (ri *RangeIndex) search(key Entry) (*node, [MaxHeight]*node) {
	var journey [MaxHeight]*node
	current := ri.head
	for level := ri.height - 1; level >= 0; level-- {
		for next := current.tower[level]; next != nil && next.key.Less(key); next = current.tower[level] {
			current = next
		}
		journey[level] = current
	}
	if next := current.tower[0]; next != nil && next.key == key {
		return next, journey
	}
	return nil, journey
}

// seek returns the first node with value >= v.
func (ri *RangeIndex) seek(v float64) *node {
	_, journey := ri.search(Entry{Value: v, Row: math.MinInt})
	return journey[0].tower[0]
}

// Min returns the smallest indexed value; ok is false when empty.
func (ri *RangeIndex) Min() (float64, bool) {
	first := ri.head.tower[0]
	if first == nil {
		return 0, false
	}
	return first.key.Value, true
}

// Max returns the largest indexed value; ok is false when empty.
func (ri *RangeIndex) Max() (float64, bool) {
	current := ri.head
	for level := ri.height - 1; level >= 0; level-- {
		for current.tower[level] != nil {
			current = current.tower[level]
		}
	}
	if current == ri.head {
		return 0, false
	}
	return current.key.Value, true
}

// Bounds returns (Min, Max), (0, 0) when empty. It agrees with
// ComputeBounds over the same collection.
func (ri *RangeIndex) Bounds() Bounds {
	lo, ok := ri.Min()
	if !ok {
		return Bounds{}
	}
	hi, _ := ri.Max()
	return Bounds{Min: lo, Max: hi}
}

// Rows returns the rows admitted by sel as a bitmap. An unbounded selection
// is the caller's business (every row passes, numeric or not), so Rows is
// only meaningful when at least one side is set.
//
// Example:
//
//	values 1000, 3000, 5000 at rows 0, 1, 2
//	Rows(Between(2000, 4000)) → {1}
func (ri *RangeIndex) Rows(sel Selection) *roaring.Bitmap {
	out := roaring.NewBitmap()

	var n *node
	if math.IsNaN(sel.From) {
		n = ri.head.tower[0]
	} else {
		n = ri.seek(sel.From)
	}
	for ; n != nil; n = n.tower[0] {
		if !math.IsNaN(sel.To) && n.key.Value > sel.To {
			break
		}
		out.Add(uint32(n.key.Row))
	}
	return out
}

// Entries returns every entry in ascending order.
func (ri *RangeIndex) Entries() []Entry {
	out := make([]Entry, 0, ri.length)
	for n := ri.head.tower[0]; n != nil; n = n.tower[0] {
		out = append(out, n.key)
	}
	return out
}

// randomHeight flips coins: height h has probability 1/2^h.
func (ri *RangeIndex) randomHeight() int {
	height := 1
	for ri.rng.Float64() < 0.5 && height < MaxHeight {
		height++
	}
	return height
}
