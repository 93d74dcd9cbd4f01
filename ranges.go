package listings

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// ═══════════════════════════════════════════════════════════════════════════════
// NUMERIC RANGES: Price and Floor Area
// ═══════════════════════════════════════════════════════════════════════════════
// Two numeric fields can be range-filtered. The listing feed stores both as
// text, and not always cleanly:
//
//	price: "1,250,000"   → 1250000  (thousands separators stripped)
//	size:  "1200 sqft"   → 1200     (leading number wins)
//	price: "on request"  → NaN      (absent)
//
// NaN is this package's "absent" marker for numbers. It drops out of
// min/max, and it fails every comparison, which is exactly what the filter
// needs: an unparseable price passes when no bound is set and fails as soon
// as one is.
// ═══════════════════════════════════════════════════════════════════════════════

// Field selects which numeric field of a Property a range applies to.
type Field int

const (
	PriceField Field = iota
	AreaField
)

// String returns the field name.
func (f Field) String() string {
	switch f {
	case PriceField:
		return "price"
	case AreaField:
		return "area"
	default:
		return "unknown"
	}
}

// Value extracts the field from p as a float, NaN when absent or malformed.
func (f Field) Value(p Property) float64 {
	switch f {
	case PriceField:
		return ParseAmount(string(p.Price))
	case AreaField:
		return ParseArea(string(p.Size))
	default:
		return math.NaN()
	}
}

// ParseAmount parses a price, ignoring thousands-separator commas.
//
// Examples:
//
//	ParseAmount("1,000")      → 1000
//	ParseAmount("AED 1,000")  → NaN
func ParseAmount(s string) float64 {
	return parseLeadingFloat(strings.ReplaceAll(s, ",", ""))
}

// ParseArea parses a floor area. Commas are NOT stripped, so "1,200" reads
// as 1, matching how the feed has always been interpreted.
func ParseArea(s string) float64 {
	return parseLeadingFloat(s)
}

// parseLeadingFloat reads the longest decimal number at the start of s
// (after leading whitespace) and ignores the rest, like a lenient scanner:
//
//	"  42.5 sqft" → 42.5
//	"-3e2x"       → -300
//	"abc"         → NaN
func parseLeadingFloat(s string) float64 {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	if strings.HasPrefix(s, "Infinity") || strings.HasPrefix(s, "+Infinity") {
		return math.Inf(1)
	}
	if strings.HasPrefix(s, "-Infinity") {
		return math.Inf(-1)
	}

	end := scanNumber(s)
	if end == 0 {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

// scanNumber returns the length of the numeric prefix of s, 0 if none.
func scanNumber(s string) int {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	digits := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		j := i + 1
		frac := 0
		for j < len(s) && isDigit(s[j]) {
			j++
			frac++
		}
		if digits+frac > 0 {
			i = j
			digits += frac
		}
	}
	if digits == 0 {
		return 0
	}
	// Exponent only counts when it has digits: "5e" is just 5.
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		k := j
		for k < len(s) && isDigit(s[k]) {
			k++
		}
		if k > j {
			i = k
		}
	}
	return i
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// Bounds is the (Min, Max) extent of a numeric field over a collection.
type Bounds struct {
	Min float64
	Max float64
}

// ComputeBounds returns the min and max of field over props, skipping absent
// values. With no numeric value at all the result is (0, 0).
func ComputeBounds(props []Property, field Field) Bounds {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, p := range props {
		v := field.Value(p)
		if math.IsNaN(v) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if lo > hi {
		return Bounds{}
	}
	return Bounds{Min: lo, Max: hi}
}

// Contains reports whether v lies within [Min, Max].
func (b Bounds) Contains(v float64) bool {
	return v >= b.Min && v <= b.Max
}

// ═══════════════════════════════════════════════════════════════════════════════
// SELECTION: The User's Sub-Range
// ═══════════════════════════════════════════════════════════════════════════════

// Selection is a (From, To) pair chosen by the user. Either side may be
// unset (NaN), meaning "no bound on this side".
type Selection struct {
	From float64
	To   float64
}

// Unbounded returns a selection with neither side set.
func Unbounded() Selection {
	return Selection{From: math.NaN(), To: math.NaN()}
}

// Between returns a selection with both sides set.
func Between(from, to float64) Selection {
	return Selection{From: from, To: to}
}

// Full returns the selection covering b exactly.
func (b Bounds) Full() Selection {
	return Selection{From: b.Min, To: b.Max}
}

// Admits applies the range predicate to v: each side passes when unset or
// satisfied. A NaN v therefore passes only a fully unbounded selection.
func (s Selection) Admits(v float64) bool {
	lower := math.IsNaN(s.From) || v >= s.From
	upper := math.IsNaN(s.To) || v <= s.To
	return lower && upper
}

// IsUnbounded reports whether neither side is set.
func (s Selection) IsUnbounded() bool {
	return math.IsNaN(s.From) && math.IsNaN(s.To)
}

// Invalid reports From > To. It is advisory: filtering still runs with
// these values and simply matches nothing.
func (s Selection) Invalid() bool {
	return s.From > s.To
}

// ═══════════════════════════════════════════════════════════════════════════════
// RANGE TRACKER: Stepper State for One Field
// ═══════════════════════════════════════════════════════════════════════════════
// The tracker holds the full bounds of a field plus the current selection and
// implements the +/- stepper buttons:
//
//	Full = (100, 500), Step = 50, From = 450
//	IncrementFrom() → 500  (still within Full)
//	IncrementFrom() → 500  (550 would leave Full: the move is rejected)
//
// Bounds are kept inside Full individually. From and To are NOT kept in
// order relative to each other; Invalid() reports when they cross.
// ═══════════════════════════════════════════════════════════════════════════════

// RangeTracker tracks the selected sub-range of one numeric field.
type RangeTracker struct {
	Field Field
	Full  Bounds
	Step  float64
	sel   Selection
}

// NewRangeTracker creates a tracker whose selection starts at the full range.
// A non-positive step defaults to 1.
func NewRangeTracker(field Field, full Bounds, step float64) *RangeTracker {
	if step <= 0 {
		step = 1
	}
	return &RangeTracker{
		Field: field,
		Full:  full,
		Step:  step,
		sel:   full.Full(),
	}
}

// Selection returns the current (From, To).
func (rt *RangeTracker) Selection() Selection { return rt.sel }

// From returns the lower bound, NaN when unset.
func (rt *RangeTracker) From() float64 { return rt.sel.From }

// To returns the upper bound, NaN when unset.
func (rt *RangeTracker) To() float64 { return rt.sel.To }

// SetFrom sets the lower bound freely (typed input is not clamped).
func (rt *RangeTracker) SetFrom(v float64) { rt.sel.From = v }

// SetTo sets the upper bound freely.
func (rt *RangeTracker) SetTo(v float64) { rt.sel.To = v }

// ClearFrom unsets the lower bound.
func (rt *RangeTracker) ClearFrom() { rt.sel.From = math.NaN() }

// ClearTo unsets the upper bound.
func (rt *RangeTracker) ClearTo() { rt.sel.To = math.NaN() }

// IncrementFrom moves From up by one step if the result stays within Full.
func (rt *RangeTracker) IncrementFrom() bool { return rt.step(&rt.sel.From, rt.Step) }

// DecrementFrom moves From down by one step if the result stays within Full.
func (rt *RangeTracker) DecrementFrom() bool { return rt.step(&rt.sel.From, -rt.Step) }

// IncrementTo moves To up by one step if the result stays within Full.
func (rt *RangeTracker) IncrementTo() bool { return rt.step(&rt.sel.To, rt.Step) }

// DecrementTo moves To down by one step if the result stays within Full.
func (rt *RangeTracker) DecrementTo() bool { return rt.step(&rt.sel.To, -rt.Step) }

// step applies delta to *bound and reports whether it moved. Unset bounds
// do not move.
func (rt *RangeTracker) step(bound *float64, delta float64) bool {
	if math.IsNaN(*bound) {
		return false
	}
	next := *bound + delta
	if !rt.Full.Contains(next) {
		return false
	}
	*bound = next
	return true
}

// Invalid reports whether From > To.
func (rt *RangeTracker) Invalid() bool { return rt.sel.Invalid() }

// Reset restores the selection to the full range.
func (rt *RangeTracker) Reset() { rt.sel = rt.Full.Full() }

// Rebase replaces the full bounds (after a dataset change) and resets.
func (rt *RangeTracker) Rebase(full Bounds) {
	rt.Full = full
	rt.Reset()
}
