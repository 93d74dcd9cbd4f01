package listings

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// ═══════════════════════════════════════════════════════════════════════════════
// PROPERTY: A Listing Record
// ═══════════════════════════════════════════════════════════════════════════════
// A Property is what the inventory endpoint hands us. The engine never mutates
// one; it only filters and slices views over a []Property.
//
// The endpoint is loose about types: prices arrive as "1,250,000" or 1250000,
// ids as numbers or strings, bedroom counts as 3, "3" or null. Text and Count
// absorb that so the rest of the package deals in plain Go values.
// ═══════════════════════════════════════════════════════════════════════════════

// Property is a single listing.
type Property struct {
	ID             Text    `json:"id"`
	Reference      string  `json:"reference"`
	Title          string  `json:"title"`
	Price          Text    `json:"price"`
	Size           Text    `json:"size"`
	Bedrooms       Count   `json:"bedrooms"`
	Bathrooms      Count   `json:"bathrooms"`
	LocationPf     string  `json:"locationPf"`
	LocationBayut  string  `json:"locationBayut"`
	UnitType       string  `json:"unitType"`
	Status         string  `json:"status"`
	OfferingType   string  `json:"offeringType"`
	ProjectStatus  string  `json:"projectStatus"`
	OwnerName      string  `json:"ownerName"`
	OwnerPhone     string  `json:"ownerPhone"`
	OwnerURL       string  `json:"ownerUrl"`
	Community      string  `json:"community"`
	CompletionDate string  `json:"completionDate"`
	Images         []Image `json:"images"`
	CreatedAt      string  `json:"createdAt"`
	UpdatedAt      string  `json:"updatedAt"`
}

// Image is one gallery entry of a listing.
type Image struct {
	URL string `json:"url"`
}

// Locations returns both location descriptions in a fixed order.
func (p Property) Locations() [2]string {
	return [2]string{p.LocationPf, p.LocationBayut}
}

// Text is a string that also decodes from a JSON number or null.
type Text string

// UnmarshalJSON accepts "abc", 123.5 and null.
func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*t = Text(n.String())
	return nil
}

// String returns the raw text.
func (t Text) String() string { return string(t) }

// Count is an optional non-negative integer (bedrooms, bathrooms).
type Count struct {
	Value int
	Valid bool
}

// CountOf returns a present Count.
func CountOf(n int) Count { return Count{Value: n, Valid: true} }

// UnmarshalJSON accepts 3, 3.0, "3" and null. Anything else leaves the
// count absent instead of failing the whole document.
func (c *Count) UnmarshalJSON(data []byte) error {
	*c = Count{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	raw := string(data)
	if data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil
		}
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return nil
	}
	*c = CountOf(int(f))
	return nil
}

// MarshalJSON writes the count or null.
func (c Count) MarshalJSON() ([]byte, error) {
	if !c.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(c.Value)), nil
}

// String returns the decimal form, or "" when absent.
func (c Count) String() string {
	if !c.Valid {
		return ""
	}
	return strconv.Itoa(c.Value)
}
