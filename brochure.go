package listings

import (
	"fmt"
	"math"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Fixed resale charges, in AED or as a fraction of the selling price.
const (
	DLDFeeRate      = 0.04
	CommissionRate  = 0.021
	ConveyancingFee = 3200.0

	PaymentReady      = "Ready"
	PaymentPlanOption = "Payment Plan"
	TransferDateLabel = "Transfer Date"
)

// PaymentRow is one line of a payment plan.
type PaymentRow struct {
	DueDate    string
	Percentage string
	Amount     float64
}

// BrochureInput is the resale form. Amounts are kept as typed; anything
// that does not parse counts as 0.
type BrochureInput struct {
	CommunityName  string
	CompletionDate string
	UnitType       string
	PaymentOption  string
	AlreadyPaid    string // percent of the original price
	OriginalPrice  string
	SellingPrice   string
	TrusteeFee     string
	Plan           []PaymentRow // rows after the transfer row
}

// NewBrochureInput pre-fills the form from a listing.
func NewBrochureInput(p Property) BrochureInput {
	return BrochureInput{
		CommunityName:  p.Community,
		CompletionDate: p.CompletionDate,
		UnitType:       TitleCase(p.UnitType),
		PaymentOption:  PaymentPlanOption,
	}
}

// Costs are the figures printed on a resale brochure.
type Costs struct {
	OriginalPrice  float64
	SellingPrice   float64
	AlreadyPaid    float64
	IncludePremium bool
	Premium        float64
	DLDFee         float64
	Commission     float64
	Conveyancing   float64
	TrusteeFee     float64
	TotalExtra     float64
	GrandTotal     float64
	Plan           []PaymentRow // transfer row first
}

// ComputeCosts derives every brochure figure from the form.
//
// The premium (selling minus original) is only charged off-plan; a "Ready"
// unit carries none. The transfer row collects the share already paid to
// the developer plus every extra:
//
//	amount     = alreadyPaid% × original + totalExtra
//	percentage = "(100 − alreadyPaid)% + Extras"
func ComputeCosts(in BrochureInput) Costs {
	c := Costs{
		OriginalPrice:  formAmount(in.OriginalPrice),
		SellingPrice:   formAmount(in.SellingPrice),
		AlreadyPaid:    formAmount(in.AlreadyPaid),
		TrusteeFee:     formAmount(in.TrusteeFee),
		IncludePremium: in.PaymentOption != PaymentReady,
		Conveyancing:   ConveyancingFee,
	}
	if c.IncludePremium {
		c.Premium = c.SellingPrice - c.OriginalPrice
	}
	c.DLDFee = c.SellingPrice * DLDFeeRate
	c.Commission = c.SellingPrice * CommissionRate
	c.TotalExtra = c.Premium + c.DLDFee + c.Commission + c.Conveyancing + c.TrusteeFee
	c.GrandTotal = c.SellingPrice + c.TotalExtra

	transfer := PaymentRow{
		DueDate:    TransferDateLabel,
		Percentage: fmt.Sprintf("%s%% + Extras", formatPercent(100-c.AlreadyPaid)),
		Amount:     c.AlreadyPaid/100*c.OriginalPrice + c.TotalExtra,
	}
	c.Plan = append([]PaymentRow{transfer}, in.Plan...)
	return c
}

// formAmount parses a form field the lenient way; junk is 0.
func formAmount(s string) float64 {
	v := parseLeadingFloat(strings.TrimSpace(s))
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func formatPercent(v float64) string {
	return fmt.Sprint(v)
}

// FormatAED renders an amount with English digit grouping.
//
//	FormatAED(1234567.5) → "AED 1,234,567.5"
func FormatAED(v float64) string {
	p := message.NewPrinter(language.English)
	return p.Sprintf("AED %v", number.Decimal(v, number.MaxFractionDigits(3)))
}

// TitleCase lowercases s and capitalizes each word: "POOL VILLA" → "Pool Villa".
func TitleCase(s string) string {
	return cases.Title(language.English).String(strings.ToLower(s))
}

// ListedSince describes how long ago a listing was created: "Today",
// "Yesterday" or "N days ago". Blank or unparseable timestamps give "N/A".
func ListedSince(createdAt string, now time.Time) string {
	t, ok := parseTimestamp(createdAt)
	if !ok {
		return "N/A"
	}
	days := int(math.Floor(now.Sub(t).Hours() / 24))
	switch days {
	case 0:
		return "Today"
	case 1:
		return "Yesterday"
	default:
		return fmt.Sprintf("%d days ago", days)
	}
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
