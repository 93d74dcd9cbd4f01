package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wizenheimer/listings"
)

const inventory = `{"data": [
	{"id": 1, "reference": "R-1", "title": "Marina flat", "price": "1,200,000", "size": "850", "bedrooms": 0, "unitType": "APARTMENT", "locationPf": "Dubai Marina"},
	{"id": 2, "reference": "R-2", "title": "Palm villa", "price": "9,500,000", "size": "6000", "bedrooms": 5, "unitType": "Villa", "locationPf": "Palm Jumeirah", "community": "Palm", "completionDate": "Q1 2027"},
	{"id": 3, "reference": "R-3", "title": "Bay office", "price": "2,000,000", "size": "1200", "unitType": "Office", "locationBayut": "Ubora Tower - Business Bay"}
]}`

// inventoryFile writes the fixture and returns the --file argument pair.
func inventoryFile(t *testing.T) []string {
	t.Helper()
	chdir(t, t.TempDir())
	if err := os.WriteFile("inventory.json", []byte(inventory), 0o644); err != nil {
		t.Fatal(err)
	}
	path, _ := filepath.Abs("inventory.json")
	return []string{"--file", path, "--log-level", "error"}
}

// ═══════════════════════════════════════════════════════════════════════════════
// COMMAND TESTS
// ═══════════════════════════════════════════════════════════════════════════════

func TestRunSearch(t *testing.T) {
	args := append(inventoryFile(t), "--term", "dubai", "--facet", "unitType=apartment")

	var out bytes.Buffer
	if err := runSearch(context.Background(), args, &out); err != nil {
		t.Fatalf("runSearch: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "Marina flat") || strings.Contains(got, "Palm villa") {
		t.Errorf("Search output:\n%s", got)
	}
	if !strings.Contains(got, "Studio") {
		t.Errorf("Zero bedrooms should print as Studio:\n%s", got)
	}
	if !strings.Contains(got, "Page 1 of 1  [1]") {
		t.Errorf("Pager line missing:\n%s", got)
	}
}

func TestRunSearch_PriceBounds(t *testing.T) {
	args := append(inventoryFile(t), "--price-max", "5000000")

	var out bytes.Buffer
	if err := runSearch(context.Background(), args, &out); err != nil {
		t.Fatalf("runSearch: %v", err)
	}
	if strings.Contains(out.String(), "Palm villa") {
		t.Errorf("Price bound ignored:\n%s", out.String())
	}
}

func TestRunSearch_BadFacet(t *testing.T) {
	args := append(inventoryFile(t), "--facet", "unitType")
	if err := runSearch(context.Background(), args, &bytes.Buffer{}); err == nil {
		t.Error("Expected an error for a facet without =")
	}
}

func TestRunSuggest(t *testing.T) {
	args := append(inventoryFile(t), "bay")

	var out bytes.Buffer
	if err := runSuggest(context.Background(), args, &out); err != nil {
		t.Fatalf("runSuggest: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) == 0 || lines[0] != "Bay" {
		t.Errorf("Suggestions = %q, want Bay first", lines)
	}
}

func TestRunShowAndBrochure(t *testing.T) {
	base := inventoryFile(t)

	var out bytes.Buffer
	if err := runShow(context.Background(), append(base, "2"), &out); err != nil {
		t.Fatalf("runShow: %v", err)
	}
	if !strings.Contains(out.String(), "AED 9,500,000") {
		t.Errorf("Show output:\n%s", out.String())
	}

	out.Reset()
	args := append(base, "--original", "8000000", "--selling", "9500000", "--paid", "40", "2")
	if err := runBrochure(context.Background(), args, &out); err != nil {
		t.Fatalf("runBrochure: %v", err)
	}
	got := out.String()
	for _, want := range []string{"Villa", "Q1 2027", "AED 1,500,000", "60% + Extras", listings.TransferDateLabel} {
		if !strings.Contains(got, want) {
			t.Errorf("Brochure output missing %q:\n%s", want, got)
		}
	}

	if err := runShow(context.Background(), append(base, "404"), &bytes.Buffer{}); err == nil {
		t.Error("Expected an error for an unknown id")
	}
}

func TestPrintPager(t *testing.T) {
	pg, err := listings.NewPaginator(10)
	if err != nil {
		t.Fatal(err)
	}
	pg.SetTotal(120)
	pg.GoToPage(8)

	var out bytes.Buffer
	printPager(&out, pg)
	if want := "Page 8 of 12  1 ... 6 7 [8] 9 10 ... 12"; !strings.Contains(out.String(), want) {
		t.Errorf("printPager = %q, want %q", out.String(), want)
	}
}

func TestRunWatch_NeedsFileSource(t *testing.T) {
	chdir(t, t.TempDir())
	args := []string{"--list-url", "http://127.0.0.1:1/listings", "--log-level", "error"}
	if err := runWatch(context.Background(), args, &bytes.Buffer{}); err == nil {
		t.Error("Expected watch to refuse an HTTP source")
	}
}
