package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/pflag"

	"github.com/wizenheimer/listings"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		printUsage(os.Stderr)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var err error
	command, args := os.Args[1], os.Args[2:]
	switch command {
	case "search":
		err = runSearch(ctx, args, os.Stdout)
	case "suggest":
		err = runSuggest(ctx, args, os.Stdout)
	case "facets":
		err = runFacets(ctx, args, os.Stdout)
	case "show":
		err = runShow(ctx, args, os.Stdout)
	case "brochure":
		err = runBrochure(ctx, args, os.Stdout)
	case "watch":
		err = runWatch(ctx, args, os.Stdout)
	case "version":
		fmt.Printf("listings %s\n", version)
	case "help", "-h", "--help":
		printUsage(os.Stdout)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", command)
		printUsage(os.Stderr)
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: listings <command> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  search     Filter listings and print one page")
	fmt.Fprintln(w, "  suggest    Print location suggestions for a term")
	fmt.Fprintln(w, "  facets     Print the options of every facet")
	fmt.Fprintln(w, "  show       Print one listing")
	fmt.Fprintln(w, "  brochure   Print resale brochure figures for a listing")
	fmt.Fprintln(w, "  watch      Reload listing files whenever they change")
	fmt.Fprintln(w, "  version    Print version information")
	fmt.Fprintln(w, "  help       Show this help message")
}

// setup parses fs, configures logging and returns a session over the configured source.
func setup(fs *pflag.FlagSet, args []string) (*listings.Browser, error) {
	browser, _, err := setupWithConfig(fs, args)
	return browser, err
}

func setupWithConfig(fs *pflag.FlagSet, args []string) (*listings.Browser, *Config, error) {
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	cfg, err := loadConfig(fs)
	if err != nil {
		return nil, nil, err
	}
	slog.SetDefault(newLogger(cfg.Log, os.Stderr))

	source, err := newSource(cfg.Source)
	if err != nil {
		return nil, nil, err
	}
	paginator, err := listings.NewPaginator(cfg.PerPage)
	if err != nil {
		return nil, nil, err
	}

	browser := listings.NewBrowser(source, listings.NewEngine(listings.DefaultEngineConfig()), paginator)
	return browser, cfg, nil
}

// ═══════════════════════════════════════════════════════════════════════════════
// search
// ═══════════════════════════════════════════════════════════════════════════════

func runSearch(ctx context.Context, args []string, out io.Writer) error {
	fs := pflag.NewFlagSet("search", pflag.ContinueOnError)
	commonFlags(fs)
	term := fs.String("term", "", "location term")
	facets := fs.StringArray("facet", nil, "facet selection as name=value (repeatable)")
	priceMin := fs.Float64("price-min", 0, "lowest price")
	priceMax := fs.Float64("price-max", 0, "highest price")
	areaMin := fs.Float64("area-min", 0, "smallest floor area")
	areaMax := fs.Float64("area-max", 0, "largest floor area")
	page := fs.Int("page", 1, "page to print")

	browser, err := setup(fs, args)
	if err != nil {
		return err
	}
	if err := browser.Load(ctx); err != nil {
		return err
	}

	engine := browser.Engine()
	engine.SetTerm(*term)
	for _, kv := range *facets {
		name, value, ok := strings.Cut(kv, "=")
		if !ok {
			return fmt.Errorf("facet %q: want name=value", kv)
		}
		engine.SetFacet(listings.Facet(name), value)
	}
	applyBound(fs, "price-min", *priceMin, engine.PriceTracker().SetFrom)
	applyBound(fs, "price-max", *priceMax, engine.PriceTracker().SetTo)
	applyBound(fs, "area-min", *areaMin, engine.AreaTracker().SetFrom)
	applyBound(fs, "area-max", *areaMax, engine.AreaTracker().SetTo)

	if err := browser.Search(); err != nil {
		return err
	}
	browser.Paginator().GoToPage(*page)

	printListings(out, browser.Page())
	printPager(out, browser.Paginator())
	return nil
}

func applyBound(fs *pflag.FlagSet, name string, v float64, set func(float64)) {
	if fs.Changed(name) {
		set(v)
	}
}

func printListings(out io.Writer, props []listings.Property) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tPRICE\tSIZE\tBEDS\tTYPE\tLOCATION")
	for _, p := range props {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			p.ID, p.Title, p.Price, p.Size,
			bedrooms(p),
			p.UnitType, firstNonEmpty(p.LocationPf, p.LocationBayut))
	}
	tw.Flush()
}

func printPager(out io.Writer, pg *listings.Paginator) {
	items := pg.Window()
	controls := make([]string, len(items))
	for i, it := range items {
		if !it.Ellipsis && it.Page == pg.CurrentPage() {
			controls[i] = "[" + it.String() + "]"
		} else {
			controls[i] = it.String()
		}
	}
	fmt.Fprintf(out, "\nPage %d of %d  %s\n", pg.CurrentPage(), pg.TotalPages(), strings.Join(controls, " "))
}

// ═══════════════════════════════════════════════════════════════════════════════
// suggest / facets
// ═══════════════════════════════════════════════════════════════════════════════

func runSuggest(ctx context.Context, args []string, out io.Writer) error {
	fs := pflag.NewFlagSet("suggest", pflag.ContinueOnError)
	commonFlags(fs)

	browser, err := setup(fs, args)
	if err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: listings suggest <term>")
	}
	if err := browser.Load(ctx); err != nil {
		return err
	}

	suggestions := browser.Autocomplete(fs.Arg(0))
	for _, s := range suggestions {
		fmt.Fprintln(out, s)
	}
	slog.Debug("suggest", slog.Int("matches", len(browser.Engine().Visible())))
	return nil
}

func runFacets(ctx context.Context, args []string, out io.Writer) error {
	fs := pflag.NewFlagSet("facets", pflag.ContinueOnError)
	commonFlags(fs)

	browser, err := setup(fs, args)
	if err != nil {
		return err
	}
	if err := browser.Load(ctx); err != nil {
		return err
	}

	engine := browser.Engine()
	d := engine.Derived()
	fmt.Fprintf(out, "price: %v .. %v\n", d.Price.Min, d.Price.Max)
	fmt.Fprintf(out, "area:  %v .. %v\n", d.Area.Min, d.Area.Max)
	for _, f := range listings.AllFacets {
		opts := engine.Options(f)
		labels := make([]string, len(opts))
		for i, o := range opts {
			labels[i] = f.Label(o)
		}
		fmt.Fprintf(out, "%s: %s\n", f, strings.Join(labels, ", "))
	}
	return nil
}

// ═══════════════════════════════════════════════════════════════════════════════
// show / brochure
// ═══════════════════════════════════════════════════════════════════════════════

func runShow(ctx context.Context, args []string, out io.Writer) error {
	fs := pflag.NewFlagSet("show", pflag.ContinueOnError)
	commonFlags(fs)

	browser, err := setup(fs, args)
	if err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: listings show <id>")
	}

	p, err := browser.Detail(ctx, fs.Arg(0))
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "%s (%s)\n", p.Title, p.Reference)
	fmt.Fprintf(out, "  Price:      %s\n", listings.FormatAED(listings.ParseAmount(string(p.Price))))
	fmt.Fprintf(out, "  Size:       %s sqft\n", p.Size)
	fmt.Fprintf(out, "  Bedrooms:   %s\n", bedrooms(p))
	fmt.Fprintf(out, "  Bathrooms:  %s\n", p.Bathrooms)
	fmt.Fprintf(out, "  Type:       %s\n", listings.TitleCase(p.UnitType))
	fmt.Fprintf(out, "  Location:   %s\n", firstNonEmpty(p.LocationPf, p.LocationBayut))
	fmt.Fprintf(out, "  Offering:   %s\n", strings.ToUpper(firstNonEmpty(p.OfferingType, "N/A")))
	fmt.Fprintf(out, "  Owner:      %s\n", p.OwnerName)
	fmt.Fprintf(out, "  Listed:     %s\n", listings.ListedSince(p.CreatedAt, time.Now()))
	return nil
}

func runBrochure(ctx context.Context, args []string, out io.Writer) error {
	fs := pflag.NewFlagSet("brochure", pflag.ContinueOnError)
	commonFlags(fs)
	original := fs.String("original", "", "original (developer) price")
	selling := fs.String("selling", "", "selling price")
	paid := fs.String("paid", "", "percent of the original already paid")
	trustee := fs.String("trustee", "", "trustee fee")
	ready := fs.Bool("ready", false, "unit is ready (no premium)")

	browser, err := setup(fs, args)
	if err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: listings brochure <id>")
	}

	p, err := browser.Detail(ctx, fs.Arg(0))
	if err != nil {
		return err
	}

	in := listings.NewBrochureInput(p)
	in.OriginalPrice = *original
	in.SellingPrice = *selling
	in.AlreadyPaid = *paid
	in.TrusteeFee = *trustee
	if *ready {
		in.PaymentOption = listings.PaymentReady
	}
	printCosts(out, in, listings.ComputeCosts(in))
	return nil
}

func printCosts(out io.Writer, in listings.BrochureInput, c listings.Costs) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Community\t%s\n", in.CommunityName)
	fmt.Fprintf(tw, "Unit Type\t%s\n", in.UnitType)
	fmt.Fprintf(tw, "Completion\t%s\n", in.CompletionDate)
	fmt.Fprintf(tw, "Original Price\t%s\n", listings.FormatAED(c.OriginalPrice))
	fmt.Fprintf(tw, "Selling Price\t%s\n", listings.FormatAED(c.SellingPrice))
	if c.IncludePremium {
		fmt.Fprintf(tw, "Premium\t%s\n", listings.FormatAED(c.Premium))
	}
	fmt.Fprintf(tw, "DLD Fee (4%%)\t%s\n", listings.FormatAED(c.DLDFee))
	fmt.Fprintf(tw, "Commission (2.1%%)\t%s\n", listings.FormatAED(c.Commission))
	fmt.Fprintf(tw, "Conveyancing Fee\t%s\n", listings.FormatAED(c.Conveyancing))
	fmt.Fprintf(tw, "Trustee Fee\t%s\n", listings.FormatAED(c.TrusteeFee))
	fmt.Fprintf(tw, "Total Extra\t%s\n", listings.FormatAED(c.TotalExtra))
	fmt.Fprintln(tw)
	for _, row := range c.Plan {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", row.DueDate, row.Percentage, listings.FormatAED(row.Amount))
	}
	fmt.Fprintf(tw, "Grand Total\t100%%\t%s\n", listings.FormatAED(c.GrandTotal))
	tw.Flush()
}

// ═══════════════════════════════════════════════════════════════════════════════
// watch
// ═══════════════════════════════════════════════════════════════════════════════

func runWatch(ctx context.Context, args []string, out io.Writer) error {
	fs := pflag.NewFlagSet("watch", pflag.ContinueOnError)
	commonFlags(fs)
	debounce := fs.Duration("debounce", listings.DefaultWatchOptions().Debounce, "quiet period before reloading")

	browser, cfg, err := setupWithConfig(fs, args)
	if err != nil {
		return err
	}
	if cfg.Source.File == "" {
		return errors.New("watch needs a file source (--file)")
	}
	if err := browser.Load(ctx); err != nil {
		return err
	}
	fmt.Fprintf(out, "loaded %d listings\n", len(browser.Engine().Visible()))

	reload := func() {
		if err := browser.Refresh(ctx); err != nil {
			fmt.Fprintf(out, "reload failed: %v\n", err)
			return
		}
		fmt.Fprintf(out, "reloaded %d listings\n", len(browser.Engine().Visible()))
	}
	watcher, err := listings.NewFileWatcher(listings.NewFileSource(cfg.Source.File), listings.WatchOptions{Debounce: *debounce}, reload)
	if err != nil {
		return err
	}

	if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func bedrooms(p listings.Property) string {
	if !p.Bedrooms.Valid {
		return "-"
	}
	return listings.FacetBedrooms.Label(p.Bedrooms.String())
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
