package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"cashflow-forecast/internal/chart"
	"cashflow-forecast/internal/config"
	"cashflow-forecast/internal/currency"
	"cashflow-forecast/internal/data"
	"cashflow-forecast/internal/model"
	"cashflow-forecast/internal/projection"
	"cashflow-forecast/internal/service"
	"cashflow-forecast/internal/store"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "stats":
		cmdStats(os.Args[2:])
	case "project":
		cmdProject(os.Args[2:])
	case "compare":
		cmdCompare(os.Args[2:])
	case "chart":
		cmdChart(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Println("usage:")
	fmt.Println("  cli stats   --sales sales.json --purchases purchases.json [--country Peru]")
	fmt.Println("  cli project --sales sales.json --purchases purchases.json --country Peru [--weekly weekly.json] [--out results/plan.json] [--csv results/plan.csv]")
	fmt.Println("  cli compare --plan results/plan.json --sales sales.json --purchases purchases.json [--scenario base] [--csv results/compare.csv]")
	fmt.Println("  cli chart   --plan results/plan.json [--sales ... --purchases ... --compare] [--out results/chart.html]")
	fmt.Println("")
	fmt.Println("common flags:")
	fmt.Println("  --config examples/config.yaml   tuning (window, factors, rates); snapshot paths may come from here")
	fmt.Println("  --now 2025-06-16                 anchor date (default: today, UTC)")
}

// inputs are the flags every subcommand shares.
type inputs struct {
	sales, purchases, weekly *string
	cfgPath, now             *string
}

func addInputs(fs *flag.FlagSet) inputs {
	return inputs{
		sales:     fs.String("sales", "", "Sales snapshot JSON (inflows)"),
		purchases: fs.String("purchases", "", "Purchase-order snapshot JSON (outflows)"),
		weekly:    fs.String("weekly", "", "Optional weekly financial model JSON"),
		cfgPath:   fs.String("config", "", "Optional YAML config"),
		now:       fs.String("now", "", "Anchor date YYYY-MM-DD (default: today)"),
	}
}

func (in inputs) config() *config.Config {
	cfg := config.Default()
	if *in.cfgPath != "" {
		loaded, err := config.LoadUnchecked(*in.cfgPath)
		if err != nil {
			panic(err)
		}
		loaded.ApplyDefaults()
		cfg = loaded
	}
	if *in.sales != "" {
		cfg.Sources.JSON.SalesFile = *in.sales
	}
	if *in.purchases != "" {
		cfg.Sources.JSON.PurchasesFile = *in.purchases
	}
	if *in.weekly != "" {
		cfg.Sources.JSON.WeeklyFile = *in.weekly
	}
	cfg.Sources.Type = config.SourceJSON
	cfg.Store.Type = config.StoreMemory
	if err := cfg.Validate(); err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	return cfg
}

func (in inputs) clock() time.Time {
	if *in.now == "" {
		return time.Now().UTC()
	}
	t, ok := model.ParseDate(*in.now)
	if !ok {
		fmt.Printf("--now: cannot parse %q\n", *in.now)
		os.Exit(2)
	}
	return t
}

func (in inputs) planner() (*service.Planner, *config.Config) {
	cfg := in.config()
	src := &data.JSONSource{
		SalesPath:     cfg.Sources.JSON.SalesFile,
		PurchasesPath: cfg.Sources.JSON.PurchasesFile,
		WeeklyPath:    cfg.Sources.JSON.WeeklyFile,
	}
	p, err := service.New(cfg, src, src, store.NewMemoryStore())
	if err != nil {
		panic(err)
	}
	now := in.clock()
	p.Clock = func() time.Time { return now }
	return p, cfg
}

func mustCountry(s string) model.Country {
	c, ok := model.ParseCountry(s)
	if !ok {
		fmt.Printf("--country: unknown country %q (Peru, Colombia, Mexico, Global)\n", s)
		os.Exit(2)
	}
	return c
}

func cmdStats(args []string) {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	in := addInputs(fs)
	country := fs.String("country", "", "Country (omit to rank every country in USD)")
	_ = fs.Parse(args)

	p, cfg := in.planner()
	ctx := context.Background()

	if *country != "" {
		c := mustCountry(*country)
		s, err := p.Stats(ctx, c)
		if err != nil {
			panic(err)
		}
		fmt.Printf("%s, last %d days (%s)\n", c, cfg.WindowDays, currency.CodeFor(c))
		fmt.Printf("  inflows      %s (avg/day %s)\n", currency.Format(s.TotalInflows, c), currency.Format(s.AvgDailyInflows, c))
		fmt.Printf("  outflows     %s (avg/day %s)\n", currency.Format(s.TotalOutflows, c), currency.Format(s.AvgDailyOutflows, c))
		fmt.Printf("  net/day      %s\n", currency.Format(s.AvgDailyNet(), c))
		fmt.Printf("  trend        %.2f per day\n", s.Trend)
		fmt.Printf("  volatility   %.2f\n", s.Volatility)
		if s.UnresolvedCurrencies > 0 || s.SkippedRecords > 0 {
			fmt.Printf("  unresolved currencies=%d skipped records=%d\n", s.UnresolvedCurrencies, s.SkippedRecords)
		}
		return
	}

	ranked, err := p.StatsAll(ctx)
	if err != nil {
		panic(err)
	}
	fmt.Printf("%-4s %-10s %-14s %-14s %-14s\n", "rank", "country", "inflows$", "outflows$", "net/day$")
	for i, r := range ranked {
		fmt.Printf("%-4d %-10s %-14.2f %-14.2f %-14.2f\n",
			i+1, r.Country, r.Stats.TotalInflows, r.Stats.TotalOutflows, r.Stats.AvgDailyNet())
	}
}

func cmdProject(args []string) {
	fs := flag.NewFlagSet("project", flag.ExitOnError)
	in := addInputs(fs)
	country := fs.String("country", "", "Country to project (required)")
	outPath := fs.String("out", "results/plan.json", "Output plan JSON path")
	csvPath := fs.String("csv", "", "Optional CSV output path")
	_ = fs.Parse(args)

	if *country == "" {
		fmt.Println("--country is required")
		os.Exit(2)
	}
	c := mustCountry(*country)
	p, _ := in.planner()

	plan, err := p.Generate(context.Background(), c)
	if err != nil {
		panic(err)
	}
	if err := writeJSON(*outPath, plan); err != nil {
		panic(err)
	}
	if *csvPath != "" {
		if err := os.MkdirAll(filepath.Dir(*csvPath), 0o755); err != nil {
			panic(err)
		}
		if err := projection.WritePlanCSV(*csvPath, plan); err != nil {
			panic(err)
		}
		fmt.Printf("Wrote CSV to %s\n", *csvPath)
	}

	fmt.Printf("Wrote %s to %s (expires %s, confidence %.0f%%)\n",
		plan.ID, *outPath, plan.ExpiresAt.Format(model.DateLayout), plan.Metadata.Confidence*100)
	for _, name := range model.ScenarioNames() {
		weeks, _ := plan.Scenarios.Get(name)
		_, _, net := projection.Totals(weeks)
		fmt.Printf("  %-13s net %s\n", name, currency.Format(net, c))
	}
	for _, s := range plan.Metadata.Factors.Insights {
		fmt.Printf("  + %s\n", s)
	}
	for _, s := range plan.Metadata.Factors.Risks {
		fmt.Printf("  ! %s\n", s)
	}
}

func cmdCompare(args []string) {
	fs := flag.NewFlagSet("compare", flag.ExitOnError)
	in := addInputs(fs)
	planPath := fs.String("plan", "", "Plan JSON written by `cli project` (required)")
	scenarioName := fs.String("scenario", "base", "Scenario to compare: base, optimistic, conservative")
	csvPath := fs.String("csv", "", "Optional CSV output path")
	_ = fs.Parse(args)

	cmp := compare(in, *planPath, *scenarioName)
	c := cmp.Country

	fmt.Printf("%s %s vs actual\n", cmp.PlanID, cmp.Scenario)
	fmt.Printf("%-5s %-12s %-18s %-18s %-10s\n", "week", "start", "projected net", "actual net", "variance")
	for _, w := range cmp.Weeks {
		actual, variance := "-", "-"
		if w.ActualNet != nil {
			actual = currency.Format(*w.ActualNet, c)
		}
		if w.Variance != nil {
			variance = fmt.Sprintf("%.1f%%", *w.Variance)
		}
		fmt.Printf("%-5d %-12s %-18s %-18s %-10s\n",
			w.Week, w.StartDate.Format(model.DateLayout), currency.Format(w.NetCashFlow, c), actual, variance)
	}
	fmt.Printf("weeks with data=%d avg variance=%.1f%% accuracy=%.1f%%\n",
		cmp.Summary.WeeksWithData, cmp.Summary.AvgVariance, cmp.Summary.Accuracy)

	if *csvPath != "" {
		if err := os.MkdirAll(filepath.Dir(*csvPath), 0o755); err != nil {
			panic(err)
		}
		f, err := os.Create(*csvPath)
		if err != nil {
			panic(err)
		}
		defer f.Close()
		if err := projection.WriteComparisonCSVTo(f, cmp); err != nil {
			panic(err)
		}
		fmt.Printf("Wrote CSV to %s\n", *csvPath)
	}
}

func cmdChart(args []string) {
	fs := flag.NewFlagSet("chart", flag.ExitOnError)
	in := addInputs(fs)
	planPath := fs.String("plan", "", "Plan JSON written by `cli project` (required)")
	withActuals := fs.Bool("compare", false, "Chart the plan against actuals (needs --sales and --purchases)")
	scenarioName := fs.String("scenario", "base", "Scenario for --compare")
	outPath := fs.String("out", "results/chart.html", "Output HTML path")
	_ = fs.Parse(args)

	if err := os.MkdirAll(filepath.Dir(*outPath), 0o755); err != nil {
		panic(err)
	}
	f, err := os.Create(*outPath)
	if err != nil {
		panic(err)
	}
	defer f.Close()

	if *withActuals {
		err = chart.RenderComparison(f, compare(in, *planPath, *scenarioName))
	} else {
		err = chart.RenderPlan(f, readPlan(*planPath))
	}
	if err != nil {
		panic(err)
	}
	fmt.Printf("Chart written to %s\n", *outPath)
}

// compare scores a saved plan as-is. It does not regenerate expired plans.
func compare(in inputs, planPath, scenarioName string) *model.PlanVsRealComparison {
	plan := readPlan(planPath)
	name, ok := model.ParseScenario(scenarioName)
	if !ok {
		fmt.Printf("--scenario: unknown scenario %q\n", scenarioName)
		os.Exit(2)
	}
	cfg := in.config()
	src := &data.JSONSource{SalesPath: cfg.Sources.JSON.SalesFile, PurchasesPath: cfg.Sources.JSON.PurchasesFile}
	ctx := context.Background()
	sales, err := src.FetchSales(ctx)
	if err != nil {
		panic(err)
	}
	purchases, err := src.FetchPurchases(ctx)
	if err != nil {
		panic(err)
	}
	cmp, err := projection.Compare(plan, sales.Records, purchases.Records, projection.CompareOptions{
		Scenario: name,
		Now:      in.clock(),
		Rates:    cfg.Rates(),
	})
	if err != nil {
		panic(err)
	}
	return cmp
}

func readPlan(path string) *model.ProjectionPlan {
	if path == "" {
		fmt.Println("--plan is required")
		os.Exit(2)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}
	var plan model.ProjectionPlan
	if err := json.Unmarshal(raw, &plan); err != nil {
		panic(fmt.Errorf("parse plan %s: %w", path, err))
	}
	return &plan
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o644)
}
