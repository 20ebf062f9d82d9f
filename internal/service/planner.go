package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"cashflow-forecast/internal/analysis"
	"cashflow-forecast/internal/config"
	"cashflow-forecast/internal/currency"
	"cashflow-forecast/internal/data"
	"cashflow-forecast/internal/model"
	"cashflow-forecast/internal/projection"
	"cashflow-forecast/internal/scenario"
	"cashflow-forecast/internal/seasonal"
	"cashflow-forecast/internal/store"

	"golang.org/x/sync/errgroup"
)

// ErrUnknownCountry is returned for a country outside model.Countries and Global.
var ErrUnknownCountry = errors.New("unknown country")

// Options are the tunables the planner passes to the computations.
type Options struct {
	WindowDays int
	Seasonal   seasonal.Options
	// Cities maps weekly-model cities to countries. Nil uses seasonal.DefaultCities.
	Cities map[string]model.Country
	Rates  *currency.Table
}

// Planner ties the data sources, the computations and the plan store
// together. Weekly is optional.
type Planner struct {
	Records  data.RecordSource
	Weekly   data.WeeklySource
	Store    store.PlanStore
	Engine   *projection.Engine
	Strategy scenario.Strategy
	Options  Options
	Clock    func() time.Time
}

// New builds a planner from configuration.
func New(cfg *config.Config, records data.RecordSource, weekly data.WeeklySource, plans store.PlanStore) (*Planner, error) {
	if records == nil {
		return nil, errors.New("record source is required")
	}
	if plans == nil {
		return nil, errors.New("plan store is required")
	}
	strat, err := cfg.Strategy()
	if err != nil {
		return nil, err
	}
	engine := projection.New()
	engine.Weeks = cfg.ProjectionWeeks
	engine.TTL = cfg.PlanTTL()

	return &Planner{
		Records:  records,
		Weekly:   weekly,
		Store:    plans,
		Engine:   engine,
		Strategy: strat,
		Options: Options{
			WindowDays: cfg.WindowDays,
			Seasonal:   cfg.SeasonalOptions(),
			Cities:     cfg.CityMap(),
			Rates:      cfg.Rates(),
		},
		Clock: time.Now,
	}, nil
}

func (p *Planner) now() time.Time {
	if p.Clock == nil {
		return time.Now().UTC()
	}
	return p.Clock().UTC()
}

func (p *Planner) rates() *currency.Table {
	if p.Options.Rates == nil {
		return currency.Default()
	}
	return p.Options.Rates
}

func checkCountry(c model.Country) error {
	if parsed, ok := model.ParseCountry(string(c)); !ok || parsed != c {
		return fmt.Errorf("%w: %q", ErrUnknownCountry, c)
	}
	return nil
}

// fetchRecords reads sales and purchases concurrently.
func (p *Planner) fetchRecords(ctx context.Context) (sales, purchases data.RecordSet, err error) {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		sales, err = p.Records.FetchSales(gctx)
		if err != nil {
			return fmt.Errorf("fetch sales: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		purchases, err = p.Records.FetchPurchases(gctx)
		if err != nil {
			return fmt.Errorf("fetch purchases: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return data.RecordSet{}, data.RecordSet{}, err
	}
	return sales, purchases, nil
}

// fetchWeekly never fails: a missing or broken weekly model means no
// seasonal refinement.
func (p *Planner) fetchWeekly(ctx context.Context) *model.WeeklyFinancialData {
	if p.Weekly == nil {
		return nil
	}
	d, err := p.Weekly.FetchWeekly(ctx)
	if err != nil {
		log.Printf("[Planner] weekly model unavailable, continuing without it: %v", err)
		return nil
	}
	return d
}

func forCountry(records []model.TransactionRecord, c model.Country) []model.TransactionRecord {
	if c == model.CountryGlobal {
		return records
	}
	out := make([]model.TransactionRecord, 0, len(records))
	for _, r := range records {
		if c.Matches(r.Country) {
			out = append(out, r)
		}
	}
	return out
}

func (p *Planner) statsFor(c model.Country, sales, purchases []model.TransactionRecord, now time.Time, usd bool) model.HistoricalStats {
	return analysis.ComputeStats(forCountry(sales, c), forCountry(purchases, c), analysis.StatsOptions{
		WindowDays:        p.Options.WindowDays,
		Now:               now,
		NormalizeCurrency: usd || c == model.CountryGlobal,
		Rates:             p.rates(),
	})
}

// Stats computes the window stats for one country in its local currency.
// Global is normalized to USD.
func (p *Planner) Stats(ctx context.Context, country model.Country) (model.HistoricalStats, error) {
	if err := checkCountry(country); err != nil {
		return model.HistoricalStats{}, err
	}
	sales, purchases, err := p.fetchRecords(ctx)
	if err != nil {
		return model.HistoricalStats{}, err
	}
	return p.statsFor(country, sales.Records, purchases.Records, p.now(), false), nil
}

// StatsAll computes every country's stats in USD so they can be ranked
// against each other.
func (p *Planner) StatsAll(ctx context.Context) ([]analysis.CountryRanking, error) {
	sales, purchases, err := p.fetchRecords(ctx)
	if err != nil {
		return nil, err
	}
	now := p.now()
	countries := model.Countries()
	results := make([]model.HistoricalStats, len(countries))

	g, _ := errgroup.WithContext(ctx)
	for i, c := range countries {
		i, c := i, c
		g.Go(func() error {
			results[i] = p.statsFor(c, sales.Records, purchases.Records, now, true)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	byCountry := make(map[model.Country]model.HistoricalStats, len(countries))
	for i, c := range countries {
		byCountry[c] = results[i]
	}
	return analysis.RankCountries(byCountry), nil
}

// Generate builds a fresh plan for country and stores it.
func (p *Planner) Generate(ctx context.Context, country model.Country) (*model.ProjectionPlan, error) {
	if err := checkCountry(country); err != nil {
		return nil, err
	}
	var (
		sales, purchases data.RecordSet
		weekly           *model.WeeklyFinancialData
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		sales, purchases, err = p.fetchRecords(gctx)
		return err
	})
	g.Go(func() error {
		weekly = p.fetchWeekly(gctx)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	now := p.now()
	stats := p.statsFor(country, sales.Records, purchases.Records, now, false)

	in := projection.Input{
		Country:  country,
		Now:      now,
		Stats:    stats,
		Strategy: p.Strategy,
	}
	if metrics := seasonal.CountryMetrics(weekly, country, p.Options.Cities, p.rates()); metrics != nil {
		proj := seasonal.Project(metrics, p.Engine.Weeks, now, p.Options.Seasonal)
		in.Seasonal = &proj
	}

	plan, err := p.Engine.Generate(in)
	if err != nil {
		return nil, fmt.Errorf("generate plan for %s: %w", country, err)
	}
	if err := p.Store.Save(ctx, plan); err != nil {
		return nil, fmt.Errorf("save plan for %s: %w", country, err)
	}
	log.Printf("[Planner] generated %s (confidence %.2f, seasonal=%v)", plan.ID, plan.Metadata.Confidence, in.Seasonal != nil)
	return plan, nil
}

// Current returns the stored plan for country, regenerating it when none is
// stored or the stored one has expired.
func (p *Planner) Current(ctx context.Context, country model.Country) (*model.ProjectionPlan, error) {
	if err := checkCountry(country); err != nil {
		return nil, err
	}
	plan, err := p.Store.Load(ctx, country)
	if err != nil {
		return nil, fmt.Errorf("load plan for %s: %w", country, err)
	}
	if plan == nil {
		log.Printf("[Planner] no plan stored for %s, generating", country)
		return p.Generate(ctx, country)
	}
	if plan.IsExpired(p.now()) {
		log.Printf("[Planner] plan %s expired at %s, regenerating", plan.ID, plan.ExpiresAt.Format(time.RFC3339))
		return p.Generate(ctx, country)
	}
	return plan, nil
}

// Compare scores the current plan's scenario against fresh records.
func (p *Planner) Compare(ctx context.Context, country model.Country, name model.ScenarioName) (*model.PlanVsRealComparison, error) {
	plan, err := p.Current(ctx, country)
	if err != nil {
		return nil, err
	}
	sales, purchases, err := p.fetchRecords(ctx)
	if err != nil {
		return nil, err
	}
	return projection.Compare(plan, sales.Records, purchases.Records, projection.CompareOptions{
		Scenario: name,
		Now:      p.now(),
		Rates:    p.rates(),
	})
}
