package projection

import (
	"errors"
	"fmt"
	"time"

	"cashflow-forecast/internal/analysis"
	"cashflow-forecast/internal/model"
	"cashflow-forecast/internal/scenario"
	"cashflow-forecast/internal/seasonal"

	"github.com/google/uuid"
)

// DefaultPlanTTL is how long a generated plan stays valid.
const DefaultPlanTTL = 28 * 24 * time.Hour

// Engine generates projection plans. It holds no state between calls.
type Engine struct {
	Weeks int
	TTL   time.Duration
	NewID func() string
}

// New returns an engine projecting four weeks with a 28-day plan lifetime.
func New() *Engine {
	return &Engine{
		Weeks: 4,
		TTL:   DefaultPlanTTL,
		NewID: func() string { return uuid.NewString() },
	}
}

// Input is everything a plan is built from.
type Input struct {
	Country model.Country
	Now     time.Time
	Stats   model.HistoricalStats
	// Seasonal is optional. When it has sales, its weekly mean replaces the
	// historical average daily inflow in the baseline.
	Seasonal *seasonal.Projection
	Strategy scenario.Strategy
}

// Generate builds a plan with base, optimistic and conservative scenarios.
func (e *Engine) Generate(in Input) (*model.ProjectionPlan, error) {
	if in.Country == "" {
		return nil, errors.New("country is required")
	}
	if in.Strategy == nil {
		return nil, errors.New("scenario strategy is nil")
	}
	if e.Weeks <= 0 {
		return nil, fmt.Errorf("invalid projection weeks: %d", e.Weeks)
	}
	ttl := e.TTL
	if ttl <= 0 {
		ttl = DefaultPlanTTL
	}
	newID := e.NewID
	if newID == nil {
		newID = uuid.NewString
	}

	baseStats := in.Stats
	var summary *model.SeasonalSummary
	if in.Seasonal != nil {
		summary = in.Seasonal.Summary()
		if len(in.Seasonal.Sales) > 0 {
			baseStats.AvgDailyInflows = analysis.Mean(in.Seasonal.Sales) / 7
		}
	}
	baseline := BaselineWeeks(baseStats, e.Weeks, in.Now)

	ctx := scenario.Context{Country: in.Country, Stats: in.Stats}
	fa := scenario.Analyze(ctx)
	fa.Strategy = in.Strategy.Name()
	fa.Scenarios = in.Strategy.Factors(ctx)

	if in.Seasonal != nil && in.Seasonal.Confidence > fa.Confidence {
		fa.Confidence = (fa.Confidence + in.Seasonal.Confidence) / 2
		fa.Insights = append([]string{
			fmt.Sprintf("Projection refined with the weekly financial model (confidence: %.0f%%)", in.Seasonal.Confidence*100),
		}, fa.Insights...)
	}

	created := in.Now.UTC()
	plan := &model.ProjectionPlan{
		ID:        fmt.Sprintf("plan-%s-%s", in.Country, newID()),
		Country:   in.Country,
		CreatedAt: created,
		ExpiresAt: created.Add(ttl),
		Scenarios: model.Scenarios{
			Base:         ApplyScenario(baseline, fa.Scenarios.Base),
			Optimistic:   ApplyScenario(baseline, fa.Scenarios.Optimistic),
			Conservative: ApplyScenario(baseline, fa.Scenarios.Conservative),
		},
		Metadata: model.PlanMetadata{
			HistoricalDays:  in.Stats.WindowDays,
			Confidence:      fa.Confidence,
			Factors:         fa,
			HistoricalStats: in.Stats,
			Seasonal:        summary,
		},
	}
	return plan, nil
}
