package model

import "time"

// ScenarioName is one of the three multiplier sets applied to a baseline.
type ScenarioName string

const (
	ScenarioBase         ScenarioName = "base"
	ScenarioOptimistic   ScenarioName = "optimistic"
	ScenarioConservative ScenarioName = "conservative"
)

// ScenarioNames returns the scenarios in the order plans store them.
func ScenarioNames() []ScenarioName {
	return []ScenarioName{ScenarioBase, ScenarioOptimistic, ScenarioConservative}
}

// ParseScenario maps "" to the base scenario.
func ParseScenario(s string) (ScenarioName, bool) {
	switch ScenarioName(s) {
	case "", ScenarioBase:
		return ScenarioBase, true
	case ScenarioOptimistic:
		return ScenarioOptimistic, true
	case ScenarioConservative:
		return ScenarioConservative, true
	}
	return "", false
}

// ScenarioFactors multiplies a baseline week's inflow and outflow.
type ScenarioFactors struct {
	InflowFactor  float64 `json:"inflow_factor" yaml:"inflow_factor"`
	OutflowFactor float64 `json:"outflow_factor" yaml:"outflow_factor"`
	Rationale     string  `json:"rationale,omitempty" yaml:"rationale,omitempty"`
}

// FactorSet holds one ScenarioFactors per scenario.
type FactorSet struct {
	Base         ScenarioFactors `json:"base" yaml:"base"`
	Optimistic   ScenarioFactors `json:"optimistic" yaml:"optimistic"`
	Conservative ScenarioFactors `json:"conservative" yaml:"conservative"`
}

// For returns the factors for name.
func (s FactorSet) For(name ScenarioName) (ScenarioFactors, bool) {
	switch name {
	case ScenarioBase:
		return s.Base, true
	case ScenarioOptimistic:
		return s.Optimistic, true
	case ScenarioConservative:
		return s.Conservative, true
	}
	return ScenarioFactors{}, false
}

// FactorAnalysis is the output of a factor strategy: the factors plus the
// reasoning that produced them.
type FactorAnalysis struct {
	Strategy   string    `json:"strategy"`
	Scenarios  FactorSet `json:"scenarios"`
	Insights   []string  `json:"insights"`
	Risks      []string  `json:"risks"`
	Confidence float64   `json:"confidence"`
}

// BaselineWeek is an unadjusted weekly estimate. StartDate and EndDate are
// midnight UTC and the range is inclusive of both days.
type BaselineWeek struct {
	Week      int       `json:"week"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Inflow    float64   `json:"inflow"`
	Outflow   float64   `json:"outflow"`
}

// FlowDetail records how a projected value was derived.
type FlowDetail struct {
	Base   float64 `json:"base"`
	Factor float64 `json:"factor"`
	Result float64 `json:"result"`
}

// ProjectionWeek is one week of one scenario. The Actual* and Variance*
// fields stay nil until a comparison finds real data for the week.
type ProjectionWeek struct {
	Week      int       `json:"week"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`

	ProjectedInflows  float64    `json:"projected_inflows"`
	InflowsDetail     FlowDetail `json:"inflows_detail"`
	ProjectedOutflows float64    `json:"projected_outflows"`
	OutflowsDetail    FlowDetail `json:"outflows_detail"`

	NetCashFlow        float64 `json:"net_cash_flow"`
	CumulativeCashFlow float64 `json:"cumulative_cash_flow"`

	ActualInflows    *float64 `json:"actual_inflows"`
	ActualOutflows   *float64 `json:"actual_outflows"`
	ActualNet        *float64 `json:"actual_net"`
	Variance         *float64 `json:"variance"`          // percent of projected net
	VarianceAbsolute *float64 `json:"variance_absolute"` // actual net minus projected net
}

// HasActual reports whether a comparison attached real data to the week.
func (w ProjectionWeek) HasActual() bool {
	return w.ActualNet != nil
}

// Scenarios holds the three projections of a plan.
type Scenarios struct {
	Base         []ProjectionWeek `json:"base"`
	Optimistic   []ProjectionWeek `json:"optimistic"`
	Conservative []ProjectionWeek `json:"conservative"`
}

// Get returns the weeks for name.
func (s Scenarios) Get(name ScenarioName) ([]ProjectionWeek, bool) {
	switch name {
	case ScenarioBase:
		return s.Base, true
	case ScenarioOptimistic:
		return s.Optimistic, true
	case ScenarioConservative:
		return s.Conservative, true
	}
	return nil, false
}

// SeasonalSummary describes the seasonal baseline a plan was built on.
type SeasonalSummary struct {
	Matched        bool      `json:"matched"`
	MatchedWeek    string    `json:"matched_week,omitempty"`
	Confidence     float64   `json:"confidence"`
	ProjectedSales []float64 `json:"projected_sales"`
}

// PlanMetadata carries the inputs and reasoning behind a plan.
type PlanMetadata struct {
	HistoricalDays  int              `json:"historical_days"`
	Confidence      float64          `json:"confidence"`
	Factors         FactorAnalysis   `json:"factors"`
	HistoricalStats HistoricalStats  `json:"historical_stats"`
	Seasonal        *SeasonalSummary `json:"seasonal,omitempty"`
}

// ProjectionPlan is a generated multi-scenario forecast for one country.
// It is immutable once generated and valid until ExpiresAt.
type ProjectionPlan struct {
	ID        string       `json:"id"`
	Country   Country      `json:"country"`
	CreatedAt time.Time    `json:"created_at"`
	ExpiresAt time.Time    `json:"expires_at"`
	Scenarios Scenarios    `json:"scenarios"`
	Metadata  PlanMetadata `json:"metadata"`
}

// IsExpired reports whether now is past ExpiresAt.
func (p *ProjectionPlan) IsExpired(now time.Time) bool {
	return now.After(p.ExpiresAt)
}

// ComparisonSummary aggregates variance over weeks that have real data.
type ComparisonSummary struct {
	TotalVariance     float64 `json:"total_variance"` // sum of |variance%|
	AvgVariance       float64 `json:"avg_variance"`
	WeeksWithData     int     `json:"weeks_with_data"`
	WeeksWithVariance int     `json:"weeks_with_variance"`
	Accuracy          float64 `json:"accuracy"`
	TotalProjectedNet float64 `json:"total_projected_net"`
	TotalActualNet    float64 `json:"total_actual_net"`
}

// PlanVsRealComparison is a plan scenario annotated with actuals.
type PlanVsRealComparison struct {
	PlanID         string              `json:"plan_id"`
	Country        Country             `json:"country"`
	Scenario       ScenarioName        `json:"scenario"`
	ComparedAt     time.Time           `json:"compared_at"`
	Weeks          []ProjectionWeek    `json:"weeks"`
	ActualInflows  []TransactionRecord `json:"actual_inflows"`
	ActualOutflows []TransactionRecord `json:"actual_outflows"`
	Summary        ComparisonSummary   `json:"summary"`
}
