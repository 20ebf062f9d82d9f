package scenario

import (
	"fmt"
	"math"

	"cashflow-forecast/internal/model"
)

// Thresholds for Analyze.
const (
	stableCV          = 0.2
	volatileCV        = 0.4
	trendThresholdPct = 5.0
	maxTrendUp        = 0.10
	maxTrendDown      = 0.08
	outflowTracking   = 0.7
)

// Derived sets factors from the window's trend and volatility.
type Derived struct{}

func (d *Derived) Name() string { return NameDerived }

func (d *Derived) Factors(ctx Context) model.FactorSet {
	return Analyze(ctx).Scenarios
}

// Analyze derives scenario factors, insights, risks and a confidence score
// from historical stats. The trend is expressed as a percentage of the average
// daily inflow and volatility as a coefficient of variation. A window without
// inflows carries no signal and gets neutral base factors.
func Analyze(ctx Context) model.FactorAnalysis {
	s := ctx.Stats
	hasInflows := s.AvgDailyInflows > 0

	var trendPct, cv, ratio float64
	if hasInflows {
		trendPct = s.Trend / s.AvgDailyInflows * 100
		cv = s.Volatility / s.AvgDailyInflows
		ratio = s.AvgDailyOutflows / s.AvgDailyInflows
	}
	up := trendPct > 0
	strength := math.Abs(trendPct)
	stable := hasInflows && cv < stableCV
	volatile := hasInflows && cv > volatileCV

	baseIn := 1.0
	if strength > trendThresholdPct {
		if up {
			baseIn += math.Min(trendPct/100, maxTrendUp)
		} else {
			baseIn -= math.Min(strength/100, maxTrendDown)
		}
	}
	baseOut := 1.0 + (baseIn-1.0)*outflowTracking

	spread := 0.12
	volLabel := "moderate"
	switch {
	case volatile:
		spread, volLabel = 0.15, "high"
	case stable:
		spread, volLabel = 0.08, "low"
	}

	direction := "negative"
	switch {
	case up:
		direction = "positive"
	case trendPct == 0:
		direction = "flat"
	}

	set := model.FactorSet{
		Base: model.ScenarioFactors{
			InflowFactor:  clamp(baseIn, 0.85, 1.15),
			OutflowFactor: clamp(baseOut, 0.90, 1.10),
			Rationale:     fmt.Sprintf("Based on a %s trend of %.1f%% and %s volatility", direction, strength, volLabel),
		},
		Optimistic: model.ScenarioFactors{
			InflowFactor:  clamp(baseIn+spread, 1.05, 1.25),
			OutflowFactor: clamp(baseOut-spread*0.5, 0.85, 1.05),
			Rationale:     "Improving conditions and lower costs",
		},
		Conservative: model.ScenarioFactors{
			InflowFactor:  clamp(baseIn-spread, 0.80, 1.10),
			OutflowFactor: clamp(baseOut+spread*0.5, 0.95, 1.15),
			Rationale:     "Possible slowdown and rising costs",
		},
	}

	var insights, risks []string
	if !hasInflows {
		insights = append(insights, "No inflows recorded in the window; factors are neutral")
		risks = append(risks, "No inflow history to project from")
	} else {
		switch {
		case up:
			insights = append(insights, fmt.Sprintf("Positive trend: inflows growing %.1f%% on average", strength))
		case trendPct == 0:
			insights = append(insights, "Flat trend: inflows held steady over the window")
		default:
			insights = append(insights, fmt.Sprintf("Negative trend: inflows shrinking %.1f%% on average", strength))
		}
		if stable {
			insights = append(insights, fmt.Sprintf("Stable flows with low volatility (CV: %.1f%%)", cv*100))
		} else if volatile {
			insights = append(insights, fmt.Sprintf("High volatility (CV: %.1f%%), projections carry more risk", cv*100))
		}
		if ratio > 0.8 {
			insights = append(insights, fmt.Sprintf("High outflow/inflow ratio (%.0f%%), watch margins", ratio*100))
		} else {
			insights = append(insights, fmt.Sprintf("Healthy margin: outflows are %.0f%% of inflows", ratio*100))
		}
	}
	switch ctx.Country {
	case model.CountryPeru:
		insights = append(insights, "Peru: account for national holidays in July and year-end seasonality")
	case model.CountryColombia:
		insights = append(insights, "Colombia: check the impact of local public holidays")
	case model.CountryMexico:
		insights = append(insights, "Mexico: account for the corporate events season")
	}

	if volatile {
		risks = append(risks, "High volatility can push actuals more than 15% away from the projection")
	}
	if hasInflows && !up && strength > 3 {
		risks = append(risks, "A persistent negative trend could reduce projected inflows")
	}
	if s.WindowDays < 20 {
		risks = append(risks, fmt.Sprintf("Limited history (%d days), projections are less precise", s.WindowDays))
	}
	if ratio > 0.85 {
		risks = append(risks, "Tight operating margin, exposed to cost increases")
	}
	if len(risks) == 0 {
		risks = append(risks, "No significant risks detected in the historical data")
	}

	confidence := 0.75
	if stable {
		confidence += 0.15
	} else if volatile {
		confidence -= 0.20
	}
	if s.WindowDays >= 30 {
		confidence += 0.10
	} else if s.WindowDays < 15 {
		confidence -= 0.15
	}
	if strength > 10 {
		confidence -= 0.05
	}

	return model.FactorAnalysis{
		Strategy:   NameDerived,
		Scenarios:  set,
		Insights:   insights,
		Risks:      risks,
		Confidence: clamp(confidence, 0.3, 0.95),
	}
}

func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}
