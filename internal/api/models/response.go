package models

import (
	"time"

	"cashflow-forecast/internal/model"
)

// StatsResponse is one country's window stats in its local currency.
type StatsResponse struct {
	Country     model.Country         `json:"country"`
	Currency    string                `json:"currency"`
	Stats       model.HistoricalStats `json:"stats"`
	AvgDailyNet float64               `json:"avg_daily_net"`
	Formatted   FormattedStats        `json:"formatted"`
}

// FormattedStats carries display strings for the headline numbers.
type FormattedStats struct {
	TotalInflows     string `json:"total_inflows"`
	TotalOutflows    string `json:"total_outflows"`
	AvgDailyInflows  string `json:"avg_daily_inflows"`
	AvgDailyOutflows string `json:"avg_daily_outflows"`
	AvgDailyNet      string `json:"avg_daily_net"`
}

// RankResponse ranks countries by average daily net cash flow in USD.
type RankResponse struct {
	Currency string    `json:"currency"`
	Rankings []Ranking `json:"rankings"`
}

// Ranking is one ranked country
type Ranking struct {
	Rank        int                   `json:"rank"`
	Country     model.Country         `json:"country"`
	AvgDailyNet float64               `json:"avg_daily_net"`
	Stats       model.HistoricalStats `json:"stats"`
}

// PlanResponse wraps a projection plan with per-scenario totals
type PlanResponse struct {
	Currency string                `json:"currency"`
	Plan     *model.ProjectionPlan `json:"plan"`
	Totals   []ScenarioTotals      `json:"totals"`
}

// ScenarioTotals summarises one scenario over the whole horizon
type ScenarioTotals struct {
	Scenario        model.ScenarioName `json:"scenario"`
	TotalInflows    float64            `json:"total_inflows"`
	TotalOutflows   float64            `json:"total_outflows"`
	TotalNet        float64            `json:"total_net"`
	FinalCumulative string             `json:"final_cumulative"`
}

// ComparisonResponse is a plan-vs-actual comparison
type ComparisonResponse struct {
	Currency   string                      `json:"currency"`
	Comparison *model.PlanVsRealComparison `json:"comparison"`
}

// ScenarioStrategyInfo describes a factor strategy
type ScenarioStrategyInfo struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Active      bool             `json:"active"`
	Factors     *model.FactorSet `json:"factors,omitempty"`
}

// CountryInfo describes a supported market
type CountryInfo struct {
	ID       model.Country `json:"id"`
	Currency string        `json:"currency"`
	Symbol   string        `json:"symbol"`
}

// HealthResponse is returned by GET /health
type HealthResponse struct {
	Status string    `json:"status"`
	Time   time.Time `json:"time"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
