package model

// HistoricalStats summarises a trailing window of daily inflows and outflows.
// AvgDailyInflows is always TotalInflows / WindowDays; Trend and Volatility
// are computed over the same daily inflow series.
type HistoricalStats struct {
	TotalInflows     float64 `json:"total_inflows"`
	TotalOutflows    float64 `json:"total_outflows"`
	AvgDailyInflows  float64 `json:"avg_daily_inflows"`
	AvgDailyOutflows float64 `json:"avg_daily_outflows"`
	Trend            float64 `json:"trend"`      // OLS slope, currency units per day
	Volatility       float64 `json:"volatility"` // population stddev of daily inflows
	WindowDays       int     `json:"window_days"`

	// Observability counters. Neither affects the numbers above beyond what
	// the fallbacks already imply.
	UnresolvedCurrencies int `json:"unresolved_currencies,omitempty"`
	SkippedRecords       int `json:"skipped_records,omitempty"`
}

// AvgDailyNet is the average daily net cash flow over the window.
func (s HistoricalStats) AvgDailyNet() float64 {
	return s.AvgDailyInflows - s.AvgDailyOutflows
}
