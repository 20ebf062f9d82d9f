package projection

import (
	"time"

	"cashflow-forecast/internal/model"
)

// BaselineWeeks turns window stats into unadjusted weekly estimates. Week w
// (1-based) starts 7*(w-1) days after now's day and ends six days later.
// Inflows carry the daily trend forward: avgDailyInflows*7 + trend*7*w.
func BaselineWeeks(stats model.HistoricalStats, weeks int, now time.Time) []model.BaselineWeek {
	if weeks <= 0 {
		return nil
	}
	today := model.StartOfDay(now)
	out := make([]model.BaselineWeek, 0, weeks)
	for w := 1; w <= weeks; w++ {
		start := today.AddDate(0, 0, 7*(w-1))
		out = append(out, model.BaselineWeek{
			Week:      w,
			StartDate: start,
			EndDate:   start.AddDate(0, 0, 6),
			Inflow:    stats.AvgDailyInflows*7 + stats.Trend*7*float64(w),
			Outflow:   stats.AvgDailyOutflows * 7,
		})
	}
	return out
}

// ApplyScenario multiplies each baseline week by the scenario factors and
// carries a running cumulative net. Every call starts its own accumulator at
// zero, so scenarios built from the same baseline never share state.
func ApplyScenario(baseline []model.BaselineWeek, f model.ScenarioFactors) []model.ProjectionWeek {
	out := make([]model.ProjectionWeek, 0, len(baseline))
	cum := 0.0
	for _, b := range baseline {
		in := b.Inflow * f.InflowFactor
		outflow := b.Outflow * f.OutflowFactor
		net := in - outflow
		cum += net

		out = append(out, model.ProjectionWeek{
			Week:      b.Week,
			StartDate: b.StartDate,
			EndDate:   b.EndDate,

			ProjectedInflows:  in,
			InflowsDetail:     model.FlowDetail{Base: b.Inflow, Factor: f.InflowFactor, Result: in},
			ProjectedOutflows: outflow,
			OutflowsDetail:    model.FlowDetail{Base: b.Outflow, Factor: f.OutflowFactor, Result: outflow},

			NetCashFlow:        net,
			CumulativeCashFlow: cum,
		})
	}
	return out
}

// Totals sums projected inflows, outflows and net over weeks.
func Totals(weeks []model.ProjectionWeek) (in, out, net float64) {
	for _, w := range weeks {
		in += w.ProjectedInflows
		out += w.ProjectedOutflows
		net += w.NetCashFlow
	}
	return in, out, net
}
