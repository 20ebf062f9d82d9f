package chart

import (
	"errors"
	"fmt"
	"io"
	"math"

	"cashflow-forecast/internal/model"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

const (
	width  = "900px"
	height = "420px"
)

// RenderPlan writes an HTML page with the cumulative cash flow of each
// scenario and the weekly net of each scenario.
func RenderPlan(w io.Writer, plan *model.ProjectionPlan) error {
	if plan == nil {
		return errors.New("plan is nil")
	}
	labels := weekLabels(plan.Scenarios.Base)

	cumulative := charts.NewLine()
	cumulative.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: width, Height: height}),
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("Cumulative cash flow: %s", plan.Country),
			Subtitle: fmt.Sprintf("%s, confidence %.0f%%", plan.ID, plan.Metadata.Confidence*100),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
	)
	cumulative.SetXAxis(labels)

	weekly := charts.NewBar()
	weekly.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: width, Height: height}),
		charts.WithTitleOpts(opts.Title{Title: "Weekly net cash flow"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
	)
	weekly.SetXAxis(labels)

	for _, name := range model.ScenarioNames() {
		weeks, _ := plan.Scenarios.Get(name)
		cum := make([]opts.LineData, len(weeks))
		net := make([]opts.BarData, len(weeks))
		for i, wk := range weeks {
			cum[i] = opts.LineData{Value: round2(wk.CumulativeCashFlow)}
			net[i] = opts.BarData{Value: round2(wk.NetCashFlow)}
		}
		cumulative.AddSeries(string(name), cum)
		weekly.AddSeries(string(name), net)
	}

	page := components.NewPage()
	page.PageTitle = fmt.Sprintf("Cash flow projection %s", plan.Country)
	page.AddCharts(cumulative, weekly)
	return page.Render(w)
}

// RenderComparison writes projected against actual net per week. Weeks
// without actuals plot as gaps.
func RenderComparison(w io.Writer, cmp *model.PlanVsRealComparison) error {
	if cmp == nil {
		return errors.New("comparison is nil")
	}
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: width, Height: height}),
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("Plan vs actual: %s (%s)", cmp.Country, cmp.Scenario),
			Subtitle: fmt.Sprintf("accuracy %.1f%% over %d weeks with data", cmp.Summary.Accuracy, cmp.Summary.WeeksWithData),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
	)
	bar.SetXAxis(weekLabels(cmp.Weeks))

	projected := make([]opts.BarData, len(cmp.Weeks))
	actual := make([]opts.BarData, len(cmp.Weeks))
	for i, wk := range cmp.Weeks {
		projected[i] = opts.BarData{Value: round2(wk.NetCashFlow)}
		if wk.ActualNet != nil {
			actual[i] = opts.BarData{Value: round2(*wk.ActualNet)}
		} else {
			actual[i] = opts.BarData{Value: "-"}
		}
	}
	bar.AddSeries("projected", projected).AddSeries("actual", actual)

	page := components.NewPage()
	page.PageTitle = fmt.Sprintf("Plan vs actual %s", cmp.Country)
	page.AddCharts(bar)
	return page.Render(w)
}

func weekLabels(weeks []model.ProjectionWeek) []string {
	out := make([]string, len(weeks))
	for i, wk := range weeks {
		out[i] = fmt.Sprintf("W%d %s", wk.Week, wk.StartDate.Format("01-02"))
	}
	return out
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
