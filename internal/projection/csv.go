package projection

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"time"

	"cashflow-forecast/internal/model"
)

var csvHeader = []string{
	"scenario",
	"week",
	"start_date",
	"end_date",
	"base_inflows",
	"inflow_factor",
	"projected_inflows",
	"base_outflows",
	"outflow_factor",
	"projected_outflows",
	"net_cash_flow",
	"cumulative_cash_flow",
	"actual_inflows",
	"actual_outflows",
	"actual_net",
	"variance_pct",
	"variance_absolute",
}

// WritePlanCSV writes every scenario of plan to path, creating the file.
func WritePlanCSV(path string, plan *model.ProjectionPlan) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return WritePlanCSVTo(f, plan)
}

// WritePlanCSVTo writes one row per scenario week.
func WritePlanCSVTo(out io.Writer, plan *model.ProjectionPlan) error {
	w := csv.NewWriter(out)
	if err := w.Write(csvHeader); err != nil {
		return err
	}
	for _, name := range model.ScenarioNames() {
		weeks, _ := plan.Scenarios.Get(name)
		if err := writeWeeks(w, name, weeks); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// WriteComparisonCSVTo writes the annotated weeks of a comparison.
func WriteComparisonCSVTo(out io.Writer, cmp *model.PlanVsRealComparison) error {
	w := csv.NewWriter(out)
	if err := w.Write(csvHeader); err != nil {
		return err
	}
	if err := writeWeeks(w, cmp.Scenario, cmp.Weeks); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func writeWeeks(w *csv.Writer, name model.ScenarioName, weeks []model.ProjectionWeek) error {
	for _, pw := range weeks {
		row := []string{
			string(name),
			strconv.Itoa(pw.Week),
			fmtDate(pw.StartDate),
			fmtDate(pw.EndDate),
			fmtFloat(pw.InflowsDetail.Base),
			fmtFloat(pw.InflowsDetail.Factor),
			fmtFloat(pw.ProjectedInflows),
			fmtFloat(pw.OutflowsDetail.Base),
			fmtFloat(pw.OutflowsDetail.Factor),
			fmtFloat(pw.ProjectedOutflows),
			fmtFloat(pw.NetCashFlow),
			fmtFloat(pw.CumulativeCashFlow),
			fmtOpt(pw.ActualInflows),
			fmtOpt(pw.ActualOutflows),
			fmtOpt(pw.ActualNet),
			fmtOpt(pw.Variance),
			fmtOpt(pw.VarianceAbsolute),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func fmtDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(model.DateLayout)
}

func fmtFloat(x float64) string {
	return strconv.FormatFloat(x, 'f', 2, 64)
}

func fmtOpt(x *float64) string {
	if x == nil {
		return ""
	}
	return fmtFloat(*x)
}
