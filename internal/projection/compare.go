package projection

import (
	"errors"
	"fmt"
	"math"
	"time"

	"cashflow-forecast/internal/currency"
	"cashflow-forecast/internal/model"
)

// CompareOptions controls Compare.
type CompareOptions struct {
	// Scenario to annotate. Empty means base.
	Scenario model.ScenarioName
	// Now stamps the comparison.
	Now time.Time
	// Rates converts Global plans to USD. Nil means currency.Default().
	Rates *currency.Table
}

// WeekRange is an inclusive span of whole UTC days.
type WeekRange struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls on a day inside r.
func (r WeekRange) Contains(t time.Time) bool {
	d := model.StartOfDay(t)
	return !d.Before(model.StartOfDay(r.Start)) && !d.After(model.StartOfDay(r.End))
}

// WeekActual is real activity inside one plan week.
type WeekActual struct {
	Week     int
	Inflows  float64
	Outflows float64
	Net      float64
	HasData  bool
}

// Compare annotates a plan scenario with the actual activity of each of its
// weeks and scores the plan. The plan itself is not modified.
//
// Records are kept when their country matches the plan and their day falls
// between the first week's start and the last week's end. They are then
// bucketed into the plan's own week boundaries. A week with no records keeps
// nil actuals. A week whose projected net is exactly zero gets an absolute
// variance but a nil percentage, and is left out of the average.
func Compare(plan *model.ProjectionPlan, sales, purchases []model.TransactionRecord, opts CompareOptions) (*model.PlanVsRealComparison, error) {
	if plan == nil {
		return nil, errors.New("plan is nil")
	}
	name, ok := model.ParseScenario(string(opts.Scenario))
	if !ok {
		return nil, fmt.Errorf("unknown scenario: %q", opts.Scenario)
	}
	weeks, _ := plan.Scenarios.Get(name)

	cmp := &model.PlanVsRealComparison{
		PlanID:     plan.ID,
		Country:    plan.Country,
		Scenario:   name,
		ComparedAt: opts.Now.UTC(),
		Weeks:      make([]model.ProjectionWeek, len(weeks)),
	}
	copy(cmp.Weeks, weeks)
	for i := range cmp.Weeks {
		clearActuals(&cmp.Weeks[i])
	}
	if len(weeks) == 0 {
		cmp.Summary.Accuracy = 100
		return cmp, nil
	}

	span := WeekRange{Start: weeks[0].StartDate, End: weeks[len(weeks)-1].EndDate}
	cmp.ActualInflows = FilterRecords(sales, plan.Country, span)
	cmp.ActualOutflows = FilterRecords(purchases, plan.Country, span)

	ranges := make([]WeekRange, len(weeks))
	for i, w := range weeks {
		ranges[i] = WeekRange{Start: w.StartDate, End: w.EndDate}
	}

	amount := func(r model.TransactionRecord) float64 { return r.Amount }
	var unresolved currency.UnresolvedLog
	if plan.Country == model.CountryGlobal {
		rates := opts.Rates
		if rates == nil {
			rates = currency.Default()
		}
		amount = func(r model.TransactionRecord) float64 {
			usd, ok := rates.ToUSD(r.Amount, r.CurrencyTag())
			if !ok {
				unresolved.Add(r.CurrencyTag())
			}
			return usd
		}
	}
	actuals := GroupByWeek(cmp.ActualInflows, cmp.ActualOutflows, ranges, amount)
	unresolved.Flush("Compare")

	var s model.ComparisonSummary
	for i := range cmp.Weeks {
		w := &cmp.Weeks[i]
		s.TotalProjectedNet += w.NetCashFlow
		a := actuals[i]
		if !a.HasData {
			continue
		}
		s.WeeksWithData++
		s.TotalActualNet += a.Net

		w.ActualInflows = ptr(a.Inflows)
		w.ActualOutflows = ptr(a.Outflows)
		w.ActualNet = ptr(a.Net)
		w.VarianceAbsolute = ptr(a.Net - w.NetCashFlow)
		if w.NetCashFlow != 0 {
			v := (a.Net - w.NetCashFlow) / w.NetCashFlow * 100
			w.Variance = &v
			s.TotalVariance += math.Abs(v)
			s.WeeksWithVariance++
		}
	}
	if s.WeeksWithVariance > 0 {
		s.AvgVariance = s.TotalVariance / float64(s.WeeksWithVariance)
	}
	s.Accuracy = math.Max(0, 100-s.AvgVariance)
	cmp.Summary = s
	return cmp, nil
}

// FilterRecords keeps records for country whose date falls inside span.
// Records with unparseable dates are dropped.
func FilterRecords(records []model.TransactionRecord, country model.Country, span WeekRange) []model.TransactionRecord {
	out := make([]model.TransactionRecord, 0)
	for _, r := range records {
		if !country.Matches(r.Country) {
			continue
		}
		t, ok := r.Time()
		if !ok || !span.Contains(t) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// GroupByWeek buckets inflow and outflow records into ranges, in order.
// A week has data when at least one record of either kind lands in it.
func GroupByWeek(inflows, outflows []model.TransactionRecord, ranges []WeekRange, amount func(model.TransactionRecord) float64) []WeekActual {
	out := make([]WeekActual, len(ranges))
	for i := range ranges {
		out[i].Week = i + 1
	}
	add := func(records []model.TransactionRecord, inflow bool) {
		for _, r := range records {
			t, ok := r.Time()
			if !ok {
				continue
			}
			for i, rg := range ranges {
				if !rg.Contains(t) {
					continue
				}
				if inflow {
					out[i].Inflows += amount(r)
				} else {
					out[i].Outflows += amount(r)
				}
				out[i].HasData = true
			}
		}
	}
	add(inflows, true)
	add(outflows, false)
	for i := range out {
		out[i].Net = out[i].Inflows - out[i].Outflows
	}
	return out
}

// clearActuals drops annotations left by an earlier comparison.
func clearActuals(w *model.ProjectionWeek) {
	w.ActualInflows = nil
	w.ActualOutflows = nil
	w.ActualNet = nil
	w.Variance = nil
	w.VarianceAbsolute = nil
}

func ptr(v float64) *float64 { return &v }
