package projection

import (
	"math"
	"testing"
	"time"

	"cashflow-forecast/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// planWithNets builds a base scenario whose weeks start on now's day and
// have the given projected nets.
func planWithNets(country model.Country, nets ...float64) *model.ProjectionPlan {
	baseline := BaselineWeeks(model.HistoricalStats{}, len(nets), now)
	for i := range baseline {
		baseline[i].Inflow = nets[i]
	}
	weeks := ApplyScenario(baseline, model.ScenarioFactors{InflowFactor: 1, OutflowFactor: 1})
	return &model.ProjectionPlan{
		ID:        "plan-test",
		Country:   country,
		CreatedAt: now,
		ExpiresAt: now.Add(DefaultPlanTTL),
		Scenarios: model.Scenarios{Base: weeks, Optimistic: weeks, Conservative: weeks},
	}
}

func on(offsetDays int) string {
	return model.StartOfDay(now).AddDate(0, 0, offsetDays).Format(model.DateLayout)
}

func TestCompareVariance(t *testing.T) {
	plan := planWithNets(model.CountryPeru, 1000, 500, 800)
	sales := []model.TransactionRecord{
		{Date: on(0), Amount: 700, Country: "Peru"},
		{Date: on(6) + "T23:00:00Z", Amount: 500, Country: "PERU"},
		{Date: on(7), Amount: 600, Country: "Peru"},
		{Date: on(2), Amount: 99999, Country: "Colombia"}, // other country
		{Date: on(-1), Amount: 99999, Country: "Peru"},    // before the plan
		{Date: on(21), Amount: 99999, Country: "Peru"},    // after the plan
	}
	purchases := []model.TransactionRecord{
		{Date: on(3), Amount: 300, Country: "Peru"},
	}

	cmp, err := Compare(plan, sales, purchases, CompareOptions{Now: now})
	require.NoError(t, err)

	assert.Equal(t, model.ScenarioBase, cmp.Scenario)
	assert.Equal(t, "plan-test", cmp.PlanID)
	require.Len(t, cmp.Weeks, 3)
	assert.Len(t, cmp.ActualInflows, 3)
	assert.Len(t, cmp.ActualOutflows, 1)

	w1 := cmp.Weeks[0]
	require.NotNil(t, w1.ActualNet)
	assert.InDelta(t, 1200, *w1.ActualInflows, 1e-9)
	assert.InDelta(t, 300, *w1.ActualOutflows, 1e-9)
	assert.InDelta(t, 900, *w1.ActualNet, 1e-9)
	assert.InDelta(t, -100, *w1.VarianceAbsolute, 1e-9)
	assert.InDelta(t, -10, *w1.Variance, 1e-9)

	w2 := cmp.Weeks[1]
	require.NotNil(t, w2.Variance)
	assert.InDelta(t, 20, *w2.Variance, 1e-9)

	w3 := cmp.Weeks[2]
	assert.Nil(t, w3.ActualNet)
	assert.Nil(t, w3.Variance)

	assert.Equal(t, 2, cmp.Summary.WeeksWithData)
	assert.InDelta(t, 30, cmp.Summary.TotalVariance, 1e-9)
	assert.InDelta(t, 15, cmp.Summary.AvgVariance, 1e-9)
	assert.InDelta(t, 85, cmp.Summary.Accuracy, 1e-9)

	// The plan itself is untouched.
	assert.Nil(t, plan.Scenarios.Base[0].ActualNet)
}

func TestCompareZeroProjectedNet(t *testing.T) {
	plan := planWithNets(model.CountryPeru, 0, 100)
	sales := []model.TransactionRecord{
		{Date: on(1), Amount: 250, Country: "Peru"},
		{Date: on(8), Amount: 100, Country: "Peru"},
	}

	cmp, err := Compare(plan, sales, nil, CompareOptions{Now: now})
	require.NoError(t, err)

	w := cmp.Weeks[0]
	require.NotNil(t, w.ActualNet)
	assert.Nil(t, w.Variance)
	require.NotNil(t, w.VarianceAbsolute)
	assert.InDelta(t, 250, *w.VarianceAbsolute, 1e-9)

	assert.Equal(t, 2, cmp.Summary.WeeksWithData)
	assert.Equal(t, 1, cmp.Summary.WeeksWithVariance)
	assert.False(t, math.IsNaN(cmp.Summary.Accuracy))
	assert.False(t, math.IsInf(cmp.Summary.Accuracy, 0))
	assert.InDelta(t, 100, cmp.Summary.Accuracy, 1e-9)
}

func TestCompareReannotatedPlanDropsStaleActuals(t *testing.T) {
	plan := planWithNets(model.CountryPeru, 1000, 500)
	first, err := Compare(plan, []model.TransactionRecord{
		{Date: on(1), Amount: 900, Country: "Peru"},
		{Date: on(8), Amount: 400, Country: "Peru"},
	}, nil, CompareOptions{Now: now})
	require.NoError(t, err)
	require.NotNil(t, first.Weeks[1].ActualNet)

	// Score the annotated weeks again with data for week 1 only.
	plan.Scenarios.Base = first.Weeks
	second, err := Compare(plan, []model.TransactionRecord{
		{Date: on(2), Amount: 1000, Country: "Peru"},
	}, nil, CompareOptions{Now: now})
	require.NoError(t, err)

	require.NotNil(t, second.Weeks[0].ActualNet)
	assert.InDelta(t, 1000, *second.Weeks[0].ActualNet, 1e-9)
	w2 := second.Weeks[1]
	assert.Nil(t, w2.ActualInflows)
	assert.Nil(t, w2.ActualOutflows)
	assert.Nil(t, w2.ActualNet)
	assert.Nil(t, w2.Variance)
	assert.Nil(t, w2.VarianceAbsolute)
	assert.Equal(t, 1, second.Summary.WeeksWithData)
	assert.InDelta(t, 100, second.Summary.Accuracy, 1e-9)

	// The input weeks are not touched.
	require.NotNil(t, first.Weeks[1].ActualNet)
	assert.InDelta(t, 400, *first.Weeks[1].ActualNet, 1e-9)
}

func TestCompareNoData(t *testing.T) {
	plan := planWithNets(model.CountryMexico, 10, 20)
	cmp, err := Compare(plan, nil, nil, CompareOptions{Now: now})
	require.NoError(t, err)
	assert.Equal(t, 0, cmp.Summary.WeeksWithData)
	assert.InDelta(t, 100, cmp.Summary.Accuracy, 1e-9)
	assert.NotNil(t, cmp.ActualInflows)
}

func TestCompareAccuracyFloorsAtZero(t *testing.T) {
	plan := planWithNets(model.CountryPeru, 100)
	sales := []model.TransactionRecord{{Date: on(0), Amount: 500, Country: "Peru"}}
	cmp, err := Compare(plan, sales, nil, CompareOptions{Now: now})
	require.NoError(t, err)
	assert.InDelta(t, 400, cmp.Summary.AvgVariance, 1e-9)
	assert.Zero(t, cmp.Summary.Accuracy)
}

func TestCompareGlobalNormalizes(t *testing.T) {
	plan := planWithNets(model.CountryGlobal, 100)
	sales := []model.TransactionRecord{
		{Date: on(0), Amount: 380, Country: "Peru"},
		{Date: on(0), Amount: 40000, Country: "Colombia"},
	}
	cmp, err := Compare(plan, sales, nil, CompareOptions{Now: now})
	require.NoError(t, err)
	assert.InDelta(t, 110, *cmp.Weeks[0].ActualInflows, 1e-9)
	assert.InDelta(t, 10, *cmp.Weeks[0].Variance, 1e-9)
}

func TestCompareScenarioSelection(t *testing.T) {
	plan := planWithNets(model.CountryPeru, 100)
	plan.Scenarios.Optimistic = ApplyScenario(
		BaselineWeeks(model.HistoricalStats{AvgDailyInflows: 100.0 / 7}, 1, now),
		model.ScenarioFactors{InflowFactor: 2, OutflowFactor: 1})
	sales := []model.TransactionRecord{{Date: on(0), Amount: 100, Country: "Peru"}}

	cmp, err := Compare(plan, sales, nil, CompareOptions{Scenario: model.ScenarioOptimistic, Now: now})
	require.NoError(t, err)
	assert.Equal(t, model.ScenarioOptimistic, cmp.Scenario)
	assert.InDelta(t, -50, *cmp.Weeks[0].Variance, 1e-9)

	_, err = Compare(plan, sales, nil, CompareOptions{Scenario: "pessimistic"})
	assert.Error(t, err)

	_, err = Compare(nil, nil, nil, CompareOptions{})
	assert.Error(t, err)
}

func TestWeekRangeContains(t *testing.T) {
	r := WeekRange{Start: time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC), End: time.Date(2025, 1, 12, 0, 0, 0, 0, time.UTC)}
	assert.True(t, r.Contains(time.Date(2025, 1, 12, 23, 59, 59, 0, time.UTC)))
	assert.True(t, r.Contains(time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)))
	assert.False(t, r.Contains(time.Date(2025, 1, 13, 0, 0, 0, 0, time.UTC)))
	assert.False(t, r.Contains(time.Date(2025, 1, 5, 23, 0, 0, 0, time.UTC)))
}

func TestGroupByWeekHasData(t *testing.T) {
	ranges := []WeekRange{
		{Start: model.StartOfDay(now), End: model.StartOfDay(now).AddDate(0, 0, 6)},
		{Start: model.StartOfDay(now).AddDate(0, 0, 7), End: model.StartOfDay(now).AddDate(0, 0, 13)},
	}
	// A zero-amount record still marks the week as having data.
	got := GroupByWeek(nil, []model.TransactionRecord{{Date: on(8), Amount: 0}}, ranges,
		func(r model.TransactionRecord) float64 { return r.Amount })
	assert.False(t, got[0].HasData)
	assert.True(t, got[1].HasData)
	assert.Equal(t, 2, got[1].Week)
}
