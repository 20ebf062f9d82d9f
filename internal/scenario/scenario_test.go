package scenario

import (
	"testing"

	"cashflow-forecast/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeStableUptrend(t *testing.T) {
	a := Analyze(Context{
		Country: model.CountryPeru,
		Stats: model.HistoricalStats{
			AvgDailyInflows:  100,
			AvgDailyOutflows: 50,
			Trend:            6,
			Volatility:       10,
			WindowDays:       30,
		},
	})

	assert.InDelta(t, 1.06, a.Scenarios.Base.InflowFactor, 1e-9)
	assert.InDelta(t, 1.042, a.Scenarios.Base.OutflowFactor, 1e-9)
	assert.InDelta(t, 1.14, a.Scenarios.Optimistic.InflowFactor, 1e-9)
	assert.InDelta(t, 1.002, a.Scenarios.Optimistic.OutflowFactor, 1e-9)
	assert.InDelta(t, 0.98, a.Scenarios.Conservative.InflowFactor, 1e-9)
	assert.InDelta(t, 1.082, a.Scenarios.Conservative.OutflowFactor, 1e-9)
	assert.InDelta(t, 0.95, a.Confidence, 1e-9)
	assert.Equal(t, NameDerived, a.Strategy)
	assert.Contains(t, a.Insights[0], "Positive trend")
	assert.Equal(t, []string{"No significant risks detected in the historical data"}, a.Risks)
}

func TestAnalyzeFlatWindow(t *testing.T) {
	a := Analyze(Context{Stats: model.HistoricalStats{
		AvgDailyInflows:  33.33,
		AvgDailyOutflows: 10,
		WindowDays:       30,
	}})

	assert.Equal(t, "Flat trend: inflows held steady over the window", a.Insights[0])
	assert.Contains(t, a.Scenarios.Base.Rationale, "flat trend")
	assert.InDelta(t, 1.0, a.Scenarios.Base.InflowFactor, 1e-9)
	assert.InDelta(t, 1.0, a.Scenarios.Base.OutflowFactor, 1e-9)
}

func TestAnalyzeVolatileDowntrend(t *testing.T) {
	a := Analyze(Context{
		Country: model.CountryMexico,
		Stats: model.HistoricalStats{
			AvgDailyInflows:  100,
			AvgDailyOutflows: 90,
			Trend:            -20,
			Volatility:       50,
			WindowDays:       10,
		},
	})

	assert.InDelta(t, 0.92, a.Scenarios.Base.InflowFactor, 1e-9)
	assert.InDelta(t, 0.944, a.Scenarios.Base.OutflowFactor, 1e-9)
	assert.InDelta(t, 1.07, a.Scenarios.Optimistic.InflowFactor, 1e-9)
	assert.InDelta(t, 0.869, a.Scenarios.Optimistic.OutflowFactor, 1e-9)
	assert.InDelta(t, 0.80, a.Scenarios.Conservative.InflowFactor, 1e-9)
	assert.InDelta(t, 1.019, a.Scenarios.Conservative.OutflowFactor, 1e-9)
	assert.InDelta(t, 0.35, a.Confidence, 1e-9)
	assert.Len(t, a.Risks, 4)
}

func TestAnalyzeClampsStrongTrend(t *testing.T) {
	a := Analyze(Context{Stats: model.HistoricalStats{
		AvgDailyInflows: 100,
		Trend:           80,
		Volatility:      30,
		WindowDays:      30,
	}})
	// +10% cap on the base inflow, optimistic capped at 1.25.
	assert.InDelta(t, 1.10, a.Scenarios.Base.InflowFactor, 1e-9)
	assert.InDelta(t, 1.22, a.Scenarios.Optimistic.InflowFactor, 1e-9)
	assert.LessOrEqual(t, a.Scenarios.Optimistic.InflowFactor, 1.25)
}

func TestAnalyzeNoInflows(t *testing.T) {
	a := Analyze(Context{Stats: model.HistoricalStats{WindowDays: 30}})
	assert.InDelta(t, 1.0, a.Scenarios.Base.InflowFactor, 1e-9)
	assert.InDelta(t, 1.0, a.Scenarios.Base.OutflowFactor, 1e-9)
	assert.InDelta(t, 0.85, a.Confidence, 1e-9)
	assert.Contains(t, a.Risks, "No inflow history to project from")
}

func TestNew(t *testing.T) {
	s, err := New("", nil)
	require.NoError(t, err)
	assert.Equal(t, NameFixed, s.Name())
	assert.Equal(t, DefaultFactorSet(), s.Factors(Context{}))

	s, err = New(NameFixed, &model.FactorSet{Optimistic: model.ScenarioFactors{InflowFactor: 1.3}})
	require.NoError(t, err)
	set := s.Factors(Context{})
	assert.InDelta(t, 1.3, set.Optimistic.InflowFactor, 1e-9)
	assert.InDelta(t, 1.08, set.Optimistic.OutflowFactor, 1e-9)
	assert.InDelta(t, 1.10, set.Base.InflowFactor, 1e-9)

	s, err = New(NameDerived, nil)
	require.NoError(t, err)
	assert.Equal(t, NameDerived, s.Name())

	_, err = New("gemini", nil)
	assert.Error(t, err)
}

func TestCatalog(t *testing.T) {
	c := Catalog()
	require.Len(t, c, 2)
	assert.NotNil(t, c[0].Factors)
	assert.Nil(t, c[1].Factors)
}
