package seasonal

import (
	"testing"
	"time"

	"cashflow-forecast/internal/currency"
	"cashflow-forecast/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var anchor = time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC)

// weeklyFrom builds n weekly dates starting at start with sales 1..n.
func weeklyFrom(start time.Time, n int) *model.WeeklyMetrics {
	m := &model.WeeklyMetrics{Country: model.CountryPeru}
	for i := 0; i < n; i++ {
		m.Weeks = append(m.Weeks, start.AddDate(0, 0, 7*i).Format(model.DateLayout))
		m.TotalSales = append(m.TotalSales, float64(i+1))
		m.TotalCatering = append(m.TotalCatering, float64(10*(i+1)))
		m.TotalDelivery = append(m.TotalDelivery, float64(100*(i+1)))
		m.AvgGrossMargin = append(m.AvgGrossMargin, 0.3)
	}
	return m
}

func TestProjectSeasonalMatch(t *testing.T) {
	// Week index 2 is 2024-06-16, exactly one year before the anchor.
	m := weeklyFrom(time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC), 10)
	p := Project(m, 4, anchor, Options{})

	require.True(t, p.Matched)
	assert.Equal(t, 2, p.MatchedIndex)
	assert.Equal(t, "2024-06-16", p.MatchedWeek)
	assert.InDelta(t, 0.85, p.Confidence, 1e-9)
	assert.Equal(t, []float64{3, 4, 5, 6}, p.Sales)
	assert.Equal(t, []float64{30, 40, 50, 60}, p.Catering)
	assert.Equal(t, []float64{300, 400, 500, 600}, p.Delivery)
}

func TestProjectSeasonalMatchPadsWithTrailingAverage(t *testing.T) {
	// Five weeks, match at index 3: two real weeks then the trailing average.
	m := weeklyFrom(time.Date(2024, 5, 26, 0, 0, 0, 0, time.UTC), 5)
	p := Project(m, 4, anchor, Options{})

	require.True(t, p.Matched)
	assert.Equal(t, 3, p.MatchedIndex)
	avg := (2.0 + 3 + 4 + 5) / 4
	assert.Equal(t, []float64{4, 5, avg, avg}, p.Sales)
}

func TestProjectSeasonalFallback(t *testing.T) {
	// Only recent history: nothing within a week of one year ago.
	m := weeklyFrom(anchor.AddDate(0, 0, -7*8), 8)
	p := Project(m, 3, anchor, Options{})

	assert.False(t, p.Matched)
	assert.Equal(t, -1, p.MatchedIndex)
	assert.InDelta(t, 0.5, p.Confidence, 1e-9)
	avg := (5.0 + 6 + 7 + 8) / 4
	assert.Equal(t, []float64{avg, avg, avg}, p.Sales)
	assert.Equal(t, []float64{avg * 10, avg * 10, avg * 10}, p.Catering)
}

func TestProjectSeasonalFallbackShortHistory(t *testing.T) {
	m := weeklyFrom(anchor.AddDate(0, 0, -14), 2)
	p := Project(m, 2, anchor, Options{})
	assert.Equal(t, []float64{1.5, 1.5}, p.Sales)
}

func TestProjectTieBreaksOnFirstOccurrence(t *testing.T) {
	target := anchor.AddDate(-1, 0, 0)
	m := &model.WeeklyMetrics{
		Weeks:      []string{target.AddDate(0, 0, -3).Format(model.DateLayout), target.AddDate(0, 0, 3).Format(model.DateLayout)},
		TotalSales: []float64{11, 22},
	}
	p := Project(m, 1, anchor, Options{})
	require.True(t, p.Matched)
	assert.Equal(t, 0, p.MatchedIndex)
}

func TestProjectSkipsUnparseableWeeks(t *testing.T) {
	target := anchor.AddDate(-1, 0, 0)
	m := &model.WeeklyMetrics{
		Weeks:      []string{"week 24", target.Format(model.DateLayout)},
		TotalSales: []float64{999, 5},
	}
	p := Project(m, 1, anchor, Options{})
	require.True(t, p.Matched)
	assert.Equal(t, []float64{5}, p.Sales)
}

func TestProjectToleranceIsConfigurable(t *testing.T) {
	m := weeklyFrom(anchor.AddDate(-1, 0, -20), 1)

	assert.False(t, Project(m, 1, anchor, Options{}).Matched)
	assert.True(t, Project(m, 1, anchor, Options{MatchToleranceDays: 21}).Matched)
}

func TestProjectNilMetrics(t *testing.T) {
	p := Project(nil, 4, anchor, Options{})
	assert.Empty(t, p.Sales)
	assert.Zero(t, p.Confidence)
}

func TestCountryMetrics(t *testing.T) {
	data := &model.WeeklyFinancialData{
		Weeks: []string{"2024-01-01", "2024-01-08", "2024-01-15"},
		CitiesData: map[string]model.CityMetrics{
			"Lima":   {Sales: []float64{100, 200, 300}, Catering: []float64{1, 1, 1}, GrossMargin: []float64{0.4, 0, 0.2}},
			"Piura":  {Sales: []float64{10, 20}, Delivery: []float64{5, 5, 5}, GrossMargin: []float64{0.2, 0.3, 0}},
			"Bogota": {Sales: []float64{7, 7, 7}, GrossMargin: []float64{0.9, 0.9, 0.9}},
		},
	}

	peru := CountryMetrics(data, model.CountryPeru, nil, nil)
	require.NotNil(t, peru)
	assert.Equal(t, []float64{110, 220, 300}, peru.TotalSales)
	assert.Equal(t, []float64{1, 1, 1}, peru.TotalCatering)
	assert.Equal(t, []float64{5, 5, 5}, peru.TotalDelivery)
	assert.InDeltaSlice(t, []float64{0.3, 0.3, 0.2}, peru.AvgGrossMargin, 1e-9)
	assert.Len(t, peru.Weeks, 3)

	assert.Nil(t, CountryMetrics(data, model.CountryMexico, nil, nil))
	assert.Nil(t, CountryMetrics(nil, model.CountryPeru, nil, nil))
}

func TestCountryMetricsGlobalConvertsToUSD(t *testing.T) {
	data := &model.WeeklyFinancialData{
		Weeks: []string{"2024-01-01", "2024-01-08"},
		CitiesData: map[string]model.CityMetrics{
			"Lima":   {Sales: []float64{380, 760}, Catering: []float64{38, 38}},
			"Bogota": {Sales: []float64{4000000, 8000000}, Delivery: []float64{40000, 0}},
			"CDMX":   {Sales: []float64{1850, 0}},
		},
	}

	global := CountryMetrics(data, model.CountryGlobal, nil, currency.Default())
	require.NotNil(t, global)
	assert.InDeltaSlice(t, []float64{100 + 1000 + 100, 200 + 2000}, global.TotalSales, 1e-9)
	assert.InDeltaSlice(t, []float64{10, 10}, global.TotalCatering, 1e-9)
	assert.InDeltaSlice(t, []float64{10, 0}, global.TotalDelivery, 1e-9)

	// Country roll-ups stay in local currency.
	colombia := CountryMetrics(data, model.CountryColombia, nil, currency.Default())
	require.NotNil(t, colombia)
	assert.Equal(t, []float64{4000000, 8000000}, colombia.TotalSales)

	// A city without a country mapping is kept at rate 1.
	data.CitiesData["Quito"] = model.CityMetrics{Sales: []float64{5, 5}}
	global = CountryMetrics(data, model.CountryGlobal, nil, nil)
	assert.InDeltaSlice(t, []float64{1205, 2205}, global.TotalSales, 1e-9)
}
