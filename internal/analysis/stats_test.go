package analysis

import (
	"math"
	"testing"
	"time"

	"cashflow-forecast/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 3, 10, 15, 30, 0, 0, time.UTC)

func day(offset int) string {
	return model.StartOfDay(now).AddDate(0, 0, offset).Format(model.DateLayout)
}

func rec(date string, amount float64, tag string) model.TransactionRecord {
	return model.TransactionRecord{Date: date, Amount: amount, Country: tag}
}

func TestComputeStatsArithmeticSeries(t *testing.T) {
	sales := []model.TransactionRecord{
		rec(day(-3), 100, "Peru"),
		rec(day(-2), 110, "Peru"),
		rec(day(-1), 120, "Peru"),
		rec(day(0), 130, "Peru"),
	}
	s := ComputeStats(sales, nil, StatsOptions{WindowDays: 4, Now: now})

	assert.Equal(t, 4, s.WindowDays)
	assert.InDelta(t, 460, s.TotalInflows, 1e-9)
	assert.InDelta(t, 115, s.AvgDailyInflows, 1e-9)
	assert.InDelta(t, 10, s.Trend, 1e-9)
	assert.InDelta(t, math.Sqrt(125), s.Volatility, 1e-9)
	assert.Zero(t, s.TotalOutflows)
}

func TestComputeStatsEmpty(t *testing.T) {
	s := ComputeStats(nil, nil, StatsOptions{WindowDays: 30, Now: now})
	assert.Equal(t, model.HistoricalStats{WindowDays: 30}, s)

	s = ComputeStats([]model.TransactionRecord{rec(day(0), 5, "")}, nil, StatsOptions{WindowDays: 0, Now: now})
	assert.Equal(t, model.HistoricalStats{}, s)
}

func TestComputeStatsWindowBounds(t *testing.T) {
	sales := []model.TransactionRecord{
		rec(day(-30), 1000, ""), // one day before a 30-day window
		rec(day(-29), 1, ""),
		rec(day(0), 2, ""),
		rec(day(1), 4000, ""), // tomorrow
		rec("not a date", 7, ""),
	}
	s := ComputeStats(sales, nil, StatsOptions{WindowDays: 30, Now: now})
	assert.InDelta(t, 3, s.TotalInflows, 1e-9)
	assert.Equal(t, 1, s.SkippedRecords)
}

func TestComputeStatsOutflows(t *testing.T) {
	purchases := []model.TransactionRecord{
		rec(day(-1)+"T08:00:00Z", 300, ""),
		rec(day(-1)+" 17:00:00", 300, ""),
	}
	s := ComputeStats(nil, purchases, StatsOptions{WindowDays: 10, Now: now})
	assert.InDelta(t, 600, s.TotalOutflows, 1e-9)
	assert.InDelta(t, 60, s.AvgDailyOutflows, 1e-9)
}

func TestComputeStatsNormalizeCurrency(t *testing.T) {
	sales := []model.TransactionRecord{
		rec(day(0), 380, "Peru"),
		rec(day(0), 4000, "Colombia"),
		{Date: day(0), Amount: 37, Currency: "MXN", Country: "Mexico"},
		rec(day(0), 50, "Atlantis"),
	}
	s := ComputeStats(sales, nil, StatsOptions{WindowDays: 1, Now: now, NormalizeCurrency: true})
	assert.InDelta(t, 100+1+2+50, s.TotalInflows, 1e-9)
	assert.Equal(t, 1, s.UnresolvedCurrencies)
}

func TestAggregatorAdditivity(t *testing.T) {
	var sales []model.TransactionRecord
	for i := -9; i <= 0; i++ {
		sales = append(sales, rec(day(i), float64(10*(i+20)), ""))
	}
	all := ComputeStats(sales, nil, StatsOptions{WindowDays: 10, Now: now})
	recent := ComputeStats(sales, nil, StatsOptions{WindowDays: 4, Now: now})
	older := ComputeStats(sales, nil, StatsOptions{WindowDays: 6, Now: now.AddDate(0, 0, -4)})

	assert.InDelta(t, all.TotalInflows, recent.TotalInflows+older.TotalInflows, 1e-9)
}

func TestTrendSign(t *testing.T) {
	build := func(values ...float64) []model.TransactionRecord {
		out := make([]model.TransactionRecord, len(values))
		for i, v := range values {
			out[i] = rec(day(i-len(values)+1), v, "")
		}
		return out
	}
	opts := StatsOptions{WindowDays: 5, Now: now}

	assert.Greater(t, ComputeStats(build(1, 2, 4, 8, 16), nil, opts).Trend, 0.0)
	assert.Less(t, ComputeStats(build(50, 40, 30, 20, 10), nil, opts).Trend, 0.0)
	assert.Zero(t, ComputeStats(build(7, 7, 7, 7, 7), nil, opts).Trend)

	for _, c := range []struct {
		value float64
		days  int
	}{{33.33, 30}, {1234.56, 7}, {0.1, 90}} {
		values := make([]float64, c.days)
		for i := range values {
			values[i] = c.value
		}
		s := ComputeStats(build(values...), nil, StatsOptions{WindowDays: c.days, Now: now})
		assert.Zero(t, s.Trend, "constant %v over %d days", c.value, c.days)
		assert.Zero(t, LinearSlope(values), "constant %v over %d days", c.value, c.days)
	}
}

func TestLinearSlopeDegenerate(t *testing.T) {
	assert.Zero(t, LinearSlope(nil))
	assert.Zero(t, LinearSlope([]float64{42}))
	assert.InDelta(t, 0.5, LinearSlope([]float64{0.1, 0.6, 1.1}), 1e-12)
}

func TestWindowIndex(t *testing.T) {
	w := Window{Start: WindowStart(now, 3), Days: 3}
	require.Equal(t, time.Date(2025, 3, 8, 0, 0, 0, 0, time.UTC), w.Start)
	assert.Equal(t, 0, w.Index(time.Date(2025, 3, 8, 23, 59, 0, 0, time.UTC)))
	assert.Equal(t, 2, w.Index(now))
	assert.Equal(t, -1, w.Index(time.Date(2025, 3, 7, 23, 59, 0, 0, time.UTC)))
	assert.Equal(t, -1, w.Index(time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC)))
}

func TestRankCountries(t *testing.T) {
	ranked := RankCountries(map[model.Country]model.HistoricalStats{
		model.CountryPeru:     {AvgDailyInflows: 100, AvgDailyOutflows: 90},
		model.CountryMexico:   {AvgDailyInflows: 500, AvgDailyOutflows: 100},
		model.CountryColombia: {AvgDailyInflows: 5, AvgDailyOutflows: 0},
	})
	require.Len(t, ranked, 3)
	assert.Equal(t, model.CountryMexico, ranked[0].Country)
	assert.Equal(t, model.CountryPeru, ranked[1].Country)
	assert.Equal(t, model.CountryColombia, ranked[2].Country)
}
