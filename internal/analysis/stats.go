package analysis

import (
	"log"
	"math"
	"time"

	"cashflow-forecast/internal/currency"
	"cashflow-forecast/internal/model"
)

// StatsOptions controls ComputeStats.
type StatsOptions struct {
	// WindowDays is the number of calendar days ending on Now's day (inclusive).
	WindowDays int
	// Now anchors the window. Only its UTC calendar day matters.
	Now time.Time
	// NormalizeCurrency converts every amount to USD before summing.
	NormalizeCurrency bool
	// Rates is used when NormalizeCurrency is set. Nil means currency.Default().
	Rates *currency.Table
}

// ComputeStats reduces sales (inflows) and purchases (outflows) over the
// trailing window into totals, daily averages, an inflow trend and volatility.
//
// Empty input, or a non-positive window, yields zero stats. Records whose date
// cannot be parsed are skipped and counted.
func ComputeStats(sales, purchases []model.TransactionRecord, opts StatsOptions) model.HistoricalStats {
	stats := model.HistoricalStats{WindowDays: opts.WindowDays}
	if opts.WindowDays <= 0 {
		stats.WindowDays = 0
		return stats
	}
	rates := opts.Rates
	if rates == nil {
		rates = currency.Default()
	}

	w := Window{Start: WindowStart(opts.Now, opts.WindowDays), Days: opts.WindowDays}
	var unresolved currency.UnresolvedLog
	amount := func(r model.TransactionRecord) float64 {
		if !opts.NormalizeCurrency {
			return r.Amount
		}
		usd, ok := rates.ToUSD(r.Amount, r.CurrencyTag())
		if !ok {
			unresolved.Add(r.CurrencyTag())
		}
		return usd
	}

	inflows, skippedIn := DailySeries(sales, w, amount)
	outflows, skippedOut := DailySeries(purchases, w, amount)

	stats.TotalInflows = Sum(inflows)
	stats.TotalOutflows = Sum(outflows)
	stats.AvgDailyInflows = stats.TotalInflows / float64(w.Days)
	stats.AvgDailyOutflows = stats.TotalOutflows / float64(w.Days)
	stats.Trend = LinearSlope(inflows)
	stats.Volatility = StdDev(inflows)
	stats.UnresolvedCurrencies = unresolved.Count
	stats.SkippedRecords = skippedIn + skippedOut

	unresolved.Flush("Stats")
	if stats.SkippedRecords > 0 {
		log.Printf("[Stats] skipped %d records with unparseable dates", stats.SkippedRecords)
	}
	return stats
}

// Window is a run of Days consecutive UTC calendar days starting at Start.
type Window struct {
	Start time.Time
	Days  int
}

// WindowStart returns midnight UTC of the first day of a window of days ending
// on now's day.
func WindowStart(now time.Time, days int) time.Time {
	return model.StartOfDay(now).AddDate(0, 0, -(days - 1))
}

// Index returns t's day offset into the window, or -1 if t is outside it.
func (w Window) Index(t time.Time) int {
	d := model.StartOfDay(t)
	if d.Before(w.Start) {
		return -1
	}
	idx := int(d.Sub(w.Start).Hours() / 24)
	if idx >= w.Days {
		return -1
	}
	return idx
}

// DailySeries buckets records into a dense per-day slice of length w.Days.
// Days with no activity are 0. It also returns the number of records skipped
// for an unparseable date.
func DailySeries(records []model.TransactionRecord, w Window, amount func(model.TransactionRecord) float64) ([]float64, int) {
	series := make([]float64, w.Days)
	skipped := 0
	for _, r := range records {
		t, ok := r.Time()
		if !ok {
			skipped++
			continue
		}
		idx := w.Index(t)
		if idx < 0 {
			continue
		}
		series[idx] += amount(r)
	}
	return series, skipped
}

// Sum adds xs.
func Sum(xs []float64) float64 {
	s := 0.0
	for _, x := range xs {
		s += x
	}
	return s
}

// Mean is 0 for an empty slice.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return Sum(xs) / float64(len(xs))
}

// StdDev is the population standard deviation of xs.
func StdDev(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	m := Mean(xs)
	ss := 0.0
	for _, x := range xs {
		d := x - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(xs)))
}

// LinearSlope is the ordinary least-squares slope of ys against their index,
// computed on centred values. It is exactly 0 for fewer than two points and
// for a constant series, so the sign of a flat window is never float noise.
func LinearSlope(ys []float64) float64 {
	if len(ys) < 2 {
		return 0
	}
	flat := true
	for _, y := range ys[1:] {
		if y != ys[0] {
			flat = false
			break
		}
	}
	if flat {
		return 0
	}
	xMean := float64(len(ys)-1) / 2
	yMean := Mean(ys)
	var sxy, sxx float64
	for i, y := range ys {
		dx := float64(i) - xMean
		sxy += dx * (y - yMean)
		sxx += dx * dx
	}
	if sxx == 0 {
		return 0
	}
	return sxy / sxx
}
