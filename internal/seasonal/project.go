package seasonal

import (
	"log"
	"time"

	"cashflow-forecast/internal/model"
)

// Options tunes Project. Zero fields take the DefaultOptions value.
type Options struct {
	// MatchToleranceDays is how far the closest week may sit from the
	// one-year-prior target and still count as a seasonal match.
	MatchToleranceDays int
	// TrailingWeeks is the size of the trailing average used for fill and fallback.
	TrailingWeeks      int
	MatchConfidence    float64
	FallbackConfidence float64
}

// DefaultOptions: a one-week tolerance, four trailing weeks, 0.85 and 0.5.
func DefaultOptions() Options {
	return Options{
		MatchToleranceDays: 7,
		TrailingWeeks:      4,
		MatchConfidence:    0.85,
		FallbackConfidence: 0.5,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.MatchToleranceDays <= 0 {
		o.MatchToleranceDays = d.MatchToleranceDays
	}
	if o.TrailingWeeks <= 0 {
		o.TrailingWeeks = d.TrailingWeeks
	}
	if o.MatchConfidence <= 0 {
		o.MatchConfidence = d.MatchConfidence
	}
	if o.FallbackConfidence <= 0 {
		o.FallbackConfidence = d.FallbackConfidence
	}
	return o
}

// Projection is a seasonal baseline for the next len(Sales) weeks.
type Projection struct {
	Sales    []float64
	Catering []float64
	Delivery []float64

	Confidence float64

	Matched      bool
	MatchedIndex int // -1 without a match
	MatchedWeek  string
}

// Summary converts p for plan metadata.
func (p Projection) Summary() *model.SeasonalSummary {
	return &model.SeasonalSummary{
		Matched:        p.Matched,
		MatchedWeek:    p.MatchedWeek,
		Confidence:     p.Confidence,
		ProjectedSales: append([]float64(nil), p.Sales...),
	}
}

// Project builds a futureWeeks-long baseline from the weekly metrics.
//
// It looks for the week closest to anchor minus one year (first wins on ties).
// With a match inside the tolerance it copies consecutive weeks from there and
// pads with the trailing average once the history runs out. Without one it
// repeats the trailing average. Nil metrics yield an empty projection with
// zero confidence.
func Project(metrics *model.WeeklyMetrics, futureWeeks int, anchor time.Time, opts Options) Projection {
	if metrics == nil || futureWeeks <= 0 {
		return Projection{MatchedIndex: -1}
	}
	opts = opts.withDefaults()

	avgSales := trailingAverage(metrics.TotalSales, opts.TrailingWeeks)
	avgCatering := trailingAverage(metrics.TotalCatering, opts.TrailingWeeks)
	avgDelivery := trailingAverage(metrics.TotalDelivery, opts.TrailingWeeks)

	p := Projection{
		Sales:        make([]float64, 0, futureWeeks),
		Catering:     make([]float64, 0, futureWeeks),
		Delivery:     make([]float64, 0, futureWeeks),
		MatchedIndex: -1,
	}

	target := anchor.UTC().AddDate(-1, 0, 0)
	idx, diff := closestWeek(metrics.Weeks, target)
	tolerance := time.Duration(opts.MatchToleranceDays) * 24 * time.Hour

	if idx < 0 || diff > tolerance {
		if idx >= 0 {
			log.Printf("[Seasonal] closest week %s is %.0f days from %s, using trailing average",
				metrics.Weeks[idx], diff.Hours()/24, target.Format(model.DateLayout))
		}
		for i := 0; i < futureWeeks; i++ {
			p.Sales = append(p.Sales, avgSales)
			p.Catering = append(p.Catering, avgCatering)
			p.Delivery = append(p.Delivery, avgDelivery)
		}
		p.Confidence = opts.FallbackConfidence
		return p
	}

	log.Printf("[Seasonal] match at %s for target %s", metrics.Weeks[idx], target.Format(model.DateLayout))
	p.Matched = true
	p.MatchedIndex = idx
	p.MatchedWeek = metrics.Weeks[idx]
	for i := 0; i < futureWeeks; i++ {
		j := idx + i
		if j < metrics.Len() {
			p.Sales = append(p.Sales, at(metrics.TotalSales, j))
			p.Catering = append(p.Catering, at(metrics.TotalCatering, j))
			p.Delivery = append(p.Delivery, at(metrics.TotalDelivery, j))
			continue
		}
		p.Sales = append(p.Sales, avgSales)
		p.Catering = append(p.Catering, avgCatering)
		p.Delivery = append(p.Delivery, avgDelivery)
	}
	p.Confidence = opts.MatchConfidence
	return p
}

// closestWeek returns the index of the parseable week nearest to target and
// its distance. Unparseable entries are skipped; idx is -1 if none parse.
func closestWeek(weeks []string, target time.Time) (int, time.Duration) {
	best := -1
	var bestDiff time.Duration
	for i, w := range weeks {
		t, ok := model.ParseDate(w)
		if !ok {
			continue
		}
		d := t.Sub(target)
		if d < 0 {
			d = -d
		}
		if best < 0 || d < bestDiff {
			best, bestDiff = i, d
		}
	}
	return best, bestDiff
}

// trailingAverage is the mean of the last n values, or of all of them when
// there are fewer than n.
func trailingAverage(xs []float64, n int) float64 {
	if len(xs) == 0 {
		return 0
	}
	if len(xs) > n {
		xs = xs[len(xs)-n:]
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func at(xs []float64, i int) float64 {
	if i < len(xs) {
		return xs[i]
	}
	return 0
}
