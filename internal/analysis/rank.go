package analysis

import (
	"sort"

	"cashflow-forecast/internal/model"
)

// CountryRanking pairs a country with its window stats.
type CountryRanking struct {
	Country model.Country
	Stats   model.HistoricalStats
}

// RankCountries sorts countries by average daily net cash flow, descending.
// Ties fall back to country name so the order is stable.
func RankCountries(byCountry map[model.Country]model.HistoricalStats) []CountryRanking {
	out := make([]CountryRanking, 0, len(byCountry))
	for c, s := range byCountry {
		out = append(out, CountryRanking{Country: c, Stats: s})
	}
	sort.Slice(out, func(i, j int) bool {
		ni, nj := out[i].Stats.AvgDailyNet(), out[j].Stats.AvgDailyNet()
		if ni != nj {
			return ni > nj
		}
		return out[i].Country < out[j].Country
	})
	return out
}
