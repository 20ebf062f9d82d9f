package seasonal

import (
	"sort"

	"cashflow-forecast/internal/currency"
	"cashflow-forecast/internal/model"
)

// DefaultCities maps weekly-model city keys to their country.
func DefaultCities() map[string]model.Country {
	return map[string]model.Country{
		"Lima":        model.CountryPeru,
		"Piura":       model.CountryPeru,
		"Bogota":      model.CountryColombia,
		"CDMX":        model.CountryMexico,
		"Guadalajara": model.CountryMexico,
	}
}

// CountryMetrics rolls the weekly model up to one country. Sales, catering
// and delivery are summed across the country's cities; gross margin is the
// mean of the non-zero city margins for each week. Global takes every city
// and converts each one to USD at its country's rate, since the cities report
// in local currency. A city with no known country stays unconverted and is
// logged as unresolved.
//
// It returns nil when data is nil or no city belongs to country. A nil cities
// map means DefaultCities; nil rates mean currency.Default().
func CountryMetrics(data *model.WeeklyFinancialData, country model.Country, cities map[string]model.Country, rates *currency.Table) *model.WeeklyMetrics {
	if data == nil || len(data.CitiesData) == 0 {
		return nil
	}
	if cities == nil {
		cities = DefaultCities()
	}

	var names []string
	for city := range data.CitiesData {
		if country == model.CountryGlobal || cities[city] == country {
			names = append(names, city)
		}
	}
	if len(names) == 0 {
		return nil
	}
	sort.Strings(names)

	n := len(data.Weeks)
	m := &model.WeeklyMetrics{
		Country:        country,
		Weeks:          append([]string(nil), data.Weeks...),
		TotalSales:     make([]float64, n),
		TotalCatering:  make([]float64, n),
		TotalDelivery:  make([]float64, n),
		AvgGrossMargin: make([]float64, n),
	}
	marginSum := make([]float64, n)
	marginCount := make([]int, n)

	toUSD := country == model.CountryGlobal
	if toUSD && rates == nil {
		rates = currency.Default()
	}
	var unresolved currency.UnresolvedLog

	for _, city := range names {
		cm := data.CitiesData[city]
		factor := 1.0
		if toUSD {
			tag := string(cities[city])
			usd, ok := rates.ToUSD(1, tag)
			if !ok {
				unresolved.Add(city)
			}
			factor = usd
		}
		addInto(m.TotalSales, cm.Sales, factor)
		addInto(m.TotalCatering, cm.Catering, factor)
		addInto(m.TotalDelivery, cm.Delivery, factor)
		for i := 0; i < n && i < len(cm.GrossMargin); i++ {
			if v := cm.GrossMargin[i]; v != 0 {
				marginSum[i] += v
				marginCount[i]++
			}
		}
	}
	for i := range m.AvgGrossMargin {
		if marginCount[i] > 0 {
			m.AvgGrossMargin[i] = marginSum[i] / float64(marginCount[i])
		}
	}
	unresolved.Flush("Seasonal")
	return m
}

// addInto adds src times factor element-wise into dst, ignoring values past len(dst).
func addInto(dst, src []float64, factor float64) {
	for i := 0; i < len(dst) && i < len(src); i++ {
		dst[i] += src[i] * factor
	}
}
