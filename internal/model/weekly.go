package model

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// CityMetrics is the per-city block of the weekly financial model. Each slice is
// indexed like WeeklyFinancialData.Weeks.
//
// Decoding is lenient: blank, null or non-numeric cells become 0 and are
// counted in Coerced instead of failing the whole export.
type CityMetrics struct {
	Sales          []float64 `json:"Sales"`
	Catering       []float64 `json:"Catering"`
	Delivery       []float64 `json:"Delivery"`
	Foodcost       []float64 `json:"Foodcost,omitempty"`
	MarketingCosts []float64 `json:"Marketing Costs,omitempty"`
	SalesPayroll   []float64 `json:"Sales Payroll,omitempty"`
	GrossMargin    []float64 `json:"Gross margin,omitempty"`

	Coerced int `json:"-"`
}

func (c *CityMetrics) UnmarshalJSON(b []byte) error {
	var raw struct {
		Sales          []json.RawMessage `json:"Sales"`
		Catering       []json.RawMessage `json:"Catering"`
		Delivery       []json.RawMessage `json:"Delivery"`
		Foodcost       []json.RawMessage `json:"Foodcost"`
		MarketingCosts []json.RawMessage `json:"Marketing Costs"`
		SalesPayroll   []json.RawMessage `json:"Sales Payroll"`
		GrossMargin    []json.RawMessage `json:"Gross margin"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	var out CityMetrics
	series := func(cells []json.RawMessage) []float64 {
		if cells == nil {
			return nil
		}
		xs := make([]float64, len(cells))
		for i, cell := range cells {
			v, ok := cellNumber(cell)
			if !ok {
				out.Coerced++
			}
			xs[i] = v
		}
		return xs
	}
	out.Sales = series(raw.Sales)
	out.Catering = series(raw.Catering)
	out.Delivery = series(raw.Delivery)
	out.Foodcost = series(raw.Foodcost)
	out.MarketingCosts = series(raw.MarketingCosts)
	out.SalesPayroll = series(raw.SalesPayroll)
	out.GrossMargin = series(raw.GrossMargin)
	*c = out
	return nil
}

// cellNumber reads a JSON number or a numeric string such as "1,234.5".
func cellNumber(cell json.RawMessage) (float64, bool) {
	cell = bytes.TrimSpace(cell)
	if len(cell) == 0 || bytes.Equal(cell, []byte("null")) {
		return 0, false
	}
	s := string(cell)
	if cell[0] == '"' {
		if err := json.Unmarshal(cell, &s); err != nil {
			return 0, false
		}
		s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// WeeklyFinancialData matches the JSON shape of the weekly model export.
//
// Example:
//
//	{
//	  "weeks": ["2024-01-01", "2024-01-08"],
//	  "citiesData": { "Lima": { "Sales": [ ... ], ... } }
//	}
type WeeklyFinancialData struct {
	Weeks      []string               `json:"weeks"`
	CitiesData map[string]CityMetrics `json:"citiesData"`
}

// CoercedCells is the number of cells, across cities, that decoded as 0
// because they were not numbers.
func (d *WeeklyFinancialData) CoercedCells() int {
	if d == nil {
		return 0
	}
	n := 0
	for _, c := range d.CitiesData {
		n += c.Coerced
	}
	return n
}

// WeeklyMetrics is a per-country roll-up of the weekly model. All slices have
// len(Weeks).
type WeeklyMetrics struct {
	Country        Country   `json:"country"`
	Weeks          []string  `json:"weeks"`
	TotalSales     []float64 `json:"total_sales"`
	TotalCatering  []float64 `json:"total_catering"`
	TotalDelivery  []float64 `json:"total_delivery"`
	AvgGrossMargin []float64 `json:"avg_gross_margin"`
}

// Len is the number of weeks.
func (m *WeeklyMetrics) Len() int {
	if m == nil {
		return 0
	}
	return len(m.Weeks)
}
