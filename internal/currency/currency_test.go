package currency

import (
	"testing"

	"cashflow-forecast/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	tbl := Default()

	cases := []struct {
		tag   string
		code  string
		rate  float64
		known bool
	}{
		{"PEN", "PEN", 3.80, true},
		{"pen", "PEN", 3.80, true},
		{"Perú", "PERÚ", 3.80, true},
		{"COLOMBIA", "COLOMBIA", 4000, true},
		{"Ciudad de México", "MXN", 18.50, true},
		{"Peru - Lima", "PEN", 3.80, true},
		{"usd", "USD", 1, true},
		{"EUR", USD, 1, false},
		{"", USD, 1, false},
	}
	for _, tc := range cases {
		t.Run(tc.tag, func(t *testing.T) {
			res := tbl.Resolve(tc.tag)
			assert.Equal(t, tc.code, res.Code)
			assert.InDelta(t, tc.rate, res.Rate, 1e-9)
			assert.Equal(t, tc.known, res.Known)
		})
	}
}

func TestToUSD(t *testing.T) {
	tbl := Default()

	usd, ok := tbl.ToUSD(380, "PE")
	assert.True(t, ok)
	assert.InDelta(t, 100, usd, 1e-9)

	usd, ok = tbl.ToUSD(250, "GBP")
	assert.False(t, ok)
	assert.InDelta(t, 250, usd, 1e-9)
}

func TestNewTableOverrides(t *testing.T) {
	tbl := NewTable(map[string]float64{"pen": 3.5, "eur": 0.9, "bad": 0})

	r, ok := tbl.Rate("PEN")
	assert.True(t, ok)
	assert.InDelta(t, 3.5, r, 1e-9)

	r, ok = tbl.Rate("EUR")
	assert.True(t, ok)
	assert.InDelta(t, 0.9, r, 1e-9)

	_, ok = tbl.Rate("BAD")
	assert.False(t, ok)

	// Defaults untouched by a previous override.
	r, _ = Default().Rate("PEN")
	assert.InDelta(t, 3.80, r, 1e-9)
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "PE 1,234.57", Format(1234.567, model.CountryPeru))
	assert.Equal(t, "COP 1.234.568", Format(1234567.8, model.CountryColombia))
	assert.Equal(t, "MXN 12.50", Format(12.5, model.CountryMexico))
	assert.Equal(t, "$1,000,000.00", Format(1e6, model.CountryGlobal))
	assert.Equal(t, "-$42.10", Format(-42.1, model.CountryGlobal))
	assert.Equal(t, "PE -999.00", Format(-999, model.CountryPeru))
	assert.Equal(t, "$0.00", Format(-0.001, model.CountryGlobal))
}

func TestUnresolvedLog(t *testing.T) {
	var u UnresolvedLog
	u.Add("EUR")
	u.Add("EUR")
	u.Add("GBP")
	assert.Equal(t, 3, u.Count)
	u.Flush("Test")
}
