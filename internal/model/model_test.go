package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	cases := map[string]time.Time{
		"2025-06-16":                time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC),
		"2025-06-16T10:30:00Z":      time.Date(2025, 6, 16, 10, 30, 0, 0, time.UTC),
		"2025-06-16T10:30:00-05:00": time.Date(2025, 6, 16, 15, 30, 0, 0, time.UTC),
		"2025-06-16 08:00:00":       time.Date(2025, 6, 16, 8, 0, 0, 0, time.UTC),
		"03/02/2025":                time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC),
		"2025/02/03":                time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC),
		" 2025-01-01 ":              time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	for in, want := range cases {
		got, ok := ParseDate(in)
		require.True(t, ok, in)
		assert.True(t, want.Equal(got), "%s: got %s", in, got)
		assert.Equal(t, time.UTC, got.Location())
	}

	for _, bad := range []string{"", "yesterday", "2025-13-01", "31/31/2025"} {
		_, ok := ParseDate(bad)
		assert.False(t, ok, bad)
	}
}

func TestStartOfDay(t *testing.T) {
	loc := time.FixedZone("PET", -5*3600)
	got := StartOfDay(time.Date(2025, 6, 16, 22, 0, 0, 0, loc))
	assert.Equal(t, time.Date(2025, 6, 17, 0, 0, 0, 0, time.UTC), got)
}

func TestParseCountry(t *testing.T) {
	for in, want := range map[string]Country{
		"Peru": CountryPeru, "PERÚ": CountryPeru, "colombia": CountryColombia,
		"México": CountryMexico, " mexico ": CountryMexico, "global": CountryGlobal,
	} {
		got, ok := ParseCountry(in)
		require.True(t, ok, in)
		assert.Equal(t, want, got)
	}
	_, ok := ParseCountry("Chile")
	assert.False(t, ok)
}

func TestCountryMatches(t *testing.T) {
	assert.True(t, CountryPeru.Matches("PERU"))
	assert.True(t, CountryPeru.Matches("Perú"))
	assert.True(t, CountryPeru.Matches("Lima, Peru"))
	assert.False(t, CountryPeru.Matches("Colombia"))
	assert.False(t, CountryPeru.Matches(""))
	assert.True(t, CountryMexico.Matches("MÉXICO"))
	assert.True(t, CountryColombia.Matches("colombia"))
	assert.True(t, CountryGlobal.Matches(""))
	assert.True(t, CountryGlobal.Matches("anything"))
}

func TestCurrencyTag(t *testing.T) {
	assert.Equal(t, "PEN", TransactionRecord{Currency: "PEN", Country: "Peru"}.CurrencyTag())
	assert.Equal(t, "Peru", TransactionRecord{Currency: "  ", Country: "Peru"}.CurrencyTag())
}

func TestParseScenario(t *testing.T) {
	got, ok := ParseScenario("")
	require.True(t, ok)
	assert.Equal(t, ScenarioBase, got)

	got, ok = ParseScenario("conservative")
	require.True(t, ok)
	assert.Equal(t, ScenarioConservative, got)

	_, ok = ParseScenario("Optimistic")
	assert.False(t, ok)

	set := FactorSet{Optimistic: ScenarioFactors{InflowFactor: 1.2}}
	f, ok := set.For(ScenarioOptimistic)
	require.True(t, ok)
	assert.InDelta(t, 1.2, f.InflowFactor, 1e-9)
	_, ok = set.For("other")
	assert.False(t, ok)
}

func TestPlanExpiry(t *testing.T) {
	created := time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC)
	p := &ProjectionPlan{CreatedAt: created, ExpiresAt: created.AddDate(0, 0, 28)}
	assert.False(t, p.IsExpired(created))
	assert.False(t, p.IsExpired(p.ExpiresAt))
	assert.True(t, p.IsExpired(p.ExpiresAt.Add(time.Second)))
}

func TestProjectionWeekJSONKeepsNullActuals(t *testing.T) {
	raw, err := json.Marshal(ProjectionWeek{Week: 1})
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"actual_net":null`)
	assert.Contains(t, string(raw), `"variance":null`)
	assert.False(t, ProjectionWeek{}.HasActual())
}

func TestWeeklyFinancialDataKeys(t *testing.T) {
	raw := `{"weeks":["2024-06-03"],"citiesData":{"Lima":{"Sales":[1],"Marketing Costs":[2],"Gross margin":[0.4]}}}`
	var d WeeklyFinancialData
	require.NoError(t, json.Unmarshal([]byte(raw), &d))
	assert.Equal(t, []float64{2}, d.CitiesData["Lima"].MarketingCosts)
	assert.Equal(t, []float64{0.4}, d.CitiesData["Lima"].GrossMargin)
}

func TestWeeklyFinancialDataCoercesBadCells(t *testing.T) {
	raw := `{"weeks":["2024-06-03","2024-06-10","2024-06-17","2024-06-24","2024-07-01"],
	"citiesData":{
	  "Lima":{"Sales":[1000,"",null,"1,234.5","n/a"],"Gross margin":[0.4,0.5,0.3,"",0.2]},
	  "CDMX":{"Sales":[1,2,3,4,5]}
	}}`
	var d WeeklyFinancialData
	require.NoError(t, json.Unmarshal([]byte(raw), &d))

	lima := d.CitiesData["Lima"]
	assert.Equal(t, []float64{1000, 0, 0, 1234.5, 0}, lima.Sales)
	assert.Equal(t, []float64{0.4, 0.5, 0.3, 0, 0.2}, lima.GrossMargin)
	assert.Nil(t, lima.Catering)
	assert.Equal(t, 4, lima.Coerced)
	assert.Equal(t, 4, d.CoercedCells())

	assert.Zero(t, (*WeeklyFinancialData)(nil).CoercedCells())
	assert.Error(t, json.Unmarshal([]byte(`{"citiesData":{"Lima":{"Sales":"oops"}}}`), &d))
}
