package model

import "strings"

// Country identifies an operating market. Global aggregates every market.
type Country string

const (
	CountryPeru     Country = "Peru"
	CountryColombia Country = "Colombia"
	CountryMexico   Country = "Mexico"
	CountryGlobal   Country = "Global"
)

// Countries lists the single-market countries in display order.
func Countries() []Country {
	return []Country{CountryPeru, CountryColombia, CountryMexico}
}

// ParseCountry accepts the display names case-insensitively, including the
// accented Spanish spellings used in the spreadsheets.
func ParseCountry(s string) (Country, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "peru", "perú":
		return CountryPeru, true
	case "colombia":
		return CountryColombia, true
	case "mexico", "méxico":
		return CountryMexico, true
	case "global":
		return CountryGlobal, true
	}
	return "", false
}

// Matches reports whether a record's country column belongs to c.
// Global matches everything; otherwise the column must contain the country
// name, case-insensitively.
func (c Country) Matches(column string) bool {
	if c == CountryGlobal {
		return true
	}
	col := strings.ToLower(column)
	if col == "" {
		return false
	}
	if strings.Contains(col, strings.ToLower(string(c))) {
		return true
	}
	// "PERÚ" and "MÉXICO" do not contain the unaccented names.
	switch c {
	case CountryPeru:
		return strings.Contains(col, "perú")
	case CountryMexico:
		return strings.Contains(col, "méxico")
	}
	return false
}
