package currency

import (
	"strings"

	"cashflow-forecast/internal/model"

	"github.com/shopspring/decimal"
)

// CodeFor returns the currency code amounts for country are kept in.
func CodeFor(c model.Country) string {
	switch c {
	case model.CountryPeru:
		return "PE"
	case model.CountryColombia:
		return "COP"
	case model.CountryMexico:
		return "MXN"
	}
	return USD
}

// Symbol is the display prefix for country.
func Symbol(c model.Country) string {
	switch c {
	case model.CountryPeru:
		return "PE"
	case model.CountryColombia:
		return "COP"
	case model.CountryMexico:
		return "MXN"
	}
	return "$"
}

// Format renders value the way the dashboard shows it: Colombian pesos without
// decimals and dot grouping, every other market with two decimals and comma
// grouping. Global amounts are USD.
func Format(value float64, c model.Country) string {
	places := int32(2)
	group, point := ",", "."
	if c == model.CountryColombia {
		places = 0
		group, point = ".", ","
	}
	s := decimal.NewFromFloat(value).Round(places).StringFixed(places)

	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	intPart, frac, _ := strings.Cut(s, ".")
	num := groupThousands(intPart, group)
	if frac != "" {
		num += point + frac
	}
	if neg && strings.Trim(intPart+frac, "0") == "" {
		neg = false
	}

	if c == model.CountryGlobal || Symbol(c) == "$" {
		if neg {
			return "-$" + num
		}
		return "$" + num
	}
	if neg {
		num = "-" + num
	}
	return Symbol(c) + " " + num
}

func groupThousands(digits, sep string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteString(sep)
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
