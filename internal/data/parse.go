package data

import (
	"strconv"
	"strings"
)

// ParseAmount reads a spreadsheet amount cell. It tolerates currency
// prefixes, spaces and either comma or dot grouping. ok is false when nothing
// numeric could be read, in which case the amount is 0.
func ParseAmount(s string) (float64, bool) {
	var b strings.Builder
	for _, r := range strings.TrimSpace(s) {
		switch {
		case r >= '0' && r <= '9', r == '.', r == ',', r == '-':
			b.WriteRune(r)
		case r == '(':
			// accounting negative: (1,234.00)
			b.WriteRune('-')
		}
	}
	// "S/. 1,200" leaves a stray leading dot from the sol symbol.
	clean := strings.TrimLeft(b.String(), ".,")
	if strings.HasPrefix(clean, "-") {
		clean = "-" + strings.TrimLeft(clean[1:], ".,")
	}
	if clean == "" || clean == "-" {
		return 0, false
	}
	clean = normalizeSeparators(clean)
	v, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// normalizeSeparators rewrites grouping and decimal marks to Go syntax.
// With both marks present the last one is the decimal point. A lone comma is a
// decimal mark unless every group after it has exactly three digits.
func normalizeSeparators(s string) string {
	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")
	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			return strings.Replace(s, ",", ".", 1)
		}
		return strings.ReplaceAll(s, ",", "")
	case lastComma >= 0:
		parts := strings.Split(s, ",")
		grouping := len(parts) > 1
		for _, p := range parts[1:] {
			if len(p) != 3 {
				grouping = false
			}
		}
		if grouping {
			return strings.ReplaceAll(s, ",", "")
		}
		if len(parts) == 2 {
			return parts[0] + "." + parts[1]
		}
		return s
	case strings.Count(s, ".") > 1:
		// 1.234.567 grouping
		return strings.ReplaceAll(s, ".", "")
	}
	return s
}
