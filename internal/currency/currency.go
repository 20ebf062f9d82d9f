package currency

import (
	"log"
	"sort"
	"strings"
)

// USD is the normalisation target.
const USD = "USD"

// DefaultRates returns local currency units per USD, keyed by upper-case tag.
// Tags cover ISO codes as well as the country spellings found in the sheets.
func DefaultRates() map[string]float64 {
	return map[string]float64{
		// Peru
		"PE": 3.80, "PEN": 3.80, "PERU": 3.80, "PERÚ": 3.80, "SOL": 3.80, "SOLES": 3.80,
		// Colombia
		"CO": 4000, "COP": 4000, "COL": 4000, "COLOMBIA": 4000,
		// Mexico
		"MX": 18.50, "MXN": 18.50, "MEX": 18.50, "MEXICO": 18.50, "MÉXICO": 18.50,
		// Base
		"USD": 1, "US": 1, "DOLAR": 1, "DÓLAR": 1,
	}
}

// Table resolves a currency-or-country tag to a USD exchange rate.
// A Table is read-only after construction and safe for concurrent use.
type Table struct {
	rates map[string]float64
}

// NewTable starts from DefaultRates and overlays non-zero entries of overrides.
func NewTable(overrides map[string]float64) *Table {
	rates := DefaultRates()
	for k, v := range overrides {
		if v <= 0 {
			continue
		}
		rates[strings.ToUpper(strings.TrimSpace(k))] = v
	}
	return &Table{rates: rates}
}

// Default is NewTable(nil).
func Default() *Table { return NewTable(nil) }

// Resolution is the outcome of a rate lookup.
type Resolution struct {
	Code  string  // tag as matched, or the inferred ISO code
	Rate  float64 // local units per USD; 1 when unresolved
	Known bool
}

// Resolve looks tag up directly, then infers an ISO code from country-name
// fragments. Anything else resolves to rate 1 with Known=false.
func (t *Table) Resolve(tag string) Resolution {
	key := strings.ToUpper(strings.TrimSpace(tag))
	if key == "" {
		return Resolution{Code: USD, Rate: 1}
	}
	if r, ok := t.rates[key]; ok {
		return Resolution{Code: key, Rate: r, Known: true}
	}
	if code := infer(tag); code != "" {
		if r, ok := t.rates[code]; ok {
			return Resolution{Code: code, Rate: r, Known: true}
		}
	}
	return Resolution{Code: USD, Rate: 1}
}

// ToUSD converts amount. ok is false when the tag fell back to rate 1.
func (t *Table) ToUSD(amount float64, tag string) (float64, bool) {
	res := t.Resolve(tag)
	return amount / res.Rate, res.Known
}

// Tags lists every tag in the table, sorted.
func (t *Table) Tags() []string {
	out := make([]string, 0, len(t.rates))
	for k := range t.rates {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Rate returns the rate registered for an exact tag.
func (t *Table) Rate(tag string) (float64, bool) {
	r, ok := t.rates[strings.ToUpper(strings.TrimSpace(tag))]
	return r, ok
}

func infer(tag string) string {
	s := strings.ToLower(strings.TrimSpace(tag))
	switch {
	case strings.Contains(s, "peru"), strings.Contains(s, "perú"), strings.Contains(s, "sol"), s == "pe", s == "pen":
		return "PEN"
	case strings.Contains(s, "colombia"), strings.Contains(s, "cop"), s == "co":
		return "COP"
	case strings.Contains(s, "mexico"), strings.Contains(s, "méxico"), strings.Contains(s, "mxn"), s == "mx":
		return "MXN"
	}
	return ""
}

// UnresolvedLog accumulates unknown tags so a caller can report them once.
type UnresolvedLog struct {
	Count int
	tags  map[string]int
}

// Add records one unresolved tag.
func (u *UnresolvedLog) Add(tag string) {
	if u.tags == nil {
		u.tags = map[string]int{}
	}
	u.Count++
	u.tags[tag]++
}

// Flush logs a summary line under component and resets nothing.
func (u *UnresolvedLog) Flush(component string) {
	if u.Count == 0 {
		return
	}
	tags := make([]string, 0, len(u.tags))
	for t := range u.tags {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	log.Printf("[%s] %d amounts used fallback rate 1 (unresolved currency tags: %q)", component, u.Count, tags)
}
