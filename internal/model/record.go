package model

import (
	"strings"
	"time"
)

// TransactionRecord is one sales line (inflow) or purchase-order line (outflow)
// as read from the spreadsheet layer or a JSON snapshot.
//
// Date is kept as the raw string the source produced; use ParseDate to read it.
// Amount has already been coerced to a number by the source.
type TransactionRecord struct {
	ID           string  `json:"id"`
	Date         string  `json:"date"`
	Amount       float64 `json:"amount"`
	Currency     string  `json:"currency,omitempty"`
	Country      string  `json:"country"`
	Category     string  `json:"category,omitempty"`
	Counterparty string  `json:"counterparty,omitempty"`
	Description  string  `json:"description,omitempty"`
}

// CurrencyTag is the tag used for exchange-rate lookup. Sales rows carry only a
// country column, so the country doubles as the currency tag when no explicit
// currency is present.
func (r TransactionRecord) CurrencyTag() string {
	if strings.TrimSpace(r.Currency) != "" {
		return r.Currency
	}
	return r.Country
}

// Time parses Date with ParseDate.
func (r TransactionRecord) Time() (time.Time, bool) {
	return ParseDate(r.Date)
}

// RecordSnapshot matches the JSON shape of a static sales or purchases export.
//
// Example:
//
//	{
//	  "generated_at": "2025-01-20T00:00:00Z",
//	  "records": [ ... ]
//	}
type RecordSnapshot struct {
	GeneratedAt string              `json:"generated_at,omitempty"`
	Records     []TransactionRecord `json:"records"`
}
