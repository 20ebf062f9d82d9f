package data

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"cashflow-forecast/internal/model"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// ColumnLayout maps record fields to zero-based sheet columns. -1 marks a
// field the sheet does not have.
type ColumnLayout struct {
	ID           int `yaml:"id"`
	Date         int `yaml:"date"`
	Amount       int `yaml:"amount"`
	Country      int `yaml:"country"`
	Currency     int `yaml:"currency"`
	Category     int `yaml:"category"`
	Counterparty int `yaml:"counterparty"`
	Description  int `yaml:"description"`
}

// SalesColumns is the layout of the "Data total" sales sheet.
func SalesColumns() ColumnLayout {
	return ColumnLayout{ID: 0, Counterparty: 1, Category: 2, Description: 3, Amount: 5, Date: 7, Country: 8, Currency: -1}
}

// PurchaseColumns is the layout of the "OC_MASTER" purchase-order sheet.
func PurchaseColumns() ColumnLayout {
	return ColumnLayout{ID: 0, Category: 1, Country: 2, Counterparty: 3, Description: 5, Currency: 6, Amount: 7, Date: 10}
}

// SheetRange locates one table in a spreadsheet. The first row holds headers.
type SheetRange struct {
	SpreadsheetID   string
	Range           string
	Columns         ColumnLayout
	IDPrefix        string // used when the ID cell is empty
	DefaultCategory string
}

// SheetsSource reads sales and purchase orders from Google Sheets.
type SheetsSource struct {
	svc       *sheets.Service
	Sales     SheetRange
	Purchases SheetRange
}

// NewSheetsSource creates a read-only Sheets client authenticated with an API
// key. Extra options are applied after the key (endpoint, HTTP client).
func NewSheetsSource(ctx context.Context, apiKey string, sales, purchases SheetRange, opts ...option.ClientOption) (*SheetsSource, error) {
	if apiKey == "" {
		return nil, &SourceError{Source: "sheets", Code: "MISSING_API_KEY", Message: "sheets API key is required"}
	}
	all := append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	svc, err := sheets.NewService(ctx, all...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return &SheetsSource{svc: svc, Sales: sales, Purchases: purchases}, nil
}

func (s *SheetsSource) FetchSales(ctx context.Context) (RecordSet, error) {
	return s.fetch(ctx, s.Sales)
}

func (s *SheetsSource) FetchPurchases(ctx context.Context) (RecordSet, error) {
	return s.fetch(ctx, s.Purchases)
}

func (s *SheetsSource) fetch(ctx context.Context, r SheetRange) (RecordSet, error) {
	if r.SpreadsheetID == "" || r.Range == "" {
		return RecordSet{}, &SourceError{Source: "sheets", Code: "MISSING_RANGE", Message: "spreadsheet id and range are required"}
	}
	log.Printf("[Sheets] Request: values.get (spreadsheet=%s, range=%s)", r.SpreadsheetID, r.Range)
	start := time.Now()
	resp, err := s.svc.Spreadsheets.Values.Get(r.SpreadsheetID, r.Range).Context(ctx).Do()
	if err != nil {
		log.Printf("[Sheets] Request failed: %v (duration: %v, range=%s)", err, time.Since(start), r.Range)
		return RecordSet{}, sheetsError(r.Range, err)
	}
	set := ParseRows(resp.Values, r)
	log.Printf("[Sheets] Success: %d records from %s (duration: %v)", len(set.Records), r.Range, time.Since(start))
	if set.CoercedAmounts > 0 {
		log.Printf("[Sheets] %s: %d amounts were not numeric and were read as 0", r.Range, set.CoercedAmounts)
	}
	return set, nil
}

func sheetsError(rng string, err error) *SourceError {
	se := &SourceError{
		Source:  "sheets",
		Code:    "UPSTREAM_ERROR",
		Message: fmt.Sprintf("read %s: %v", rng, err),
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		se.StatusCode = gerr.Code
		if gerr.Code == 401 || gerr.Code == 403 {
			se.Code = "UNAUTHORIZED"
			se.Message = fmt.Sprintf("read %s: sheets API refused the key: %s", rng, gerr.Message)
		}
	}
	return se
}

// ParseRows converts sheet values to records, skipping the header row and
// blank rows.
func ParseRows(rows [][]interface{}, r SheetRange) RecordSet {
	var set RecordSet
	if len(rows) <= 1 {
		return set
	}
	set.Records = make([]model.TransactionRecord, 0, len(rows)-1)
	cols := r.Columns
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		if isBlank(row) {
			continue
		}
		amount, ok := ParseAmount(cell(row, cols.Amount))
		if !ok {
			set.CoercedAmounts++
		}
		id := cell(row, cols.ID)
		if id == "" {
			id = fmt.Sprintf("%s-%d", r.IDPrefix, i)
		}
		category := cell(row, cols.Category)
		if category == "" {
			category = r.DefaultCategory
		}
		set.Records = append(set.Records, model.TransactionRecord{
			ID:           id,
			Date:         cell(row, cols.Date),
			Amount:       amount,
			Currency:     cell(row, cols.Currency),
			Country:      cell(row, cols.Country),
			Category:     category,
			Counterparty: cell(row, cols.Counterparty),
			Description:  cell(row, cols.Description),
		})
	}
	return set
}

func cell(row []interface{}, idx int) string {
	if idx < 0 || idx >= len(row) || row[idx] == nil {
		return ""
	}
	switch v := row[idx].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

func isBlank(row []interface{}) bool {
	for i := range row {
		if cell(row, i) != "" {
			return false
		}
	}
	return true
}
