package data

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"cashflow-forecast/internal/model"
)

// rawRecord accepts amounts written either as JSON numbers or strings.
type rawRecord struct {
	ID           string          `json:"id"`
	Date         string          `json:"date"`
	Amount       json.RawMessage `json:"amount"`
	Currency     string          `json:"currency"`
	Country      string          `json:"country"`
	Category     string          `json:"category"`
	Counterparty string          `json:"counterparty"`
	Description  string          `json:"description"`
}

type rawSnapshot struct {
	GeneratedAt string      `json:"generated_at"`
	Records     []rawRecord `json:"records"`
}

// LoadRecordsJSON reads a record export. The file may hold a RecordSnapshot
// object or a bare array of records.
func LoadRecordsJSON(path string) (RecordSet, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return RecordSet{}, err
	}
	return DecodeRecords(raw)
}

// DecodeRecords is LoadRecordsJSON over bytes.
func DecodeRecords(raw []byte) (RecordSet, error) {
	var rows []rawRecord
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &rows); err != nil {
			return RecordSet{}, err
		}
	} else {
		var snap rawSnapshot
		if err := json.Unmarshal(trimmed, &snap); err != nil {
			return RecordSet{}, err
		}
		rows = snap.Records
	}

	set := RecordSet{Records: make([]model.TransactionRecord, 0, len(rows))}
	for i, r := range rows {
		amount, ok := decodeAmount(r.Amount)
		if !ok {
			set.CoercedAmounts++
		}
		id := r.ID
		if id == "" {
			id = fmt.Sprintf("row-%d", i+1)
		}
		set.Records = append(set.Records, model.TransactionRecord{
			ID:           id,
			Date:         r.Date,
			Amount:       amount,
			Currency:     r.Currency,
			Country:      r.Country,
			Category:     r.Category,
			Counterparty: r.Counterparty,
			Description:  r.Description,
		})
	}
	return set, nil
}

func decodeAmount(raw json.RawMessage) (float64, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, false
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, false
		}
		return ParseAmount(s)
	}
	v, err := strconv.ParseFloat(string(raw), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// LoadWeeklyJSON reads a weekly financial model export.
func LoadWeeklyJSON(path string) (*model.WeeklyFinancialData, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var data model.WeeklyFinancialData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, err
	}
	if n := data.CoercedCells(); n > 0 {
		log.Printf("[Weekly] %s: coerced %d non-numeric cells to 0", path, n)
	}
	return &data, nil
}

// SaveRecordsJSON writes records as a RecordSnapshot stamped with at,
// creating parent directories.
func SaveRecordsJSON(path string, records []model.TransactionRecord, at time.Time) error {
	return saveJSON(path, model.RecordSnapshot{
		GeneratedAt: at.UTC().Format(time.RFC3339),
		Records:     records,
	})
}

// SaveWeeklyJSON writes a weekly financial model export.
func SaveWeeklyJSON(path string, d *model.WeeklyFinancialData) error {
	if d == nil {
		return fmt.Errorf("no weekly model to save")
	}
	return saveJSON(path, d)
}

func saveJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}
	return os.WriteFile(path, raw, 0o644)
}

// JSONSource serves records from static snapshot files. Files are re-read on
// every fetch. An empty WeeklyPath means no weekly model.
type JSONSource struct {
	SalesPath     string
	PurchasesPath string
	WeeklyPath    string
}

func (s *JSONSource) FetchSales(ctx context.Context) (RecordSet, error) {
	return s.load(s.SalesPath, "sales")
}

func (s *JSONSource) FetchPurchases(ctx context.Context) (RecordSet, error) {
	return s.load(s.PurchasesPath, "purchases")
}

func (s *JSONSource) FetchWeekly(ctx context.Context) (*model.WeeklyFinancialData, error) {
	if s.WeeklyPath == "" {
		return nil, nil
	}
	return LoadWeeklyJSON(s.WeeklyPath)
}

func (s *JSONSource) load(path, kind string) (RecordSet, error) {
	if path == "" {
		return RecordSet{}, fmt.Errorf("%s snapshot path is not set", kind)
	}
	set, err := LoadRecordsJSON(path)
	if err != nil {
		return RecordSet{}, fmt.Errorf("load %s snapshot: %w", kind, err)
	}
	if set.CoercedAmounts > 0 {
		log.Printf("[JSON] %s: %d of %d amounts were not numeric and were read as 0", path, set.CoercedAmounts, len(set.Records))
	}
	return set, nil
}
