package data

import (
	"context"

	"cashflow-forecast/internal/model"
)

// RecordSet is a fetched batch of records. CoercedAmounts counts amount cells
// that could not be read as numbers and were taken as zero.
type RecordSet struct {
	Records        []model.TransactionRecord
	CoercedAmounts int
}

// RecordSource provides sales (inflows) and purchase orders (outflows).
type RecordSource interface {
	FetchSales(ctx context.Context) (RecordSet, error)
	FetchPurchases(ctx context.Context) (RecordSet, error)
}

// WeeklySource provides the weekly financial model. A nil result with a nil
// error means the model is not available.
type WeeklySource interface {
	FetchWeekly(ctx context.Context) (*model.WeeklyFinancialData, error)
}

// SourceError represents a failed upstream read.
type SourceError struct {
	Source     string
	StatusCode int
	Code       string
	Message    string
}

func (e *SourceError) Error() string {
	return e.Message
}
