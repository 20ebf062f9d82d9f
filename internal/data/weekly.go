package data

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"cashflow-forecast/internal/model"
)

// WeeklyClient fetches the weekly financial model from its HTTP export.
type WeeklyClient struct {
	URL    string
	Client *http.Client
}

// NewWeeklyClient creates a client with a 30 second timeout.
func NewWeeklyClient(url string) *WeeklyClient {
	return &WeeklyClient{
		URL: url,
		Client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// FetchWeekly GETs and decodes the weekly model.
func (c *WeeklyClient) FetchWeekly(ctx context.Context) (*model.WeeklyFinancialData, error) {
	if c.URL == "" {
		return nil, &SourceError{Source: "weekly", Code: "MISSING_URL", Message: "weekly model URL is not configured"}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	log.Printf("[Weekly] Request: GET %s", req.URL.Redacted())
	start := time.Now()
	resp, err := c.Client.Do(req)
	duration := time.Since(start)
	if err != nil {
		log.Printf("[Weekly] Request failed: %v (duration: %v)", err, duration)
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	log.Printf("[Weekly] Response: %d %s (duration: %v)", resp.StatusCode, resp.Status, duration)

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, &SourceError{
			Source:     "weekly",
			StatusCode: resp.StatusCode,
			Code:       "UNAUTHORIZED",
			Message:    "Weekly model export refused the request",
		}
	default:
		return nil, &SourceError{
			Source:     "weekly",
			StatusCode: resp.StatusCode,
			Code:       "UPSTREAM_ERROR",
			Message:    fmt.Sprintf("weekly model returned status %d: %s", resp.StatusCode, resp.Status),
		}
	}

	var out model.WeeklyFinancialData
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		log.Printf("[Weekly] Error decoding response: %v", err)
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if n := out.CoercedCells(); n > 0 {
		log.Printf("[Weekly] coerced %d non-numeric cells to 0", n)
	}
	log.Printf("[Weekly] Success: %d weeks, %d cities", len(out.Weeks), len(out.CitiesData))
	return &out, nil
}
