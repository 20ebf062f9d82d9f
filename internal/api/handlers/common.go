package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"

	"cashflow-forecast/internal/analysis"
	"cashflow-forecast/internal/api/models"
	"cashflow-forecast/internal/data"
	"cashflow-forecast/internal/model"
	"cashflow-forecast/internal/service"

	"github.com/gin-gonic/gin"
)

// Planner is the service the handlers drive. *service.Planner implements it.
type Planner interface {
	Stats(ctx context.Context, country model.Country) (model.HistoricalStats, error)
	StatsAll(ctx context.Context) ([]analysis.CountryRanking, error)
	Generate(ctx context.Context, country model.Country) (*model.ProjectionPlan, error)
	Current(ctx context.Context, country model.Country) (*model.ProjectionPlan, error)
	Compare(ctx context.Context, country model.Country, scenario model.ScenarioName) (*model.PlanVsRealComparison, error)
}

var _ Planner = (*service.Planner)(nil)

func supportedCountries() []string {
	out := []string{}
	for _, c := range model.Countries() {
		out = append(out, string(c))
	}
	return append(out, string(model.CountryGlobal))
}

// countryParam reads :country, writing a 400 when it is not a known market.
func countryParam(c *gin.Context) (model.Country, bool) {
	raw := c.Param("country")
	country, ok := model.ParseCountry(raw)
	if !ok {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "INVALID_COUNTRY",
				Message: "unknown country: " + raw,
				Details: map[string]interface{}{"supported": supportedCountries()},
			},
		})
		return "", false
	}
	return country, true
}

// scenarioParam reads ?scenario=, writing a 400 when it is not a known scenario.
func scenarioParam(c *gin.Context, raw string) (model.ScenarioName, bool) {
	name, ok := model.ParseScenario(raw)
	if !ok {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "INVALID_SCENARIO",
				Message: "unknown scenario: " + raw,
				Details: map[string]interface{}{"supported": model.ScenarioNames()},
			},
		})
		return "", false
	}
	return name, true
}

// respondError maps service and upstream errors to the error envelope.
func respondError(c *gin.Context, err error, fallbackCode string) {
	var srcErr *data.SourceError
	switch {
	case errors.Is(err, service.ErrUnknownCountry):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: models.ErrorDetail{Code: "INVALID_COUNTRY", Message: err.Error()},
		})
	case errors.As(err, &srcErr):
		status := http.StatusBadGateway
		if srcErr.StatusCode == http.StatusUnauthorized || srcErr.StatusCode == http.StatusForbidden {
			status = http.StatusUnauthorized
		}
		c.JSON(status, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    srcErr.Code,
				Message: srcErr.Message,
				Details: map[string]interface{}{
					"source":      srcErr.Source,
					"status_code": srcErr.StatusCode,
				},
			},
		})
	default:
		log.Printf("[API] %s: %v", fallbackCode, err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error: models.ErrorDetail{Code: fallbackCode, Message: err.Error()},
		})
	}
}
