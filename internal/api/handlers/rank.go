package handlers

import (
	"net/http"

	"cashflow-forecast/internal/api/models"
	"cashflow-forecast/internal/currency"

	"github.com/gin-gonic/gin"
)

// StatsHandler serves historical window statistics
type StatsHandler struct {
	planner Planner
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(p Planner) *StatsHandler {
	return &StatsHandler{planner: p}
}

// GetStats handles GET /api/v1/stats/:country
func (h *StatsHandler) GetStats(c *gin.Context) {
	country, ok := countryParam(c)
	if !ok {
		return
	}
	stats, err := h.planner.Stats(c.Request.Context(), country)
	if err != nil {
		respondError(c, err, "STATS_ERROR")
		return
	}
	c.JSON(http.StatusOK, models.StatsResponse{
		Country:     country,
		Currency:    currency.CodeFor(country),
		Stats:       stats,
		AvgDailyNet: stats.AvgDailyNet(),
		Formatted: models.FormattedStats{
			TotalInflows:     currency.Format(stats.TotalInflows, country),
			TotalOutflows:    currency.Format(stats.TotalOutflows, country),
			AvgDailyInflows:  currency.Format(stats.AvgDailyInflows, country),
			AvgDailyOutflows: currency.Format(stats.AvgDailyOutflows, country),
			AvgDailyNet:      currency.Format(stats.AvgDailyNet(), country),
		},
	})
}

// RankCountries handles GET /api/v1/stats
func (h *StatsHandler) RankCountries(c *gin.Context) {
	ranking, err := h.planner.StatsAll(c.Request.Context())
	if err != nil {
		respondError(c, err, "STATS_ERROR")
		return
	}
	resp := models.RankResponse{Currency: currency.USD, Rankings: make([]models.Ranking, 0, len(ranking))}
	for i, r := range ranking {
		resp.Rankings = append(resp.Rankings, models.Ranking{
			Rank:        i + 1,
			Country:     r.Country,
			AvgDailyNet: r.Stats.AvgDailyNet(),
			Stats:       r.Stats,
		})
	}
	c.JSON(http.StatusOK, resp)
}
