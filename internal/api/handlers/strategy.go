package handlers

import (
	"log"
	"net/http"

	"cashflow-forecast/internal/api/models"
	"cashflow-forecast/internal/scenario"

	"github.com/gin-gonic/gin"
)

// ScenarioHandler lists the factor strategies
type ScenarioHandler struct {
	active string
}

// NewScenarioHandler creates a handler; active is the configured strategy name.
func NewScenarioHandler(active string) *ScenarioHandler {
	return &ScenarioHandler{active: active}
}

// ListStrategies handles GET /api/v1/scenarios
func (h *ScenarioHandler) ListStrategies(c *gin.Context) {
	catalog := scenario.Catalog()
	strategies := make([]models.ScenarioStrategyInfo, 0, len(catalog))
	for _, s := range catalog {
		strategies = append(strategies, models.ScenarioStrategyInfo{
			Name:        s.Name,
			Description: s.Description,
			Active:      s.Name == h.active,
			Factors:     s.Factors,
		})
	}
	log.Printf("[API] returning %d scenario strategies (active: %s)", len(strategies), h.active)
	c.JSON(http.StatusOK, gin.H{"strategies": strategies})
}
