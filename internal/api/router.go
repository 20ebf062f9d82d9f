package api

import (
	"net/http"
	"strings"
	"time"

	"cashflow-forecast/internal/api/handlers"
	"cashflow-forecast/internal/api/middleware"
	"cashflow-forecast/internal/api/models"

	"github.com/gin-gonic/gin"
)

// Options configure NewRouter.
type Options struct {
	// Strategy is the active factor strategy name, shown by /scenarios.
	Strategy string
	// AllowedOrigins for CORS. Empty allows any origin.
	AllowedOrigins []string
}

// NewRouter wires middleware and the /api/v1 routes around planner.
func NewRouter(planner handlers.Planner, opts Options) *gin.Engine {
	router := gin.New()
	router.Use(middleware.CORS(opts.AllowedOrigins...))
	router.Use(middleware.Logger())
	router.Use(middleware.ErrorHandler())

	statsHandler := handlers.NewStatsHandler(planner)
	projectionHandler := handlers.NewProjectionHandler(planner)
	scenarioHandler := handlers.NewScenarioHandler(opts.Strategy)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, models.HealthResponse{Status: "ok", Time: time.Now().UTC()})
	})

	api := router.Group("/api/v1")
	{
		api.GET("/countries", handlers.ListCountries)
		api.GET("/scenarios", scenarioHandler.ListStrategies)

		api.GET("/stats", statsHandler.RankCountries)
		api.GET("/stats/:country", statsHandler.GetStats)

		api.GET("/projections/:country", projectionHandler.GetPlan)
		api.POST("/projections/:country", projectionHandler.RegeneratePlan)
		api.GET("/projections/:country/compare", projectionHandler.ComparePlan)
		api.GET("/projections/:country/chart", projectionHandler.Chart)
		api.GET("/projections/:country/csv", projectionHandler.CSV)
	}

	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			c.JSON(http.StatusNotFound, models.ErrorResponse{
				Error: models.ErrorDetail{Code: "NOT_FOUND", Message: "Not found"},
			})
			return
		}
		c.Status(http.StatusNotFound)
	})
	return router
}
