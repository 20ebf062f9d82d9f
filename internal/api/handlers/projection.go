package handlers

import (
	"bytes"
	"fmt"
	"log"
	"net/http"
	"strings"

	"cashflow-forecast/internal/api/models"
	"cashflow-forecast/internal/chart"
	"cashflow-forecast/internal/currency"
	"cashflow-forecast/internal/model"
	"cashflow-forecast/internal/projection"

	"github.com/gin-gonic/gin"
)

// ProjectionHandler serves projection plans and plan-vs-actual comparisons
type ProjectionHandler struct {
	planner Planner
}

// NewProjectionHandler creates a new projection handler
func NewProjectionHandler(p Planner) *ProjectionHandler {
	return &ProjectionHandler{planner: p}
}

// GetPlan handles GET /api/v1/projections/:country
func (h *ProjectionHandler) GetPlan(c *gin.Context) {
	country, ok := countryParam(c)
	if !ok {
		return
	}
	plan, err := h.planner.Current(c.Request.Context(), country)
	if err != nil {
		respondError(c, err, "PROJECTION_ERROR")
		return
	}
	c.JSON(http.StatusOK, buildPlanResponse(plan))
}

// RegeneratePlan handles POST /api/v1/projections/:country
func (h *ProjectionHandler) RegeneratePlan(c *gin.Context) {
	country, ok := countryParam(c)
	if !ok {
		return
	}
	plan, err := h.planner.Generate(c.Request.Context(), country)
	if err != nil {
		respondError(c, err, "PROJECTION_ERROR")
		return
	}
	log.Printf("[API] regenerated %s", plan.ID)
	c.JSON(http.StatusCreated, buildPlanResponse(plan))
}

// ComparePlan handles GET /api/v1/projections/:country/compare
func (h *ProjectionHandler) ComparePlan(c *gin.Context) {
	country, ok := countryParam(c)
	if !ok {
		return
	}
	var q models.ScenarioQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: models.ErrorDetail{Code: "INVALID_REQUEST", Message: err.Error()},
		})
		return
	}
	name, ok := scenarioParam(c, q.Scenario)
	if !ok {
		return
	}
	cmp, err := h.planner.Compare(c.Request.Context(), country, name)
	if err != nil {
		respondError(c, err, "COMPARISON_ERROR")
		return
	}
	c.JSON(http.StatusOK, models.ComparisonResponse{
		Currency:   currency.CodeFor(country),
		Comparison: cmp,
	})
}

// Chart handles GET /api/v1/projections/:country/chart
func (h *ProjectionHandler) Chart(c *gin.Context) {
	h.export(c, "text/html; charset=utf-8", "",
		func(buf *bytes.Buffer, plan *model.ProjectionPlan) error { return chart.RenderPlan(buf, plan) },
		func(buf *bytes.Buffer, cmp *model.PlanVsRealComparison) error { return chart.RenderComparison(buf, cmp) },
	)
}

// CSV handles GET /api/v1/projections/:country/csv
func (h *ProjectionHandler) CSV(c *gin.Context) {
	h.export(c, "text/csv; charset=utf-8", "csv",
		func(buf *bytes.Buffer, plan *model.ProjectionPlan) error { return projection.WritePlanCSVTo(buf, plan) },
		func(buf *bytes.Buffer, cmp *model.PlanVsRealComparison) error {
			return projection.WriteComparisonCSVTo(buf, cmp)
		},
	)
}

// export renders the current plan, or its comparison when view=compare.
// A non-empty ext turns the response into a download.
func (h *ProjectionHandler) export(
	c *gin.Context,
	contentType, ext string,
	renderPlan func(*bytes.Buffer, *model.ProjectionPlan) error,
	renderCmp func(*bytes.Buffer, *model.PlanVsRealComparison) error,
) {
	country, ok := countryParam(c)
	if !ok {
		return
	}
	var q models.ExportQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: models.ErrorDetail{Code: "INVALID_REQUEST", Message: err.Error()},
		})
		return
	}
	view := strings.ToLower(q.View)
	if view == "" {
		view = models.ViewPlan
	}

	var (
		buf  bytes.Buffer
		name string
		err  error
	)
	switch view {
	case models.ViewPlan:
		var plan *model.ProjectionPlan
		plan, err = h.planner.Current(c.Request.Context(), country)
		if err != nil {
			respondError(c, err, "PROJECTION_ERROR")
			return
		}
		name = plan.ID
		err = renderPlan(&buf, plan)
	case models.ViewCompare:
		scenarioName, ok := scenarioParam(c, q.Scenario)
		if !ok {
			return
		}
		var cmp *model.PlanVsRealComparison
		cmp, err = h.planner.Compare(c.Request.Context(), country, scenarioName)
		if err != nil {
			respondError(c, err, "COMPARISON_ERROR")
			return
		}
		name = fmt.Sprintf("%s-vs-actual-%s", cmp.PlanID, cmp.Scenario)
		err = renderCmp(&buf, cmp)
	default:
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "INVALID_VIEW",
				Message: "view must be plan or compare",
			},
		})
		return
	}
	if err != nil {
		respondError(c, err, "RENDER_ERROR")
		return
	}

	if ext != "" {
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name+"."+ext))
	}
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

func buildPlanResponse(plan *model.ProjectionPlan) models.PlanResponse {
	resp := models.PlanResponse{
		Currency: currency.CodeFor(plan.Country),
		Plan:     plan,
		Totals:   make([]models.ScenarioTotals, 0, 3),
	}
	for _, name := range model.ScenarioNames() {
		weeks, _ := plan.Scenarios.Get(name)
		in, out, net := projection.Totals(weeks)
		final := 0.0
		if len(weeks) > 0 {
			final = weeks[len(weeks)-1].CumulativeCashFlow
		}
		resp.Totals = append(resp.Totals, models.ScenarioTotals{
			Scenario:        name,
			TotalInflows:    in,
			TotalOutflows:   out,
			TotalNet:        net,
			FinalCumulative: currency.Format(final, plan.Country),
		})
	}
	return resp
}
