package handlers

import (
	"net/http"

	"cashflow-forecast/internal/api/models"
	"cashflow-forecast/internal/currency"
	"cashflow-forecast/internal/model"

	"github.com/gin-gonic/gin"
)

// ListCountries handles GET /api/v1/countries
func ListCountries(c *gin.Context) {
	all := append(model.Countries(), model.CountryGlobal)
	countries := make([]models.CountryInfo, 0, len(all))
	for _, country := range all {
		countries = append(countries, models.CountryInfo{
			ID:       country,
			Currency: currency.CodeFor(country),
			Symbol:   currency.Symbol(country),
		})
	}
	c.JSON(http.StatusOK, gin.H{"countries": countries})
}
