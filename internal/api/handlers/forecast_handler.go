// internal/api/handlers/forecast_handler.go
package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/bodegapp/backend-go/internal/domain"
	"github.com/bodegapp/backend-go/internal/service"
	"github.com/gin-gonic/gin"
)

type ForecastHandler struct {
	forecastService *service.ForecastService
}

func NewForecastHandler(forecastService *service.ForecastService) *ForecastHandler {
	return &ForecastHandler{forecastService: forecastService}
}

// Get returns the order forecast. months defaults to 3; a value that
// does not parse counts as 0, which zeroes every order.
func (h *ForecastHandler) Get(c *gin.Context) {
	filter := domain.ForecastFilter{
		Months:   parseMonths(c.DefaultQuery("months", "3")),
		Search:   c.Query("search"),
		HideZero: c.Query("hide_zero") == "true",
	}

	rows, labels, err := h.forecastService.Rows(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "no se pudo calcular el pedido"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"rows": rows, "monthLabels": labels})
}

func parseMonths(value string) int {
	v, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || v < 0 {
		return 0
	}
	return v
}
