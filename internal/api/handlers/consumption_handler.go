// internal/api/handlers/consumption_handler.go
package handlers

import (
	"net/http"

	"github.com/bodegapp/backend-go/internal/service"
	"github.com/gin-gonic/gin"
)

type ConsumptionHandler struct {
	monthlyService *service.MonthlyService
}

func NewConsumptionHandler(monthlyService *service.MonthlyService) *ConsumptionHandler {
	return &ConsumptionHandler{monthlyService: monthlyService}
}

// Import stores a consumption CSV as a monthly batch labeled after the
// file name.
func (h *ConsumptionHandler) Import(c *gin.Context) {
	filename, content, ok := readUploadedFile(c)
	if !ok {
		return
	}

	result, err := h.monthlyService.ImportCSV(c.Request.Context(), filename, content)
	if err != nil {
		importError(c, result, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// List returns every monthly batch, newest first.
func (h *ConsumptionHandler) List(c *gin.Context) {
	batches, err := h.monthlyService.Batches(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "no se pudieron listar los consumos"})
		return
	}
	c.JSON(http.StatusOK, batches)
}

// Summary returns the per-medication consumption aggregation over the
// three most recent months.
func (h *ConsumptionHandler) Summary(c *gin.Context) {
	rows, labels, err := h.monthlyService.Summary(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "no se pudo calcular el resumen de consumo"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"rows": rows, "monthLabels": labels})
}

// Selected returns the active batch id.
func (h *ConsumptionHandler) Selected(c *gin.Context) {
	id, err := h.monthlyService.SelectedBatchID(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "no se pudo leer el lote seleccionado"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"selectedBatchId": id})
}

// Select marks one batch as the active month.
func (h *ConsumptionHandler) Select(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "falta el id del lote"})
		return
	}

	if err := h.monthlyService.SelectBatch(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}
