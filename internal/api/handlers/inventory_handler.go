// internal/api/handlers/inventory_handler.go
package handlers

import (
	"net/http"

	"github.com/bodegapp/backend-go/internal/domain"
	"github.com/bodegapp/backend-go/internal/service"
	"github.com/gin-gonic/gin"
)

type InventoryHandler struct {
	inventoryService *service.InventoryService
}

func NewInventoryHandler(inventoryService *service.InventoryService) *InventoryHandler {
	return &InventoryHandler{inventoryService: inventoryService}
}

// Import loads one inventory snapshot file (771 XML or 772 CSV).
func (h *InventoryHandler) Import(c *gin.Context) {
	filename, content, ok := readUploadedFile(c)
	if !ok {
		return
	}
	inventoryType := c.PostForm("type")

	result, err := h.inventoryService.ImportFile(c.Request.Context(), filename, inventoryType, content)
	if err != nil {
		importError(c, result, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// List returns the requested inventory view.
func (h *InventoryHandler) List(c *gin.Context) {
	inventoryType := c.DefaultQuery("type", domain.InventoryType772)
	search := c.Query("search")
	hideNoMovement := c.Query("hide_no_movement") == "true"

	rows, err := h.inventoryService.Rows(c.Request.Context(), inventoryType, search, hideNoMovement)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "no se pudo listar el inventario"})
		return
	}
	c.JSON(http.StatusOK, rows)
}

// Alerts returns medications at or below their minimum stock.
func (h *InventoryHandler) Alerts(c *gin.Context) {
	alerts, err := h.inventoryService.Alerts(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "no se pudieron listar las alertas"})
		return
	}
	c.JSON(http.StatusOK, alerts)
}

// Stats returns the dashboard summary.
func (h *InventoryHandler) Stats(c *gin.Context) {
	stats, err := h.inventoryService.Stats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "no se pudieron calcular las estadísticas"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Clear deletes every record of one inventory type.
func (h *InventoryHandler) Clear(c *gin.Context) {
	inventoryType := c.Query("type")

	if err := h.inventoryService.Clear(c.Request.Context(), inventoryType); err != nil {
		status := http.StatusInternalServerError
		if err == service.ErrTotalIsReadOnly {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// UpdateMedication saves a hand-edited record.
func (h *InventoryHandler) UpdateMedication(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "falta el id del medicamento"})
		return
	}

	var med domain.Medication
	if err := c.ShouldBindJSON(&med); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cuerpo de la solicitud inválido"})
		return
	}
	med.ID = id

	if err := h.inventoryService.Upsert(c.Request.Context(), med); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, med)
}

// DeleteMedication removes one record by id.
func (h *InventoryHandler) DeleteMedication(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "falta el id del medicamento"})
		return
	}

	if err := h.inventoryService.Delete(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}
