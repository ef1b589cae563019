// internal/api/handlers/catalog_handler.go
package handlers

import (
	"net/http"

	"github.com/bodegapp/backend-go/internal/service"
	"github.com/gin-gonic/gin"
)

type CatalogHandler struct {
	catalogService *service.CatalogService
}

func NewCatalogHandler(catalogService *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// Import replaces the medication master list from a CSV.
func (h *CatalogHandler) Import(c *gin.Context) {
	filename, content, ok := readUploadedFile(c)
	if !ok {
		return
	}

	result, err := h.catalogService.ImportCSV(c.Request.Context(), filename, content)
	if err != nil {
		importError(c, result, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *CatalogHandler) Clear(c *gin.Context) {
	if err := h.catalogService.Clear(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}
