// internal/api/handlers/packaging_handler.go
package handlers

import (
	"net/http"

	"github.com/bodegapp/backend-go/internal/service"
	"github.com/gin-gonic/gin"
)

type PackagingHandler struct {
	packagingService *service.PackagingService
}

func NewPackagingHandler(packagingService *service.PackagingService) *PackagingHandler {
	return &PackagingHandler{packagingService: packagingService}
}

func (h *PackagingHandler) Import(c *gin.Context) {
	filename, content, ok := readUploadedFile(c)
	if !ok {
		return
	}

	result, err := h.packagingService.ImportXLSX(c.Request.Context(), filename, content)
	if err != nil {
		importError(c, result, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *PackagingHandler) List(c *gin.Context) {
	rows, err := h.packagingService.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "no se pudo listar el embalaje terciario"})
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (h *PackagingHandler) Clear(c *gin.Context) {
	if err := h.packagingService.Clear(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}
