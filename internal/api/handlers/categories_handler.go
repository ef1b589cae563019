// internal/api/handlers/categories_handler.go
package handlers

import (
	"net/http"

	"github.com/bodegapp/backend-go/internal/service"
	"github.com/gin-gonic/gin"
)

type CategoriesHandler struct {
	categoriesService *service.CategoriesService
}

func NewCategoriesHandler(categoriesService *service.CategoriesService) *CategoriesHandler {
	return &CategoriesHandler{categoriesService: categoriesService}
}

func (h *CategoriesHandler) Import(c *gin.Context) {
	filename, content, ok := readUploadedFile(c)
	if !ok {
		return
	}

	result, err := h.categoriesService.ImportXLSX(c.Request.Context(), filename, content)
	if err != nil {
		importError(c, result, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *CategoriesHandler) List(c *gin.Context) {
	rows, err := h.categoriesService.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "no se pudieron listar las categorías"})
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (h *CategoriesHandler) Clear(c *gin.Context) {
	if err := h.categoriesService.Clear(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}
