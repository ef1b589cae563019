// internal/api/handlers/upload.go
package handlers

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"

	"github.com/bodegapp/backend-go/internal/domain"
	"github.com/bodegapp/backend-go/internal/feed"
	"github.com/bodegapp/backend-go/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// archiveDir, when set, receives a copy of every uploaded feed file.
var archiveDir string

func SetArchiveDir(dir string) {
	archiveDir = dir
}

// readUploadedFile pulls the single "file" part out of a multipart
// import request.
func readUploadedFile(c *gin.Context) (string, []byte, bool) {
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no se recibió el archivo"})
		return "", nil, false
	}

	if archiveDir != "" {
		path := filepath.Join(archiveDir, filepath.Base(header.Filename))
		if err := c.SaveUploadedFile(header, path); err != nil {
			log.Warn().Err(err).Str("file", header.Filename).Msg("could not archive uploaded file")
		}
	}

	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no se pudo abrir el archivo"})
		return "", nil, false
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "no se pudo leer el archivo"})
		return "", nil, false
	}
	return header.Filename, content, true
}

// importError writes the right status for a failed import: caller
// mistakes are 400, backend failures 500, with the hint attached when
// the service produced one.
func importError(c *gin.Context, result domain.ImportResult, err error) {
	status := http.StatusInternalServerError
	if isImportValidationError(err) {
		status = http.StatusBadRequest
	}

	body := gin.H{"error": err.Error()}
	if result.Hint != "" {
		body["hint"] = result.Hint
	}
	log.Error().Err(err).Msg("import failed")
	c.JSON(status, body)
}

func isImportValidationError(err error) bool {
	return errors.Is(err, service.ErrTotalIsReadOnly) ||
		errors.Is(err, service.ErrWrongExtension771) ||
		errors.Is(err, service.ErrWrongExtension772) ||
		errors.Is(err, service.ErrEmptyConsumptionFile) ||
		errors.Is(err, service.ErrEmptyCatalogFile) ||
		errors.Is(err, service.ErrEmptyPackagingFile) ||
		errors.Is(err, service.ErrEmptyCategoriesFile) ||
		errors.Is(err, feed.ErrMalformedXML)
}
