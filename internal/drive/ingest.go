// internal/drive/ingest.go
package drive

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bodegapp/backend-go/internal/domain"
	"github.com/bodegapp/backend-go/internal/service"
)

// Feed kinds an operator can pull straight from the shared folder.
const (
	KindInventory771 = "inventory_771"
	KindInventory772 = "inventory_772"
	KindCatalog      = "catalog"
	KindConsumption  = "consumption"
	KindPackaging    = "packaging"
	KindCategories   = "categories"
)

type IngestServices struct {
	Inventory  *service.InventoryService
	Catalog    *service.CatalogService
	Monthly    *service.MonthlyService
	Packaging  *service.PackagingService
	Categories *service.CategoriesService
}

// IngestService downloads a Drive file and feeds it through the same
// import path the upload endpoints use.
type IngestService struct {
	driveService *Service
	services     IngestServices
}

func NewIngestService(driveService *Service, services IngestServices) *IngestService {
	return &IngestService{
		driveService: driveService,
		services:     services,
	}
}

// IngestFile pulls one file and imports it as the given kind. An empty
// kind is guessed from the file name.
func (s *IngestService) IngestFile(ctx context.Context, fileID, kind string) (domain.ImportResult, error) {
	meta, err := s.driveService.GetFile(fileID)
	if err != nil {
		return domain.ImportResult{}, err
	}

	var buf bytes.Buffer
	if err := s.driveService.DownloadFile(fileID, &buf); err != nil {
		return domain.ImportResult{}, err
	}

	if kind == "" {
		kind = guessKind(meta.Name)
	}

	switch kind {
	case KindInventory771:
		return s.services.Inventory.ImportFile(ctx, meta.Name, domain.InventoryType771, buf.Bytes())
	case KindInventory772:
		return s.services.Inventory.ImportFile(ctx, meta.Name, domain.InventoryType772, buf.Bytes())
	case KindCatalog:
		return s.services.Catalog.ImportCSV(ctx, meta.Name, buf.Bytes())
	case KindConsumption:
		return s.services.Monthly.ImportCSV(ctx, meta.Name, buf.Bytes())
	case KindPackaging:
		return s.services.Packaging.ImportXLSX(ctx, meta.Name, buf.Bytes())
	case KindCategories:
		return s.services.Categories.ImportXLSX(ctx, meta.Name, buf.Bytes())
	default:
		return domain.ImportResult{}, fmt.Errorf("tipo de archivo desconocido: %q", kind)
	}
}

// guessKind maps a file name to a feed kind: XML means a 771 snapshot,
// XLSX sheets are packaging unless named like categories, and CSV files
// are consumption unless named like an inventory or catalog export.
func guessKind(filename string) string {
	name := strings.ToLower(filename)
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xml":
		return KindInventory771
	case ".xlsx":
		if strings.Contains(name, "categor") {
			return KindCategories
		}
		return KindPackaging
	case ".csv":
		if strings.Contains(name, "771") {
			return ""
		}
		if strings.Contains(name, "772") || strings.Contains(name, "inventario") {
			return KindInventory772
		}
		if strings.Contains(name, "catalogo") || strings.Contains(name, "catálogo") {
			return KindCatalog
		}
		return KindConsumption
	}
	return ""
}
