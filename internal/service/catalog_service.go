// internal/service/catalog_service.go
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/bodegapp/backend-go/internal/cache"
	"github.com/bodegapp/backend-go/internal/domain"
	"github.com/bodegapp/backend-go/internal/inventory"
	"github.com/bodegapp/backend-go/internal/store"
	"github.com/rs/zerolog/log"
)

// ErrEmptyCatalogFile signals a catalog CSV with no usable rows.
var ErrEmptyCatalogFile = errors.New("el archivo de catálogo no contiene filas válidas")

// CatalogService loads the medication master list. A catalog upload is
// a full replacement, not a merge.
type CatalogService struct {
	store store.Store
	cache cache.ForecastCache
}

func NewCatalogService(st store.Store, fc cache.ForecastCache) *CatalogService {
	return &CatalogService{store: st, cache: fc}
}

func (s *CatalogService) ImportCSV(ctx context.Context, filename string, content []byte) (domain.ImportResult, error) {
	meds := inventory.ReconcileCatalogCSV(string(content))
	if len(meds) == 0 {
		return domain.ImportResult{}, ErrEmptyCatalogFile
	}

	if err := s.store.ClearMedications(ctx); err != nil {
		hint := schemaHint(err, "medications")
		return domain.ImportResult{Hint: hint}, fmt.Errorf("%s: %w",
			withHint("no se pudo limpiar el catálogo anterior", hint), err)
	}
	if err := s.store.UpsertMedications(ctx, meds); err != nil {
		hint := integerTypeHint(err)
		if hint == "" {
			hint = schemaHint(err, "medications")
		}
		return domain.ImportResult{Hint: hint}, fmt.Errorf("%s: %w",
			withHint("no se pudo guardar el catálogo", hint), err)
	}

	if err := s.cache.InvalidateAll(ctx); err != nil {
		log.Warn().Err(err).Msg("could not invalidate forecast cache after catalog import")
	}

	counts := inventory.CountByType(meds)
	log.Info().Str("file", filename).Int("imported", len(meds)).Msg("catalog import finished")

	return domain.ImportResult{
		ImportedCount:       len(meds),
		VisibleCountForType: counts[domain.InventoryType772],
		TotalCountByType:    counts,
	}, nil
}

func (s *CatalogService) Clear(ctx context.Context) error {
	if err := s.store.ClearMedications(ctx); err != nil {
		return fmt.Errorf("no se pudo eliminar el catálogo: %w", err)
	}
	if err := s.cache.InvalidateAll(ctx); err != nil {
		log.Warn().Err(err).Msg("could not invalidate forecast cache after catalog clear")
	}
	return nil
}
