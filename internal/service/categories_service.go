// internal/service/categories_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bodegapp/backend-go/internal/domain"
	"github.com/bodegapp/backend-go/internal/feed"
	"github.com/bodegapp/backend-go/internal/store"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ErrEmptyCategoriesFile signals an XLSX with no usable category rows.
var ErrEmptyCategoriesFile = errors.New("el archivo de categorías no contiene filas válidas")

// CategoriesService maintains the medication category assignments.
// Only the fixed category set is accepted; unknown values are skipped.
type CategoriesService struct {
	store store.Store
}

func NewCategoriesService(st store.Store) *CategoriesService {
	return &CategoriesService{store: st}
}

func (s *CategoriesService) ImportXLSX(ctx context.Context, filename string, content []byte) (domain.ImportResult, error) {
	rows, err := feed.SheetRows(content)
	if err != nil {
		return domain.ImportResult{}, fmt.Errorf("no se pudo leer el xlsx de categorías: %w", err)
	}
	if len(rows) > 0 && feed.LooksLikeCategoriesHeader(rows[0]) {
		rows = rows[1:]
	}

	parsed := make([]domain.MedicationCategory, 0, len(rows))
	skipped := 0
	for _, row := range rows {
		code := domain.NormalizeSigesCode(rowCell(row, 0))
		category := domain.NormalizeCategory(rowCell(row, 2))
		if code == "" || category == "" {
			skipped++
			continue
		}
		parsed = append(parsed, domain.MedicationCategory{
			ID:             uuid.NewString(),
			SigesCode:      code,
			MedicationName: strings.TrimSpace(rowCell(row, 1)),
			Category:       category,
		})
	}

	if len(parsed) == 0 {
		return domain.ImportResult{}, ErrEmptyCategoriesFile
	}

	if err := s.store.UpsertMedicationCategories(ctx, parsed); err != nil {
		hint := schemaHint(err, "medication_categories")
		return domain.ImportResult{Hint: hint}, fmt.Errorf("%s: %w",
			withHint("no se pudieron guardar las categorías", hint), err)
	}

	log.Info().
		Str("file", filename).
		Int("imported", len(parsed)).
		Int("skipped", skipped).
		Msg("categories import finished")

	return domain.ImportResult{ImportedCount: len(parsed), SkippedCount: skipped}, nil
}

func (s *CategoriesService) List(ctx context.Context) ([]domain.MedicationCategory, error) {
	rows, err := s.store.GetMedicationCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not list medication categories: %w", err)
	}
	return rows, nil
}

func (s *CategoriesService) Clear(ctx context.Context) error {
	if err := s.store.ClearMedicationCategories(ctx); err != nil {
		return fmt.Errorf("no se pudieron eliminar las categorías: %w", err)
	}
	return nil
}
