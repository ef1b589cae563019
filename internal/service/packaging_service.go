// internal/service/packaging_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bodegapp/backend-go/internal/domain"
	"github.com/bodegapp/backend-go/internal/feed"
	"github.com/bodegapp/backend-go/internal/parse"
	"github.com/bodegapp/backend-go/internal/store"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ErrEmptyPackagingFile signals an XLSX with no usable packaging rows.
var ErrEmptyPackagingFile = errors.New("el archivo de embalaje no contiene filas válidas")

// PackagingService maintains tertiary packaging quantities per siges
// code, loaded from XLSX sheets.
type PackagingService struct {
	store store.Store
}

func NewPackagingService(st store.Store) *PackagingService {
	return &PackagingService{store: st}
}

func (s *PackagingService) ImportXLSX(ctx context.Context, filename string, content []byte) (domain.ImportResult, error) {
	rows, err := feed.SheetRows(content)
	if err != nil {
		return domain.ImportResult{}, fmt.Errorf("no se pudo leer el xlsx de embalaje: %w", err)
	}
	if len(rows) > 0 && feed.LooksLikePackagingHeader(rows[0]) {
		rows = rows[1:]
	}

	nameByCode, err := s.catalogNames(ctx)
	if err != nil {
		return domain.ImportResult{}, err
	}

	parsed := make([]domain.TertiaryPackaging, 0, len(rows))
	skipped := 0
	for _, row := range rows {
		code := domain.NormalizeSigesCode(rowCell(row, 0))
		if code == "" {
			skipped++
			continue
		}
		name := strings.TrimSpace(rowCell(row, 1))
		if name == "" {
			name = nameByCode[code]
		}
		parsed = append(parsed, domain.TertiaryPackaging{
			ID:               uuid.NewString(),
			SigesCode:        code,
			MedicationName:   name,
			TertiaryQuantity: parse.Number(rowCell(row, 2)),
		})
	}

	if len(parsed) == 0 {
		return domain.ImportResult{}, ErrEmptyPackagingFile
	}

	if err := s.store.UpsertTertiaryPackaging(ctx, parsed); err != nil {
		hint := schemaHint(err, "tertiary_packaging")
		return domain.ImportResult{Hint: hint}, fmt.Errorf("%s: %w",
			withHint("no se pudo guardar el embalaje terciario", hint), err)
	}

	log.Info().
		Str("file", filename).
		Int("imported", len(parsed)).
		Int("skipped", skipped).
		Msg("packaging import finished")

	return domain.ImportResult{ImportedCount: len(parsed), SkippedCount: skipped}, nil
}

// List returns every packaging row, filling missing medication names
// from the catalog by siges code.
func (s *PackagingService) List(ctx context.Context) ([]domain.TertiaryPackaging, error) {
	rows, err := s.store.GetTertiaryPackaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not list tertiary packaging: %w", err)
	}

	nameByCode, err := s.catalogNames(ctx)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		if strings.TrimSpace(rows[i].MedicationName) == "" {
			rows[i].MedicationName = nameByCode[rows[i].SigesCode]
		}
	}
	return rows, nil
}

func (s *PackagingService) Clear(ctx context.Context) error {
	if err := s.store.ClearTertiaryPackaging(ctx); err != nil {
		return fmt.Errorf("no se pudo eliminar el embalaje terciario: %w", err)
	}
	return nil
}

func (s *PackagingService) catalogNames(ctx context.Context) (map[string]string, error) {
	meds, err := s.store.GetMedications(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not list medications: %w", err)
	}
	names := make(map[string]string, len(meds))
	for _, med := range meds {
		code := domain.NormalizeSigesCode(med.SigesCode)
		if code == "" || strings.TrimSpace(med.Name) == "" {
			continue
		}
		if _, ok := names[code]; !ok {
			names[code] = med.Name
		}
	}
	return names, nil
}
