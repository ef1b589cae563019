// internal/service/monthly_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bodegapp/backend-go/internal/cache"
	"github.com/bodegapp/backend-go/internal/domain"
	"github.com/bodegapp/backend-go/internal/feed"
	"github.com/bodegapp/backend-go/internal/forecast"
	"github.com/bodegapp/backend-go/internal/parse"
	"github.com/bodegapp/backend-go/internal/store"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ErrEmptyConsumptionFile signals a CSV with no usable rows.
var ErrEmptyConsumptionFile = errors.New("el archivo no contiene filas de consumo válidas")

// MonthlyService handles monthly consumption batches: one batch per
// uploaded CSV, labeled after the file name.
type MonthlyService struct {
	store store.Store
	cache cache.ForecastCache
}

func NewMonthlyService(st store.Store, fc cache.ForecastCache) *MonthlyService {
	return &MonthlyService{store: st, cache: fc}
}

// ImportCSV parses a consumption CSV and stores it as a monthly batch.
// Re-uploading a file with the same name replaces the previous month.
func (s *MonthlyService) ImportCSV(ctx context.Context, filename string, content []byte) (domain.ImportResult, error) {
	label := batchLabelFromFilename(filename)

	rows := feed.Rows(string(content))
	if len(rows) > 0 && feed.LooksLikeConsumptionHeader(rows[0]) {
		rows = rows[1:]
	}

	items := make([]domain.BatchItem, 0, len(rows))
	skipped := 0
	for _, row := range rows {
		code := strings.TrimSpace(rowCell(row, 0))
		name := strings.TrimSpace(rowCell(row, 1))
		if code == "" || name == "" {
			skipped++
			continue
		}
		items = append(items, domain.BatchItem{
			ID:             uuid.NewString(),
			SigesCode:      code,
			MedicationName: name,
			Quantity:       parse.Number(rowCell(row, 2)),
			Cost:           parse.Number(rowCell(row, 3)),
		})
	}

	if len(items) == 0 {
		return domain.ImportResult{}, ErrEmptyConsumptionFile
	}

	batch := domain.MonthlyBatch{
		ID:    uuid.NewString(),
		Label: label,
		Items: items,
	}

	saved, err := s.store.SaveMonthlyBatch(ctx, batch)
	if err != nil {
		hint := schemaHint(err, "monthly_batches")
		return domain.ImportResult{Hint: hint}, fmt.Errorf("%s: %w",
			withHint("no se pudo guardar el consumo mensual", hint), err)
	}

	if err := s.store.SetSelectedMonthlyBatchID(ctx, saved.ID); err != nil {
		log.Warn().Err(err).Str("batch_id", saved.ID).Msg("could not mark batch as selected")
	}
	if err := s.cache.InvalidateAll(ctx); err != nil {
		log.Warn().Err(err).Msg("could not invalidate forecast cache after consumption import")
	}

	log.Info().
		Str("file", filename).
		Str("label", label).
		Int("items", len(items)).
		Int("skipped", skipped).
		Msg("consumption import finished")

	return domain.ImportResult{
		ImportedCount: len(items),
		SkippedCount:  skipped,
		Label:         label,
		BatchID:       saved.ID,
	}, nil
}

// Batches lists every stored monthly batch, newest first.
func (s *MonthlyService) Batches(ctx context.Context) ([]domain.MonthlyBatch, error) {
	batches, err := s.store.GetMonthlyBatches(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not list monthly batches: %w", err)
	}
	return batches, nil
}

// Summary aggregates consumption per medication over the three most
// recent months.
func (s *MonthlyService) Summary(ctx context.Context) ([]domain.ConsumptionRow, []string, error) {
	batches, err := s.store.GetMonthlyBatches(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("could not list monthly batches: %w", err)
	}
	return forecast.Summary(batches), forecast.MonthLabels(batches), nil
}

// SelectBatch marks one batch as the active month.
func (s *MonthlyService) SelectBatch(ctx context.Context, id string) error {
	batches, err := s.store.GetMonthlyBatches(ctx)
	if err != nil {
		return fmt.Errorf("could not list monthly batches: %w", err)
	}
	found := false
	for _, batch := range batches {
		if batch.ID == id {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("no existe el lote mensual %s", id)
	}
	if err := s.store.SetSelectedMonthlyBatchID(ctx, id); err != nil {
		return fmt.Errorf("no se pudo seleccionar el lote mensual: %w", err)
	}
	return nil
}

// SelectedBatchID returns the active batch id, or "" when none is set.
func (s *MonthlyService) SelectedBatchID(ctx context.Context) (string, error) {
	id, err := s.store.GetSelectedMonthlyBatchID(ctx)
	if err != nil {
		return "", fmt.Errorf("could not read selected batch: %w", err)
	}
	return id, nil
}

func batchLabelFromFilename(filename string) string {
	base := filepath.Base(filename)
	label := strings.TrimSpace(strings.TrimSuffix(base, filepath.Ext(base)))
	if label == "" || label == "." {
		return "Mes sin nombre"
	}
	return label
}

func rowCell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return row[i]
}
