// internal/service/inventory_service.go
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
	"github.com/bodegapp/backend-go/internal/inventory"
	"github.com/bodegapp/backend-go/internal/store"
	"github.com/rs/zerolog/log"
)

var (
	// ErrTotalIsReadOnly rejects uploads and deletions against the
	// merged "total" view.
	ErrTotalIsReadOnly = errors.New("inventario total no admite carga ni borrado de archivos")

	ErrWrongExtension771 = errors.New("para inventario 771, selecciona un archivo .xml")
	ErrWrongExtension772 = errors.New("para inventario 772, selecciona un archivo .csv")
)

type InventoryService struct {
	store store.Store
	cache cache.ForecastCache
}

func NewInventoryService(st store.Store, fc cache.ForecastCache) *InventoryService {
	return &InventoryService{store: st, cache: fc}
}

// ImportFile loads one inventory snapshot file. 771 snapshots are XML,
// 772 snapshots CSV; the whole file applies or none of it does.
func (s *InventoryService) ImportFile(ctx context.Context, filename, inventoryType string, content []byte) (domain.ImportResult, error) {
	selectedType := strings.TrimSpace(inventoryType)
	if selectedType == "" {
		selectedType = domain.InventoryType772
	}
	if selectedType == domain.InventoryTotal {
		return domain.ImportResult{}, ErrTotalIsReadOnly
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if selectedType == domain.InventoryType771 && ext != ".xml" {
		return domain.ImportResult{}, ErrWrongExtension771
	}
	if selectedType != domain.InventoryType771 && ext != ".csv" {
		return domain.ImportResult{}, ErrWrongExtension772
	}

	existing, err := s.store.GetMedications(ctx)
	if err != nil {
		return domain.ImportResult{}, fmt.Errorf("%s: %w",
			withHint("no se pudo leer el inventario actual", schemaHint(err, "medications")), err)
	}

	var imported []domain.Medication
	if selectedType == domain.InventoryType771 {
		records, err := feed.Parse771(string(content))
		if err != nil {
			return domain.ImportResult{}, err
		}
		imported = inventory.Reconcile771(records, existing)
	} else {
		imported = inventory.ReconcileCSV(string(content), selectedType, existing)
	}

	if err := s.store.UpsertMedications(ctx, imported); err != nil {
		hint := integerTypeHint(err)
		if hint == "" {
			hint = schemaHint(err, "medications")
		}
		return domain.ImportResult{Hint: hint}, fmt.Errorf("%s: %w",
			withHint("no se pudo guardar el inventario "+selectedType, hint), err)
	}

	if err := s.cache.InvalidateAll(ctx); err != nil {
		log.Warn().Err(err).Msg("could not invalidate forecast cache after import")
	}

	after, err := s.store.GetMedications(ctx)
	if err != nil {
		return domain.ImportResult{}, fmt.Errorf("could not re-read medications: %w", err)
	}

	counts := inventory.CountByType(after)
	result := domain.ImportResult{
		ImportedCount:       len(imported),
		VisibleCountForType: counts[selectedType],
		TotalCountByType:    counts,
	}

	log.Info().
		Str("file", filename).
		Str("inventory_type", selectedType).
		Int("imported", result.ImportedCount).
		Msg("inventory import finished")
	return result, nil
}

// Rows returns the requested inventory view: plain 772, grouped 771 or
// the merged total, filtered by the search query.
func (s *InventoryService) Rows(ctx context.Context, inventoryType, search string, hideNoMovement bool) ([]domain.InventoryRow, error) {
	selectedType := strings.TrimSpace(inventoryType)
	if selectedType == "" {
		selectedType = domain.InventoryType772
	}

	meds, err := s.store.GetMedications(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not list medications: %w", err)
	}

	var rows []domain.InventoryRow
	switch selectedType {
	case domain.InventoryType771:
		rows = inventory.Group771(meds)
	case domain.InventoryTotal:
		batches, err := s.store.GetMonthlyBatches(ctx)
		if err != nil {
			return nil, fmt.Errorf("could not list monthly batches: %w", err)
		}
		rows = inventory.TotalView(meds, batches, hideNoMovement)
	default:
		rows = inventory.PlainRows(meds, selectedType)
	}

	return inventory.FilterRows(rows, search), nil
}

// Alerts lists the medications at or below their minimum stock.
func (s *InventoryService) Alerts(ctx context.Context) ([]domain.Medication, error) {
	meds, err := s.store.GetMedications(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not list medications: %w", err)
	}
	return inventory.LowStock(meds), nil
}

// Stats summarizes inventory and consumption for the dashboard.
func (s *InventoryService) Stats(ctx context.Context) (domain.DashboardStats, error) {
	meds, err := s.store.GetMedications(ctx)
	if err != nil {
		return domain.DashboardStats{}, fmt.Errorf("could not list medications: %w", err)
	}
	batches, err := s.store.GetMonthlyBatches(ctx)
	if err != nil {
		return domain.DashboardStats{}, fmt.Errorf("could not list monthly batches: %w", err)
	}
	return inventory.Stats(meds, batches), nil
}

// Clear deletes every record of one inventory type.
func (s *InventoryService) Clear(ctx context.Context, inventoryType string) error {
	selectedType := strings.TrimSpace(inventoryType)
	if selectedType == "" || selectedType == domain.InventoryTotal {
		return ErrTotalIsReadOnly
	}

	if err := s.store.ClearMedicationsByInventoryType(ctx, selectedType); err != nil {
		return fmt.Errorf("no se pudo eliminar el inventario %s: %w", selectedType, err)
	}
	if err := s.cache.InvalidateAll(ctx); err != nil {
		log.Warn().Err(err).Msg("could not invalidate forecast cache after clear")
	}
	return nil
}

// Upsert saves a single hand-edited medication record.
func (s *InventoryService) Upsert(ctx context.Context, med domain.Medication) error {
	if strings.TrimSpace(med.InventoryType) == "" {
		med.InventoryType = domain.InventoryType772
	}
	if err := s.store.UpsertMedication(ctx, med); err != nil {
		return fmt.Errorf("no se pudo guardar el medicamento: %w", err)
	}
	if err := s.cache.InvalidateAll(ctx); err != nil {
		log.Warn().Err(err).Msg("could not invalidate forecast cache after upsert")
	}
	return nil
}

// Delete removes a single medication record.
func (s *InventoryService) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteMedication(ctx, id); err != nil {
		return fmt.Errorf("no se pudo eliminar el medicamento: %w", err)
	}
	if err := s.cache.InvalidateAll(ctx); err != nil {
		log.Warn().Err(err).Msg("could not invalidate forecast cache after delete")
	}
	return nil
}
