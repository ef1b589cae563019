// internal/store/memory.go
package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bodegapp/backend-go/internal/domain"
	"github.com/shopspring/decimal"
)

// Memory keeps everything in process. It backs tests and local runs
// without a database.
type Memory struct {
	mu sync.RWMutex

	medications     []domain.Medication
	batches         []domain.MonthlyBatch
	selectedBatchID string
	packaging       []domain.TertiaryPackaging
	categories      []domain.MedicationCategory
}

func NewMemory() *Memory {
	return &Memory{}
}

var _ Store = (*Memory)(nil)

func (s *Memory) GetMedications(ctx context.Context) ([]domain.Medication, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Medication(nil), s.medications...), nil
}

func (s *Memory) UpsertMedication(ctx context.Context, med domain.Medication) error {
	return s.UpsertMedications(ctx, []domain.Medication{med})
}

func (s *Memory) UpsertMedications(ctx context.Context, meds []domain.Medication) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	byID := map[string]int{}
	for i, m := range s.medications {
		byID[m.ID] = i
	}
	for _, med := range meds {
		if i, ok := byID[med.ID]; ok {
			s.medications[i] = med
			continue
		}
		byID[med.ID] = len(s.medications)
		s.medications = append(s.medications, med)
	}
	return nil
}

func (s *Memory) DeleteMedication(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.medications[:0]
	for _, m := range s.medications {
		if m.ID != id {
			kept = append(kept, m)
		}
	}
	s.medications = kept
	return nil
}

func (s *Memory) ClearMedications(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.medications = nil
	return nil
}

func (s *Memory) ClearMedicationsByInventoryType(ctx context.Context, inventoryType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.medications[:0]
	for _, m := range s.medications {
		t := m.InventoryType
		if strings.TrimSpace(t) == "" {
			t = domain.InventoryType772
		}
		if t != inventoryType {
			kept = append(kept, m)
		}
	}
	s.medications = kept
	return nil
}

func (s *Memory) GetMonthlyBatches(ctx context.Context) ([]domain.MonthlyBatch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := append([]domain.MonthlyBatch(nil), s.batches...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	for i := range out {
		out[i].Items = append([]domain.BatchItem(nil), out[i].Items...)
		out[i].TotalCost = batchTotalCost(out[i].Items)
	}
	return out, nil
}

func (s *Memory) SaveMonthlyBatch(ctx context.Context, batch domain.MonthlyBatch) (domain.MonthlyBatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if batch.CreatedAt.IsZero() {
		batch.CreatedAt = time.Now().UTC()
	}

	// Re-uploading a month replaces its previous load.
	kept := s.batches[:0]
	for _, b := range s.batches {
		if b.Label != batch.Label {
			kept = append(kept, b)
		}
	}
	s.batches = append(kept, batch)

	saved := batch
	saved.TotalCost = batchTotalCost(saved.Items)
	return saved, nil
}

func (s *Memory) GetSelectedMonthlyBatchID(ctx context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selectedBatchID, nil
}

func (s *Memory) SetSelectedMonthlyBatchID(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectedBatchID = id
	return nil
}

func (s *Memory) GetTertiaryPackaging(ctx context.Context) ([]domain.TertiaryPackaging, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.TertiaryPackaging(nil), s.packaging...), nil
}

func (s *Memory) UpsertTertiaryPackaging(ctx context.Context, rows []domain.TertiaryPackaging) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	byCode := map[string]int{}
	for i, row := range s.packaging {
		byCode[row.SigesCode] = i
	}
	for _, row := range rows {
		if i, ok := byCode[row.SigesCode]; ok {
			row.ID = s.packaging[i].ID
			s.packaging[i] = row
			continue
		}
		byCode[row.SigesCode] = len(s.packaging)
		s.packaging = append(s.packaging, row)
	}
	return nil
}

func (s *Memory) ClearTertiaryPackaging(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.packaging = nil
	return nil
}

func (s *Memory) GetMedicationCategories(ctx context.Context) ([]domain.MedicationCategory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.MedicationCategory(nil), s.categories...), nil
}

func (s *Memory) UpsertMedicationCategories(ctx context.Context, rows []domain.MedicationCategory) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	byCode := map[string]int{}
	for i, row := range s.categories {
		byCode[row.SigesCode] = i
	}
	for _, row := range rows {
		if i, ok := byCode[row.SigesCode]; ok {
			row.ID = s.categories[i].ID
			s.categories[i] = row
			continue
		}
		byCode[row.SigesCode] = len(s.categories)
		s.categories = append(s.categories, row)
	}
	return nil
}

func (s *Memory) ClearMedicationCategories(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories = nil
	return nil
}

func batchTotalCost(items []domain.BatchItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(decimal.NewFromFloat(item.Cost))
	}
	return total
}
