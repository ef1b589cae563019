// internal/store/store.go
package store

import (
	"context"

	"github.com/bodegapp/backend-go/internal/domain"
)

// Store is the persistence boundary of the warehouse. Monthly batches
// come back newest first; saving a batch replaces any batch with the
// same label. Tertiary packaging and categories upsert by SIGES code.
type Store interface {
	GetMedications(ctx context.Context) ([]domain.Medication, error)
	UpsertMedication(ctx context.Context, med domain.Medication) error
	UpsertMedications(ctx context.Context, meds []domain.Medication) error
	DeleteMedication(ctx context.Context, id string) error
	ClearMedications(ctx context.Context) error
	ClearMedicationsByInventoryType(ctx context.Context, inventoryType string) error

	GetMonthlyBatches(ctx context.Context) ([]domain.MonthlyBatch, error)
	SaveMonthlyBatch(ctx context.Context, batch domain.MonthlyBatch) (domain.MonthlyBatch, error)
	GetSelectedMonthlyBatchID(ctx context.Context) (string, error)
	SetSelectedMonthlyBatchID(ctx context.Context, id string) error

	GetTertiaryPackaging(ctx context.Context) ([]domain.TertiaryPackaging, error)
	UpsertTertiaryPackaging(ctx context.Context, rows []domain.TertiaryPackaging) error
	ClearTertiaryPackaging(ctx context.Context) error

	GetMedicationCategories(ctx context.Context) ([]domain.MedicationCategory, error)
	UpsertMedicationCategories(ctx context.Context, rows []domain.MedicationCategory) error
	ClearMedicationCategories(ctx context.Context) error
}
