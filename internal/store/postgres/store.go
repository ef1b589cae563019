package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/bodegapp/backend-go/internal/domain"
	"github.com/bodegapp/backend-go/internal/store"
	"github.com/shopspring/decimal"
)

const selectedBatchKey = "selected_monthly_batch_id"

// Store implements store.Store on top of postgres.
type Store struct {
	db *DB
}

func NewStore(db *DB) *Store {
	return &Store{db: db}
}

var _ store.Store = (*Store)(nil)

func (s *Store) GetMedications(ctx context.Context) ([]domain.Medication, error) {
	meds := []domain.Medication{}
	err := s.db.SelectContext(ctx, &meds, `
		SELECT id, inventory_type, siges_code, sicop_classifier, sicop_identifier,
		       name, category, batch, expiry_date, stock, min_stock, unit
		FROM medications
		ORDER BY name, batch`)
	if err != nil {
		return nil, fmt.Errorf("could not list medications: %w", err)
	}
	return meds, nil
}

const upsertMedicationSQL = `
	INSERT INTO medications (
		id, inventory_type, siges_code, sicop_classifier, sicop_identifier,
		name, category, batch, expiry_date, stock, min_stock, unit
	) VALUES (
		:id, :inventory_type, :siges_code, :sicop_classifier, :sicop_identifier,
		:name, :category, :batch, :expiry_date, :stock, :min_stock, :unit
	)
	ON CONFLICT (id) DO UPDATE SET
		inventory_type   = EXCLUDED.inventory_type,
		siges_code       = EXCLUDED.siges_code,
		sicop_classifier = EXCLUDED.sicop_classifier,
		sicop_identifier = EXCLUDED.sicop_identifier,
		name             = EXCLUDED.name,
		category         = EXCLUDED.category,
		batch            = EXCLUDED.batch,
		expiry_date      = EXCLUDED.expiry_date,
		stock            = EXCLUDED.stock,
		min_stock        = EXCLUDED.min_stock,
		unit             = EXCLUDED.unit`

func (s *Store) UpsertMedication(ctx context.Context, med domain.Medication) error {
	if _, err := s.db.NamedExecContext(ctx, upsertMedicationSQL, med); err != nil {
		return fmt.Errorf("could not upsert medication %s: %w", med.ID, err)
	}
	return nil
}

func (s *Store) UpsertMedications(ctx context.Context, meds []domain.Medication) error {
	if len(meds) == 0 {
		return nil
	}

	return s.db.WithTx(ctx, func(tx *sql.Tx) error {
		for _, med := range meds {
			query, args, err := s.db.BindNamed(upsertMedicationSQL, med)
			if err != nil {
				return fmt.Errorf("could not bind medication %s: %w", med.ID, err)
			}
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return fmt.Errorf("could not upsert medication %s: %w", med.ID, err)
			}
		}
		return nil
	})
}

func (s *Store) DeleteMedication(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM medications WHERE id = $1`, id); err != nil {
		return fmt.Errorf("could not delete medication %s: %w", id, err)
	}
	return nil
}

func (s *Store) ClearMedications(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM medications`); err != nil {
		return fmt.Errorf("could not clear medications: %w", err)
	}
	return nil
}

func (s *Store) ClearMedicationsByInventoryType(ctx context.Context, inventoryType string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM medications WHERE COALESCE(NULLIF(inventory_type, ''), '772') = $1`, inventoryType)
	if err != nil {
		return fmt.Errorf("could not clear inventory %s: %w", inventoryType, err)
	}
	return nil
}

type batchRow struct {
	ID        string    `db:"id"`
	Label     string    `db:"label"`
	CreatedAt time.Time `db:"created_at"`
}

func (s *Store) GetMonthlyBatches(ctx context.Context) ([]domain.MonthlyBatch, error) {
	rows := []batchRow{}
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, label, created_at
		FROM monthly_batches
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("could not list monthly batches: %w", err)
	}

	batches := make([]domain.MonthlyBatch, 0, len(rows))
	for _, row := range rows {
		items := []domain.BatchItem{}
		err := s.db.SelectContext(ctx, &items, `
			SELECT id, siges_code, medication_name, quantity, cost
			FROM monthly_batch_items
			WHERE batch_id = $1
			ORDER BY id`, row.ID)
		if err != nil {
			return nil, fmt.Errorf("could not list items of batch %s: %w", row.ID, err)
		}

		total := decimal.Zero
		for _, item := range items {
			total = total.Add(decimal.NewFromFloat(item.Cost))
		}

		batches = append(batches, domain.MonthlyBatch{
			ID:        row.ID,
			Label:     row.Label,
			CreatedAt: row.CreatedAt,
			Items:     items,
			TotalCost: total,
		})
	}
	return batches, nil
}

func (s *Store) SaveMonthlyBatch(ctx context.Context, batch domain.MonthlyBatch) (domain.MonthlyBatch, error) {
	if batch.CreatedAt.IsZero() {
		batch.CreatedAt = time.Now().UTC()
	}

	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		// A re-uploaded month replaces the previous load; items go with
		// the old batch via ON DELETE CASCADE.
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM monthly_batches WHERE label = $1`, batch.Label); err != nil {
			return fmt.Errorf("could not replace batch %q: %w", batch.Label, err)
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO monthly_batches (id, label, created_at) VALUES ($1, $2, $3)`,
			batch.ID, batch.Label, batch.CreatedAt); err != nil {
			return fmt.Errorf("could not insert batch %q: %w", batch.Label, err)
		}

		for _, item := range batch.Items {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO monthly_batch_items (id, batch_id, siges_code, medication_name, quantity, cost)
				VALUES ($1, $2, $3, $4, $5, $6)`,
				item.ID, batch.ID, item.SigesCode, item.MedicationName, item.Quantity, item.Cost); err != nil {
				return fmt.Errorf("could not insert batch item %s: %w", item.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return domain.MonthlyBatch{}, err
	}

	total := decimal.Zero
	for _, item := range batch.Items {
		total = total.Add(decimal.NewFromFloat(item.Cost))
	}
	batch.TotalCost = total
	return batch, nil
}

func (s *Store) GetSelectedMonthlyBatchID(ctx context.Context) (string, error) {
	var value string
	err := s.db.GetContext(ctx, &value,
		`SELECT value FROM app_settings WHERE key = $1`, selectedBatchKey)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("could not read selected batch id: %w", err)
	}
	return value, nil
}

func (s *Store) SetSelectedMonthlyBatchID(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO app_settings (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`,
		selectedBatchKey, id)
	if err != nil {
		return fmt.Errorf("could not store selected batch id: %w", err)
	}
	return nil
}

func (s *Store) GetTertiaryPackaging(ctx context.Context) ([]domain.TertiaryPackaging, error) {
	rows := []domain.TertiaryPackaging{}
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, siges_code, medication_name, tertiary_quantity
		FROM tertiary_packaging
		ORDER BY siges_code`)
	if err != nil {
		return nil, fmt.Errorf("could not list tertiary packaging: %w", err)
	}
	return rows, nil
}

func (s *Store) UpsertTertiaryPackaging(ctx context.Context, rows []domain.TertiaryPackaging) error {
	if len(rows) == 0 {
		return nil
	}

	return s.db.WithTx(ctx, func(tx *sql.Tx) error {
		for _, row := range rows {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO tertiary_packaging (id, siges_code, medication_name, tertiary_quantity)
				VALUES ($1, $2, $3, $4)
				ON CONFLICT (siges_code) DO UPDATE SET
					medication_name   = EXCLUDED.medication_name,
					tertiary_quantity = EXCLUDED.tertiary_quantity`,
				row.ID, row.SigesCode, row.MedicationName, row.TertiaryQuantity); err != nil {
				return fmt.Errorf("could not upsert packaging %s: %w", row.SigesCode, err)
			}
		}
		return nil
	})
}

func (s *Store) ClearTertiaryPackaging(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM tertiary_packaging`); err != nil {
		return fmt.Errorf("could not clear tertiary packaging: %w", err)
	}
	return nil
}

func (s *Store) GetMedicationCategories(ctx context.Context) ([]domain.MedicationCategory, error) {
	rows := []domain.MedicationCategory{}
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, siges_code, medication_name, category
		FROM medication_categories
		ORDER BY siges_code`)
	if err != nil {
		return nil, fmt.Errorf("could not list medication categories: %w", err)
	}
	return rows, nil
}

func (s *Store) UpsertMedicationCategories(ctx context.Context, rows []domain.MedicationCategory) error {
	if len(rows) == 0 {
		return nil
	}

	return s.db.WithTx(ctx, func(tx *sql.Tx) error {
		for _, row := range rows {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO medication_categories (id, siges_code, medication_name, category)
				VALUES ($1, $2, $3, $4)
				ON CONFLICT (siges_code) DO UPDATE SET
					medication_name = EXCLUDED.medication_name,
					category        = EXCLUDED.category`,
				row.ID, row.SigesCode, row.MedicationName, row.Category); err != nil {
				return fmt.Errorf("could not upsert category %s: %w", row.SigesCode, err)
			}
		}
		return nil
	})
}

func (s *Store) ClearMedicationCategories(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM medication_categories`); err != nil {
		return fmt.Errorf("could not clear medication categories: %w", err)
	}
	return nil
}
