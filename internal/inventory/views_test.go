package inventory

import (
	"testing"
	"time"

	"github.com/bodegapp/backend-go/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func med(id, invType, code, name, batch, expiry string, stock float64) domain.Medication {
	return domain.Medication{
		ID: id, InventoryType: invType, SigesCode: code, Name: name,
		Batch: batch, ExpiryDate: expiry, Stock: stock,
	}
}

func TestGroup771(t *testing.T) {
	meds := []domain.Medication{
		med("a", "771", "110-16-0010", "Paracetamol", "L2", "2028-01-31", 20),
		med("b", "771", "110-16-0010", "Paracetamol", "L1", "2027-12-31", 80),
		med("c", "771", "110-16-0020", "Ibuprofeno", "", "", 5),
		med("d", "772", "110-16-0010", "Paracetamol", "S/N", "", 999), // wrong type, ignored
	}

	rows := Group771(meds)
	require.Len(t, rows, 2)

	assert.Equal(t, "110-16-0010", rows[0].SigesCode)
	assert.InDelta(t, 100, rows[0].Stock, 1e-9)
	require.Len(t, rows[0].Lots, 2)
	assert.Equal(t, "L1", rows[0].Lots[0].Batch) // sorted by batch then expiry
	assert.Equal(t, "L2", rows[0].Lots[1].Batch)

	assert.Equal(t, "S/N", rows[1].Lots[0].Batch)
}

func TestTotalViewMergesTypes(t *testing.T) {
	meds := []domain.Medication{
		med("a", "772", "110-16-0010", "Paracetamol", "S/N", "", 30),
		med("b", "771", "110-16-0010", "Paracetamol", "L1", "2027-12-31", 70),
		med("c", "771", "", "Suero Fisiológico", "L2", "2027-06-30", 10),
	}

	rows := TotalView(meds, nil, false)
	require.Len(t, rows, 2)

	assert.InDelta(t, 30, rows[0].Stock772, 1e-9)
	assert.InDelta(t, 70, rows[0].Stock771, 1e-9)
	assert.InDelta(t, 100, rows[0].Stock, 1e-9)
	require.Len(t, rows[0].Lots, 1) // lots come from 771 only

	assert.Equal(t, "Suero Fisiológico", rows[1].Name)
	assert.InDelta(t, 10, rows[1].Stock, 1e-9)
}

func batch(created time.Time, items ...domain.BatchItem) domain.MonthlyBatch {
	return domain.MonthlyBatch{ID: created.Format("20060102"), Label: "m", CreatedAt: created, Items: items}
}

func TestTotalViewMovementFilter(t *testing.T) {
	meds := []domain.Medication{
		med("a", "772", "110-16-0010", "Paracetamol", "S/N", "", 30),
		med("b", "772", "110-16-0020", "Ibuprofeno", "S/N", "", 5),
		med("c", "772", "", "Sin código", "S/N", "", 9),
	}

	now := time.Now()
	batches := []domain.MonthlyBatch{
		batch(now, domain.BatchItem{SigesCode: "110160010", Quantity: 12}),
	}

	rows := TotalView(meds, batches, true)
	require.Len(t, rows, 1)
	assert.Equal(t, "110-16-0010", rows[0].SigesCode)

	// Filter is inert without consumption data.
	rows = TotalView(meds, nil, true)
	assert.Len(t, rows, 3)
}

func TestMovementByCodeUsesFourMostRecentBatches(t *testing.T) {
	now := time.Now()
	batches := []domain.MonthlyBatch{
		batch(now.AddDate(0, -4, 0), domain.BatchItem{SigesCode: "1", Quantity: 100}), // too old
		batch(now, domain.BatchItem{SigesCode: "1", Quantity: 1}),
		batch(now.AddDate(0, -1, 0), domain.BatchItem{SigesCode: "1", Quantity: 2}),
		batch(now.AddDate(0, -2, 0), domain.BatchItem{SigesCode: "1", Quantity: 3}),
		batch(now.AddDate(0, -3, 0), domain.BatchItem{SigesCode: "1", Quantity: 4}),
	}

	movement := MovementByCode(batches)
	assert.InDelta(t, 10, movement["1"], 1e-9)
}

func TestFilterRowsSearchesLots(t *testing.T) {
	rows := Group771([]domain.Medication{
		med("a", "771", "110-16-0010", "Paracetamol", "LOTE-77", "2027-12-31", 10),
		med("b", "771", "110-16-0020", "Ibuprofeno", "L1", "2028-01-31", 5),
	})

	filtered := FilterRows(rows, "lote-77")
	require.Len(t, filtered, 1)
	assert.Equal(t, "110-16-0010", filtered[0].SigesCode)

	assert.Len(t, FilterRows(rows, ""), 2)
	assert.Empty(t, FilterRows(rows, "no-match"))
}

func TestLowStockAndStats(t *testing.T) {
	meds := []domain.Medication{
		{ID: "a", Stock: 5, MinStock: 10},
		{ID: "b", Stock: 10, MinStock: 10},
		{ID: "c", Stock: 11, MinStock: 10},
	}
	low := LowStock(meds)
	require.Len(t, low, 2) // at or below minimum

	stats := Stats(meds, []domain.MonthlyBatch{
		{Items: []domain.BatchItem{{}, {}}},
	})
	assert.Equal(t, 3, stats.TotalItems)
	assert.Equal(t, 2, stats.LowStockCount)
	assert.InDelta(t, 26, stats.TotalStock, 1e-9)
	assert.Equal(t, 2, stats.LastBatchItemCount)
}

func TestCountByTypeDefaultsTo772(t *testing.T) {
	counts := CountByType([]domain.Medication{
		{InventoryType: "771"},
		{InventoryType: ""},
		{InventoryType: "772"},
	})
	assert.Equal(t, 1, counts["771"])
	assert.Equal(t, 2, counts["772"])
}
