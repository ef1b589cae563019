package forecast

import (
	"testing"
	"time"

	"github.com/bodegapp/backend-go/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMeanAndStdDev(t *testing.T) {
	assert.Zero(t, Mean(nil))
	assert.Zero(t, StdDev(nil))
	assert.Zero(t, StdDev([]float64{42}))

	values := []float64{100, 0, 50}
	assert.InDelta(t, 50, Mean(values), 1e-9)
	// Population deviation: sqrt(((50)^2 + (-50)^2 + 0) / 3)
	assert.InDelta(t, 40.824829, StdDev(values), 1e-6)
}

func monthlyBatch(label string, daysAgo int, items ...domain.BatchItem) domain.MonthlyBatch {
	return domain.MonthlyBatch{
		ID:        label,
		Label:     label,
		CreatedAt: time.Now().AddDate(0, 0, -daysAgo),
		Items:     items,
	}
}

func TestBuildForecast(t *testing.T) {
	meds := []domain.Medication{
		{InventoryType: "771", SigesCode: "110-16-0010", Name: "Paracetamol", Stock: 40},
		{InventoryType: "772", SigesCode: "110-16-0010", Name: "Paracetamol", Stock: 60},
	}
	batches := []domain.MonthlyBatch{
		monthlyBatch("marzo", 0, domain.BatchItem{SigesCode: "110-16-0010", MedicationName: "Paracetamol", Quantity: 100}),
		monthlyBatch("febrero", 30, domain.BatchItem{SigesCode: "110-16-0010", MedicationName: "Paracetamol", Quantity: 0}),
		monthlyBatch("enero", 60, domain.BatchItem{SigesCode: "110-16-0010", MedicationName: "Paracetamol", Quantity: 50}),
	}

	rows := Build(meds, batches, 3)
	require.Len(t, rows, 1)

	r := rows[0]
	assert.Equal(t, [3]float64{100, 0, 50}, r.PerMonth)
	assert.InDelta(t, 50, r.Avg, 1e-9)
	assert.InDelta(t, 40.824829, r.Sd, 1e-6)
	assert.InDelta(t, 90.824829, r.ConsumoTotal, 1e-6)
	assert.InDelta(t, 40, r.Inv771, 1e-9)
	assert.InDelta(t, 60, r.Inv772, 1e-9)
	assert.InDelta(t, 100, r.InvTotal, 1e-9)
	// pedido = 90.824829*3 - 100
	assert.InDelta(t, 172.474487, r.Pedido, 1e-6)
}

func TestBuildPedidoFloorsAtZero(t *testing.T) {
	meds := []domain.Medication{
		{InventoryType: "772", SigesCode: "1-11-1111", Name: "A", Stock: 1000},
	}
	batches := []domain.MonthlyBatch{
		monthlyBatch("m", 0, domain.BatchItem{SigesCode: "1-11-1111", MedicationName: "A", Quantity: 10}),
	}

	rows := Build(meds, batches, 3)
	require.Len(t, rows, 1)
	assert.Zero(t, rows[0].Pedido)
}

func TestBuildZeroMonthsZeroesDemand(t *testing.T) {
	batches := []domain.MonthlyBatch{
		monthlyBatch("m", 0, domain.BatchItem{SigesCode: "1-11-1111", MedicationName: "A", Quantity: 10}),
	}

	rows := Build(nil, batches, 0)
	require.Len(t, rows, 1)
	assert.Zero(t, rows[0].Pedido)

	rows = Build(nil, batches, -2)
	require.Len(t, rows, 1)
	assert.Zero(t, rows[0].Pedido)
}

func TestBuildUsesOnlyThreeNewestBatches(t *testing.T) {
	batches := []domain.MonthlyBatch{
		monthlyBatch("abril", 0, domain.BatchItem{SigesCode: "1-11-1111", MedicationName: "A", Quantity: 1}),
		monthlyBatch("marzo", 30, domain.BatchItem{SigesCode: "1-11-1111", MedicationName: "A", Quantity: 2}),
		monthlyBatch("febrero", 60, domain.BatchItem{SigesCode: "1-11-1111", MedicationName: "A", Quantity: 3}),
		monthlyBatch("enero", 90, domain.BatchItem{SigesCode: "1-11-1111", MedicationName: "A", Quantity: 100}),
	}

	rows := Build(nil, batches, 1)
	require.Len(t, rows, 1)
	assert.Equal(t, [3]float64{1, 2, 3}, rows[0].PerMonth)

	assert.Equal(t, []string{"abril", "marzo", "febrero"}, MonthLabels(batches))
}

func TestBuildMergesByNameWhenCodeMissing(t *testing.T) {
	batches := []domain.MonthlyBatch{
		monthlyBatch("m", 0,
			domain.BatchItem{MedicationName: "Suero", Quantity: 5},
			domain.BatchItem{MedicationName: "suero", Quantity: 7},
		),
	}
	rows := Build(nil, batches, 1)
	require.Len(t, rows, 1)
	assert.InDelta(t, 12, rows[0].PerMonth[0], 1e-9)
}

func TestFilterHideZeroAndSearch(t *testing.T) {
	rows := []domain.ForecastRow{
		{SigesCode: "110-16-0010", MedicationName: "Paracetamol", Pedido: 5},
		{SigesCode: "110-16-0020", MedicationName: "Ibuprofeno", Pedido: 0},
		{SigesCode: "205-01-0001", MedicationName: "Gasa", Pedido: 3},
	}

	filtered := Filter(rows, domain.ForecastFilter{HideZero: true})
	require.Len(t, filtered, 2)

	filtered = Filter(rows, domain.ForecastFilter{Search: "gasa"})
	require.Len(t, filtered, 1)
	assert.Equal(t, "205-01-0001", filtered[0].SigesCode)
}

func TestSortRowsOrdering(t *testing.T) {
	rows := []domain.ForecastRow{
		{SigesCode: "205-01-0002"},
		{SigesCode: "110-16-0020"},
		{SigesCode: "XYZ"}, // fewer than 4 digits sorts last
		{SigesCode: "110-16-0010"},
		{SigesCode: "205-01-0001"},
	}

	SortRows(rows)

	got := make([]string, len(rows))
	for i, r := range rows {
		got[i] = r.SigesCode
	}
	assert.Equal(t, []string{"110-16-0010", "110-16-0020", "205-01-0001", "205-01-0002", "XYZ"}, got)
}

func TestSummary(t *testing.T) {
	batches := []domain.MonthlyBatch{
		monthlyBatch("marzo", 0, domain.BatchItem{SigesCode: "110-16-0010", MedicationName: "Paracetamol", Quantity: 100}),
		monthlyBatch("febrero", 30, domain.BatchItem{SigesCode: "110-16-0010", MedicationName: "Paracetamol", Quantity: 0}),
		monthlyBatch("enero", 60, domain.BatchItem{SigesCode: "110-16-0010", MedicationName: "Paracetamol", Quantity: 50}),
	}

	rows := Summary(batches)
	require.Len(t, rows, 1)
	assert.InDelta(t, 50, rows[0].Avg, 1e-9)
	assert.InDelta(t, 90.824829, rows[0].Total, 1e-6)
}
