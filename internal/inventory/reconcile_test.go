package inventory

import (
	"testing"

	"github.com/bodegapp/backend-go/internal/domain"
	"github.com/bodegapp/backend-go/internal/feed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcile771KeepsExistingIDs(t *testing.T) {
	existing := []domain.Medication{
		{
			ID:            "keep-me",
			InventoryType: "771",
			SigesCode:     "110-16-0010",
			Name:          "Paracetamol",
			Batch:         "L1",
			ExpiryDate:    "2027-12-31",
			Stock:         5,
		},
	}

	records := []feed.Lot771{
		{SigesCode: "110-16-0010", Name: "Paracetamol", Batch: "L1", ExpiryDate: "2027-12-31", Stock: 80},
		{SigesCode: "110-16-0010", Name: "Paracetamol", Batch: "L2", ExpiryDate: "2028-01-31", Stock: 20},
	}

	imported := Reconcile771(records, existing)
	require.Len(t, imported, 2)

	assert.Equal(t, "keep-me", imported[0].ID)
	assert.InDelta(t, 80, imported[0].Stock, 1e-9)
	assert.NotEmpty(t, imported[1].ID)
	assert.NotEqual(t, "keep-me", imported[1].ID)

	// Import defaults.
	assert.Equal(t, "General", imported[0].Category)
	assert.Equal(t, "Unidad", imported[0].Unit)
	assert.Zero(t, imported[0].MinStock)
}

func TestReconcile771DeduplicatesByLotKeyFirstWins(t *testing.T) {
	records := []feed.Lot771{
		{SigesCode: "1", Name: "A", Batch: "L1", ExpiryDate: "2027-01-01", Stock: 10},
		{SigesCode: "1", Name: "A", Batch: "l1", ExpiryDate: "2027-01-01", Stock: 99}, // same key, lowercased batch
		{SigesCode: "1", Name: "A", Batch: "L2", ExpiryDate: "2027-01-01", Stock: 3},
	}

	imported := Reconcile771(records, nil)
	require.Len(t, imported, 2)
	assert.InDelta(t, 10, imported[0].Stock, 1e-9)
	assert.Equal(t, "L2", imported[1].Batch)
}

func TestReconcile771IgnoresOtherTypeIDs(t *testing.T) {
	existing := []domain.Medication{
		{ID: "772-id", InventoryType: "772", SigesCode: "1", Name: "A", Batch: "L1", ExpiryDate: "2027-01-01"},
	}
	imported := Reconcile771([]feed.Lot771{
		{SigesCode: "1", Name: "A", Batch: "L1", ExpiryDate: "2027-01-01", Stock: 1},
	}, existing)
	require.Len(t, imported, 1)
	assert.NotEqual(t, "772-id", imported[0].ID)
}

func TestReconcileCSVPositional(t *testing.T) {
	text := "Código SIGES;Medicamento;Inventario\nSIG-1;Paracetamol;100,5\nSIG-2;;4\n;Ibuprofeno;\n"
	imported := ReconcileCSV(text, "772", nil)

	// SIG-2 and the nameless row are dropped in positional mode.
	require.Len(t, imported, 1)
	assert.Equal(t, "SIG-1", imported[0].SigesCode)
	assert.Equal(t, "Paracetamol", imported[0].Name)
	assert.InDelta(t, 100.5, imported[0].Stock, 1e-9)
	assert.Equal(t, "S/N", imported[0].Batch)
	assert.Equal(t, "772", imported[0].InventoryType)
	assert.Len(t, imported[0].ExpiryDate, 10)
}

func TestReconcileCSVHeaderMapped(t *testing.T) {
	text := "CodigoSIGES;ClasificadorSICOP;IdentificadorSICOP;Medicamento;Categoria;Lote;Vencimiento;Stock;StockMinimo;Unidad\n" +
		";;SICOP-1;Suero;Suero;L9;2027-06-30;12;2;Frasco\n"

	imported := ReconcileCSV(text, "772", nil)
	require.Len(t, imported, 1)

	m := imported[0]
	assert.Equal(t, "", m.SigesCode)
	assert.Equal(t, "SICOP-1", m.SicopIdentifier)
	assert.Equal(t, "Suero", m.Name)
	assert.Equal(t, "Suero", m.Category)
	assert.Equal(t, "L9", m.Batch)
	assert.Equal(t, "2027-06-30", m.ExpiryDate)
	assert.InDelta(t, 12, m.Stock, 1e-9)
	assert.InDelta(t, 2, m.MinStock, 1e-9)
	assert.Equal(t, "Frasco", m.Unit)
}

func TestReconcileCSVReusesIDsByMedicationKey(t *testing.T) {
	existing := []domain.Medication{
		{ID: "stable", InventoryType: "772", SigesCode: "SIG-1", Name: "Paracetamol"},
	}
	imported := ReconcileCSV("SIG-1;Paracetamol;50\n", "772", existing)
	require.Len(t, imported, 1)
	assert.Equal(t, "stable", imported[0].ID)
}

func TestReconcileCatalogCSVDefaults(t *testing.T) {
	text := "CodigoSIGES,Medicamento,Stock\nSIG-1,Paracetamol,7\n"
	imported := ReconcileCatalogCSV(text)
	require.Len(t, imported, 1)

	m := imported[0]
	assert.Equal(t, "772", m.InventoryType)
	assert.InDelta(t, 10, m.MinStock, 1e-9) // catalog default
	assert.Equal(t, "General", m.Category)
	assert.Equal(t, "S/N", m.Batch)
	assert.NotEmpty(t, m.ID)
}
