package service

import (
	"context"
	"testing"

	"github.com/bodegapp/backend-go/internal/cache"
	"github.com/bodegapp/backend-go/internal/domain"
	"github.com/bodegapp/backend-go/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func newInventoryService() (*InventoryService, *store.Memory) {
	mem := store.NewMemory()
	return NewInventoryService(mem, cache.NewNoopForecastCache()), mem
}

func TestImportFileRejectsTotal(t *testing.T) {
	svc, _ := newInventoryService()

	_, err := svc.ImportFile(context.Background(), "inv.csv", domain.InventoryTotal, []byte("a;b"))
	assert.ErrorIs(t, err, ErrTotalIsReadOnly)
}

func TestImportFileValidatesExtension(t *testing.T) {
	svc, _ := newInventoryService()
	ctx := context.Background()

	_, err := svc.ImportFile(ctx, "reporte.csv", domain.InventoryType771, []byte("<xml/>"))
	assert.ErrorIs(t, err, ErrWrongExtension771)

	_, err = svc.ImportFile(ctx, "reporte.xml", domain.InventoryType772, []byte("a;b"))
	assert.ErrorIs(t, err, ErrWrongExtension772)
}

func TestImportFileCSV772(t *testing.T) {
	svc, mem := newInventoryService()
	ctx := context.Background()

	csv := "Código SIGES;Medicamento;Inventario\n110-16-0010;Acetaminofén;25\n205-01-0001;Ibuprofeno;8\n"
	result, err := svc.ImportFile(ctx, "inventario.csv", domain.InventoryType772, []byte(csv))
	require.NoError(t, err)

	assert.Equal(t, 2, result.ImportedCount)
	assert.Equal(t, 2, result.VisibleCountForType)
	assert.Equal(t, 2, result.TotalCountByType[domain.InventoryType772])

	meds, err := mem.GetMedications(ctx)
	require.NoError(t, err)
	assert.Len(t, meds, 2)
}

func TestImportFileKeepsIdsOnReimport(t *testing.T) {
	svc, mem := newInventoryService()
	ctx := context.Background()

	csv := "Código SIGES;Medicamento;Inventario\n110-16-0010;Acetaminofén;25\n"
	_, err := svc.ImportFile(ctx, "inventario.csv", domain.InventoryType772, []byte(csv))
	require.NoError(t, err)

	before, err := mem.GetMedications(ctx)
	require.NoError(t, err)
	require.Len(t, before, 1)

	csv = "Código SIGES;Medicamento;Inventario\n110-16-0010;Acetaminofén;40\n"
	_, err = svc.ImportFile(ctx, "inventario.csv", domain.InventoryType772, []byte(csv))
	require.NoError(t, err)

	after, err := mem.GetMedications(ctx)
	require.NoError(t, err)
	require.Len(t, after, 1)
	assert.Equal(t, before[0].ID, after[0].ID)
	assert.Equal(t, 40.0, after[0].Stock)
}

func TestImportFileXML771(t *testing.T) {
	svc, _ := newInventoryService()
	ctx := context.Background()

	xml := `<Report>
	  <FormattedAreaPair Level="4" Type="Group">
	    <FormattedReportObject FieldName="{TBL.PRODUCTO}"><Value>110-16-0010</Value></FormattedReportObject>
	    <FormattedReportObject FieldName="{TBL.DSC_PRODUCTO}"><Value>ACETAMINOFEN 500MG</Value></FormattedReportObject>
	    <FormattedAreaPair Level="5" Type="Details">
	      <FormattedReportObject FieldName="{TBL.IDE_LOTE}"><Value>L001</Value></FormattedReportObject>
	      <FormattedReportObject FieldName="{TBL.CAN_LOTE}"><Value>120</Value></FormattedReportObject>
	      <FormattedReportObject FieldName="{TBL.FEC_VENCIMIENTO}"><Value>2027-01-31</Value></FormattedReportObject>
	    </FormattedAreaPair>
	  </FormattedAreaPair>
	</Report>`

	result, err := svc.ImportFile(ctx, "reporte771.xml", domain.InventoryType771, []byte(xml))
	require.NoError(t, err)
	assert.Equal(t, 1, result.ImportedCount)
	assert.Equal(t, 1, result.TotalCountByType[domain.InventoryType771])

	rows, err := svc.Rows(ctx, domain.InventoryType771, "", false)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Len(t, rows[0].Lots, 1)
	assert.Equal(t, "L001", rows[0].Lots[0].Batch)
}

func TestClearRejectsTotal(t *testing.T) {
	svc, _ := newInventoryService()
	assert.ErrorIs(t, svc.Clear(context.Background(), domain.InventoryTotal), ErrTotalIsReadOnly)
	assert.ErrorIs(t, svc.Clear(context.Background(), ""), ErrTotalIsReadOnly)
}

func TestAlertsListsLowStock(t *testing.T) {
	svc, mem := newInventoryService()
	ctx := context.Background()

	require.NoError(t, mem.UpsertMedications(ctx, []domain.Medication{
		{ID: "a", Name: "Bajo", Stock: 3, MinStock: 5},
		{ID: "b", Name: "Sano", Stock: 50, MinStock: 5},
	}))

	alerts, err := svc.Alerts(ctx)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, "Bajo", alerts[0].Name)
}

func TestMonthlyImportCSV(t *testing.T) {
	mem := store.NewMemory()
	svc := NewMonthlyService(mem, cache.NewNoopForecastCache())
	ctx := context.Background()

	csv := "Código;Medicamento;Consumo;Costo\n110-16-0010;Acetaminofén;100;2500,50\n;Sin código;10;5\n"
	result, err := svc.ImportCSV(ctx, "Enero 2026.csv", []byte(csv))
	require.NoError(t, err)

	assert.Equal(t, "Enero 2026", result.Label)
	assert.Equal(t, 1, result.ImportedCount)
	assert.Equal(t, 1, result.SkippedCount)
	assert.NotEmpty(t, result.BatchID)

	selected, err := svc.SelectedBatchID(ctx)
	require.NoError(t, err)
	assert.Equal(t, result.BatchID, selected)

	batches, err := svc.Batches(ctx)
	require.NoError(t, err)
	require.Len(t, batches, 1)
	require.Len(t, batches[0].Items, 1)
	assert.Equal(t, 2500.5, batches[0].Items[0].Cost)
}

func TestMonthlyImportLabelFallback(t *testing.T) {
	mem := store.NewMemory()
	svc := NewMonthlyService(mem, cache.NewNoopForecastCache())

	result, err := svc.ImportCSV(context.Background(), ".csv", []byte("110;Acetaminofén;10;1\n"))
	require.NoError(t, err)
	assert.Equal(t, "Mes sin nombre", result.Label)
}

func TestMonthlyImportEmptyFile(t *testing.T) {
	mem := store.NewMemory()
	svc := NewMonthlyService(mem, cache.NewNoopForecastCache())

	_, err := svc.ImportCSV(context.Background(), "vacio.csv", []byte(";;\n"))
	assert.ErrorIs(t, err, ErrEmptyConsumptionFile)
}

func TestSelectBatchUnknownID(t *testing.T) {
	mem := store.NewMemory()
	svc := NewMonthlyService(mem, cache.NewNoopForecastCache())

	err := svc.SelectBatch(context.Background(), "nope")
	assert.Error(t, err)
}

func TestCatalogImportReplaces(t *testing.T) {
	mem := store.NewMemory()
	svc := NewCatalogService(mem, cache.NewNoopForecastCache())
	ctx := context.Background()

	require.NoError(t, mem.UpsertMedication(ctx, domain.Medication{ID: "old", Name: "Viejo"}))

	csv := "Código SIGES;Medicamento;Stock Mínimo\n110-16-0010;Acetaminofén;\n"
	result, err := svc.ImportCSV(ctx, "catalogo.csv", []byte(csv))
	require.NoError(t, err)
	assert.Equal(t, 1, result.ImportedCount)

	meds, err := mem.GetMedications(ctx)
	require.NoError(t, err)
	require.Len(t, meds, 1)
	assert.Equal(t, "Acetaminofén", meds[0].Name)
	assert.Equal(t, 10.0, meds[0].MinStock)
}

func xlsxBytes(t *testing.T, rows [][]interface{}) []byte {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestPackagingImportXLSX(t *testing.T) {
	mem := store.NewMemory()
	svc := NewPackagingService(mem)
	ctx := context.Background()

	require.NoError(t, mem.UpsertMedication(ctx, domain.Medication{
		ID: "m1", SigesCode: "110-16-0010", Name: "Acetaminofén 500mg",
	}))

	content := xlsxBytes(t, [][]interface{}{
		{"Código SIGES", "Medicamento", "Cantidad"},
		{"110160010", "", "24"},
		{"", "Sin código", "10"},
	})

	result, err := svc.ImportXLSX(ctx, "embalaje.xlsx", content)
	require.NoError(t, err)
	assert.Equal(t, 1, result.ImportedCount)
	assert.Equal(t, 1, result.SkippedCount)

	rows, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "110-16-0010", rows[0].SigesCode)
	assert.Equal(t, "Acetaminofén 500mg", rows[0].MedicationName)
	assert.Equal(t, 24.0, rows[0].TertiaryQuantity)
}

func TestCategoriesImportSkipsUnknown(t *testing.T) {
	mem := store.NewMemory()
	svc := NewCategoriesService(mem)
	ctx := context.Background()

	content := xlsxBytes(t, [][]interface{}{
		{"Código SIGES", "Medicamento", "Categoría"},
		{"110160010", "Acetaminofén", "frio"},
		{"110160020", "Diazepam", "Inventada"},
	})

	result, err := svc.ImportXLSX(ctx, "categorias.xlsx", content)
	require.NoError(t, err)
	assert.Equal(t, 1, result.ImportedCount)
	assert.Equal(t, 1, result.SkippedCount)

	rows, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, domain.CategoryFrio, rows[0].Category)
}

func TestForecastRows(t *testing.T) {
	mem := store.NewMemory()
	monthly := NewMonthlyService(mem, cache.NewNoopForecastCache())
	svc := NewForecastService(mem, cache.NewNoopForecastCache())
	ctx := context.Background()

	require.NoError(t, mem.UpsertMedication(ctx, domain.Medication{
		ID: "m1", InventoryType: domain.InventoryType772,
		SigesCode: "110-16-0010", Name: "Acetaminofén", Stock: 40,
	}))

	_, err := monthly.ImportCSV(ctx, "Enero.csv", []byte("110-16-0010;Acetaminofén;100;1\n"))
	require.NoError(t, err)

	rows, labels, err := svc.Rows(ctx, domain.ForecastFilter{Months: 3})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"Enero"}, labels)

	// one month of data: avg 100/3, sd of [100 0 0]
	assert.InDelta(t, 33.333333, rows[0].Avg, 1e-6)
	assert.Equal(t, 40.0, rows[0].Inv772)
	assert.Greater(t, rows[0].Pedido, 0.0)
}

func TestForecastHideZero(t *testing.T) {
	mem := store.NewMemory()
	monthly := NewMonthlyService(mem, cache.NewNoopForecastCache())
	svc := NewForecastService(mem, cache.NewNoopForecastCache())
	ctx := context.Background()

	require.NoError(t, mem.UpsertMedication(ctx, domain.Medication{
		ID: "m1", InventoryType: domain.InventoryType772,
		SigesCode: "110-16-0010", Name: "Acetaminofén", Stock: 100000,
	}))
	_, err := monthly.ImportCSV(ctx, "Enero.csv", []byte("110-16-0010;Acetaminofén;100;1\n"))
	require.NoError(t, err)

	rows, _, err := svc.Rows(ctx, domain.ForecastFilter{Months: 3, HideZero: true})
	require.NoError(t, err)
	assert.Empty(t, rows)
}
