// internal/inventory/reconcile.go
package inventory

import (
	"strings"

	"github.com/bodegapp/backend-go/internal/domain"
	"github.com/bodegapp/backend-go/internal/feed"
	"github.com/bodegapp/backend-go/internal/parse"
	"github.com/google/uuid"
)

// Imports reconcile against the records already stored for the same
// inventory type: a record that matches an existing identity keeps its
// id, everything else gets a fresh one. Re-importing the same file is
// therefore an update, not a duplication.

// Reconcile771 turns parsed 771 lots into medication records,
// deduplicating within the upload by lot key (first occurrence wins)
// and reusing ids from the existing 771 inventory.
func Reconcile771(records []feed.Lot771, existing []domain.Medication) []domain.Medication {
	unique := make([]feed.Lot771, 0, len(records))
	seen := map[string]bool{}
	for _, r := range records {
		key := domain.LotKey(r.SigesCode, r.Name, r.Batch, r.ExpiryDate)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, r)
	}

	byKeyToID := map[string]string{}
	for _, m := range existing {
		if inventoryTypeOf(m) != domain.InventoryType771 {
			continue
		}
		if key := domain.LotKey(m.SigesCode, m.Name, m.Batch, m.ExpiryDate); key != "" {
			byKeyToID[key] = m.ID
		}
	}

	imported := make([]domain.Medication, 0, len(unique))
	for _, r := range unique {
		key := domain.LotKey(r.SigesCode, r.Name, r.Batch, r.ExpiryDate)
		id, ok := byKeyToID[key]
		if !ok {
			id = uuid.NewString()
		}

		batch := strings.TrimSpace(r.Batch)
		if batch == "" {
			batch = "S/N"
		}

		imported = append(imported, domain.Medication{
			ID:            id,
			InventoryType: domain.InventoryType771,
			SigesCode:     r.SigesCode,
			Name:          r.Name,
			Category:      "General",
			Batch:         batch,
			ExpiryDate:    r.ExpiryDate,
			Stock:         r.Stock,
			MinStock:      0,
			Unit:          "Unidad",
		})
	}
	return imported
}

// ReconcileCSV turns inventory CSV rows into medication records for
// the given type. Files come in two shapes: a bare positional
// code/name/stock listing, or a full header-mapped catalog layout. If
// any row of the positional read carries both a code and a name the
// positional shape wins.
func ReconcileCSV(text, inventoryType string, existing []domain.Medication) []domain.Medication {
	selectedType := strings.TrimSpace(inventoryType)
	if selectedType == "" {
		selectedType = domain.InventoryType772
	}

	rows := feed.Rows(text)
	dataRows := rows
	if len(rows) > 0 && feed.LooksLikeInventoryHeader(rows[0]) {
		dataRows = rows[1:]
	}

	positional := false
	for _, row := range dataRows {
		if strings.TrimSpace(cell(row, 0)) != "" && strings.TrimSpace(cell(row, 1)) != "" {
			positional = true
			break
		}
	}

	byKeyToID := map[string]string{}
	for _, m := range existing {
		if inventoryTypeOf(m) != selectedType {
			continue
		}
		if key := domain.MedicationKey(m.SigesCode, m.Name); key != "" {
			byKeyToID[key] = m.ID
		}
	}

	idFor := func(key string) string {
		if id, ok := byKeyToID[key]; ok {
			return id
		}
		return uuid.NewString()
	}

	var imported []domain.Medication
	if positional {
		for _, row := range dataRows {
			sigesCode := strings.TrimSpace(cell(row, 0))
			name := strings.TrimSpace(cell(row, 1))
			if sigesCode == "" || name == "" {
				continue
			}
			key := domain.MedicationKey(sigesCode, name)
			if key == "" {
				continue
			}

			imported = append(imported, domain.Medication{
				ID:            idFor(key),
				InventoryType: selectedType,
				SigesCode:     sigesCode,
				Name:          name,
				Category:      "General",
				Batch:         "S/N",
				ExpiryDate:    parse.DateOrToday(""),
				Stock:         parse.Number(cell(row, 2)),
				MinStock:      0,
				Unit:          "Unidad",
			})
		}
		return imported
	}

	for _, record := range feed.Records(text) {
		sigesCode := strings.TrimSpace(record["CodigoSIGES"])
		name := strings.TrimSpace(firstNonEmpty(record["Medicamento"], record["Nombre"]))
		key := domain.MedicationKey(sigesCode, name)
		if key == "" {
			continue
		}

		imported = append(imported, domain.Medication{
			ID:              idFor(key),
			InventoryType:   selectedType,
			SigesCode:       sigesCode,
			SicopClassifier: strings.TrimSpace(record["ClasificadorSICOP"]),
			SicopIdentifier: strings.TrimSpace(record["IdentificadorSICOP"]),
			Name:            orDefault(name, "Sin nombre"),
			Category:        orDefault(strings.TrimSpace(record["Categoria"]), "General"),
			Batch:           orDefault(strings.TrimSpace(record["Lote"]), "S/N"),
			ExpiryDate:      parse.DateOrToday(record["Vencimiento"]),
			Stock:           parse.Number(record["Stock"]),
			MinStock:        parse.Number(record["StockMinimo"]),
			Unit:            orDefault(strings.TrimSpace(record["Unidad"]), "Unidad"),
		})
	}
	return imported
}

// ReconcileCatalogCSV turns a catalog CSV into fresh 772 medication
// records. Catalog loads mint new ids unconditionally; the store
// upsert deduplicates per key. Rows without a minimum stock default
// to 10 units.
func ReconcileCatalogCSV(text string) []domain.Medication {
	var imported []domain.Medication
	for _, record := range feed.Records(text) {
		minStockRaw := record["StockMinimo"]
		if strings.TrimSpace(minStockRaw) == "" {
			minStockRaw = "10"
		}

		imported = append(imported, domain.Medication{
			ID:              uuid.NewString(),
			InventoryType:   domain.InventoryType772,
			SigesCode:       strings.TrimSpace(record["CodigoSIGES"]),
			SicopClassifier: strings.TrimSpace(record["ClasificadorSICOP"]),
			SicopIdentifier: strings.TrimSpace(record["IdentificadorSICOP"]),
			Name:            firstNonEmpty(record["Medicamento"], record["Nombre"], "Sin nombre"),
			Category:        firstNonEmpty(record["Categoria"], "General"),
			Batch:           firstNonEmpty(record["Lote"], "S/N"),
			ExpiryDate:      parse.DateOrToday(record["Vencimiento"]),
			Stock:           parse.Number(record["Stock"]),
			MinStock:        parse.Number(minStockRaw),
			Unit:            firstNonEmpty(record["Unidad"], "Unidad"),
		})
	}
	return imported
}

func inventoryTypeOf(m domain.Medication) string {
	if strings.TrimSpace(m.InventoryType) == "" {
		return domain.InventoryType772
	}
	return m.InventoryType
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
