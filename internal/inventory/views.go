// internal/inventory/views.go
package inventory

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/bodegapp/backend-go/internal/domain"
)

// mergeKey joins 771 and 772 rows of the same medication in the total
// view. Unlike MedicationKey the code is lowercased here, so codes
// differing only in case merge.
func mergeKey(sigesCode, name string) string {
	code := strings.TrimSpace(sigesCode)
	if code != "" {
		return "code:" + strings.ToLower(code)
	}
	n := strings.ToLower(strings.TrimSpace(name))
	if n != "" {
		return "name:" + n
	}
	return ""
}

func sortLots(lots []domain.Lot) {
	sort.SliceStable(lots, func(i, j int) bool {
		if lots[i].Batch != lots[j].Batch {
			return lots[i].Batch < lots[j].Batch
		}
		return lots[i].ExpiryDate < lots[j].ExpiryDate
	})
}

func lotOf(m domain.Medication) domain.Lot {
	batch := strings.TrimSpace(m.Batch)
	if batch == "" {
		batch = "S/N"
	}
	return domain.Lot{
		ID:         m.ID,
		Batch:      batch,
		ExpiryDate: strings.TrimSpace(m.ExpiryDate),
		Stock:      m.Stock,
	}
}

// Group771 groups 771 lot records by medication, lots sorted by batch
// then expiry, stock summed across lots.
func Group771(medications []domain.Medication) []domain.InventoryRow {
	grouped := []domain.InventoryRow{}
	index := map[string]int{}

	for _, m := range medications {
		if inventoryTypeOf(m) != domain.InventoryType771 {
			continue
		}

		code := strings.TrimSpace(m.SigesCode)
		name := strings.TrimSpace(m.Name)
		key := strings.ToLower(code + "||" + name)
		lot := lotOf(m)

		if i, ok := index[key]; ok {
			grouped[i].Lots = append(grouped[i].Lots, lot)
			grouped[i].Stock += lot.Stock
			continue
		}

		index[key] = len(grouped)
		grouped = append(grouped, domain.InventoryRow{
			ID:            "group:" + key,
			InventoryType: domain.InventoryType771,
			SigesCode:     code,
			Name:          name,
			Lots:          []domain.Lot{lot},
			Stock:         lot.Stock,
		})
	}

	for i := range grouped {
		sortLots(grouped[i].Lots)
	}
	return grouped
}

// MovementByCode sums consumption quantities per normalized SIGES code
// over the most recent batches (by upload time, capped at four).
func MovementByCode(batches []domain.MonthlyBatch) map[string]float64 {
	candidates := append([]domain.MonthlyBatch(nil), batches...)
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].CreatedAt.After(candidates[j].CreatedAt)
	})
	if len(candidates) > 4 {
		candidates = candidates[:4]
	}

	byCode := map[string]float64{}
	for _, batch := range candidates {
		for _, item := range batch.Items {
			code := domain.NormalizeSigesCode(item.SigesCode)
			if code == "" {
				continue
			}
			byCode[code] += item.Quantity
		}
	}
	return byCode
}

// TotalView merges 771 and 772 inventories per medication. Lots come
// from the 771 side only. When hideNoMovement is set and consumption
// data exists, rows whose code shows no movement over the recent
// batches are suppressed; rows without a code are suppressed too.
func TotalView(medications []domain.Medication, batches []domain.MonthlyBatch, hideNoMovement bool) []domain.InventoryRow {
	combined := []domain.InventoryRow{}
	index := map[string]int{}

	entryFor := func(sigesCode, name string) *domain.InventoryRow {
		key := mergeKey(sigesCode, name)
		if key == "" {
			return nil
		}
		if i, ok := index[key]; ok {
			return &combined[i]
		}
		index[key] = len(combined)
		combined = append(combined, domain.InventoryRow{
			ID:            "total:" + key,
			InventoryType: domain.InventoryTotal,
			SigesCode:     strings.TrimSpace(sigesCode),
			Name:          strings.TrimSpace(name),
		})
		return &combined[len(combined)-1]
	}

	for _, m := range medications {
		t := inventoryTypeOf(m)
		if t != domain.InventoryType771 && t != domain.InventoryType772 {
			continue
		}

		entry := entryFor(m.SigesCode, m.Name)
		if entry == nil {
			continue
		}
		if entry.SigesCode == "" {
			entry.SigesCode = strings.TrimSpace(m.SigesCode)
		}
		if entry.Name == "" {
			entry.Name = strings.TrimSpace(m.Name)
		}

		if t == domain.InventoryType772 {
			entry.Stock772 += m.Stock
		} else {
			lot := lotOf(m)
			entry.Lots = append(entry.Lots, lot)
			entry.Stock771 += lot.Stock
		}
	}

	for i := range combined {
		sortLots(combined[i].Lots)
		combined[i].Stock = combined[i].Stock771 + combined[i].Stock772
	}

	hasAnyMonthlyData := false
	for _, b := range batches {
		if len(b.Items) > 0 {
			hasAnyMonthlyData = true
			break
		}
	}
	if !hideNoMovement || !hasAnyMonthlyData {
		return combined
	}

	movement := MovementByCode(batches)
	filtered := make([]domain.InventoryRow, 0, len(combined))
	for _, row := range combined {
		code := strings.TrimSpace(row.SigesCode)
		if code == "" {
			continue
		}
		if movement[code] > 0 {
			filtered = append(filtered, row)
		}
	}
	return filtered
}

// PlainRows lists the medications of one inventory type unchanged.
func PlainRows(medications []domain.Medication, inventoryType string) []domain.InventoryRow {
	rows := []domain.InventoryRow{}
	for _, m := range medications {
		if inventoryTypeOf(m) != inventoryType {
			continue
		}
		rows = append(rows, domain.InventoryRow{
			ID:            m.ID,
			InventoryType: inventoryType,
			SigesCode:     m.SigesCode,
			Name:          m.Name,
			Category:      m.Category,
			Batch:         m.Batch,
			ExpiryDate:    m.ExpiryDate,
			Unit:          m.Unit,
			MinStock:      m.MinStock,
			Stock:         m.Stock,
		})
	}
	return rows
}

// FilterRows keeps rows whose searchable text contains the query,
// case-insensitively. Grouped rows search their lots too.
func FilterRows(rows []domain.InventoryRow, query string) []domain.InventoryRow {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return rows
	}

	filtered := make([]domain.InventoryRow, 0, len(rows))
	for _, row := range rows {
		if strings.Contains(strings.ToLower(rowHaystack(row)), q) {
			filtered = append(filtered, row)
		}
	}
	return filtered
}

func rowHaystack(row domain.InventoryRow) string {
	var b strings.Builder
	switch row.InventoryType {
	case domain.InventoryTotal:
		fmt.Fprintf(&b, "%s %s %s %s %s",
			row.SigesCode, row.Name,
			trimFloat(row.Stock772), trimFloat(row.Stock771), trimFloat(row.Stock))
	case domain.InventoryType771:
		fmt.Fprintf(&b, "%s %s", row.SigesCode, row.Name)
	default:
		fmt.Fprintf(&b, "%s %s %s %s %s %s",
			row.SigesCode, row.Name, row.Category, row.Batch, row.ExpiryDate, row.Unit)
	}
	for _, lot := range row.Lots {
		fmt.Fprintf(&b, " %s %s %s", lot.Batch, lot.ExpiryDate, trimFloat(lot.Stock))
	}
	return b.String()
}

func trimFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// LowStock lists the medications at or below their minimum stock.
func LowStock(medications []domain.Medication) []domain.Medication {
	out := []domain.Medication{}
	for _, m := range medications {
		if m.Stock <= m.MinStock {
			out = append(out, m)
		}
	}
	return out
}

// Stats summarizes the inventory for the dashboard.
func Stats(medications []domain.Medication, batches []domain.MonthlyBatch) domain.DashboardStats {
	stats := domain.DashboardStats{
		TotalItems:    len(medications),
		LowStockCount: len(LowStock(medications)),
	}
	for _, m := range medications {
		stats.TotalStock += m.Stock
	}
	if len(batches) > 0 {
		stats.LastBatchItemCount = len(batches[0].Items)
	}
	return stats
}

// CountByType tallies stored medications per inventory type.
func CountByType(medications []domain.Medication) map[string]int {
	counts := map[string]int{}
	for _, m := range medications {
		counts[inventoryTypeOf(m)]++
	}
	return counts
}
