// internal/forecast/forecast.go
package forecast

import (
	"math"
	"sort"
	"strings"

	"github.com/bodegapp/backend-go/internal/domain"
)

// The order request covers the three most recent consumption months.
// Per medication: consumoTotal = avg + sd over those months, and
// pedido = max(0, consumoTotal*months - inventory on hand).

// Mean of the values; 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// StdDev is the population standard deviation (÷N). One value or none
// yields 0.
func StdDev(values []float64) float64 {
	if len(values) <= 1 {
		return 0
	}
	avg := Mean(values)
	variance := 0.0
	for _, v := range values {
		d := v - avg
		variance += d * d
	}
	variance /= float64(len(values))
	return math.Sqrt(variance)
}

// MonthLabels returns the labels of the months entering the forecast,
// newest first, blanks dropped.
func MonthLabels(batches []domain.MonthlyBatch) []string {
	labels := []string{}
	for _, b := range lastThree(batches) {
		if label := strings.TrimSpace(b.Label); label != "" {
			labels = append(labels, label)
		}
	}
	return labels
}

func lastThree(batches []domain.MonthlyBatch) []domain.MonthlyBatch {
	if len(batches) > 3 {
		return batches[:3]
	}
	return batches
}

type consumption struct {
	sigesCode      string
	medicationName string
	perMonth       [3]float64
}

// aggregate sums consumption per medication key across the last three
// batches, slot 0 holding the newest month.
func aggregate(batches []domain.MonthlyBatch) ([]string, map[string]*consumption) {
	var order []string
	byKey := map[string]*consumption{}

	for monthIndex, batch := range lastThree(batches) {
		for _, item := range batch.Items {
			sigesCode := strings.TrimSpace(item.SigesCode)
			medicationName := strings.TrimSpace(item.MedicationName)
			key := domain.MedicationKey(sigesCode, medicationName)
			if key == "" {
				continue
			}

			entry, ok := byKey[key]
			if !ok {
				entry = &consumption{sigesCode: sigesCode, medicationName: medicationName}
				byKey[key] = entry
				order = append(order, key)
			}
			if entry.sigesCode == "" {
				entry.sigesCode = sigesCode
			}
			if entry.medicationName == "" {
				entry.medicationName = medicationName
			}
			entry.perMonth[monthIndex] += item.Quantity
		}
	}
	return order, byKey
}

type inventorySums struct {
	inv771 float64
	inv772 float64
}

func inventoryByCode(medications []domain.Medication) map[string]inventorySums {
	byCode := map[string]inventorySums{}
	for _, m := range medications {
		code := strings.TrimSpace(m.SigesCode)
		if code == "" {
			continue
		}
		sums := byCode[code]
		switch invType(m) {
		case domain.InventoryType771:
			sums.inv771 += m.Stock
		case domain.InventoryType772:
			sums.inv772 += m.Stock
		}
		byCode[code] = sums
	}
	return byCode
}

func invType(m domain.Medication) string {
	if strings.TrimSpace(m.InventoryType) == "" {
		return domain.InventoryType772
	}
	return m.InventoryType
}

// Build computes forecast rows for every medication seen in the last
// three consumption months. months <= 0 zeroes the demand term.
func Build(medications []domain.Medication, batches []domain.MonthlyBatch, months int) []domain.ForecastRow {
	if months < 0 {
		months = 0
	}

	order, byKey := aggregate(batches)
	inventory := inventoryByCode(medications)

	rows := make([]domain.ForecastRow, 0, len(order))
	for _, key := range order {
		c := byKey[key]
		values := c.perMonth[:]
		avg := Mean(values)
		sd := StdDev(values)
		consumoTotal := avg + sd

		code := strings.TrimSpace(c.sigesCode)
		sums := inventory[code]
		invTotal := sums.inv771 + sums.inv772
		pedido := consumoTotal*float64(months) - invTotal
		if pedido < 0 {
			pedido = 0
		}

		rows = append(rows, domain.ForecastRow{
			SigesCode:      code,
			MedicationName: c.medicationName,
			PerMonth:       c.perMonth,
			Avg:            avg,
			Sd:             sd,
			ConsumoTotal:   consumoTotal,
			Inv771:         sums.inv771,
			Inv772:         sums.inv772,
			InvTotal:       invTotal,
			Pedido:         pedido,
		})
	}
	return rows
}

// Filter applies the hide-zero and search filters, then orders rows:
// codes starting with "110" first, then by the numeric value of the
// last four digits of the code, then by code string.
func Filter(rows []domain.ForecastRow, filter domain.ForecastFilter) []domain.ForecastRow {
	q := strings.ToLower(strings.TrimSpace(filter.Search))

	out := make([]domain.ForecastRow, 0, len(rows))
	for _, r := range rows {
		if filter.HideZero && r.Pedido <= 0 {
			continue
		}
		if q != "" {
			haystack := strings.ToLower(r.SigesCode + " " + r.MedicationName)
			if !strings.Contains(haystack, q) {
				continue
			}
		}
		out = append(out, r)
	}

	SortRows(out)
	return out
}

// SortRows orders forecast rows in the warehouse's requested order.
func SortRows(rows []domain.ForecastRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		return lessByCode(rows[i].SigesCode, rows[j].SigesCode)
	})
}

func lessByCode(codeA, codeB string) bool {
	a110 := strings.HasPrefix(strings.TrimSpace(codeA), "110")
	b110 := strings.HasPrefix(strings.TrimSpace(codeB), "110")
	if a110 != b110 {
		return a110
	}

	suffixA := last4DigitsValue(codeA)
	suffixB := last4DigitsValue(codeB)
	if suffixA != suffixB {
		return suffixA < suffixB
	}

	return strings.ToLower(codeA) < strings.ToLower(codeB)
}

// last4DigitsValue extracts the numeric value of the last four digits
// of the code; codes with fewer than four digits sort last.
func last4DigitsValue(code string) float64 {
	var digits []rune
	for _, r := range code {
		if r >= '0' && r <= '9' {
			digits = append(digits, r)
		}
	}
	if len(digits) < 4 {
		return math.Inf(1)
	}
	value := 0.0
	for _, r := range digits[len(digits)-4:] {
		value = value*10 + float64(r-'0')
	}
	return value
}

// Summary reduces forecast rows to the consumption columns.
func Summary(batches []domain.MonthlyBatch) []domain.ConsumptionRow {
	order, byKey := aggregate(batches)

	rows := make([]domain.ConsumptionRow, 0, len(order))
	for _, key := range order {
		c := byKey[key]
		avg := Mean(c.perMonth[:])
		sd := StdDev(c.perMonth[:])
		rows = append(rows, domain.ConsumptionRow{
			SigesCode:      strings.TrimSpace(c.sigesCode),
			MedicationName: c.medicationName,
			PerMonth:       c.perMonth,
			Avg:            avg,
			Sd:             sd,
			Total:          avg + sd,
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return lessByCode(rows[i].SigesCode, rows[j].SigesCode)
	})
	return rows
}
