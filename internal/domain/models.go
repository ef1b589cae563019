// internal/domain/models.go
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Inventory types as reported by the warehouse management system.
// 772 is the dispensing inventory, 771 the bulk warehouse inventory
// tracked lot by lot.
const (
	InventoryType771 = "771"
	InventoryType772 = "772"
	InventoryTotal   = "total"
)

// Medication is one inventory record. For 771 inventories a medication
// appears once per lot; for 772 the batch column is usually "S/N".
type Medication struct {
	ID              string  `json:"id" db:"id"`
	InventoryType   string  `json:"inventory_type" db:"inventory_type"`
	SigesCode       string  `json:"siges_code" db:"siges_code"`
	SicopClassifier string  `json:"sicop_classifier" db:"sicop_classifier"`
	SicopIdentifier string  `json:"sicop_identifier" db:"sicop_identifier"`
	Name            string  `json:"name" db:"name"`
	Category        string  `json:"category" db:"category"`
	Batch           string  `json:"batch" db:"batch"`
	ExpiryDate      string  `json:"expiry_date" db:"expiry_date"`
	Stock           float64 `json:"stock" db:"stock"`
	MinStock        float64 `json:"min_stock" db:"min_stock"`
	Unit            string  `json:"unit" db:"unit"`
}

// Lot is a single 771 lot shown inside a grouped inventory row.
type Lot struct {
	ID         string  `json:"id"`
	Batch      string  `json:"batch"`
	ExpiryDate string  `json:"expiry_date"`
	Stock      float64 `json:"stock"`
}

// InventoryRow is a row of the inventory views. Plain 772 rows carry the
// medication fields; 771 and total rows are grouped by medication and
// list their lots.
type InventoryRow struct {
	ID            string  `json:"id"`
	InventoryType string  `json:"inventory_type"`
	SigesCode     string  `json:"siges_code"`
	Name          string  `json:"name"`
	Category      string  `json:"category,omitempty"`
	Batch         string  `json:"batch,omitempty"`
	ExpiryDate    string  `json:"expiry_date,omitempty"`
	Unit          string  `json:"unit,omitempty"`
	MinStock      float64 `json:"min_stock,omitempty"`
	Lots          []Lot   `json:"lots,omitempty"`
	Stock771      float64 `json:"stock771,omitempty"`
	Stock772      float64 `json:"stock772,omitempty"`
	Stock         float64 `json:"stock"`
}

// BatchItem is one line of a monthly consumption upload.
type BatchItem struct {
	ID             string  `json:"id" db:"id"`
	SigesCode      string  `json:"siges_code" db:"siges_code"`
	MedicationName string  `json:"medication_name" db:"medication_name"`
	Quantity       float64 `json:"quantity" db:"quantity"`
	Cost           float64 `json:"cost" db:"cost"`
}

// MonthlyBatch is one uploaded month of consumption, labeled after the
// file it came from. Batches are kept newest first.
type MonthlyBatch struct {
	ID        string      `json:"id" db:"id"`
	Label     string      `json:"label" db:"label"`
	CreatedAt time.Time   `json:"created_at" db:"created_at"`
	Items     []BatchItem `json:"items"`

	// TotalCost is the sum of the item costs, computed on read.
	TotalCost decimal.Decimal `json:"total_cost"`
}

// TertiaryPackaging maps a medication to its tertiary packaging size.
type TertiaryPackaging struct {
	ID               string  `json:"id" db:"id"`
	SigesCode        string  `json:"siges_code" db:"siges_code"`
	MedicationName   string  `json:"medication_name" db:"medication_name"`
	TertiaryQuantity float64 `json:"tertiary_quantity" db:"tertiary_quantity"`
}

// MedicationCategory assigns one of the fixed storage categories to a
// medication code.
type MedicationCategory struct {
	ID             string `json:"id" db:"id"`
	SigesCode      string `json:"siges_code" db:"siges_code"`
	MedicationName string `json:"medication_name" db:"medication_name"`
	Category       string `json:"category" db:"category"`
}

// ForecastRow is one medication of the order request calculation.
type ForecastRow struct {
	SigesCode      string     `json:"siges_code"`
	MedicationName string     `json:"medication_name"`
	PerMonth       [3]float64 `json:"per_month"`
	Avg            float64    `json:"avg"`
	Sd             float64    `json:"sd"`
	ConsumoTotal   float64    `json:"consumo_total"`
	Inv771         float64    `json:"inv771"`
	Inv772         float64    `json:"inv772"`
	InvTotal       float64    `json:"inv_total"`
	Pedido         float64    `json:"pedido"`
}

// ConsumptionRow is a forecast row reduced to the consumption columns.
type ConsumptionRow struct {
	SigesCode      string     `json:"siges_code"`
	MedicationName string     `json:"medication_name"`
	PerMonth       [3]float64 `json:"per_month"`
	Avg            float64    `json:"avg"`
	Sd             float64    `json:"sd"`
	Total          float64    `json:"total"`
}

// ForecastFilter selects and orders forecast rows.
type ForecastFilter struct {
	Months   int    `json:"months"`
	Search   string `json:"search"`
	HideZero bool   `json:"hide_zero"`
}

// DashboardStats summarizes the current inventory state.
type DashboardStats struct {
	TotalItems         int     `json:"total_items"`
	LowStockCount      int     `json:"low_stock_count"`
	TotalStock         float64 `json:"total_stock"`
	LastBatchItemCount int     `json:"last_batch_item_count"`
}

// ImportResult reports what an import did. Hint carries a best-effort
// explanation when the backend rejected the data.
type ImportResult struct {
	ImportedCount       int            `json:"importedCount"`
	SkippedCount        int            `json:"skippedCount,omitempty"`
	VisibleCountForType int            `json:"visibleCountForType,omitempty"`
	TotalCountByType    map[string]int `json:"totalCountByType,omitempty"`
	Label               string         `json:"label,omitempty"`
	BatchID             string         `json:"batchId,omitempty"`
	Hint                string         `json:"hint,omitempty"`
}
