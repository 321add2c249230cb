package dto

import "github.com/shopspring/decimal"

// ── Query parameters ──────────────────────────────────────────────────────────

// MovementReportRequest parámetros para GET /api/reports/movements.
type MovementReportRequest struct {
	StartDate string `query:"start"` // YYYY-MM-DD; por defecto hoy - 29 días
	EndDate   string `query:"end"`   // YYYY-MM-DD; por defecto hoy
}

// ── Inventario ────────────────────────────────────────────────────────────────

// InventorySummaryDTO totales del inventario del dueño.
type InventorySummaryDTO struct {
	TotalItems     int             `json:"total_items"`
	TotalOnHand    int64           `json:"total_on_hand"`
	TotalValuation decimal.Decimal `json:"total_valuation"` // Σ on_hand × costo
	LowStockCount  int             `json:"low_stock_count"`
}

// GroupRollupDTO totales por categoría o proveedor.
type GroupRollupDTO struct {
	ID        string          `json:"id,omitempty"` // vacío para "Uncategorized"
	Name      string          `json:"name"`
	Items     int             `json:"items"`
	OnHand    int64           `json:"on_hand"`
	Valuation decimal.Decimal `json:"valuation"`
}

// ── Movimientos ───────────────────────────────────────────────────────────────

// PeriodDTO rango de fechas del reporte (ambos extremos inclusive).
type PeriodDTO struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// DailyMovementDTO punto de la serie diaria.
type DailyMovementDTO struct {
	Day string `json:"day"` // YYYY-MM-DD
	In  int64  `json:"in"`
	Out int64  `json:"out"`
	Adj int64  `json:"adj"`
}

// MovementSummaryDTO respuesta de GET /api/reports/movements.
// Net = In - Out + Adj.
type MovementSummaryDTO struct {
	Period PeriodDTO          `json:"period"`
	In     int64              `json:"in"`
	Out    int64              `json:"out"`
	Adj    int64              `json:"adj"`
	Net    int64              `json:"net"`
	Daily  []DailyMovementDTO `json:"daily"`
	Recent []MovementResponse `json:"recent"`
}

// ── Alertas ───────────────────────────────────────────────────────────────────

// LowStockItemDTO producto en o bajo su punto de reorden.
type LowStockItemDTO struct {
	ItemID       string `json:"item_id"`
	SKU          string `json:"sku"`
	Name         string `json:"name"`
	OnHand       int64  `json:"on_hand"`
	ReorderLevel int64  `json:"reorder_level"`
}

// ExpiringItemDTO producto con vencimiento dentro de la ventana.
type ExpiringItemDTO struct {
	ItemID     string `json:"item_id"`
	SKU        string `json:"sku"`
	Name       string `json:"name"`
	OnHand     int64  `json:"on_hand"`
	ExpiryDate Date   `json:"expiry_date"`
	DaysLeft   int    `json:"days_left"` // negativo si ya venció
}

// ── Dashboard ─────────────────────────────────────────────────────────────────

// DashboardDTO respuesta de GET /api/reports/dashboard.
type DashboardDTO struct {
	Summary    InventorySummaryDTO `json:"summary"`
	Movements  MovementSummaryDTO  `json:"movements"` // últimos 30 días
	LowStock   []LowStockItemDTO   `json:"low_stock"`
	Categories []GroupRollupDTO    `json:"categories"`
}
