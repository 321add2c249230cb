package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stocker-api/internal/domain/entity"
)

// InventoryTotals agregados del inventario de un dueño.
type InventoryTotals struct {
	Items     int
	OnHand    int64
	Valuation decimal.Decimal // Σ OnHand × CostPrice
	LowStock  int
}

// GroupTotals agregados por categoría o proveedor. ID vacío = "Sin categoría".
type GroupTotals struct {
	ID        string
	Name      string
	Items     int
	OnHand    int64
	Valuation decimal.Decimal
}

// MovementTotals sumas por tipo de movimiento en un rango.
type MovementTotals struct {
	In  int64
	Out int64
	Adj int64
}

// DailyMovementTotals sumas por tipo de un día (fecha local a las 00:00).
type DailyMovementTotals struct {
	Day time.Time
	MovementTotals
}

// ReportRepository consultas de solo lectura para reportes. Los rangos son [from, to).
// Todas las sumas devuelven cero (nunca NULL) cuando no hay filas.
type ReportRepository interface {
	InventoryTotals(ctx context.Context, ownerID string) (InventoryTotals, error)
	CategoryTotals(ctx context.Context, ownerID string) ([]GroupTotals, error)
	SupplierTotals(ctx context.Context, ownerID string) ([]GroupTotals, error)
	MovementTotals(ctx context.Context, ownerID string, from, to time.Time) (MovementTotals, error)
	DailyMovementTotals(ctx context.Context, ownerID string, from, to time.Time, loc *time.Location) ([]DailyMovementTotals, error)
	RecentMovements(ctx context.Context, ownerID string, from, to time.Time, limit int) ([]*entity.StockMovement, error)
	// InventoryRows todos los productos del dueño ordenados por nombre (exportación).
	InventoryRows(ctx context.Context, ownerID string) ([]*entity.Item, error)
}
