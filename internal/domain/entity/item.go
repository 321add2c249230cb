package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Unidades de medida admitidas.
const (
	UnitPieces   = "PCS"
	UnitBox      = "BOX"
	UnitKilogram = "KG"
	UnitLiter    = "L"
)

// ValidUnit indica si u es una unidad de medida conocida.
func ValidUnit(u string) bool {
	switch u {
	case UnitPieces, UnitBox, UnitKilogram, UnitLiter:
		return true
	}
	return false
}

// Item representa un producto del inventario (maestro de artículos).
// OnHand solo lo modifica el motor de movimientos; puede quedar negativo (no hay piso en cero).
type Item struct {
	ID           string
	OwnerID      string
	SKU          string // único por dueño
	Name         string
	Description  string
	CategoryID   *string
	CategoryName string // solo lectura (join)
	Unit         string
	CostPrice    decimal.Decimal
	SalePrice    decimal.Decimal
	ReorderLevel int64
	OnHand       int64
	ExpiryDate   *time.Time
	SupplierIDs  []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsLowStock es true cuando el stock está en o por debajo del punto de reorden.
func (i *Item) IsLowStock() bool {
	return i.OnHand <= i.ReorderLevel
}

// Valuation devuelve OnHand × CostPrice redondeado a 2 decimales.
func (i *Item) Valuation() decimal.Decimal {
	return decimal.NewFromInt(i.OnHand).Mul(i.CostPrice).Round(2)
}

// ExpiresWithin indica si el producto vence en o antes de ref + days (incluye ya vencidos).
func (i *Item) ExpiresWithin(ref time.Time, days int) bool {
	if i.ExpiryDate == nil {
		return false
	}
	end := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, ref.Location()).AddDate(0, 0, days+1)
	return i.ExpiryDate.Before(end)
}
