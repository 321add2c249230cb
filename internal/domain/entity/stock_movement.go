package entity

import "time"

// Tipos de movimiento del libro de stock.
const (
	MovementTypeIN  = "IN"  // entrada
	MovementTypeOUT = "OUT" // salida
	MovementTypeADJ = "ADJ" // ajuste con signo
)

// StockMovement es un asiento inmutable del libro de stock.
// Quantity guarda la cantidad tal como se recibió; ResultingQuantity es el OnHand del producto tras aplicarlo.
type StockMovement struct {
	ID                string
	OwnerID           string
	ItemID            string
	ItemSKU           string // solo lectura (join)
	ItemName          string // solo lectura (join)
	Type              string
	Quantity          int64
	Reason            string
	ResultingQuantity int64
	CreatedBy         *string // nil = movimiento del sistema
	CreatedAt         time.Time
}

// Effect devuelve el delta con signo que este movimiento aplica sobre OnHand.
func (m *StockMovement) Effect() int64 {
	switch m.Type {
	case MovementTypeIN:
		return abs(m.Quantity)
	case MovementTypeOUT:
		return -abs(m.Quantity)
	default:
		return m.Quantity
	}
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}
