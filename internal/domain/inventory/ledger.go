package inventory

import (
	"github.com/jhoicas/stocker-api/internal/domain"
	"github.com/jhoicas/stocker-api/internal/domain/entity"
)

// ValidateMovement valida tipo y cantidad antes de tomar cualquier bloqueo.
// IN/OUT exigen cantidad positiva; ADJ es un delta con signo distinto de cero.
func ValidateMovement(movementType string, qty int64) error {
	switch movementType {
	case entity.MovementTypeIN, entity.MovementTypeOUT:
		if qty <= 0 {
			return domain.Invalid("quantity", "debe ser mayor que cero")
		}
	case entity.MovementTypeADJ:
		if qty == 0 {
			return domain.Invalid("quantity", "el ajuste no puede ser cero")
		}
	default:
		return domain.Invalid("type", "tipo de movimiento desconocido")
	}
	return nil
}

// ComputeOnHand calcula el nuevo stock (servicio de dominio).
// IN suma |qty|, OUT resta |qty|, ADJ suma qty con su signo. No hay piso en cero.
func ComputeOnHand(current int64, movementType string, qty int64) int64 {
	m := entity.StockMovement{Type: movementType, Quantity: qty}
	return current + m.Effect()
}
