package repository

import (
	"context"

	"github.com/jhoicas/stocker-api/internal/domain/entity"
)

// StockMovementRepository puerto del libro de movimientos (solo inserción y lectura).
type StockMovementRepository interface {
	Create(ctx context.Context, movement *entity.StockMovement) error
	// ListByItem devuelve los movimientos del producto, más recientes primero.
	ListByItem(ctx context.Context, ownerID, itemID string, limit, offset int) ([]*entity.StockMovement, error)
	CountByItem(ctx context.Context, itemID string) (int, error)
}
