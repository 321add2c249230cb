package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/stocker-api/internal/domain/entity"
	"github.com/jhoicas/stocker-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

const movementColumns = `
	m.id, m.owner_id, m.item_id, COALESCE(i.sku, ''), COALESCE(i.name, ''), m.type, m.quantity, m.reason,
	m.resulting_quantity, m.created_by, m.created_at`

// StockMovementRepo libro de movimientos sobre PostgreSQL (solo INSERT y SELECT).
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	query := `
		INSERT INTO stock_movements (id, owner_id, item_id, type, quantity, reason, resulting_quantity, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.OwnerID, m.ItemID, m.Type, m.Quantity, m.Reason, m.ResultingQuantity, m.CreatedBy, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert stock movement: %w", err)
	}
	return nil
}

// ListByItem más recientes primero; a igual fecha decide el orden de inserción.
func (r *StockMovementRepo) ListByItem(ctx context.Context, ownerID, itemID string, limit, offset int) ([]*entity.StockMovement, error) {
	query := `SELECT ` + movementColumns + `
		FROM stock_movements m LEFT JOIN items i ON i.id = m.item_id
		WHERE m.owner_id = $1 AND m.item_id = $2
		ORDER BY m.created_at DESC, m.seq DESC
		LIMIT $3 OFFSET $4`
	return queryMovements(ctx, r.q, query, ownerID, itemID, limit, offset)
}

func (r *StockMovementRepo) CountByItem(ctx context.Context, itemID string) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM stock_movements WHERE item_id = $1`, itemID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count stock movements: %w", err)
	}
	return n, nil
}

func queryMovements(ctx context.Context, q Querier, query string, args ...any) ([]*entity.StockMovement, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stock movements: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockMovement
	for rows.Next() {
		var m entity.StockMovement
		if err := rows.Scan(
			&m.ID, &m.OwnerID, &m.ItemID, &m.ItemSKU, &m.ItemName, &m.Type, &m.Quantity, &m.Reason,
			&m.ResultingQuantity, &m.CreatedBy, &m.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan stock movement: %w", err)
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}
