package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/stocker-api/internal/domain/entity"
	"github.com/jhoicas/stocker-api/internal/domain/repository"
)

var _ repository.ReportRepository = (*ReportRepo)(nil)

// movementSums suma por tipo la cantidad tal como se registró (ADJ con signo); COALESCE evita NULL sin filas.
const movementSums = `
	COALESCE(SUM(m.quantity) FILTER (WHERE m.type = 'IN'), 0)::bigint,
	COALESCE(SUM(m.quantity) FILTER (WHERE m.type = 'OUT'), 0)::bigint,
	COALESCE(SUM(m.quantity) FILTER (WHERE m.type = 'ADJ'), 0)::bigint`

// ReportRepo consultas de agregación para reportes (solo lectura).
type ReportRepo struct {
	q Querier
}

// NewReportRepository construye el adaptador.
func NewReportRepository(q Querier) *ReportRepo {
	return &ReportRepo{q: q}
}

func (r *ReportRepo) InventoryTotals(ctx context.Context, ownerID string) (repository.InventoryTotals, error) {
	var t repository.InventoryTotals
	err := r.q.QueryRow(ctx, `
		SELECT COUNT(*), COALESCE(SUM(on_hand), 0)::bigint, COALESCE(SUM(on_hand * cost_price), 0),
			COUNT(*) FILTER (WHERE on_hand <= reorder_level)
		FROM items WHERE owner_id = $1`, ownerID,
	).Scan(&t.Items, &t.OnHand, &t.Valuation, &t.LowStock)
	if err != nil {
		return t, fmt.Errorf("inventory totals: %w", err)
	}
	return t, nil
}

// CategoryTotals agrupa por categoría; los productos sin categoría forman un grupo con ID vacío, al final.
func (r *ReportRepo) CategoryTotals(ctx context.Context, ownerID string) ([]repository.GroupTotals, error) {
	return r.groups(ctx, `
		SELECT COALESCE(c.id, ''), COALESCE(c.name, ''), COUNT(i.id), COALESCE(SUM(i.on_hand), 0)::bigint,
			COALESCE(SUM(i.on_hand * i.cost_price), 0)
		FROM items i LEFT JOIN categories c ON c.id = i.category_id
		WHERE i.owner_id = $1
		GROUP BY c.id, c.name
		ORDER BY (c.id IS NULL), c.name`, ownerID)
}

// SupplierTotals un grupo por proveedor, incluidos los que no tienen productos.
func (r *ReportRepo) SupplierTotals(ctx context.Context, ownerID string) ([]repository.GroupTotals, error) {
	return r.groups(ctx, `
		SELECT s.id, s.name, COUNT(i.id), COALESCE(SUM(i.on_hand), 0)::bigint, COALESCE(SUM(i.on_hand * i.cost_price), 0)
		FROM suppliers s
		LEFT JOIN item_suppliers x ON x.supplier_id = s.id
		LEFT JOIN items i ON i.id = x.item_id
		WHERE s.owner_id = $1
		GROUP BY s.id, s.name
		ORDER BY s.name`, ownerID)
}

func (r *ReportRepo) groups(ctx context.Context, query string, args ...any) ([]repository.GroupTotals, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("group totals: %w", err)
	}
	defer rows.Close()
	var out []repository.GroupTotals
	for rows.Next() {
		var g repository.GroupTotals
		if err := rows.Scan(&g.ID, &g.Name, &g.Items, &g.OnHand, &g.Valuation); err != nil {
			return nil, fmt.Errorf("scan group totals: %w", err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (r *ReportRepo) MovementTotals(ctx context.Context, ownerID string, from, to time.Time) (repository.MovementTotals, error) {
	var t repository.MovementTotals
	err := r.q.QueryRow(ctx, `
		SELECT `+movementSums+`
		FROM stock_movements m
		WHERE m.owner_id = $1 AND m.created_at >= $2 AND m.created_at < $3`, ownerID, from, to,
	).Scan(&t.In, &t.Out, &t.Adj)
	if err != nil {
		return t, fmt.Errorf("movement totals: %w", err)
	}
	return t, nil
}

// DailyMovementTotals agrupa por fecha local en loc; solo devuelve los días con movimientos.
func (r *ReportRepo) DailyMovementTotals(ctx context.Context, ownerID string, from, to time.Time, loc *time.Location) ([]repository.DailyMovementTotals, error) {
	rows, err := r.q.Query(ctx, `
		SELECT (m.created_at AT TIME ZONE $4)::date AS day, `+movementSums+`
		FROM stock_movements m
		WHERE m.owner_id = $1 AND m.created_at >= $2 AND m.created_at < $3
		GROUP BY day
		ORDER BY day`, ownerID, from, to, loc.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("daily movement totals: %w", err)
	}
	defer rows.Close()
	var out []repository.DailyMovementTotals
	for rows.Next() {
		var (
			day time.Time
			d   repository.DailyMovementTotals
		)
		if err := rows.Scan(&day, &d.In, &d.Out, &d.Adj); err != nil {
			return nil, fmt.Errorf("scan daily totals: %w", err)
		}
		d.Day = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, loc)
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *ReportRepo) RecentMovements(ctx context.Context, ownerID string, from, to time.Time, limit int) ([]*entity.StockMovement, error) {
	return queryMovements(ctx, r.q, `SELECT `+movementColumns+`
		FROM stock_movements m LEFT JOIN items i ON i.id = m.item_id
		WHERE m.owner_id = $1 AND m.created_at >= $2 AND m.created_at < $3
		ORDER BY m.created_at DESC, m.seq DESC
		LIMIT NULLIF($4::int, 0)`, ownerID, from, to, limit)
}

func (r *ReportRepo) InventoryRows(ctx context.Context, ownerID string) ([]*entity.Item, error) {
	return NewItemRepository(r.q).queryItems(ctx, `SELECT `+itemColumns+` `+itemFrom+`
		WHERE i.owner_id = $1 ORDER BY i.name, i.id`, ownerID)
}
