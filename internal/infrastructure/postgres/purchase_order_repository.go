package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stocker-api/internal/domain"
	"github.com/jhoicas/stocker-api/internal/domain/entity"
	"github.com/jhoicas/stocker-api/internal/domain/repository"
)

var _ repository.PurchaseOrderRepository = (*PurchaseOrderRepo)(nil)

const orderSelect = `
	SELECT o.id, o.owner_id, COALESCE(o.supplier_id, ''), COALESCE(s.name, ''), o.status, o.order_date,
		o.expected_date, o.invoice_number, o.invoice_date, o.notes, o.created_by, o.created_at, o.updated_at
	FROM purchase_orders o LEFT JOIN suppliers s ON s.id = o.supplier_id`

// PurchaseOrderRepo órdenes de compra y sus líneas sobre PostgreSQL.
type PurchaseOrderRepo struct {
	q Querier
}

// NewPurchaseOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPurchaseOrderRepository(q Querier) *PurchaseOrderRepo {
	return &PurchaseOrderRepo{q: q}
}

func scanOrder(row rowScanner) (*entity.PurchaseOrder, error) {
	var o entity.PurchaseOrder
	if err := row.Scan(
		&o.ID, &o.OwnerID, &o.SupplierID, &o.SupplierName, &o.Status, &o.OrderDate,
		&o.ExpectedDate, &o.InvoiceNumber, &o.InvoiceDate, &o.Notes, &o.CreatedBy, &o.CreatedAt, &o.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *PurchaseOrderRepo) Create(ctx context.Context, o *entity.PurchaseOrder) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO purchase_orders (id, owner_id, supplier_id, status, order_date, expected_date, invoice_number,
			invoice_date, notes, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		o.ID, o.OwnerID, o.SupplierID, o.Status, o.OrderDate, o.ExpectedDate, o.InvoiceNumber,
		o.InvoiceDate, o.Notes, o.CreatedBy, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("insert purchase order: %w", err)
	}
	for i := range o.Lines {
		if err := r.UpsertLine(ctx, &o.Lines[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *PurchaseOrderRepo) get(ctx context.Context, forUpdate bool, ownerID, id string) (*entity.PurchaseOrder, error) {
	query := orderSelect + ` WHERE o.owner_id = $1 AND o.id = $2`
	if forUpdate {
		query += ` FOR UPDATE OF o`
	}
	o, err := scanOrder(r.q.QueryRow(ctx, query, ownerID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get purchase order: %w", err)
	}
	lines, err := r.lines(ctx, []string{o.ID})
	if err != nil {
		return nil, err
	}
	o.Lines = lines[o.ID]
	return o, nil
}

func (r *PurchaseOrderRepo) GetByID(ctx context.Context, ownerID, id string) (*entity.PurchaseOrder, error) {
	return r.get(ctx, false, ownerID, id)
}

// GetForUpdate bloquea la fila de la orden (SELECT ... FOR UPDATE) hasta el fin de la transacción.
func (r *PurchaseOrderRepo) GetForUpdate(ctx context.Context, ownerID, id string) (*entity.PurchaseOrder, error) {
	return r.get(ctx, true, ownerID, id)
}

// lines carga las líneas de varias órdenes en una sola consulta, en orden de inserción.
func (r *PurchaseOrderRepo) lines(ctx context.Context, orderIDs []string) (map[string][]entity.PurchaseOrderLine, error) {
	rows, err := r.q.Query(ctx, `
		SELECT l.id, l.order_id, l.item_id, COALESCE(i.sku, ''), COALESCE(i.name, ''), l.quantity_ordered,
			l.quantity_received, l.unit_cost, l.created_at, l.updated_at
		FROM purchase_order_lines l LEFT JOIN items i ON i.id = l.item_id
		WHERE l.order_id = ANY($1)
		ORDER BY l.seq`, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("list purchase order lines: %w", err)
	}
	defer rows.Close()
	out := make(map[string][]entity.PurchaseOrderLine, len(orderIDs))
	for rows.Next() {
		var l entity.PurchaseOrderLine
		if err := rows.Scan(
			&l.ID, &l.OrderID, &l.ItemID, &l.ItemSKU, &l.ItemName, &l.QuantityOrdered,
			&l.QuantityReceived, &l.UnitCost, &l.CreatedAt, &l.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan purchase order line: %w", err)
		}
		out[l.OrderID] = append(out[l.OrderID], l)
	}
	return out, rows.Err()
}

// UpdateHeader guarda estado, fechas, factura y notas.
func (r *PurchaseOrderRepo) UpdateHeader(ctx context.Context, o *entity.PurchaseOrder) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE purchase_orders SET status = $2, expected_date = $3, invoice_number = $4, invoice_date = $5,
			notes = $6, updated_at = $7
		WHERE id = $1`,
		o.ID, o.Status, o.ExpectedDate, o.InvoiceNumber, o.InvoiceDate, o.Notes, o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update purchase order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpsertLine inserta la línea o, si ya existe (orden, producto), actualiza cantidad pedida y costo.
func (r *PurchaseOrderRepo) UpsertLine(ctx context.Context, l *entity.PurchaseOrderLine) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO purchase_order_lines (id, order_id, item_id, quantity_ordered, quantity_received, unit_cost, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (order_id, item_id) DO UPDATE
		SET quantity_ordered = EXCLUDED.quantity_ordered, unit_cost = EXCLUDED.unit_cost, updated_at = EXCLUDED.updated_at`,
		l.ID, l.OrderID, l.ItemID, l.QuantityOrdered, l.QuantityReceived, l.UnitCost, l.CreatedAt, l.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.Invalid("item_id", "producto inexistente")
		}
		return fmt.Errorf("upsert purchase order line: %w", err)
	}
	return nil
}

func (r *PurchaseOrderRepo) UpdateLineReceived(ctx context.Context, lineID string, received int64) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE purchase_order_lines SET quantity_received = $2, updated_at = now() WHERE id = $1`, lineID, received)
	if err != nil {
		return fmt.Errorf("update received quantity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List órdenes del dueño, más recientes primero, con sus líneas.
func (r *PurchaseOrderRepo) List(ctx context.Context, f repository.PurchaseOrderFilter) ([]*entity.PurchaseOrder, error) {
	rows, err := r.q.Query(ctx, orderSelect+`
		WHERE o.owner_id = $1 AND ($2 = '' OR o.status = $2) AND ($3 = '' OR o.supplier_id = $3)
		ORDER BY o.order_date DESC, o.created_at DESC
		LIMIT NULLIF($4::int, 0) OFFSET $5`,
		f.OwnerID, f.Status, f.SupplierID, f.Limit, f.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list purchase orders: %w", err)
	}
	var (
		list []*entity.PurchaseOrder
		ids  []string
	)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan purchase order: %w", err)
		}
		list = append(list, o)
		ids = append(ids, o.ID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list purchase orders: %w", err)
	}
	if len(ids) == 0 {
		return list, nil
	}
	lines, err := r.lines(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, o := range list {
		o.Lines = lines[o.ID]
	}
	return list, nil
}

// CountOpenBySupplier órdenes no cerradas (ni RECEIVED ni CANCELLED) del proveedor.
func (r *PurchaseOrderRepo) CountOpenBySupplier(ctx context.Context, supplierID string) (int, error) {
	var n int
	err := r.q.QueryRow(ctx, `
		SELECT COUNT(*) FROM purchase_orders WHERE supplier_id = $1 AND status NOT IN ('RECEIVED', 'CANCELLED')`,
		supplierID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count open purchase orders: %w", err)
	}
	return n, nil
}

func (r *PurchaseOrderRepo) CountLinesByItem(ctx context.Context, itemID string) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM purchase_order_lines WHERE item_id = $1`, itemID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count purchase order lines: %w", err)
	}
	return n, nil
}
