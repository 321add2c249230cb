package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stocker-api/internal/domain"
	"github.com/jhoicas/stocker-api/internal/domain/entity"
	"github.com/jhoicas/stocker-api/internal/domain/repository"
)

var _ repository.ItemRepository = (*ItemRepo)(nil)

const itemColumns = `
	i.id, i.owner_id, i.sku, i.name, i.description, i.category_id, COALESCE(c.name, ''), i.unit,
	i.cost_price, i.sale_price, i.reorder_level, i.on_hand, i.expiry_date, i.created_at, i.updated_at,
	COALESCE((SELECT array_agg(s.supplier_id ORDER BY s.supplier_id) FROM item_suppliers s WHERE s.item_id = i.id), '{}')`

const itemFrom = `FROM items i LEFT JOIN categories c ON c.id = i.category_id`

// ItemRepo implementación del puerto ItemRepository sobre PostgreSQL (usable con pool o tx).
type ItemRepo struct {
	q Querier
}

// NewItemRepository construye el adaptador. Pasar pool o tx (Querier).
func NewItemRepository(q Querier) *ItemRepo {
	return &ItemRepo{q: q}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*entity.Item, error) {
	var it entity.Item
	err := row.Scan(
		&it.ID, &it.OwnerID, &it.SKU, &it.Name, &it.Description, &it.CategoryID, &it.CategoryName, &it.Unit,
		&it.CostPrice, &it.SalePrice, &it.ReorderLevel, &it.OnHand, &it.ExpiryDate, &it.CreatedAt, &it.UpdatedAt,
		&it.SupplierIDs,
	)
	if err != nil {
		return nil, err
	}
	return &it, nil
}

func (r *ItemRepo) Create(ctx context.Context, item *entity.Item) error {
	query := `
		INSERT INTO items (id, owner_id, sku, name, description, category_id, unit, cost_price, sale_price,
			reorder_level, on_hand, expiry_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.q.Exec(ctx, query,
		item.ID, item.OwnerID, item.SKU, item.Name, item.Description, item.CategoryID, item.Unit,
		item.CostPrice, item.SalePrice, item.ReorderLevel, item.OnHand, item.ExpiryDate, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert item: %w", err)
	}
	return nil
}

func (r *ItemRepo) getOne(ctx context.Context, query string, args ...any) (*entity.Item, error) {
	it, err := scanItem(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get item: %w", err)
	}
	return it, nil
}

func (r *ItemRepo) GetByID(ctx context.Context, ownerID, id string) (*entity.Item, error) {
	return r.getOne(ctx, `SELECT `+itemColumns+` `+itemFrom+` WHERE i.owner_id = $1 AND i.id = $2`, ownerID, id)
}

func (r *ItemRepo) GetBySKU(ctx context.Context, ownerID, sku string) (*entity.Item, error) {
	return r.getOne(ctx, `SELECT `+itemColumns+` `+itemFrom+` WHERE i.owner_id = $1 AND lower(i.sku) = lower($2)`, ownerID, sku)
}

// GetForUpdate bloquea la fila del producto (SELECT ... FOR UPDATE). Solo tiene efecto dentro de una tx.
func (r *ItemRepo) GetForUpdate(ctx context.Context, ownerID, id string) (*entity.Item, error) {
	return r.getOne(ctx, `SELECT `+itemColumns+` `+itemFrom+` WHERE i.owner_id = $1 AND i.id = $2 FOR UPDATE OF i`, ownerID, id)
}

// Update modifica los datos maestros; on_hand no se toca.
func (r *ItemRepo) Update(ctx context.Context, item *entity.Item) error {
	query := `
		UPDATE items SET name = $3, description = $4, category_id = $5, unit = $6, cost_price = $7,
			sale_price = $8, reorder_level = $9, expiry_date = $10, updated_at = $11
		WHERE owner_id = $1 AND id = $2`
	tag, err := r.q.Exec(ctx, query,
		item.OwnerID, item.ID, item.Name, item.Description, item.CategoryID, item.Unit, item.CostPrice,
		item.SalePrice, item.ReorderLevel, item.ExpiryDate, item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ItemRepo) UpdateOnHand(ctx context.Context, id string, onHand int64, at time.Time) error {
	tag, err := r.q.Exec(ctx, `UPDATE items SET on_hand = $2, updated_at = $3 WHERE id = $1`, id, onHand, at)
	if err != nil {
		return fmt.Errorf("update on_hand: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List filtra por dueño, búsqueda libre (nombre, SKU, categoría), bajo stock, categoría y proveedor.
func (r *ItemRepo) List(ctx context.Context, f repository.ItemFilter) ([]*entity.Item, int, error) {
	where := []string{"i.owner_id = $1"}
	args := []any{f.OwnerID}
	if q := strings.TrimSpace(f.Query); q != "" {
		args = append(args, likePattern(q))
		n := len(args)
		where = append(where, fmt.Sprintf("(i.name ILIKE $%d OR i.sku ILIKE $%d OR c.name ILIKE $%d)", n, n, n))
	}
	if f.LowOnly {
		where = append(where, "i.on_hand <= i.reorder_level")
	}
	if f.CategoryID != "" {
		args = append(args, f.CategoryID)
		where = append(where, fmt.Sprintf("i.category_id = $%d", len(args)))
	}
	if f.SupplierID != "" {
		args = append(args, f.SupplierID)
		where = append(where, fmt.Sprintf("EXISTS (SELECT 1 FROM item_suppliers x WHERE x.item_id = i.id AND x.supplier_id = $%d)", len(args)))
	}
	cond := " WHERE " + strings.Join(where, " AND ")

	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) `+itemFrom+cond, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count items: %w", err)
	}

	args = append(args, f.Limit, f.Offset)
	query := `SELECT ` + itemColumns + ` ` + itemFrom + cond +
		fmt.Sprintf(" ORDER BY i.name, i.id LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	list, err := r.queryItems(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *ItemRepo) queryItems(ctx context.Context, query string, args ...any) ([]*entity.Item, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()
	var list []*entity.Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		list = append(list, it)
	}
	return list, rows.Err()
}

func (r *ItemRepo) Delete(ctx context.Context, ownerID, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM items WHERE owner_id = $1 AND id = $2`, ownerID, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrInUse
		}
		return fmt.Errorf("delete item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SetSuppliers reemplaza los vínculos producto-proveedor.
func (r *ItemRepo) SetSuppliers(ctx context.Context, itemID string, supplierIDs []string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM item_suppliers WHERE item_id = $1`, itemID); err != nil {
		return fmt.Errorf("clear item suppliers: %w", err)
	}
	if len(supplierIDs) == 0 {
		return nil
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO item_suppliers (item_id, supplier_id)
		SELECT $1, unnest($2::text[])
		ON CONFLICT DO NOTHING`, itemID, supplierIDs)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.Invalid("supplier_ids", "proveedor inexistente")
		}
		return fmt.Errorf("set item suppliers: %w", err)
	}
	return nil
}

// ListLowStock productos con on_hand <= reorder_level ordenados por nombre; ownerID vacío = todos los dueños.
func (r *ItemRepo) ListLowStock(ctx context.Context, ownerID string, limit int) ([]*entity.Item, error) {
	query := `SELECT ` + itemColumns + ` ` + itemFrom + `
		WHERE ($1 = '' OR i.owner_id = $1) AND i.on_hand <= i.reorder_level
		ORDER BY i.name, i.id LIMIT NULLIF($2::int, 0)`
	return r.queryItems(ctx, query, ownerID, limit)
}

// ListExpiring productos con expiry_date < until, por fecha y nombre; ownerID vacío = todos los dueños.
func (r *ItemRepo) ListExpiring(ctx context.Context, ownerID string, until time.Time) ([]*entity.Item, error) {
	query := `SELECT ` + itemColumns + ` ` + itemFrom + `
		WHERE ($1 = '' OR i.owner_id = $1) AND i.expiry_date IS NOT NULL AND i.expiry_date < $2::date
		ORDER BY i.expiry_date, i.name`
	return r.queryItems(ctx, query, ownerID, until.UTC().Format("2006-01-02"))
}

func (r *ItemRepo) DetachCategory(ctx context.Context, ownerID, categoryID string) error {
	_, err := r.q.Exec(ctx, `UPDATE items SET category_id = NULL WHERE owner_id = $1 AND category_id = $2`, ownerID, categoryID)
	if err != nil {
		return fmt.Errorf("detach category: %w", err)
	}
	return nil
}

func (r *ItemRepo) DetachSupplier(ctx context.Context, supplierID string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM item_suppliers WHERE supplier_id = $1`, supplierID); err != nil {
		return fmt.Errorf("detach supplier: %w", err)
	}
	return nil
}
