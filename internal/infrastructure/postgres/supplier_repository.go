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

var _ repository.SupplierRepository = (*SupplierRepo)(nil)

const supplierSelect = `
	SELECT s.id, s.owner_id, s.name, s.email, s.phone, s.website, s.address, s.notes, s.logo_url,
		s.created_at, s.updated_at,
		(SELECT COUNT(*) FROM item_suppliers x WHERE x.supplier_id = s.id)
	FROM suppliers s`

// SupplierRepo proveedores sobre PostgreSQL.
type SupplierRepo struct {
	q Querier
}

// NewSupplierRepository construye el adaptador.
func NewSupplierRepository(q Querier) *SupplierRepo {
	return &SupplierRepo{q: q}
}

func scanSupplier(row rowScanner) (*entity.Supplier, error) {
	var s entity.Supplier
	if err := row.Scan(
		&s.ID, &s.OwnerID, &s.Name, &s.Email, &s.Phone, &s.Website, &s.Address, &s.Notes, &s.LogoURL,
		&s.CreatedAt, &s.UpdatedAt, &s.ItemCount,
	); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SupplierRepo) Create(ctx context.Context, s *entity.Supplier) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO suppliers (id, owner_id, name, email, phone, website, address, notes, logo_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		s.ID, s.OwnerID, s.Name, s.Email, s.Phone, s.Website, s.Address, s.Notes, s.LogoURL, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert supplier: %w", err)
	}
	return nil
}

func (r *SupplierRepo) getOne(ctx context.Context, where string, args ...any) (*entity.Supplier, error) {
	s, err := scanSupplier(r.q.QueryRow(ctx, supplierSelect+" WHERE "+where, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get supplier: %w", err)
	}
	return s, nil
}

func (r *SupplierRepo) GetByID(ctx context.Context, ownerID, id string) (*entity.Supplier, error) {
	return r.getOne(ctx, "s.owner_id = $1 AND s.id = $2", ownerID, id)
}

func (r *SupplierRepo) GetByName(ctx context.Context, ownerID, name string) (*entity.Supplier, error) {
	return r.getOne(ctx, "s.owner_id = $1 AND lower(s.name) = lower($2)", ownerID, name)
}

// GetForUpdate bloquea la fila del proveedor (SELECT ... FOR UPDATE). Solo tiene efecto dentro de una tx.
func (r *SupplierRepo) GetForUpdate(ctx context.Context, ownerID, id string) (*entity.Supplier, error) {
	return r.getOne(ctx, "s.owner_id = $1 AND s.id = $2 FOR UPDATE OF s", ownerID, id)
}

func (r *SupplierRepo) Update(ctx context.Context, s *entity.Supplier) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE suppliers SET name = $3, email = $4, phone = $5, website = $6, address = $7, notes = $8,
			logo_url = $9, updated_at = $10
		WHERE owner_id = $1 AND id = $2`,
		s.OwnerID, s.ID, s.Name, s.Email, s.Phone, s.Website, s.Address, s.Notes, s.LogoURL, s.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update supplier: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List busca en nombre y email.
func (r *SupplierRepo) List(ctx context.Context, ownerID, query string, limit, offset int) ([]*entity.Supplier, error) {
	rows, err := r.q.Query(ctx, supplierSelect+`
		WHERE s.owner_id = $1 AND ($2 = '' OR s.name ILIKE $3 OR s.email ILIKE $3)
		ORDER BY s.name LIMIT NULLIF($4::int, 0) OFFSET $5`,
		ownerID, query, likePattern(query), limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list suppliers: %w", err)
	}
	defer rows.Close()
	var list []*entity.Supplier
	for rows.Next() {
		s, err := scanSupplier(rows)
		if err != nil {
			return nil, fmt.Errorf("scan supplier: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// Delete elimina el proveedor; las órdenes cerradas que lo referenciaban quedan con supplier_id NULL.
func (r *SupplierRepo) Delete(ctx context.Context, ownerID, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM suppliers WHERE owner_id = $1 AND id = $2`, ownerID, id)
	if err != nil {
		return fmt.Errorf("delete supplier: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
