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

var _ repository.CategoryRepository = (*CategoryRepo)(nil)

const categorySelect = `
	SELECT c.id, c.owner_id, c.name, c.description, c.created_at, c.updated_at,
		(SELECT COUNT(*) FROM items i WHERE i.category_id = c.id)
	FROM categories c`

// CategoryRepo categorías sobre PostgreSQL.
type CategoryRepo struct {
	q Querier
}

// NewCategoryRepository construye el adaptador.
func NewCategoryRepository(q Querier) *CategoryRepo {
	return &CategoryRepo{q: q}
}

func scanCategory(row rowScanner) (*entity.Category, error) {
	var c entity.Category
	if err := row.Scan(&c.ID, &c.OwnerID, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt, &c.ItemCount); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CategoryRepo) Create(ctx context.Context, c *entity.Category) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO categories (id, owner_id, name, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		c.ID, c.OwnerID, c.Name, c.Description, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

func (r *CategoryRepo) getOne(ctx context.Context, where string, args ...any) (*entity.Category, error) {
	c, err := scanCategory(r.q.QueryRow(ctx, categorySelect+" WHERE "+where, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

func (r *CategoryRepo) GetByID(ctx context.Context, ownerID, id string) (*entity.Category, error) {
	return r.getOne(ctx, "c.owner_id = $1 AND c.id = $2", ownerID, id)
}

func (r *CategoryRepo) GetByName(ctx context.Context, ownerID, name string) (*entity.Category, error) {
	return r.getOne(ctx, "c.owner_id = $1 AND lower(c.name) = lower($2)", ownerID, name)
}

func (r *CategoryRepo) Update(ctx context.Context, c *entity.Category) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE categories SET name = $3, description = $4, updated_at = $5
		WHERE owner_id = $1 AND id = $2`,
		c.OwnerID, c.ID, c.Name, c.Description, c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *CategoryRepo) List(ctx context.Context, ownerID, query string, limit, offset int) ([]*entity.Category, error) {
	rows, err := r.q.Query(ctx, categorySelect+`
		WHERE c.owner_id = $1 AND ($2 = '' OR c.name ILIKE $3)
		ORDER BY c.name LIMIT NULLIF($4::int, 0) OFFSET $5`,
		ownerID, query, likePattern(query), limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()
	var list []*entity.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

func (r *CategoryRepo) Delete(ctx context.Context, ownerID, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM categories WHERE owner_id = $1 AND id = $2`, ownerID, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
