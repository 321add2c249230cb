package repository

import (
	"context"

	"github.com/jhoicas/stocker-api/internal/domain/entity"
)

// CategoryRepository define el puerto de persistencia para Category (DIP).
type CategoryRepository interface {
	Create(ctx context.Context, category *entity.Category) error
	GetByID(ctx context.Context, ownerID, id string) (*entity.Category, error)
	GetByName(ctx context.Context, ownerID, name string) (*entity.Category, error)
	Update(ctx context.Context, category *entity.Category) error
	List(ctx context.Context, ownerID, query string, limit, offset int) ([]*entity.Category, error)
	Delete(ctx context.Context, ownerID, id string) error
}
