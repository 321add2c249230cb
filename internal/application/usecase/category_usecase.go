package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/stocker-api/internal/application/dto"
	"github.com/jhoicas/stocker-api/internal/domain"
	"github.com/jhoicas/stocker-api/internal/domain/entity"
	"github.com/jhoicas/stocker-api/internal/domain/repository"
)

// CategoryUseCase casos de uso CRUD para categorías.
type CategoryUseCase struct {
	repo  repository.CategoryRepository
	items repository.ItemRepository
}

// NewCategoryUseCase construye el caso de uso.
func NewCategoryUseCase(repo repository.CategoryRepository, items repository.ItemRepository) *CategoryUseCase {
	return &CategoryUseCase{repo: repo, items: items}
}

// Create crea una categoría. El nombre es único por dueño.
func (uc *CategoryUseCase) Create(ctx context.Context, ownerID string, in dto.CategoryRequest) (*dto.CategoryResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.Invalid("name", "requerido")
	}
	existing, err := uc.repo.GetByName(ctx, ownerID, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	now := time.Now()
	category := &entity.Category{
		ID:          uuid.New().String(),
		OwnerID:     ownerID,
		Name:        name,
		Description: in.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.repo.Create(ctx, category); err != nil {
		return nil, err
	}
	return toCategoryResponse(category), nil
}

// GetByID obtiene una categoría.
func (uc *CategoryUseCase) GetByID(ctx context.Context, ownerID, id string) (*dto.CategoryResponse, error) {
	category, err := uc.repo.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, domain.ErrNotFound
	}
	return toCategoryResponse(category), nil
}

// Update actualiza una categoría.
func (uc *CategoryUseCase) Update(ctx context.Context, ownerID, id string, in dto.CategoryRequest) (*dto.CategoryResponse, error) {
	category, err := uc.repo.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, domain.ErrNotFound
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.Invalid("name", "requerido")
	}
	if !strings.EqualFold(name, category.Name) {
		other, err := uc.repo.GetByName(ctx, ownerID, name)
		if err != nil {
			return nil, err
		}
		if other != nil && other.ID != id {
			return nil, domain.ErrDuplicate
		}
	}
	category.Name = name
	category.Description = in.Description
	category.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, category); err != nil {
		return nil, err
	}
	return toCategoryResponse(category), nil
}

// List lista categorías del dueño.
func (uc *CategoryUseCase) List(ctx context.Context, ownerID, query string, limit, offset int) ([]dto.CategoryResponse, error) {
	page := dto.PageRequest{Limit: limit, Offset: offset}
	page.DefaultPage()
	list, err := uc.repo.List(ctx, ownerID, strings.TrimSpace(query), page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CategoryResponse, 0, len(list))
	for _, c := range list {
		out = append(out, *toCategoryResponse(c))
	}
	return out, nil
}

// Delete elimina la categoría; sus productos quedan sin categoría.
func (uc *CategoryUseCase) Delete(ctx context.Context, ownerID, id string) error {
	category, err := uc.repo.GetByID(ctx, ownerID, id)
	if err != nil {
		return err
	}
	if category == nil {
		return domain.ErrNotFound
	}
	if err := uc.items.DetachCategory(ctx, ownerID, id); err != nil {
		return err
	}
	return uc.repo.Delete(ctx, ownerID, id)
}

func toCategoryResponse(c *entity.Category) *dto.CategoryResponse {
	if c == nil {
		return nil
	}
	return &dto.CategoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		ItemCount:   c.ItemCount,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}
