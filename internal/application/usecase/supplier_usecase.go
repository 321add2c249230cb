package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/stocker-api/internal/application/dto"
	"github.com/jhoicas/stocker-api/internal/application/inventory"
	"github.com/jhoicas/stocker-api/internal/domain"
	"github.com/jhoicas/stocker-api/internal/domain/entity"
	"github.com/jhoicas/stocker-api/internal/domain/repository"
)

// SupplierUseCase casos de uso CRUD para proveedores.
type SupplierUseCase struct {
	txRunner inventory.TxRunner
	repo     repository.SupplierRepository
}

// NewSupplierUseCase construye el caso de uso.
func NewSupplierUseCase(txRunner inventory.TxRunner, repo repository.SupplierRepository) *SupplierUseCase {
	return &SupplierUseCase{txRunner: txRunner, repo: repo}
}

// Create crea un proveedor. El nombre es único por dueño.
func (uc *SupplierUseCase) Create(ctx context.Context, ownerID string, in dto.SupplierRequest) (*dto.SupplierResponse, error) {
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
	supplier := &entity.Supplier{
		ID:        uuid.New().String(),
		OwnerID:   ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	applySupplier(supplier, name, in)
	if err := uc.repo.Create(ctx, supplier); err != nil {
		return nil, err
	}
	return toSupplierResponse(supplier), nil
}

// GetByID obtiene un proveedor.
func (uc *SupplierUseCase) GetByID(ctx context.Context, ownerID, id string) (*dto.SupplierResponse, error) {
	supplier, err := uc.repo.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if supplier == nil {
		return nil, domain.ErrNotFound
	}
	return toSupplierResponse(supplier), nil
}

// Update reemplaza los datos del proveedor.
func (uc *SupplierUseCase) Update(ctx context.Context, ownerID, id string, in dto.SupplierRequest) (*dto.SupplierResponse, error) {
	supplier, err := uc.repo.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if supplier == nil {
		return nil, domain.ErrNotFound
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.Invalid("name", "requerido")
	}
	if !strings.EqualFold(name, supplier.Name) {
		other, err := uc.repo.GetByName(ctx, ownerID, name)
		if err != nil {
			return nil, err
		}
		if other != nil && other.ID != id {
			return nil, domain.ErrDuplicate
		}
	}
	applySupplier(supplier, name, in)
	supplier.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, supplier); err != nil {
		return nil, err
	}
	return toSupplierResponse(supplier), nil
}

// List lista proveedores del dueño.
func (uc *SupplierUseCase) List(ctx context.Context, ownerID, query string, limit, offset int) ([]dto.SupplierResponse, error) {
	page := dto.PageRequest{Limit: limit, Offset: offset}
	page.DefaultPage()
	list, err := uc.repo.List(ctx, ownerID, strings.TrimSpace(query), page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SupplierResponse, 0, len(list))
	for _, s := range list {
		out = append(out, *toSupplierResponse(s))
	}
	return out, nil
}

// Delete elimina el proveedor. Se rechaza con ErrInUse mientras una orden de compra abierta lo referencia.
// El bloqueo del proveedor lo serializa con el alta de órdenes; los vínculos con productos se quitan en la misma tx.
func (uc *SupplierUseCase) Delete(ctx context.Context, ownerID, id string) error {
	return uc.txRunner.Run(ctx, func(ctx context.Context, tx inventory.TxRepos) error {
		supplier, err := tx.Suppliers.GetForUpdate(ctx, ownerID, id)
		if err != nil {
			return err
		}
		if supplier == nil {
			return domain.ErrNotFound
		}
		open, err := tx.PurchaseOrders.CountOpenBySupplier(ctx, id)
		if err != nil {
			return err
		}
		if open > 0 {
			return domain.ErrInUse
		}
		if err := tx.Items.DetachSupplier(ctx, id); err != nil {
			return err
		}
		return tx.Suppliers.Delete(ctx, ownerID, id)
	})
}

func applySupplier(s *entity.Supplier, name string, in dto.SupplierRequest) {
	s.Name = name
	s.Email = strings.TrimSpace(in.Email)
	s.Phone = strings.TrimSpace(in.Phone)
	s.Website = strings.TrimSpace(in.Website)
	s.Address = in.Address
	s.Notes = in.Notes
	s.LogoURL = strings.TrimSpace(in.LogoURL)
}

func toSupplierResponse(s *entity.Supplier) *dto.SupplierResponse {
	if s == nil {
		return nil
	}
	return &dto.SupplierResponse{
		ID:        s.ID,
		Name:      s.Name,
		Email:     s.Email,
		Phone:     s.Phone,
		Website:   s.Website,
		Address:   s.Address,
		Notes:     s.Notes,
		LogoURL:   s.LogoURL,
		ItemCount: s.ItemCount,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}
