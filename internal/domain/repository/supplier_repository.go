package repository

import (
	"context"

	"github.com/jhoicas/stocker-api/internal/domain/entity"
)

// SupplierRepository define el puerto de persistencia para Supplier (DIP).
type SupplierRepository interface {
	Create(ctx context.Context, supplier *entity.Supplier) error
	GetByID(ctx context.Context, ownerID, id string) (*entity.Supplier, error)
	GetByName(ctx context.Context, ownerID, name string) (*entity.Supplier, error)
	// GetForUpdate bloquea el proveedor hasta el fin de la transacción (solo tiene efecto dentro de una tx).
	GetForUpdate(ctx context.Context, ownerID, id string) (*entity.Supplier, error)
	Update(ctx context.Context, supplier *entity.Supplier) error
	List(ctx context.Context, ownerID, query string, limit, offset int) ([]*entity.Supplier, error)
	Delete(ctx context.Context, ownerID, id string) error
}
