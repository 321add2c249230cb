package repository

import (
	"context"
	"time"

	"github.com/jhoicas/stocker-api/internal/domain/entity"
)

// ItemFilter criterios de listado de productos.
type ItemFilter struct {
	OwnerID    string
	Query      string // busca en nombre, SKU y nombre de categoría
	LowOnly    bool   // solo OnHand <= ReorderLevel
	CategoryID string
	SupplierID string
	Limit      int
	Offset     int
}

// ItemRepository define el puerto de persistencia para Item (DIP).
// Las lecturas devuelven (nil, nil) si el producto no existe o pertenece a otro dueño.
type ItemRepository interface {
	Create(ctx context.Context, item *entity.Item) error
	GetByID(ctx context.Context, ownerID, id string) (*entity.Item, error)
	GetBySKU(ctx context.Context, ownerID, sku string) (*entity.Item, error)
	// GetForUpdate bloquea la fila del producto hasta el fin de la transacción (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, ownerID, id string) (*entity.Item, error)
	// Update modifica los datos maestros; nunca toca OnHand.
	Update(ctx context.Context, item *entity.Item) error
	// UpdateOnHand es la única escritura de OnHand (la usa el motor de movimientos).
	UpdateOnHand(ctx context.Context, id string, onHand int64, at time.Time) error
	List(ctx context.Context, filter ItemFilter) ([]*entity.Item, int, error)
	Delete(ctx context.Context, ownerID, id string) error
	SetSuppliers(ctx context.Context, itemID string, supplierIDs []string) error
	// ListLowStock productos con OnHand <= ReorderLevel; ownerID vacío = todos los dueños.
	ListLowStock(ctx context.Context, ownerID string, limit int) ([]*entity.Item, error)
	// ListExpiring productos con vencimiento anterior a until; ownerID vacío = todos los dueños.
	ListExpiring(ctx context.Context, ownerID string, until time.Time) ([]*entity.Item, error)
	DetachCategory(ctx context.Context, ownerID, categoryID string) error
	DetachSupplier(ctx context.Context, supplierID string) error
}
