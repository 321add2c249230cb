package repository

import (
	"context"

	"github.com/jhoicas/stocker-api/internal/domain/entity"
)

// PurchaseOrderFilter criterios de listado de órdenes de compra.
type PurchaseOrderFilter struct {
	OwnerID    string
	Status     string
	SupplierID string
	Limit      int
	Offset     int
}

// PurchaseOrderRepository puerto de persistencia de órdenes de compra y sus líneas.
type PurchaseOrderRepository interface {
	Create(ctx context.Context, order *entity.PurchaseOrder) error
	// GetByID devuelve la orden con sus líneas; (nil, nil) si no existe para ese dueño.
	GetByID(ctx context.Context, ownerID, id string) (*entity.PurchaseOrder, error)
	// GetForUpdate como GetByID pero bloquea la fila de la orden hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, ownerID, id string) (*entity.PurchaseOrder, error)
	UpdateHeader(ctx context.Context, order *entity.PurchaseOrder) error
	// UpsertLine inserta la línea o, si ya existe (orden, producto), actualiza cantidad pedida y costo.
	UpsertLine(ctx context.Context, line *entity.PurchaseOrderLine) error
	UpdateLineReceived(ctx context.Context, lineID string, received int64) error
	List(ctx context.Context, filter PurchaseOrderFilter) ([]*entity.PurchaseOrder, error)
	CountOpenBySupplier(ctx context.Context, supplierID string) (int, error)
	CountLinesByItem(ctx context.Context, itemID string) (int, error)
}
