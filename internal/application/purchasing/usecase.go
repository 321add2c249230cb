package purchasing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/stocker-api/internal/application/dto"
	"github.com/jhoicas/stocker-api/internal/application/inventory"
	"github.com/jhoicas/stocker-api/internal/domain"
	"github.com/jhoicas/stocker-api/internal/domain/entity"
	"github.com/jhoicas/stocker-api/internal/domain/repository"
	"github.com/jhoicas/stocker-api/pkg/logger"
)

// UseCase flujo de órdenes de compra: alta, líneas, recepción (entrada al libro de stock) y cancelación.
type UseCase struct {
	txRunner  inventory.TxRunner
	orders    repository.PurchaseOrderRepository
	suppliers repository.SupplierRepository
	items     repository.ItemRepository
	ledger    *inventory.LedgerUseCase
	pdf       PDFGenerator
	log       *logger.Logger
	now       func() time.Time
}

// NewUseCase construye el caso de uso de compras.
func NewUseCase(
	txRunner inventory.TxRunner,
	orders repository.PurchaseOrderRepository,
	suppliers repository.SupplierRepository,
	items repository.ItemRepository,
	ledger *inventory.LedgerUseCase,
	log *logger.Logger,
) *UseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &UseCase{
		txRunner:  txRunner,
		orders:    orders,
		suppliers: suppliers,
		items:     items,
		ledger:    ledger,
		log:       log.Component("purchasing"),
		now:       time.Now,
	}
}

// WithClock reemplaza el reloj (tests).
func (uc *UseCase) WithClock(now func() time.Time) *UseCase {
	uc.now = now
	return uc
}

// ReceiveResult resultado de una recepción. Movement es nil cuando no se recibió nada
// (orden cerrada o cantidad efectiva 0).
type ReceiveResult struct {
	Received int64
	Movement *entity.StockMovement
	Order    *entity.PurchaseOrder
}

// Create crea una orden en DRAFT para un proveedor del dueño. Si trae líneas se agregan en la misma transacción.
func (uc *UseCase) Create(ctx context.Context, ownerID, actorID string, in dto.CreatePurchaseOrderRequest) (*entity.PurchaseOrder, error) {
	if strings.TrimSpace(in.SupplierID) == "" {
		return nil, domain.Invalid("supplier_id", "requerido")
	}
	supplier, err := uc.suppliers.GetByID(ctx, ownerID, in.SupplierID)
	if err != nil {
		return nil, err
	}
	if supplier == nil {
		return nil, domain.ErrNotFound
	}
	for i := range in.Lines {
		if err := uc.validateLine(ctx, ownerID, in.Lines[i]); err != nil {
			return nil, err
		}
	}

	now := uc.now()
	order := &entity.PurchaseOrder{
		ID:            uuid.New().String(),
		OwnerID:       ownerID,
		SupplierID:    supplier.ID,
		SupplierName:  supplier.Name,
		Status:        entity.POStatusDraft,
		OrderDate:     dateOnly(now),
		ExpectedDate:  in.ExpectedDate.Ptr(),
		InvoiceNumber: strings.TrimSpace(in.InvoiceNumber),
		InvoiceDate:   in.InvoiceDate.Ptr(),
		Notes:         in.Notes,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if in.OrderDate != nil && !in.OrderDate.IsZero() {
		order.OrderDate = in.OrderDate.Time
	}
	if actorID != "" {
		actor := actorID
		order.CreatedBy = &actor
	}

	err = uc.txRunner.Run(ctx, func(ctx context.Context, tx inventory.TxRepos) error {
		// un borrado concurrente del proveedor espera a esta tx (o esta ve que ya no existe)
		locked, err := tx.Suppliers.GetForUpdate(ctx, ownerID, supplier.ID)
		if err != nil {
			return err
		}
		if locked == nil {
			return domain.ErrNotFound
		}
		if err := tx.PurchaseOrders.Create(ctx, order); err != nil {
			return err
		}
		for _, l := range in.Lines {
			if err := uc.upsertLine(ctx, tx, order, l, now); err != nil {
				return err
			}
		}
		if len(order.Lines) == 0 {
			return nil
		}
		return tx.PurchaseOrders.UpdateHeader(ctx, order)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// AddLine agrega un producto a la orden o, si ya está, actualiza cantidad pedida y costo unitario.
// La primera línea pasa la orden de DRAFT a SUBMITTED. Orden cerrada → ErrOrderClosed.
func (uc *UseCase) AddLine(ctx context.Context, ownerID, orderID string, in dto.AddPurchaseOrderLineRequest) (*entity.PurchaseOrder, error) {
	if err := uc.validateLine(ctx, ownerID, in); err != nil {
		return nil, err
	}
	var order *entity.PurchaseOrder
	err := uc.txRunner.Run(ctx, func(ctx context.Context, tx inventory.TxRepos) error {
		var err error
		order, err = lockOrder(ctx, tx, ownerID, orderID)
		if err != nil {
			return err
		}
		if order.IsClosed() {
			return domain.ErrOrderClosed
		}
		if err := uc.upsertLine(ctx, tx, order, in, uc.now()); err != nil {
			return err
		}
		return tx.PurchaseOrders.UpdateHeader(ctx, order)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// Receive registra la recepción de una línea. La cantidad efectiva es clamp(requested, 0, pendiente).
// La entrada al libro de stock (IN, motivo "PO#<id>"), el avance de la línea y el nuevo estado
// se confirman en una sola transacción. Sobre una orden cerrada no hace nada.
func (uc *UseCase) Receive(ctx context.Context, ownerID, actorID, orderID, lineID string, requested int64) (*ReceiveResult, error) {
	res := &ReceiveResult{}
	var item *entity.Item
	err := uc.txRunner.Run(ctx, func(ctx context.Context, tx inventory.TxRepos) error {
		order, err := lockOrder(ctx, tx, ownerID, orderID)
		if err != nil {
			return err
		}
		res.Order = order
		if order.IsClosed() {
			return nil
		}
		line := order.Line(lineID)
		if line == nil {
			return domain.ErrNotFound
		}
		qty := line.Receivable(requested)
		if qty == 0 {
			return nil
		}

		mov, it, err := uc.ledger.ApplyInTx(ctx, tx, inventory.ApplyInput{
			OwnerID:  ownerID,
			ItemID:   line.ItemID,
			Type:     entity.MovementTypeIN,
			Quantity: qty,
			Reason:   "PO#" + order.ID,
			ActorID:  actorID,
		})
		if err != nil {
			return err
		}
		line.QuantityReceived += qty
		line.UpdatedAt = mov.CreatedAt
		if err := tx.PurchaseOrders.UpdateLineReceived(ctx, line.ID, line.QuantityReceived); err != nil {
			return err
		}
		order.RecomputeStatus()
		order.UpdatedAt = mov.CreatedAt
		if err := tx.PurchaseOrders.UpdateHeader(ctx, order); err != nil {
			return err
		}
		res.Received = qty
		res.Movement = mov
		item = it
		return nil
	})
	if err != nil {
		return nil, err
	}
	if res.Movement != nil {
		uc.ledger.Publish(ctx, res.Movement, item)
		uc.log.Info().
			Str("order_id", res.Order.ID).
			Str("line_id", lineID).
			Int64("received", res.Received).
			Str("status", res.Order.Status).
			Msg("recepción registrada")
	}
	return res, nil
}

// Cancel pasa la orden a CANCELLED. Orden ya cerrada → ErrOrderClosed.
func (uc *UseCase) Cancel(ctx context.Context, ownerID, orderID string) (*entity.PurchaseOrder, error) {
	var order *entity.PurchaseOrder
	err := uc.txRunner.Run(ctx, func(ctx context.Context, tx inventory.TxRepos) error {
		var err error
		order, err = lockOrder(ctx, tx, ownerID, orderID)
		if err != nil {
			return err
		}
		if order.IsClosed() {
			return domain.ErrOrderClosed
		}
		order.Status = entity.POStatusCancelled
		order.UpdatedAt = uc.now()
		return tx.PurchaseOrders.UpdateHeader(ctx, order)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// Update modifica datos de cabecera (fechas, factura, notas) mientras la orden está abierta.
func (uc *UseCase) Update(ctx context.Context, ownerID, orderID string, in dto.UpdatePurchaseOrderRequest) (*entity.PurchaseOrder, error) {
	var order *entity.PurchaseOrder
	err := uc.txRunner.Run(ctx, func(ctx context.Context, tx inventory.TxRepos) error {
		var err error
		order, err = lockOrder(ctx, tx, ownerID, orderID)
		if err != nil {
			return err
		}
		if order.IsClosed() {
			return domain.ErrOrderClosed
		}
		if in.ExpectedDate != nil {
			order.ExpectedDate = in.ExpectedDate.Ptr()
		}
		if in.InvoiceNumber != nil {
			order.InvoiceNumber = strings.TrimSpace(*in.InvoiceNumber)
		}
		if in.InvoiceDate != nil {
			order.InvoiceDate = in.InvoiceDate.Ptr()
		}
		if in.Notes != nil {
			order.Notes = *in.Notes
		}
		order.UpdatedAt = uc.now()
		return tx.PurchaseOrders.UpdateHeader(ctx, order)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// Get devuelve la orden con sus líneas.
func (uc *UseCase) Get(ctx context.Context, ownerID, orderID string) (*entity.PurchaseOrder, error) {
	order, err := uc.orders.GetByID(ctx, ownerID, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	return order, nil
}

// List lista órdenes del dueño, opcionalmente por estado y proveedor.
func (uc *UseCase) List(ctx context.Context, filter repository.PurchaseOrderFilter) ([]*entity.PurchaseOrder, error) {
	if filter.Status != "" {
		filter.Status = strings.ToUpper(filter.Status)
		if !entity.ValidPOStatus(filter.Status) {
			return nil, domain.Invalid("status", "estado desconocido")
		}
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	return uc.orders.List(ctx, filter)
}

func (uc *UseCase) validateLine(ctx context.Context, ownerID string, in dto.AddPurchaseOrderLineRequest) error {
	if in.ItemID == "" {
		return domain.Invalid("item_id", "requerido")
	}
	if in.QuantityOrdered <= 0 {
		return domain.Invalid("quantity_ordered", "debe ser mayor que 0")
	}
	if in.UnitCost.IsNegative() {
		return domain.Invalid("unit_cost", "no puede ser negativo")
	}
	item, err := uc.items.GetByID(ctx, ownerID, in.ItemID)
	if err != nil {
		return err
	}
	if item == nil {
		return domain.ErrNotFound
	}
	return nil
}

// upsertLine aplica la línea sobre order (en memoria y en la tx) y ajusta el estado.
func (uc *UseCase) upsertLine(ctx context.Context, tx inventory.TxRepos, order *entity.PurchaseOrder, in dto.AddPurchaseOrderLineRequest, now time.Time) error {
	item, err := tx.Items.GetForUpdate(ctx, order.OwnerID, in.ItemID)
	if err != nil {
		return err
	}
	if item == nil {
		return domain.ErrNotFound
	}
	line := order.LineForItem(in.ItemID)
	if line != nil && in.QuantityOrdered < line.QuantityReceived {
		return domain.Invalid("quantity_ordered", fmt.Sprintf("no puede ser menor que lo ya recibido (%d)", line.QuantityReceived))
	}
	if line == nil {
		order.Lines = append(order.Lines, entity.PurchaseOrderLine{
			ID:        uuid.New().String(),
			OrderID:   order.ID,
			ItemID:    in.ItemID,
			CreatedAt: now,
		})
		line = &order.Lines[len(order.Lines)-1]
	}
	line.QuantityOrdered = in.QuantityOrdered
	line.UnitCost = in.UnitCost.Round(2)
	line.UpdatedAt = now
	if err := tx.PurchaseOrders.UpsertLine(ctx, line); err != nil {
		return err
	}
	if order.Status == entity.POStatusDraft {
		order.Status = entity.POStatusSubmitted
	}
	order.RecomputeStatus()
	order.UpdatedAt = now
	return nil
}

func lockOrder(ctx context.Context, tx inventory.TxRepos, ownerID, orderID string) (*entity.PurchaseOrder, error) {
	order, err := tx.PurchaseOrders.GetForUpdate(ctx, ownerID, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	return order, nil
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
