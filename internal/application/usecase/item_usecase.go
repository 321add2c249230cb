package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stocker-api/internal/application/dto"
	"github.com/jhoicas/stocker-api/internal/application/inventory"
	"github.com/jhoicas/stocker-api/internal/domain"
	"github.com/jhoicas/stocker-api/internal/domain/entity"
	"github.com/jhoicas/stocker-api/internal/domain/repository"
)

// InitialStockReason motivo del ajuste que registra la cantidad inicial de un producto.
const InitialStockReason = "Initial stock"

// ItemUseCase casos de uso CRUD para productos. OnHand se maneja solo vía movimientos.
type ItemUseCase struct {
	txRunner   inventory.TxRunner
	items      repository.ItemRepository
	categories repository.CategoryRepository
	suppliers  repository.SupplierRepository
	ledger     *inventory.LedgerUseCase
}

// NewItemUseCase construye el caso de uso.
func NewItemUseCase(
	txRunner inventory.TxRunner,
	items repository.ItemRepository,
	categories repository.CategoryRepository,
	suppliers repository.SupplierRepository,
	ledger *inventory.LedgerUseCase,
) *ItemUseCase {
	return &ItemUseCase{
		txRunner:   txRunner,
		items:      items,
		categories: categories,
		suppliers:  suppliers,
		ledger:     ledger,
	}
}

// Create crea un producto con OnHand 0. Si trae cantidad inicial se registra como ajuste "Initial stock".
// Si falla el vínculo con proveedores o el ajuste inicial, el producto se elimina y se devuelve el error.
func (uc *ItemUseCase) Create(ctx context.Context, ownerID, actorID string, in dto.CreateItemRequest) (*dto.ItemResponse, error) {
	in.SKU = strings.TrimSpace(in.SKU)
	in.Name = strings.TrimSpace(in.Name)
	if in.SKU == "" {
		return nil, domain.Invalid("sku", "requerido")
	}
	if in.Name == "" {
		return nil, domain.Invalid("name", "requerido")
	}
	if in.Unit == "" {
		in.Unit = entity.UnitPieces
	}
	if !entity.ValidUnit(in.Unit) {
		return nil, domain.Invalid("unit", "unidad desconocida")
	}
	if err := validatePrices(in.CostPrice, in.SalePrice); err != nil {
		return nil, err
	}
	if in.ReorderLevel < 0 {
		return nil, domain.Invalid("reorder_level", "no puede ser negativo")
	}
	if in.InitialQuantity < 0 {
		return nil, domain.Invalid("initial_quantity", "no puede ser negativa")
	}

	existing, err := uc.items.GetBySKU(ctx, ownerID, in.SKU)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	categoryID, err := uc.resolveCategory(ctx, ownerID, in.CategoryID)
	if err != nil {
		return nil, err
	}
	if err := uc.checkSuppliers(ctx, ownerID, in.SupplierIDs); err != nil {
		return nil, err
	}

	now := time.Now()
	item := &entity.Item{
		ID:           uuid.New().String(),
		OwnerID:      ownerID,
		SKU:          in.SKU,
		Name:         in.Name,
		Description:  in.Description,
		CategoryID:   categoryID,
		Unit:         in.Unit,
		CostPrice:    in.CostPrice.Round(2),
		SalePrice:    in.SalePrice.Round(2),
		ReorderLevel: in.ReorderLevel,
		OnHand:       0,
		ExpiryDate:   in.ExpiryDate.Ptr(),
		SupplierIDs:  dedupe(in.SupplierIDs),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.items.Create(ctx, item); err != nil {
		return nil, err
	}
	if err := uc.completeCreate(ctx, item, in.InitialQuantity, actorID); err != nil {
		if delErr := uc.items.Delete(context.WithoutCancel(ctx), ownerID, item.ID); delErr != nil {
			return nil, errors.Join(err, fmt.Errorf("revertir alta del producto: %w", delErr))
		}
		return nil, err
	}
	return uc.GetByID(ctx, ownerID, item.ID)
}

func (uc *ItemUseCase) completeCreate(ctx context.Context, item *entity.Item, initial int64, actorID string) error {
	if len(item.SupplierIDs) > 0 {
		if err := uc.items.SetSuppliers(ctx, item.ID, item.SupplierIDs); err != nil {
			return err
		}
	}
	if initial <= 0 {
		return nil
	}
	_, err := uc.ledger.Apply(ctx, inventory.ApplyInput{
		OwnerID:  item.OwnerID,
		ItemID:   item.ID,
		Type:     entity.MovementTypeADJ,
		Quantity: initial,
		Reason:   InitialStockReason,
		ActorID:  actorID,
	})
	return err
}

// GetByID obtiene un producto del dueño.
func (uc *ItemUseCase) GetByID(ctx context.Context, ownerID, id string) (*dto.ItemResponse, error) {
	item, err := uc.items.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	return ToItemResponse(item), nil
}

// Update actualiza los datos maestros. No permite modificar OnHand (se maneja vía movimientos).
func (uc *ItemUseCase) Update(ctx context.Context, ownerID, id string, in dto.UpdateItemRequest) (*dto.ItemResponse, error) {
	item, err := uc.items.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, domain.Invalid("name", "requerido")
		}
		item.Name = name
	}
	if in.Description != nil {
		item.Description = *in.Description
	}
	if in.CategoryID != nil {
		item.CategoryID, err = uc.resolveCategory(ctx, ownerID, in.CategoryID)
		if err != nil {
			return nil, err
		}
	}
	if in.Unit != nil {
		if !entity.ValidUnit(*in.Unit) {
			return nil, domain.Invalid("unit", "unidad desconocida")
		}
		item.Unit = *in.Unit
	}
	if in.CostPrice != nil {
		item.CostPrice = in.CostPrice.Round(2)
	}
	if in.SalePrice != nil {
		item.SalePrice = in.SalePrice.Round(2)
	}
	if err := validatePrices(item.CostPrice, item.SalePrice); err != nil {
		return nil, err
	}
	if in.ReorderLevel != nil {
		if *in.ReorderLevel < 0 {
			return nil, domain.Invalid("reorder_level", "no puede ser negativo")
		}
		item.ReorderLevel = *in.ReorderLevel
	}
	if in.ClearExpiry {
		item.ExpiryDate = nil
	} else if in.ExpiryDate != nil {
		item.ExpiryDate = in.ExpiryDate.Ptr()
	}
	item.UpdatedAt = time.Now()
	if err := uc.items.Update(ctx, item); err != nil {
		return nil, err
	}
	return uc.GetByID(ctx, ownerID, id)
}

// SetSuppliers reemplaza los proveedores asociados al producto.
func (uc *ItemUseCase) SetSuppliers(ctx context.Context, ownerID, id string, supplierIDs []string) (*dto.ItemResponse, error) {
	item, err := uc.items.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	if err := uc.checkSuppliers(ctx, ownerID, supplierIDs); err != nil {
		return nil, err
	}
	if err := uc.items.SetSuppliers(ctx, id, dedupe(supplierIDs)); err != nil {
		return nil, err
	}
	return uc.GetByID(ctx, ownerID, id)
}

// List lista productos del dueño con búsqueda (nombre, SKU, categoría) y filtro de bajo stock.
func (uc *ItemUseCase) List(ctx context.Context, filter repository.ItemFilter) (*dto.ItemListResponse, error) {
	page := dto.PageRequest{Limit: filter.Limit, Offset: filter.Offset}
	page.DefaultPage()
	filter.Limit, filter.Offset = page.Limit, page.Offset
	filter.Query = strings.TrimSpace(filter.Query)

	list, total, err := uc.items.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ItemResponse, 0, len(list))
	for _, it := range list {
		items = append(items, *ToItemResponse(it))
	}
	return &dto.ItemListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: filter.Limit, Offset: filter.Offset, Total: total},
	}, nil
}

// Delete elimina un producto. Se rechaza con ErrInUse si tiene movimientos o líneas de órdenes de compra.
// Toma el mismo bloqueo del producto que el libro de stock, así un movimiento en curso no queda huérfano.
func (uc *ItemUseCase) Delete(ctx context.Context, ownerID, id string) error {
	return uc.txRunner.Run(ctx, func(ctx context.Context, tx inventory.TxRepos) error {
		item, err := tx.Items.GetForUpdate(ctx, ownerID, id)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrNotFound
		}
		n, err := tx.Movements.CountByItem(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return domain.ErrInUse
		}
		n, err = tx.PurchaseOrders.CountLinesByItem(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return domain.ErrInUse
		}
		return tx.Items.Delete(ctx, ownerID, id)
	})
}

func (uc *ItemUseCase) resolveCategory(ctx context.Context, ownerID string, id *string) (*string, error) {
	if id == nil || strings.TrimSpace(*id) == "" {
		return nil, nil
	}
	cat, err := uc.categories.GetByID(ctx, ownerID, *id)
	if err != nil {
		return nil, err
	}
	if cat == nil {
		return nil, domain.Invalid("category_id", "categoría inexistente")
	}
	catID := cat.ID
	return &catID, nil
}

func (uc *ItemUseCase) checkSuppliers(ctx context.Context, ownerID string, ids []string) error {
	for _, id := range ids {
		s, err := uc.suppliers.GetByID(ctx, ownerID, id)
		if err != nil {
			return err
		}
		if s == nil {
			return domain.Invalid("supplier_ids", "proveedor inexistente: "+id)
		}
	}
	return nil
}

func validatePrices(cost, sale decimal.Decimal) error {
	if cost.IsNegative() {
		return domain.Invalid("cost_price", "no puede ser negativo")
	}
	if sale.IsNegative() {
		return domain.Invalid("sale_price", "no puede ser negativo")
	}
	return nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok || id == "" {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// ToItemResponse convierte un producto en su DTO de salida.
func ToItemResponse(it *entity.Item) *dto.ItemResponse {
	if it == nil {
		return nil
	}
	supplierIDs := it.SupplierIDs
	if supplierIDs == nil {
		supplierIDs = []string{}
	}
	return &dto.ItemResponse{
		ID:           it.ID,
		SKU:          it.SKU,
		Name:         it.Name,
		Description:  it.Description,
		CategoryID:   it.CategoryID,
		CategoryName: it.CategoryName,
		Unit:         it.Unit,
		CostPrice:    it.CostPrice,
		SalePrice:    it.SalePrice,
		ReorderLevel: it.ReorderLevel,
		OnHand:       it.OnHand,
		LowStock:     it.IsLowStock(),
		Valuation:    it.Valuation(),
		ExpiryDate:   dto.NewDate(it.ExpiryDate),
		SupplierIDs:  supplierIDs,
		CreatedAt:    it.CreatedAt,
		UpdatedAt:    it.UpdatedAt,
	}
}
