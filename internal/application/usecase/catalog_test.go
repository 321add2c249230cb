package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stocker-api/internal/application/dto"
	"github.com/jhoicas/stocker-api/internal/application/inventory"
	"github.com/jhoicas/stocker-api/internal/application/purchasing"
	"github.com/jhoicas/stocker-api/internal/application/usecase"
	"github.com/jhoicas/stocker-api/internal/domain"
	"github.com/jhoicas/stocker-api/internal/domain/entity"
	"github.com/jhoicas/stocker-api/internal/domain/repository"
	"github.com/jhoicas/stocker-api/internal/infrastructure/memory"
)

const (
	testOwner = "owner-1"
	testActor = "user-1"
)

type fixture struct {
	store      *memory.Store
	ledger     *inventory.LedgerUseCase
	items      *usecase.ItemUseCase
	categories *usecase.CategoryUseCase
	suppliers  *usecase.SupplierUseCase
	orders     *purchasing.UseCase
}

func newFixture() *fixture {
	s := memory.NewStore()
	ledger := inventory.NewLedgerUseCase(s.TxRunner(), s.Items(), s.Movements(), nil, nil)
	return &fixture{
		store:      s,
		ledger:     ledger,
		items:      usecase.NewItemUseCase(s.TxRunner(), s.Items(), s.Categories(), s.Suppliers(), ledger),
		categories: usecase.NewCategoryUseCase(s.Categories(), s.Items()),
		suppliers:  usecase.NewSupplierUseCase(s.TxRunner(), s.Suppliers()),
		orders:     purchasing.NewUseCase(s.TxRunner(), s.PurchaseOrders(), s.Suppliers(), s.Items(), ledger, nil),
	}
}

func ptr[T any](v T) *T { return &v }

// ── Productos ─────────────────────────────────────────────────────────────────

func TestItemCreate_CantidadInicialPasaPorElLibro(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	item, err := f.items.Create(ctx, testOwner, testActor, dto.CreateItemRequest{
		SKU: "SKU-1", Name: "Arroz 1kg", CostPrice: decimal.RequireFromString("1.20"),
		ReorderLevel: 5, InitialQuantity: 12,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(12), item.OnHand)
	assert.Equal(t, entity.UnitPieces, item.Unit)
	assert.False(t, item.LowStock)
	assert.Equal(t, "14.4", item.Valuation.String())

	history, err := f.ledger.History(ctx, testOwner, item.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, entity.MovementTypeADJ, history[0].Type)
	assert.Equal(t, usecase.InitialStockReason, history[0].Reason)
	assert.Equal(t, int64(12), history[0].ResultingQuantity)
}

func TestItemCreate_Validaciones(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	_, err := f.items.Create(ctx, testOwner, testActor, dto.CreateItemRequest{SKU: "A", Name: "A"})
	require.NoError(t, err)

	cases := []struct {
		name string
		in   dto.CreateItemRequest
		want error
	}{
		{"SKU duplicado", dto.CreateItemRequest{SKU: "a", Name: "Otro"}, domain.ErrDuplicate},
		{"sin SKU", dto.CreateItemRequest{Name: "X"}, domain.ErrInvalidInput},
		{"unidad desconocida", dto.CreateItemRequest{SKU: "U", Name: "U", Unit: "TON"}, domain.ErrInvalidInput},
		{"costo negativo", dto.CreateItemRequest{SKU: "C", Name: "C", CostPrice: decimal.NewFromInt(-1)}, domain.ErrInvalidInput},
		{"categoría inexistente", dto.CreateItemRequest{SKU: "K", Name: "K", CategoryID: ptr("nope")}, domain.ErrInvalidInput},
		{"cantidad inicial negativa", dto.CreateItemRequest{SKU: "N", Name: "N", InitialQuantity: -1}, domain.ErrInvalidInput},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.items.Create(ctx, testOwner, testActor, tc.in)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestItemUpdate_NoTocaElStock(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	item, err := f.items.Create(ctx, testOwner, testActor, dto.CreateItemRequest{SKU: "A", Name: "A", InitialQuantity: 7})
	require.NoError(t, err)

	up, err := f.items.Update(ctx, testOwner, item.ID, dto.UpdateItemRequest{Name: ptr("Nuevo"), ReorderLevel: ptr(int64(9))})
	require.NoError(t, err)
	assert.Equal(t, "Nuevo", up.Name)
	assert.Equal(t, int64(7), up.OnHand)
	assert.True(t, up.LowStock)

	_, err = f.items.Update(ctx, "owner-2", item.ID, dto.UpdateItemRequest{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestItemList_BusquedaYBajoStock(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	cat, err := f.categories.Create(ctx, testOwner, dto.CategoryRequest{Name: "Lácteos"})
	require.NoError(t, err)
	_, err = f.items.Create(ctx, testOwner, testActor, dto.CreateItemRequest{SKU: "LEC-1", Name: "Leche", CategoryID: &cat.ID, ReorderLevel: 5, InitialQuantity: 2})
	require.NoError(t, err)
	_, err = f.items.Create(ctx, testOwner, testActor, dto.CreateItemRequest{SKU: "PAN-1", Name: "Pan", ReorderLevel: 1, InitialQuantity: 20})
	require.NoError(t, err)

	byCategory, err := f.items.List(ctx, repository.ItemFilter{OwnerID: testOwner, Query: "lácteos"})
	require.NoError(t, err)
	require.Len(t, byCategory.Items, 1)
	assert.Equal(t, "LEC-1", byCategory.Items[0].SKU)

	low, err := f.items.List(ctx, repository.ItemFilter{OwnerID: testOwner, LowOnly: true})
	require.NoError(t, err)
	require.Len(t, low.Items, 1)
	assert.Equal(t, 1, low.Page.Total)

	all, err := f.items.List(ctx, repository.ItemFilter{OwnerID: testOwner})
	require.NoError(t, err)
	assert.Equal(t, 2, all.Page.Total)
	assert.Equal(t, 20, all.Page.Limit)
}

func TestItemDelete_ProtegidoPorMovimientosYOrdenes(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	withStock, err := f.items.Create(ctx, testOwner, testActor, dto.CreateItemRequest{SKU: "M", Name: "M", InitialQuantity: 1})
	require.NoError(t, err)
	assert.ErrorIs(t, f.items.Delete(ctx, testOwner, withStock.ID), domain.ErrInUse)

	ordered, err := f.items.Create(ctx, testOwner, testActor, dto.CreateItemRequest{SKU: "O", Name: "O"})
	require.NoError(t, err)
	sup, err := f.suppliers.Create(ctx, testOwner, dto.SupplierRequest{Name: "Acme"})
	require.NoError(t, err)
	_, err = f.orders.Create(ctx, testOwner, testActor, dto.CreatePurchaseOrderRequest{
		SupplierID: sup.ID,
		Lines:      []dto.AddPurchaseOrderLineRequest{{ItemID: ordered.ID, QuantityOrdered: 3}},
	})
	require.NoError(t, err)
	assert.ErrorIs(t, f.items.Delete(ctx, testOwner, ordered.ID), domain.ErrInUse)

	free, err := f.items.Create(ctx, testOwner, testActor, dto.CreateItemRequest{SKU: "F", Name: "F"})
	require.NoError(t, err)
	require.NoError(t, f.items.Delete(ctx, testOwner, free.ID))
	_, err = f.items.GetByID(ctx, testOwner, free.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// Un borrado que llega mientras un movimiento tiene tomado el producto espera al Commit y lo ve.
func TestItemDelete_EsperaAlMovimientoEnCurso(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	item, err := f.items.Create(ctx, testOwner, testActor, dto.CreateItemRequest{SKU: "C", Name: "C"})
	require.NoError(t, err)

	locked := make(chan struct{})
	proceed := make(chan struct{})
	applied := make(chan error, 1)
	go func() {
		applied <- f.store.TxRunner().Run(ctx, func(ctx context.Context, tx inventory.TxRepos) error {
			if _, _, err := f.ledger.ApplyInTx(ctx, tx, inventory.ApplyInput{
				OwnerID: testOwner, ItemID: item.ID, Type: entity.MovementTypeIN, Quantity: 5,
			}); err != nil {
				return err
			}
			close(locked)
			<-proceed
			return nil
		})
	}()
	<-locked

	deleted := make(chan error, 1)
	go func() { deleted <- f.items.Delete(ctx, testOwner, item.ID) }()

	select {
	case err := <-deleted:
		t.Fatalf("el borrado no esperó al movimiento: %v", err)
	case <-time.After(50 * time.Millisecond):
	}
	close(proceed)
	require.NoError(t, <-applied)
	assert.ErrorIs(t, <-deleted, domain.ErrInUse)

	got, err := f.items.GetByID(ctx, testOwner, item.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), got.OnHand)
	assert.Equal(t, 1, f.store.Movements().Len())
}

// Si el ajuste inicial falla, el alta se revierte y el SKU queda libre.
func TestItemCreate_FalloDelAjusteInicialNoDejaElProducto(t *testing.T) {
	f := newFixture()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.items.Create(ctx, testOwner, testActor, dto.CreateItemRequest{SKU: "X", Name: "X", InitialQuantity: 4})
	require.ErrorIs(t, err, context.Canceled)

	left, err := f.store.Items().GetBySKU(context.Background(), testOwner, "X")
	require.NoError(t, err)
	assert.Nil(t, left)
	assert.Zero(t, f.store.Movements().Len())

	_, err = f.items.Create(context.Background(), testOwner, testActor, dto.CreateItemRequest{SKU: "X", Name: "X", InitialQuantity: 4})
	require.NoError(t, err)
}

func TestItemSetSuppliers(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	item, err := f.items.Create(ctx, testOwner, testActor, dto.CreateItemRequest{SKU: "A", Name: "A"})
	require.NoError(t, err)
	sup, err := f.suppliers.Create(ctx, testOwner, dto.SupplierRequest{Name: "Acme"})
	require.NoError(t, err)

	got, err := f.items.SetSuppliers(ctx, testOwner, item.ID, []string{sup.ID, sup.ID})
	require.NoError(t, err)
	assert.Equal(t, []string{sup.ID}, got.SupplierIDs)

	_, err = f.items.SetSuppliers(ctx, testOwner, item.ID, []string{"nope"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ── Categorías ────────────────────────────────────────────────────────────────

func TestCategoryDelete_DesvinculaProductos(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	cat, err := f.categories.Create(ctx, testOwner, dto.CategoryRequest{Name: "Bebidas"})
	require.NoError(t, err)
	_, err = f.categories.Create(ctx, testOwner, dto.CategoryRequest{Name: "bebidas"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	item, err := f.items.Create(ctx, testOwner, testActor, dto.CreateItemRequest{SKU: "A", Name: "A", CategoryID: &cat.ID})
	require.NoError(t, err)
	assert.Equal(t, "Bebidas", item.CategoryName)

	got, err := f.categories.GetByID(ctx, testOwner, cat.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.ItemCount)

	require.NoError(t, f.categories.Delete(ctx, testOwner, cat.ID))
	item, err = f.items.GetByID(ctx, testOwner, item.ID)
	require.NoError(t, err)
	assert.Nil(t, item.CategoryID)
}

// ── Proveedores ───────────────────────────────────────────────────────────────

func TestSupplierDelete_RechazadoConOrdenAbierta(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	sup, err := f.suppliers.Create(ctx, testOwner, dto.SupplierRequest{Name: "Acme", Email: " ventas@acme.test "})
	require.NoError(t, err)
	assert.Equal(t, "ventas@acme.test", sup.Email)

	item, err := f.items.Create(ctx, testOwner, testActor, dto.CreateItemRequest{SKU: "A", Name: "A", SupplierIDs: []string{sup.ID}})
	require.NoError(t, err)
	order, err := f.orders.Create(ctx, testOwner, testActor, dto.CreatePurchaseOrderRequest{SupplierID: sup.ID})
	require.NoError(t, err)

	assert.ErrorIs(t, f.suppliers.Delete(ctx, testOwner, sup.ID), domain.ErrInUse)

	_, err = f.orders.Cancel(ctx, testOwner, order.ID)
	require.NoError(t, err)
	require.NoError(t, f.suppliers.Delete(ctx, testOwner, sup.ID))

	got, err := f.items.GetByID(ctx, testOwner, item.ID)
	require.NoError(t, err)
	assert.Empty(t, got.SupplierIDs, "el vínculo producto-proveedor se elimina")
}

// Una orden que se está creando bloquea el proveedor: el borrado espera y termina en ErrInUse.
func TestSupplierDelete_EsperaAlAltaDeOrden(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	sup, err := f.suppliers.Create(ctx, testOwner, dto.SupplierRequest{Name: "Acme"})
	require.NoError(t, err)

	locked := make(chan struct{})
	proceed := make(chan struct{})
	created := make(chan error, 1)
	go func() {
		created <- f.store.TxRunner().Run(ctx, func(ctx context.Context, tx inventory.TxRepos) error {
			if _, err := tx.Suppliers.GetForUpdate(ctx, testOwner, sup.ID); err != nil {
				return err
			}
			close(locked)
			<-proceed
			return tx.PurchaseOrders.Create(ctx, &entity.PurchaseOrder{
				ID: "po-1", OwnerID: testOwner, SupplierID: sup.ID, Status: entity.POStatusDraft,
			})
		})
	}()
	<-locked

	deleted := make(chan error, 1)
	go func() { deleted <- f.suppliers.Delete(ctx, testOwner, sup.ID) }()

	select {
	case err := <-deleted:
		t.Fatalf("el borrado no esperó al alta de la orden: %v", err)
	case <-time.After(50 * time.Millisecond):
	}
	close(proceed)
	require.NoError(t, <-created)
	assert.ErrorIs(t, <-deleted, domain.ErrInUse)

	order, err := f.orders.Get(ctx, testOwner, "po-1")
	require.NoError(t, err)
	assert.Equal(t, sup.ID, order.SupplierID)
}

// Si el borrado del proveedor falla dentro de la tx, los vínculos con productos se conservan.
func TestSupplierDelete_RechazoNoQuitaVinculos(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	sup, err := f.suppliers.Create(ctx, testOwner, dto.SupplierRequest{Name: "Acme"})
	require.NoError(t, err)
	item, err := f.items.Create(ctx, testOwner, testActor, dto.CreateItemRequest{SKU: "A", Name: "A", SupplierIDs: []string{sup.ID}})
	require.NoError(t, err)
	_, err = f.orders.Create(ctx, testOwner, testActor, dto.CreatePurchaseOrderRequest{SupplierID: sup.ID})
	require.NoError(t, err)

	assert.ErrorIs(t, f.suppliers.Delete(ctx, testOwner, sup.ID), domain.ErrInUse)

	got, err := f.items.GetByID(ctx, testOwner, item.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{sup.ID}, got.SupplierIDs)
}

func TestSupplierUpdate_NombreDuplicado(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	_, err := f.suppliers.Create(ctx, testOwner, dto.SupplierRequest{Name: "Acme"})
	require.NoError(t, err)
	b, err := f.suppliers.Create(ctx, testOwner, dto.SupplierRequest{Name: "Beta"})
	require.NoError(t, err)

	_, err = f.suppliers.Update(ctx, testOwner, b.ID, dto.SupplierRequest{Name: "ACME"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	up, err := f.suppliers.Update(ctx, testOwner, b.ID, dto.SupplierRequest{Name: "Beta SAS", Phone: "123"})
	require.NoError(t, err)
	assert.Equal(t, "Beta SAS", up.Name)

	list, err := f.suppliers.List(ctx, testOwner, "beta", 0, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
}
