package alerts_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stocker-api/internal/application/alerts"
	"github.com/jhoicas/stocker-api/internal/application/inventory"
	"github.com/jhoicas/stocker-api/internal/domain/entity"
	"github.com/jhoicas/stocker-api/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testOwner   = "owner-1"
	testManager = "manager@example.com"
)

type mockMailer struct {
	mock.Mock
}

func (m *mockMailer) Send(ctx context.Context, to []string, subject, body string) error {
	args := m.Called(ctx, to, subject, body)
	return args.Error(0)
}

// syncPublisher entrega el evento en el mismo goroutine (sin bus) para que el test sea determinista.
type syncPublisher struct {
	notifier *alerts.LowStockNotifier
}

func (p syncPublisher) Publish(ctx context.Context, evt inventory.MovementApplied) error {
	p.notifier.HandleMovementApplied(ctx, evt)
	return nil
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func seedItem(t *testing.T, store *memory.Store, sku string, onHand, reorder int64) *entity.Item {
	t.Helper()
	item := &entity.Item{
		ID:           "item-" + sku,
		OwnerID:      testOwner,
		SKU:          sku,
		Name:         "Producto " + sku,
		Unit:         entity.UnitPieces,
		CostPrice:    decimal.NewFromInt(1),
		ReorderLevel: reorder,
		OnHand:       onHand,
	}
	require.NoError(t, store.Items().Create(context.Background(), item))
	return item
}

type fixture struct {
	store    *memory.Store
	mailer   *mockMailer
	clock    *fakeClock
	cooldown *memory.CooldownStore
	ledger   *inventory.LedgerUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:  memory.NewStore(),
		mailer: &mockMailer{},
		clock:  &fakeClock{t: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)},
	}
	f.cooldown = memory.NewCooldownStore(f.clock.now)
	notifier := alerts.NewLowStockNotifier(f.cooldown, f.mailer, []string{testManager}, 12*time.Hour, nil)
	f.ledger = inventory.NewLedgerUseCase(f.store.TxRunner(), f.store.Items(), f.store.Movements(), syncPublisher{notifier}, nil)
	return f
}

func (f *fixture) out(t *testing.T, itemID string, qty int64) *entity.StockMovement {
	t.Helper()
	mov, err := f.ledger.Apply(context.Background(), inventory.ApplyInput{
		OwnerID: testOwner, ItemID: itemID, Type: entity.MovementTypeOUT, Quantity: qty,
	})
	require.NoError(t, err)
	return mov
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests LowStockNotifier
// ──────────────────────────────────────────────────────────────────────────────

// Caso 1: stock 10, reorden 5. OUT 6 → 4 dispara una alerta; OUT 1 dentro de la ventana → 3 no dispara.
func TestNotifier_UnaAlertaPorVentanaDeEnfriamiento(t *testing.T) {
	f := newFixture(t)
	item := seedItem(t, f.store, "A1", 10, 5)

	f.mailer.On("Send", mock.Anything, []string{testManager}, "Stocker • Low stock alert",
		mock.MatchedBy(func(body string) bool { return strings.Contains(body, "A1") })).
		Return(nil).Once()

	assert.Equal(t, int64(4), f.out(t, item.ID, 6).ResultingQuantity)
	f.clock.advance(time.Hour)
	assert.Equal(t, int64(3), f.out(t, item.ID, 1).ResultingQuantity)

	f.mailer.AssertExpectations(t)
	f.mailer.AssertNumberOfCalls(t, "Send", 1)
}

// Caso 2: pasada la ventana de enfriamiento vuelve a alertar.
func TestNotifier_VuelveAAlertarTrasElEnfriamiento(t *testing.T) {
	f := newFixture(t)
	item := seedItem(t, f.store, "A2", 6, 5)
	f.mailer.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	f.out(t, item.ID, 2)
	f.clock.advance(12*time.Hour + time.Minute)
	f.out(t, item.ID, 1)

	f.mailer.AssertNumberOfCalls(t, "Send", 2)
}

// Caso 3: por encima del umbral no se envía nada.
func TestNotifier_SinBajoStockNoEnvia(t *testing.T) {
	f := newFixture(t)
	item := seedItem(t, f.store, "A3", 20, 5)

	f.out(t, item.ID, 3)

	f.mailer.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// Caso 4: un fallo de transporte no afecta al movimiento y libera el marcador para reintentar.
func TestNotifier_FalloDeTransporteNoAfectaAlMovimiento(t *testing.T) {
	f := newFixture(t)
	item := seedItem(t, f.store, "A4", 10, 5)

	f.mailer.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("smtp caído")).Once()
	f.mailer.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil).Once()

	mov := f.out(t, item.ID, 6)
	assert.Equal(t, int64(4), mov.ResultingQuantity)

	it, err := f.store.Items().GetByID(context.Background(), testOwner, item.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(4), it.OnHand, "el movimiento quedó confirmado")

	// sin marcador, el siguiente movimiento reintenta
	f.out(t, item.ID, 1)
	f.mailer.AssertNumberOfCalls(t, "Send", 2)

	// tras un envío exitoso el marcador queda activo
	f.out(t, item.ID, 1)
	f.mailer.AssertNumberOfCalls(t, "Send", 2)
}

// Caso 5: el enfriamiento es por producto.
func TestNotifier_EnfriamientoPorProducto(t *testing.T) {
	f := newFixture(t)
	a := seedItem(t, f.store, "A5", 1, 5)
	b := seedItem(t, f.store, "B5", 1, 5)
	f.mailer.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	f.out(t, a.ID, 1)
	f.out(t, b.ID, 1)
	f.out(t, a.ID, 1)

	f.mailer.AssertNumberOfCalls(t, "Send", 2)
}

// Caso 6: sin destinatarios configurados no se toca el cooldown ni el mailer.
func TestNotifier_SinDestinatarios(t *testing.T) {
	mailer := &mockMailer{}
	cooldown := memory.NewCooldownStore(nil)
	n := alerts.NewLowStockNotifier(cooldown, mailer, nil, 0, nil)

	n.HandleMovementApplied(context.Background(), inventory.MovementApplied{
		Item: entity.Item{ID: "x", OnHand: 0, ReorderLevel: 5},
	})

	mailer.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	ok, err := cooldown.Acquire(context.Background(), alerts.CooldownKey("x"), time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)
}
