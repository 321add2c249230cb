package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stocker-api/internal/application/inventory"
	"github.com/jhoicas/stocker-api/internal/domain/entity"
	"github.com/jhoicas/stocker-api/internal/infrastructure/memory"
)

func seed(t *testing.T, s *memory.Store, onHand int64) *entity.Item {
	t.Helper()
	now := time.Now()
	it := &entity.Item{ID: "item-1", OwnerID: "owner-1", SKU: "A", Name: "A", Unit: entity.UnitPieces, OnHand: onHand, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, s.Items().Create(context.Background(), it))
	return it
}

// ── transacciones ─────────────────────────────────────────────────────────────

func TestTx_ErrorDescartaEscrituras(t *testing.T) {
	s := memory.NewStore()
	seed(t, s, 10)
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.TxRunner().Run(ctx, func(ctx context.Context, tx inventory.TxRepos) error {
		it, err := tx.Items.GetForUpdate(ctx, "owner-1", "item-1")
		require.NoError(t, err)
		require.NoError(t, tx.Items.UpdateOnHand(ctx, it.ID, 99, time.Now()))
		require.NoError(t, tx.Movements.Create(ctx, &entity.StockMovement{ID: "m1", OwnerID: "owner-1", ItemID: it.ID, Type: entity.MovementTypeIN, Quantity: 89}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := s.Items().GetByID(ctx, "owner-1", "item-1")
	require.NoError(t, err)
	assert.Equal(t, int64(10), got.OnHand)
	assert.Equal(t, 0, s.Movements().Len())
}

func TestTx_ErrorDescartaBorrados(t *testing.T) {
	s := memory.NewStore()
	seed(t, s, 0)
	ctx := context.Background()
	sup := &entity.Supplier{ID: "sup-1", OwnerID: "owner-1", Name: "Acme"}
	require.NoError(t, s.Suppliers().Create(ctx, sup))
	require.NoError(t, s.Items().SetSuppliers(ctx, "item-1", []string{sup.ID}))
	boom := errors.New("boom")

	err := s.TxRunner().Run(ctx, func(ctx context.Context, tx inventory.TxRepos) error {
		_, err := tx.Suppliers.GetForUpdate(ctx, "owner-1", sup.ID)
		require.NoError(t, err)
		require.NoError(t, tx.Items.DetachSupplier(ctx, sup.ID))
		require.NoError(t, tx.Suppliers.Delete(ctx, "owner-1", sup.ID))
		require.NoError(t, tx.Items.Delete(ctx, "owner-1", "item-1"))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := s.Items().GetByID(ctx, "owner-1", "item-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, []string{sup.ID}, got.SupplierIDs)
	gotSup, err := s.Suppliers().GetByID(ctx, "owner-1", sup.ID)
	require.NoError(t, err)
	assert.NotNil(t, gotSup)

	// confirmada, la misma secuencia sí borra
	err = s.TxRunner().Run(ctx, func(ctx context.Context, tx inventory.TxRepos) error {
		if err := tx.Items.DetachSupplier(ctx, sup.ID); err != nil {
			return err
		}
		return tx.Suppliers.Delete(ctx, "owner-1", sup.ID)
	})
	require.NoError(t, err)
	gotSup, err = s.Suppliers().GetByID(ctx, "owner-1", sup.ID)
	require.NoError(t, err)
	assert.Nil(t, gotSup)
}

func TestTx_LeeSusPropiasEscrituras(t *testing.T) {
	s := memory.NewStore()
	seed(t, s, 10)
	ctx := context.Background()

	err := s.TxRunner().Run(ctx, func(ctx context.Context, tx inventory.TxRepos) error {
		_, err := tx.Items.GetForUpdate(ctx, "owner-1", "item-1")
		require.NoError(t, err)
		require.NoError(t, tx.Items.UpdateOnHand(ctx, "item-1", 4, time.Now()))

		again, err := tx.Items.GetForUpdate(ctx, "owner-1", "item-1")
		require.NoError(t, err)
		assert.Equal(t, int64(4), again.OnHand, "la tx ve su propio cambio")

		outside, err := s.Items().GetByID(ctx, "owner-1", "item-1")
		require.NoError(t, err)
		assert.Equal(t, int64(10), outside.OnHand, "fuera de la tx aún no se ve")
		return nil
	})
	require.NoError(t, err)

	got, err := s.Items().GetByID(ctx, "owner-1", "item-1")
	require.NoError(t, err)
	assert.Equal(t, int64(4), got.OnHand)
}

func TestTx_BloqueoRespetaCancelacion(t *testing.T) {
	s := memory.NewStore()
	seed(t, s, 1)
	holding := make(chan struct{})
	done := make(chan struct{})

	go func() {
		_ = s.TxRunner().Run(context.Background(), func(ctx context.Context, tx inventory.TxRepos) error {
			_, err := tx.Items.GetForUpdate(ctx, "owner-1", "item-1")
			close(holding)
			<-done
			return err
		})
	}()
	<-holding

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := s.TxRunner().Run(ctx, func(ctx context.Context, tx inventory.TxRepos) error {
		_, err := tx.Items.GetForUpdate(ctx, "owner-1", "item-1")
		return err
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	close(done)
}

func TestTx_OtroDuenoNoVeElProducto(t *testing.T) {
	s := memory.NewStore()
	seed(t, s, 1)
	err := s.TxRunner().Run(context.Background(), func(ctx context.Context, tx inventory.TxRepos) error {
		it, err := tx.Items.GetForUpdate(ctx, "owner-2", "item-1")
		assert.Nil(t, it)
		return err
	})
	require.NoError(t, err)
}

// ── cooldown ──────────────────────────────────────────────────────────────────

func TestCooldownStore(t *testing.T) {
	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	c := memory.NewCooldownStore(func() time.Time { return now })
	ctx := context.Background()

	ok, err := c.Acquire(ctx, "k", time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _ = c.Acquire(ctx, "k", time.Hour)
	assert.False(t, ok, "marcador vigente")

	ok, _ = c.Acquire(ctx, "otra", time.Hour)
	assert.True(t, ok, "las claves son independientes")

	now = now.Add(time.Hour)
	ok, _ = c.Acquire(ctx, "k", time.Hour)
	assert.True(t, ok, "vencido al cumplirse el ttl")

	require.NoError(t, c.Release(ctx, "k"))
	ok, _ = c.Acquire(ctx, "k", time.Hour)
	assert.True(t, ok, "liberado")
}
