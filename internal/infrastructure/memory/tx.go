package memory

import (
	"context"

	"github.com/jhoicas/stocker-api/internal/application/inventory"
	"github.com/jhoicas/stocker-api/internal/domain/entity"
)

var _ inventory.TxRunner = (*TxRunner)(nil)

// TxRunner transacciones en memoria: GetForUpdate toma el bloqueo de la clave hasta el fin de Run;
// las escrituras se aplican todas juntas al confirmar y se descartan si fn devuelve error o entra en pánico.
type TxRunner struct {
	s *Store
}

// NewTxRunner construye el runner sobre s.
func NewTxRunner(s *Store) *TxRunner {
	return &TxRunner{s: s}
}

// Run ejecuta fn con repositorios atados a una transacción nueva.
func (r *TxRunner) Run(ctx context.Context, fn func(ctx context.Context, tx inventory.TxRepos) error) error {
	t := &tx{
		s:      r.s,
		held:   make(map[string]bool),
		items:  make(map[string]*entity.Item),
		orders: make(map[string]*entity.PurchaseOrder),
	}
	// los bloqueos se liberan en cualquier salida, incluso ante un pánico
	defer t.release()

	repos := inventory.TxRepos{
		Items:          &ItemRepository{s: r.s, tx: t},
		Movements:      &MovementRepository{s: r.s, tx: t},
		PurchaseOrders: &PurchaseOrderRepository{s: r.s, tx: t},
		Suppliers:      &SupplierRepository{s: r.s, tx: t},
	}
	if err := fn(ctx, repos); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	t.commit()
	return nil
}

// tx estado de una transacción en curso.
type tx struct {
	s       *Store
	held    map[string]bool
	items   map[string]*entity.Item          // vista de la tx de los productos bloqueados
	orders  map[string]*entity.PurchaseOrder // vista de la tx de las órdenes bloqueadas
	pending []func(s *Store)                 // escrituras diferidas, en orden
}

func (t *tx) lock(ctx context.Context, key string) error {
	if t.held[key] {
		return nil
	}
	if err := t.s.locks.lock(ctx, key); err != nil {
		return err
	}
	t.held[key] = true
	return nil
}

func (t *tx) release() {
	for key := range t.held {
		t.s.locks.unlock(key)
	}
	t.held = nil
}

func (t *tx) later(op func(s *Store)) {
	t.pending = append(t.pending, op)
}

func (t *tx) commit() {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	for _, op := range t.pending {
		op(t.s)
	}
	t.pending = nil
}

func itemKey(id string) string  { return "item:" + id }
func orderKey(id string) string { return "po:" + id }

func supplierKey(id string) string { return "supplier:" + id }
