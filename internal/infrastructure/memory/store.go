// Package memory implementa los puertos de persistencia en memoria. Se usa en tests y con DB_DRIVER=memory.
// Las transacciones bloquean por clave (producto u orden) y acumulan sus escrituras hasta el Commit.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/stocker-api/internal/domain/entity"
)

// Store datos compartidos por todos los repositorios en memoria.
type Store struct {
	mu            sync.RWMutex
	items         map[string]*entity.Item
	itemSuppliers map[string][]string
	movements     []*entity.StockMovement
	categories    map[string]*entity.Category
	suppliers     map[string]*entity.Supplier
	orders        map[string]*entity.PurchaseOrder // cabeceras (sin líneas)
	lines         map[string]*entity.PurchaseOrderLine
	lineOrder     []string // orden de inserción de las líneas

	locks *keyLocks
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{
		items:         make(map[string]*entity.Item),
		itemSuppliers: make(map[string][]string),
		categories:    make(map[string]*entity.Category),
		suppliers:     make(map[string]*entity.Supplier),
		orders:        make(map[string]*entity.PurchaseOrder),
		lines:         make(map[string]*entity.PurchaseOrderLine),
		locks:         newKeyLocks(),
	}
}

// Items repositorio de productos fuera de transacción.
func (s *Store) Items() *ItemRepository { return &ItemRepository{s: s} }

// Movements repositorio de movimientos fuera de transacción.
func (s *Store) Movements() *MovementRepository { return &MovementRepository{s: s} }

// Categories repositorio de categorías.
func (s *Store) Categories() *CategoryRepository { return &CategoryRepository{s: s} }

// Suppliers repositorio de proveedores.
func (s *Store) Suppliers() *SupplierRepository { return &SupplierRepository{s: s} }

// PurchaseOrders repositorio de órdenes de compra fuera de transacción.
func (s *Store) PurchaseOrders() *PurchaseOrderRepository { return &PurchaseOrderRepository{s: s} }

// Reports consultas de reportes.
func (s *Store) Reports() *ReportRepository { return &ReportRepository{s: s} }

// TxRunner ejecutor de transacciones sobre este almacén.
func (s *Store) TxRunner() *TxRunner { return &TxRunner{s: s} }

// ── bloqueos por clave ────────────────────────────────────────────────────────

// keyLocks un mutex por clave; adquirir respeta la cancelación del contexto.
type keyLocks struct {
	mu sync.Mutex
	m  map[string]chan struct{}
}

func newKeyLocks() *keyLocks {
	return &keyLocks{m: make(map[string]chan struct{})}
}

func (k *keyLocks) get(key string) chan struct{} {
	k.mu.Lock()
	defer k.mu.Unlock()
	ch, ok := k.m[key]
	if !ok {
		ch = make(chan struct{}, 1)
		k.m[key] = ch
	}
	return ch
}

func (k *keyLocks) lock(ctx context.Context, key string) error {
	select {
	case k.get(key) <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (k *keyLocks) unlock(key string) {
	<-k.get(key)
}

// ── copias ────────────────────────────────────────────────────────────────────

func cloneItem(it *entity.Item) *entity.Item {
	c := *it
	if it.CategoryID != nil {
		id := *it.CategoryID
		c.CategoryID = &id
	}
	if it.ExpiryDate != nil {
		d := *it.ExpiryDate
		c.ExpiryDate = &d
	}
	c.SupplierIDs = append([]string(nil), it.SupplierIDs...)
	return &c
}

func cloneMovement(m *entity.StockMovement) *entity.StockMovement {
	c := *m
	if m.CreatedBy != nil {
		by := *m.CreatedBy
		c.CreatedBy = &by
	}
	return &c
}

func cloneOrder(o *entity.PurchaseOrder) *entity.PurchaseOrder {
	c := *o
	if o.ExpectedDate != nil {
		d := *o.ExpectedDate
		c.ExpectedDate = &d
	}
	if o.InvoiceDate != nil {
		d := *o.InvoiceDate
		c.InvoiceDate = &d
	}
	if o.CreatedBy != nil {
		by := *o.CreatedBy
		c.CreatedBy = &by
	}
	c.Lines = append([]entity.PurchaseOrderLine(nil), o.Lines...)
	return &c
}
