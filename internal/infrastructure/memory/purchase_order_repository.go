package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/stocker-api/internal/domain"
	"github.com/jhoicas/stocker-api/internal/domain/entity"
	"github.com/jhoicas/stocker-api/internal/domain/repository"
)

var _ repository.PurchaseOrderRepository = (*PurchaseOrderRepository)(nil)

// PurchaseOrderRepository órdenes de compra en memoria.
type PurchaseOrderRepository struct {
	s  *Store
	tx *tx
}

// NewPurchaseOrderRepository construye el repositorio sobre s.
func NewPurchaseOrderRepository(s *Store) *PurchaseOrderRepository {
	return &PurchaseOrderRepository{s: s}
}

func (r *PurchaseOrderRepository) Create(ctx context.Context, o *entity.PurchaseOrder) error {
	header := cloneOrder(o)
	lines := header.Lines
	header.Lines = nil
	insert := func(s *Store) {
		s.orders[header.ID] = header
		for i := range lines {
			l := lines[i]
			s.lines[l.ID] = &l
			s.lineOrder = append(s.lineOrder, l.ID)
		}
	}
	if r.tx != nil {
		if err := r.tx.lock(ctx, orderKey(o.ID)); err != nil {
			return err
		}
		r.tx.orders[o.ID] = cloneOrder(o)
		r.tx.later(insert)
		return nil
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	insert(r.s)
	return nil
}

func (r *PurchaseOrderRepository) GetByID(ctx context.Context, ownerID, id string) (*entity.PurchaseOrder, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	o, ok := r.s.orders[id]
	if !ok || o.OwnerID != ownerID {
		return nil, nil
	}
	return r.s.hydrateOrder(o), nil
}

// GetForUpdate bloquea la orden hasta el fin de la transacción.
func (r *PurchaseOrderRepository) GetForUpdate(ctx context.Context, ownerID, id string) (*entity.PurchaseOrder, error) {
	if r.tx == nil {
		return r.GetByID(ctx, ownerID, id)
	}
	if err := r.tx.lock(ctx, orderKey(id)); err != nil {
		return nil, err
	}
	if view, ok := r.tx.orders[id]; ok {
		if view.OwnerID != ownerID {
			return nil, nil
		}
		return cloneOrder(view), nil
	}
	o, err := r.GetByID(ctx, ownerID, id)
	if err != nil || o == nil {
		return o, err
	}
	r.tx.orders[id] = cloneOrder(o)
	return o, nil
}

// UpdateHeader guarda estado, fechas, factura y notas.
func (r *PurchaseOrderRepository) UpdateHeader(ctx context.Context, o *entity.PurchaseOrder) error {
	h := cloneOrder(o)
	apply := func(s *Store) {
		cur, ok := s.orders[h.ID]
		if !ok {
			return
		}
		cur.Status = h.Status
		cur.ExpectedDate = h.ExpectedDate
		cur.InvoiceNumber = h.InvoiceNumber
		cur.InvoiceDate = h.InvoiceDate
		cur.Notes = h.Notes
		cur.UpdatedAt = h.UpdatedAt
	}
	if r.tx != nil {
		if view, ok := r.tx.orders[o.ID]; ok {
			lines := view.Lines
			*view = *cloneOrder(o)
			view.Lines = lines
		}
		r.tx.later(apply)
		return nil
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.orders[o.ID]; !ok {
		return domain.ErrNotFound
	}
	apply(r.s)
	return nil
}

// UpsertLine inserta la línea o actualiza la existente para (orden, producto).
func (r *PurchaseOrderRepository) UpsertLine(ctx context.Context, line *entity.PurchaseOrderLine) error {
	l := *line
	apply := func(s *Store) {
		for _, id := range s.lineOrder {
			cur := s.lines[id]
			if cur.OrderID == l.OrderID && cur.ItemID == l.ItemID {
				cur.QuantityOrdered = l.QuantityOrdered
				cur.UnitCost = l.UnitCost
				cur.UpdatedAt = l.UpdatedAt
				return
			}
		}
		nl := l
		s.lines[nl.ID] = &nl
		s.lineOrder = append(s.lineOrder, nl.ID)
	}
	if r.tx != nil {
		if view, ok := r.tx.orders[l.OrderID]; ok {
			if cur := view.LineForItem(l.ItemID); cur != nil {
				cur.QuantityOrdered = l.QuantityOrdered
				cur.UnitCost = l.UnitCost
				cur.UpdatedAt = l.UpdatedAt
			} else {
				view.Lines = append(view.Lines, l)
			}
		}
		r.tx.later(apply)
		return nil
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	apply(r.s)
	return nil
}

func (r *PurchaseOrderRepository) UpdateLineReceived(ctx context.Context, lineID string, received int64) error {
	apply := func(s *Store) {
		if l, ok := s.lines[lineID]; ok {
			l.QuantityReceived = received
		}
	}
	if r.tx != nil {
		for _, view := range r.tx.orders {
			if l := view.Line(lineID); l != nil {
				l.QuantityReceived = received
			}
		}
		r.tx.later(apply)
		return nil
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.lines[lineID]; !ok {
		return domain.ErrNotFound
	}
	apply(r.s)
	return nil
}

// List órdenes del dueño, más recientes primero.
func (r *PurchaseOrderRepository) List(ctx context.Context, f repository.PurchaseOrderFilter) ([]*entity.PurchaseOrder, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*entity.PurchaseOrder
	for _, o := range r.s.orders {
		if o.OwnerID != f.OwnerID {
			continue
		}
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		if f.SupplierID != "" && o.SupplierID != f.SupplierID {
			continue
		}
		out = append(out, r.s.hydrateOrder(o))
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].OrderDate.Equal(out[j].OrderDate) {
			return out[i].OrderDate.After(out[j].OrderDate)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return page(out, f.Limit, f.Offset), nil
}

// CountOpenBySupplier órdenes no cerradas del proveedor.
func (r *PurchaseOrderRepository) CountOpenBySupplier(ctx context.Context, supplierID string) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	n := 0
	for _, o := range r.s.orders {
		if o.SupplierID == supplierID && !o.IsClosed() {
			n++
		}
	}
	return n, nil
}

func (r *PurchaseOrderRepository) CountLinesByItem(ctx context.Context, itemID string) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	n := 0
	for _, l := range r.s.lines {
		if l.ItemID == itemID {
			n++
		}
	}
	return n, nil
}

// hydrateOrder arma la orden con sus líneas y nombres. Requiere s.mu tomado.
func (s *Store) hydrateOrder(o *entity.PurchaseOrder) *entity.PurchaseOrder {
	c := cloneOrder(o)
	c.Lines = nil
	if sp, ok := s.suppliers[o.SupplierID]; ok {
		c.SupplierName = sp.Name
	}
	for _, id := range s.lineOrder {
		l, ok := s.lines[id]
		if !ok || l.OrderID != o.ID {
			continue
		}
		line := *l
		if it, ok := s.items[l.ItemID]; ok {
			line.ItemSKU = it.SKU
			line.ItemName = it.Name
		}
		c.Lines = append(c.Lines, line)
	}
	return c
}
