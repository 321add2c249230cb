package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/jhoicas/stocker-api/internal/domain"
	"github.com/jhoicas/stocker-api/internal/domain/entity"
	"github.com/jhoicas/stocker-api/internal/domain/repository"
)

var _ repository.ItemRepository = (*ItemRepository)(nil)

// ItemRepository implementa repository.ItemRepository en memoria.
type ItemRepository struct {
	s  *Store
	tx *tx
}

// NewItemRepository construye el repositorio sobre s.
func NewItemRepository(s *Store) *ItemRepository {
	return &ItemRepository{s: s}
}

// Create inserta el producto. SKU duplicado para el mismo dueño → ErrDuplicate.
func (r *ItemRepository) Create(ctx context.Context, item *entity.Item) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, it := range r.s.items {
		if it.OwnerID == item.OwnerID && strings.EqualFold(it.SKU, item.SKU) {
			return domain.ErrDuplicate
		}
	}
	c := cloneItem(item)
	c.CategoryName = ""
	c.SupplierIDs = nil
	r.s.items[item.ID] = c
	return nil
}

func (r *ItemRepository) GetByID(ctx context.Context, ownerID, id string) (*entity.Item, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	it, ok := r.s.items[id]
	if !ok || it.OwnerID != ownerID {
		return nil, nil
	}
	return r.s.hydrateItem(it), nil
}

func (r *ItemRepository) GetBySKU(ctx context.Context, ownerID, sku string) (*entity.Item, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, it := range r.s.items {
		if it.OwnerID == ownerID && strings.EqualFold(it.SKU, sku) {
			return r.s.hydrateItem(it), nil
		}
	}
	return nil, nil
}

// GetForUpdate bloquea el producto hasta el fin de la transacción y devuelve la vista de la tx.
func (r *ItemRepository) GetForUpdate(ctx context.Context, ownerID, id string) (*entity.Item, error) {
	if r.tx == nil {
		return r.GetByID(ctx, ownerID, id)
	}
	if err := r.tx.lock(ctx, itemKey(id)); err != nil {
		return nil, err
	}
	if view, ok := r.tx.items[id]; ok {
		if view.OwnerID != ownerID {
			return nil, nil
		}
		return cloneItem(view), nil
	}
	item, err := r.GetByID(ctx, ownerID, id)
	if err != nil || item == nil {
		return item, err
	}
	r.tx.items[id] = cloneItem(item)
	return item, nil
}

// Update modifica los datos maestros; OnHand se conserva.
func (r *ItemRepository) Update(ctx context.Context, item *entity.Item) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.items[item.ID]
	if !ok || cur.OwnerID != item.OwnerID {
		return domain.ErrNotFound
	}
	c := cloneItem(item)
	c.OnHand = cur.OnHand
	c.CategoryName = ""
	c.SupplierIDs = nil
	r.s.items[item.ID] = c
	return nil
}

func (r *ItemRepository) UpdateOnHand(ctx context.Context, id string, onHand int64, at time.Time) error {
	apply := func(s *Store) {
		if it, ok := s.items[id]; ok {
			it.OnHand = onHand
			it.UpdatedAt = at
		}
	}
	if r.tx != nil {
		if view, ok := r.tx.items[id]; ok {
			view.OnHand = onHand
			view.UpdatedAt = at
		}
		r.tx.later(apply)
		return nil
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.items[id]; !ok {
		return domain.ErrNotFound
	}
	apply(r.s)
	return nil
}

func (r *ItemRepository) List(ctx context.Context, f repository.ItemFilter) ([]*entity.Item, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	q := strings.ToLower(f.Query)
	var out []*entity.Item
	for _, raw := range r.s.items {
		if raw.OwnerID != f.OwnerID {
			continue
		}
		it := r.s.hydrateItem(raw)
		if f.LowOnly && !it.IsLowStock() {
			continue
		}
		if f.CategoryID != "" && (it.CategoryID == nil || *it.CategoryID != f.CategoryID) {
			continue
		}
		if f.SupplierID != "" && !contains(it.SupplierIDs, f.SupplierID) {
			continue
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(it.Name), q) &&
			!strings.Contains(strings.ToLower(it.SKU), q) &&
			!strings.Contains(strings.ToLower(it.CategoryName), q) {
			continue
		}
		out = append(out, it)
	}
	sortItemsByName(out)
	total := len(out)
	return page(out, f.Limit, f.Offset), total, nil
}

func (r *ItemRepository) Delete(ctx context.Context, ownerID, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	it, ok := r.s.items[id]
	if !ok || it.OwnerID != ownerID {
		return domain.ErrNotFound
	}
	remove := func(s *Store) {
		delete(s.items, id)
		delete(s.itemSuppliers, id)
	}
	if r.tx != nil {
		delete(r.tx.items, id)
		r.tx.later(remove)
		return nil
	}
	remove(r.s)
	return nil
}

func (r *ItemRepository) SetSuppliers(ctx context.Context, itemID string, supplierIDs []string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.items[itemID]; !ok {
		return domain.ErrNotFound
	}
	if len(supplierIDs) == 0 {
		delete(r.s.itemSuppliers, itemID)
		return nil
	}
	r.s.itemSuppliers[itemID] = append([]string(nil), supplierIDs...)
	return nil
}

// ListLowStock productos con OnHand <= ReorderLevel ordenados por nombre; ownerID vacío = todos.
func (r *ItemRepository) ListLowStock(ctx context.Context, ownerID string, limit int) ([]*entity.Item, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*entity.Item
	for _, it := range r.s.items {
		if (ownerID == "" || it.OwnerID == ownerID) && it.IsLowStock() {
			out = append(out, r.s.hydrateItem(it))
		}
	}
	sortItemsByName(out)
	return page(out, limit, 0), nil
}

// ListExpiring productos con vencimiento anterior a until, por fecha y nombre; ownerID vacío = todos.
func (r *ItemRepository) ListExpiring(ctx context.Context, ownerID string, until time.Time) ([]*entity.Item, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*entity.Item
	for _, it := range r.s.items {
		if (ownerID == "" || it.OwnerID == ownerID) && it.ExpiryDate != nil && it.ExpiryDate.Before(until) {
			out = append(out, r.s.hydrateItem(it))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].ExpiryDate.Equal(*out[j].ExpiryDate) {
			return out[i].ExpiryDate.Before(*out[j].ExpiryDate)
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (r *ItemRepository) DetachCategory(ctx context.Context, ownerID, categoryID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, it := range r.s.items {
		if it.OwnerID == ownerID && it.CategoryID != nil && *it.CategoryID == categoryID {
			it.CategoryID = nil
		}
	}
	return nil
}

func (r *ItemRepository) DetachSupplier(ctx context.Context, supplierID string) error {
	if r.tx != nil {
		r.tx.later(func(s *Store) { detachSupplier(s, supplierID) })
		return nil
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	detachSupplier(r.s, supplierID)
	return nil
}

// detachSupplier quita el proveedor de todos los productos. Requiere s.mu tomado.
func detachSupplier(s *Store, supplierID string) {
	for itemID, ids := range s.itemSuppliers {
		kept := ids[:0]
		for _, id := range ids {
			if id != supplierID {
				kept = append(kept, id)
			}
		}
		if len(kept) == 0 {
			delete(s.itemSuppliers, itemID)
		} else {
			s.itemSuppliers[itemID] = kept
		}
	}
}

// hydrateItem copia el producto y completa categoría y proveedores. Requiere s.mu tomado.
func (s *Store) hydrateItem(it *entity.Item) *entity.Item {
	c := cloneItem(it)
	c.CategoryName = ""
	if it.CategoryID != nil {
		if cat, ok := s.categories[*it.CategoryID]; ok {
			c.CategoryName = cat.Name
		}
	}
	c.SupplierIDs = append([]string(nil), s.itemSuppliers[it.ID]...)
	return c
}

func sortItemsByName(items []*entity.Item) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Name != items[j].Name {
			return items[i].Name < items[j].Name
		}
		return items[i].SKU < items[j].SKU
	})
}

func page[T any](list []T, limit, offset int) []T {
	if offset > len(list) {
		offset = len(list)
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
