package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/jhoicas/stocker-api/internal/domain"
	"github.com/jhoicas/stocker-api/internal/domain/entity"
	"github.com/jhoicas/stocker-api/internal/domain/repository"
)

var (
	_ repository.CategoryRepository = (*CategoryRepository)(nil)
	_ repository.SupplierRepository = (*SupplierRepository)(nil)
)

// CategoryRepository categorías en memoria.
type CategoryRepository struct {
	s *Store
}

func (r *CategoryRepository) Create(ctx context.Context, c *entity.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, x := range r.s.categories {
		if x.OwnerID == c.OwnerID && strings.EqualFold(x.Name, c.Name) {
			return domain.ErrDuplicate
		}
	}
	cp := *c
	r.s.categories[c.ID] = &cp
	return nil
}

func (r *CategoryRepository) GetByID(ctx context.Context, ownerID, id string) (*entity.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.categories[id]
	if !ok || c.OwnerID != ownerID {
		return nil, nil
	}
	return r.s.hydrateCategory(c), nil
}

func (r *CategoryRepository) GetByName(ctx context.Context, ownerID, name string) (*entity.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, c := range r.s.categories {
		if c.OwnerID == ownerID && strings.EqualFold(c.Name, name) {
			return r.s.hydrateCategory(c), nil
		}
	}
	return nil, nil
}

func (r *CategoryRepository) Update(ctx context.Context, c *entity.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.categories[c.ID]
	if !ok || cur.OwnerID != c.OwnerID {
		return domain.ErrNotFound
	}
	cp := *c
	r.s.categories[c.ID] = &cp
	return nil
}

func (r *CategoryRepository) List(ctx context.Context, ownerID, query string, limit, offset int) ([]*entity.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	q := strings.ToLower(query)
	var out []*entity.Category
	for _, c := range r.s.categories {
		if c.OwnerID != ownerID {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(c.Name), q) {
			continue
		}
		out = append(out, r.s.hydrateCategory(c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return page(out, limit, offset), nil
}

func (r *CategoryRepository) Delete(ctx context.Context, ownerID, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.categories[id]
	if !ok || c.OwnerID != ownerID {
		return domain.ErrNotFound
	}
	delete(r.s.categories, id)
	return nil
}

func (s *Store) hydrateCategory(c *entity.Category) *entity.Category {
	cp := *c
	cp.ItemCount = 0
	for _, it := range s.items {
		if it.CategoryID != nil && *it.CategoryID == c.ID {
			cp.ItemCount++
		}
	}
	return &cp
}

// SupplierRepository proveedores en memoria.
type SupplierRepository struct {
	s  *Store
	tx *tx
}

func (r *SupplierRepository) Create(ctx context.Context, sp *entity.Supplier) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, x := range r.s.suppliers {
		if x.OwnerID == sp.OwnerID && strings.EqualFold(x.Name, sp.Name) {
			return domain.ErrDuplicate
		}
	}
	cp := *sp
	r.s.suppliers[sp.ID] = &cp
	return nil
}

func (r *SupplierRepository) GetByID(ctx context.Context, ownerID, id string) (*entity.Supplier, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	sp, ok := r.s.suppliers[id]
	if !ok || sp.OwnerID != ownerID {
		return nil, nil
	}
	return r.s.hydrateSupplier(sp), nil
}

func (r *SupplierRepository) GetByName(ctx context.Context, ownerID, name string) (*entity.Supplier, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, sp := range r.s.suppliers {
		if sp.OwnerID == ownerID && strings.EqualFold(sp.Name, name) {
			return r.s.hydrateSupplier(sp), nil
		}
	}
	return nil, nil
}

// GetForUpdate bloquea el proveedor hasta el fin de la transacción.
func (r *SupplierRepository) GetForUpdate(ctx context.Context, ownerID, id string) (*entity.Supplier, error) {
	if r.tx != nil {
		if err := r.tx.lock(ctx, supplierKey(id)); err != nil {
			return nil, err
		}
	}
	return r.GetByID(ctx, ownerID, id)
}

func (r *SupplierRepository) Update(ctx context.Context, sp *entity.Supplier) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.suppliers[sp.ID]
	if !ok || cur.OwnerID != sp.OwnerID {
		return domain.ErrNotFound
	}
	cp := *sp
	r.s.suppliers[sp.ID] = &cp
	return nil
}

func (r *SupplierRepository) List(ctx context.Context, ownerID, query string, limit, offset int) ([]*entity.Supplier, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	q := strings.ToLower(query)
	var out []*entity.Supplier
	for _, sp := range r.s.suppliers {
		if sp.OwnerID != ownerID {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(sp.Name), q) && !strings.Contains(strings.ToLower(sp.Email), q) {
			continue
		}
		out = append(out, r.s.hydrateSupplier(sp))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return page(out, limit, offset), nil
}

func (r *SupplierRepository) Delete(ctx context.Context, ownerID, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sp, ok := r.s.suppliers[id]
	if !ok || sp.OwnerID != ownerID {
		return domain.ErrNotFound
	}
	if r.tx != nil {
		r.tx.later(func(s *Store) { deleteSupplier(s, id) })
		return nil
	}
	deleteSupplier(r.s, id)
	return nil
}

// deleteSupplier borra el proveedor; las órdenes que lo referencian quedan sin proveedor. Requiere s.mu tomado.
func deleteSupplier(s *Store, id string) {
	delete(s.suppliers, id)
	for _, o := range s.orders {
		if o.SupplierID == id {
			o.SupplierID = ""
		}
	}
}

func (s *Store) hydrateSupplier(sp *entity.Supplier) *entity.Supplier {
	cp := *sp
	cp.ItemCount = 0
	for _, ids := range s.itemSuppliers {
		if contains(ids, sp.ID) {
			cp.ItemCount++
		}
	}
	return &cp
}
