package memory

import (
	"context"

	"github.com/jhoicas/stocker-api/internal/domain/entity"
	"github.com/jhoicas/stocker-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*MovementRepository)(nil)

// MovementRepository libro de movimientos en memoria (solo inserción).
type MovementRepository struct {
	s  *Store
	tx *tx
}

// NewMovementRepository construye el repositorio sobre s.
func NewMovementRepository(s *Store) *MovementRepository {
	return &MovementRepository{s: s}
}

func (r *MovementRepository) Create(ctx context.Context, m *entity.StockMovement) error {
	c := cloneMovement(m)
	if r.tx != nil {
		r.tx.later(func(s *Store) { s.movements = append(s.movements, c) })
		return nil
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.movements = append(r.s.movements, c)
	return nil
}

// ListByItem más recientes primero (a igual fecha, el último insertado primero).
func (r *MovementRepository) ListByItem(ctx context.Context, ownerID, itemID string, limit, offset int) ([]*entity.StockMovement, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*entity.StockMovement
	for i := len(r.s.movements) - 1; i >= 0; i-- {
		m := r.s.movements[i]
		if m.ItemID == itemID && m.OwnerID == ownerID {
			out = append(out, cloneMovement(m))
		}
	}
	sortMovementsDesc(out)
	return page(out, limit, offset), nil
}

func (r *MovementRepository) CountByItem(ctx context.Context, itemID string) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	n := 0
	for _, m := range r.s.movements {
		if m.ItemID == itemID {
			n++
		}
	}
	return n, nil
}

// Len cantidad total de movimientos registrados.
func (r *MovementRepository) Len() int {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.movements)
}
