package memory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stocker-api/internal/domain/entity"
	"github.com/jhoicas/stocker-api/internal/domain/repository"
)

var _ repository.ReportRepository = (*ReportRepository)(nil)

// ReportRepository agregaciones calculadas sobre el almacén en memoria.
type ReportRepository struct {
	s *Store
}

func (r *ReportRepository) InventoryTotals(ctx context.Context, ownerID string) (repository.InventoryTotals, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	t := repository.InventoryTotals{Valuation: decimal.Zero}
	for _, it := range r.s.items {
		if it.OwnerID != ownerID {
			continue
		}
		t.Items++
		t.OnHand += it.OnHand
		t.Valuation = t.Valuation.Add(decimal.NewFromInt(it.OnHand).Mul(it.CostPrice))
		if it.IsLowStock() {
			t.LowStock++
		}
	}
	return t, nil
}

// CategoryTotals agrupa los productos por categoría; los que no tienen van a un grupo con ID vacío (al final).
func (r *ReportRepository) CategoryTotals(ctx context.Context, ownerID string) ([]repository.GroupTotals, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	groups := make(map[string]*repository.GroupTotals)
	for _, it := range r.s.items {
		if it.OwnerID != ownerID {
			continue
		}
		key, name := "", ""
		if it.CategoryID != nil {
			if cat, ok := r.s.categories[*it.CategoryID]; ok {
				key, name = cat.ID, cat.Name
			}
		}
		g, ok := groups[key]
		if !ok {
			g = &repository.GroupTotals{ID: key, Name: name, Valuation: decimal.Zero}
			groups[key] = g
		}
		addItem(g, it)
	}
	out := make([]repository.GroupTotals, 0, len(groups))
	for _, g := range groups {
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool {
		if (out[i].ID == "") != (out[j].ID == "") {
			return out[j].ID == ""
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// SupplierTotals un grupo por proveedor del dueño, incluidos los que no tienen productos.
func (r *ReportRepository) SupplierTotals(ctx context.Context, ownerID string) ([]repository.GroupTotals, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []repository.GroupTotals
	for _, sp := range r.s.suppliers {
		if sp.OwnerID != ownerID {
			continue
		}
		g := repository.GroupTotals{ID: sp.ID, Name: sp.Name, Valuation: decimal.Zero}
		for itemID, ids := range r.s.itemSuppliers {
			if !contains(ids, sp.ID) {
				continue
			}
			if it, ok := r.s.items[itemID]; ok {
				addItem(&g, it)
			}
		}
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *ReportRepository) MovementTotals(ctx context.Context, ownerID string, from, to time.Time) (repository.MovementTotals, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var t repository.MovementTotals
	for _, m := range r.s.movements {
		if m.OwnerID == ownerID && inRange(m.CreatedAt, from, to) {
			addMovement(&t, m)
		}
	}
	return t, nil
}

// DailyMovementTotals solo devuelve los días con movimientos, en orden.
func (r *ReportRepository) DailyMovementTotals(ctx context.Context, ownerID string, from, to time.Time, loc *time.Location) ([]repository.DailyMovementTotals, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	byDay := make(map[time.Time]*repository.DailyMovementTotals)
	for _, m := range r.s.movements {
		if m.OwnerID != ownerID || !inRange(m.CreatedAt, from, to) {
			continue
		}
		local := m.CreatedAt.In(loc)
		day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
		d, ok := byDay[day]
		if !ok {
			d = &repository.DailyMovementTotals{Day: day}
			byDay[day] = d
		}
		addMovement(&d.MovementTotals, m)
	}
	out := make([]repository.DailyMovementTotals, 0, len(byDay))
	for _, d := range byDay {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day.Before(out[j].Day) })
	return out, nil
}

func (r *ReportRepository) RecentMovements(ctx context.Context, ownerID string, from, to time.Time, limit int) ([]*entity.StockMovement, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*entity.StockMovement
	for i := len(r.s.movements) - 1; i >= 0; i-- {
		m := r.s.movements[i]
		if m.OwnerID == ownerID && inRange(m.CreatedAt, from, to) {
			out = append(out, cloneMovement(m))
		}
	}
	sortMovementsDesc(out)
	return page(out, limit, 0), nil
}

func (r *ReportRepository) InventoryRows(ctx context.Context, ownerID string) ([]*entity.Item, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*entity.Item
	for _, it := range r.s.items {
		if it.OwnerID == ownerID {
			out = append(out, r.s.hydrateItem(it))
		}
	}
	sortItemsByName(out)
	return out, nil
}

func addItem(g *repository.GroupTotals, it *entity.Item) {
	g.Items++
	g.OnHand += it.OnHand
	g.Valuation = g.Valuation.Add(decimal.NewFromInt(it.OnHand).Mul(it.CostPrice))
}

// addMovement suma la cantidad tal como se registró (ADJ con signo).
func addMovement(t *repository.MovementTotals, m *entity.StockMovement) {
	switch m.Type {
	case entity.MovementTypeIN:
		t.In += m.Quantity
	case entity.MovementTypeOUT:
		t.Out += m.Quantity
	case entity.MovementTypeADJ:
		t.Adj += m.Quantity
	}
}

func inRange(t, from, to time.Time) bool {
	return !t.Before(from) && t.Before(to)
}

// sortMovementsDesc ordena por fecha descendente conservando el orden previo en empates.
func sortMovementsDesc(list []*entity.StockMovement) {
	sort.SliceStable(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
}
