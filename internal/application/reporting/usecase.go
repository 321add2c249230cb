// Package reporting contiene los reportes de inventario: totales, agrupaciones por categoría y
// proveedor, resumen de movimientos por período, alertas y el dashboard.
package reporting

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/stocker-api/internal/application/dto"
	"github.com/jhoicas/stocker-api/internal/application/inventory"
	"github.com/jhoicas/stocker-api/internal/domain/entity"
	"github.com/jhoicas/stocker-api/internal/domain/repository"
)

const (
	recentMovementsLimit = 20
	dashboardLowStock    = 10
	defaultListLimit     = 50
	maxListLimit         = 500

	// UncategorizedName agrupa los productos sin categoría.
	UncategorizedName = "Uncategorized"
)

// UseCase agregaciones de solo lectura. Todas las sumas devuelven 0 cuando no hay datos.
//
// Fuente de datos: ReportRepository e ItemRepository; no escribe nada.
type UseCase struct {
	reports repository.ReportRepository
	items   repository.ItemRepository
	loc     *time.Location
	now     func() time.Time
}

// NewUseCase construye el caso de uso. loc define qué es "un día" en las series y rangos.
func NewUseCase(reports repository.ReportRepository, items repository.ItemRepository, loc *time.Location) *UseCase {
	if loc == nil {
		loc = time.Local
	}
	return &UseCase{reports: reports, items: items, loc: loc, now: time.Now}
}

// WithClock reemplaza el reloj (tests).
func (uc *UseCase) WithClock(now func() time.Time) *UseCase {
	uc.now = now
	return uc
}

// InventorySummary cantidad de productos, unidades totales, valorización al costo y productos en bajo stock.
func (uc *UseCase) InventorySummary(ctx context.Context, ownerID string) (*dto.InventorySummaryDTO, error) {
	t, err := uc.reports.InventoryTotals(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("reporting: totales: %w", err)
	}
	return &dto.InventorySummaryDTO{
		TotalItems:     t.Items,
		TotalOnHand:    t.OnHand,
		TotalValuation: t.Valuation.Round(2),
		LowStockCount:  t.LowStock,
	}, nil
}

// CategoryRollup totales por categoría; los productos sin categoría van al grupo "Uncategorized".
func (uc *UseCase) CategoryRollup(ctx context.Context, ownerID string) ([]dto.GroupRollupDTO, error) {
	rows, err := uc.reports.CategoryTotals(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("reporting: categorías: %w", err)
	}
	return toRollups(rows), nil
}

// SupplierRollup totales por proveedor (un producto con varios proveedores cuenta en cada uno).
func (uc *UseCase) SupplierRollup(ctx context.Context, ownerID string) ([]dto.GroupRollupDTO, error) {
	rows, err := uc.reports.SupplierTotals(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("reporting: proveedores: %w", err)
	}
	return toRollups(rows), nil
}

// MovementSummary sumas IN/OUT/ADJ del período, net = IN - OUT + ADJ, serie diaria (un punto por día,
// con ceros en los días sin movimientos) y los últimos 20 movimientos.
// Las sumas usan la cantidad tal como se registró (ADJ con signo).
func (uc *UseCase) MovementSummary(ctx context.Context, ownerID string, req dto.MovementReportRequest) (*dto.MovementSummaryDTO, error) {
	period, err := ParsePeriod(req.StartDate, req.EndDate, uc.now(), uc.loc)
	if err != nil {
		return nil, err
	}
	return uc.movementSummary(ctx, ownerID, period)
}

func (uc *UseCase) movementSummary(ctx context.Context, ownerID string, period Period) (*dto.MovementSummaryDTO, error) {
	var (
		totals repository.MovementTotals
		daily  []repository.DailyMovementTotals
		recent []*entity.StockMovement
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		totals, err = uc.reports.MovementTotals(gctx, ownerID, period.From(), period.To())
		if err != nil {
			return fmt.Errorf("reporting: totales de movimientos: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		daily, err = uc.reports.DailyMovementTotals(gctx, ownerID, period.From(), period.To(), uc.loc)
		if err != nil {
			return fmt.Errorf("reporting: serie diaria: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		recent, err = uc.reports.RecentMovements(gctx, ownerID, period.From(), period.To(), recentMovementsLimit)
		if err != nil {
			return fmt.Errorf("reporting: movimientos recientes: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &dto.MovementSummaryDTO{
		Period: dto.PeriodDTO{
			StartDate: period.Start.Format("2006-01-02"),
			EndDate:   period.End.Format("2006-01-02"),
		},
		In:     totals.In,
		Out:    totals.Out,
		Adj:    totals.Adj,
		Net:    totals.In - totals.Out + totals.Adj,
		Daily:  fillDaily(period, daily),
		Recent: make([]dto.MovementResponse, 0, len(recent)),
	}
	for _, m := range recent {
		out.Recent = append(out.Recent, *inventory.ToMovementResponse(m))
	}
	return out, nil
}

// LowStockList productos con OnHand <= ReorderLevel, ordenados por nombre.
func (uc *UseCase) LowStockList(ctx context.Context, ownerID string, limit int) ([]dto.LowStockItemDTO, error) {
	items, err := uc.items.ListLowStock(ctx, ownerID, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("reporting: bajo stock: %w", err)
	}
	out := make([]dto.LowStockItemDTO, 0, len(items))
	for _, it := range items {
		out = append(out, dto.LowStockItemDTO{
			ItemID:       it.ID,
			SKU:          it.SKU,
			Name:         it.Name,
			OnHand:       it.OnHand,
			ReorderLevel: it.ReorderLevel,
		})
	}
	return out, nil
}

// ExpiringItems productos que vencen dentro de days días (incluye los ya vencidos).
func (uc *UseCase) ExpiringItems(ctx context.Context, ownerID string, days int) ([]dto.ExpiringItemDTO, error) {
	if days < 0 {
		days = 0
	}
	today := startOfDay(uc.now().In(uc.loc))
	todayUTC := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	until := todayUTC.AddDate(0, 0, days+1)

	items, err := uc.items.ListExpiring(ctx, ownerID, until)
	if err != nil {
		return nil, fmt.Errorf("reporting: vencimientos: %w", err)
	}
	out := make([]dto.ExpiringItemDTO, 0, len(items))
	for _, it := range items {
		if it.ExpiryDate == nil {
			continue
		}
		exp := it.ExpiryDate.UTC()
		out = append(out, dto.ExpiringItemDTO{
			ItemID:     it.ID,
			SKU:        it.SKU,
			Name:       it.Name,
			OnHand:     it.OnHand,
			ExpiryDate: dto.Date{Time: exp},
			DaysLeft:   int(exp.Sub(todayUTC).Hours() / 24),
		})
	}
	return out, nil
}

// Dashboard resumen, movimientos de los últimos 30 días, bajo stock y categorías.
// Las cuatro consultas corren en paralelo.
func (uc *UseCase) Dashboard(ctx context.Context, ownerID string) (*dto.DashboardDTO, error) {
	period, err := ParsePeriod("", "", uc.now(), uc.loc)
	if err != nil {
		return nil, err
	}

	var (
		summary    *dto.InventorySummaryDTO
		movements  *dto.MovementSummaryDTO
		low        []dto.LowStockItemDTO
		categories []dto.GroupRollupDTO
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		summary, err = uc.InventorySummary(gctx, ownerID)
		return err
	})
	g.Go(func() (err error) {
		movements, err = uc.movementSummary(gctx, ownerID, period)
		return err
	})
	g.Go(func() (err error) {
		low, err = uc.LowStockList(gctx, ownerID, dashboardLowStock)
		return err
	})
	g.Go(func() (err error) {
		categories, err = uc.CategoryRollup(gctx, ownerID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("dashboard: %w", err)
	}

	return &dto.DashboardDTO{
		Summary:    *summary,
		Movements:  *movements,
		LowStock:   low,
		Categories: categories,
	}, nil
}

func fillDaily(period Period, rows []repository.DailyMovementTotals) []dto.DailyMovementDTO {
	byDay := make(map[string]repository.MovementTotals, len(rows))
	for _, r := range rows {
		byDay[r.Day.Format("2006-01-02")] = r.MovementTotals
	}
	out := make([]dto.DailyMovementDTO, 0, period.Days())
	for d := period.Start; !d.After(period.End); d = d.AddDate(0, 0, 1) {
		key := d.Format("2006-01-02")
		t := byDay[key]
		out = append(out, dto.DailyMovementDTO{Day: key, In: t.In, Out: t.Out, Adj: t.Adj})
	}
	return out
}

func toRollups(rows []repository.GroupTotals) []dto.GroupRollupDTO {
	out := make([]dto.GroupRollupDTO, 0, len(rows))
	for _, r := range rows {
		name := r.Name
		if r.ID == "" && name == "" {
			name = UncategorizedName
		}
		out = append(out, dto.GroupRollupDTO{
			ID:        r.ID,
			Name:      name,
			Items:     r.Items,
			OnHand:    r.OnHand,
			Valuation: r.Valuation.Round(2),
		})
	}
	return out
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}
