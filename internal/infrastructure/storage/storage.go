// Package storage arma los repositorios según DB_DRIVER (postgres o memoria).
package storage

import (
	"context"
	"fmt"

	"github.com/jhoicas/stocker-api/internal/application/inventory"
	"github.com/jhoicas/stocker-api/internal/domain/repository"
	"github.com/jhoicas/stocker-api/internal/infrastructure/memory"
	"github.com/jhoicas/stocker-api/internal/infrastructure/postgres"
	"github.com/jhoicas/stocker-api/pkg/config"
	"github.com/jhoicas/stocker-api/pkg/logger"
)

// Drivers soportados.
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Repos repositorios y runner transaccional de un mismo almacén.
type Repos struct {
	TxRunner   inventory.TxRunner
	Items      repository.ItemRepository
	Movements  repository.StockMovementRepository
	Categories repository.CategoryRepository
	Suppliers  repository.SupplierRepository
	Orders     repository.PurchaseOrderRepository
	Reports    repository.ReportRepository

	close func()
}

// Close libera el pool de conexiones (no-op en memoria).
func (r *Repos) Close() {
	if r.close != nil {
		r.close()
	}
}

// Open conecta con el almacén configurado. Con postgres y DB_MIGRATE aplica las migraciones embebidas.
func Open(ctx context.Context, cfg config.DBConfig, log *logger.Logger) (*Repos, error) {
	switch cfg.Driver {
	case DriverMemory:
		s := memory.NewStore()
		log.Warn().Msg("almacén en memoria: los datos se pierden al reiniciar")
		return &Repos{
			TxRunner:   s.TxRunner(),
			Items:      s.Items(),
			Movements:  s.Movements(),
			Categories: s.Categories(),
			Suppliers:  s.Suppliers(),
			Orders:     s.PurchaseOrders(),
			Reports:    s.Reports(),
		}, nil
	case DriverPostgres, "":
		pool, err := postgres.NewPool(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
		}
		if cfg.Migrate {
			if err := postgres.Migrate(ctx, pool, log); err != nil {
				pool.Close()
				return nil, err
			}
		}
		return &Repos{
			TxRunner:   postgres.NewTxRunner(pool),
			Items:      postgres.NewItemRepository(pool),
			Movements:  postgres.NewStockMovementRepository(pool),
			Categories: postgres.NewCategoryRepository(pool),
			Suppliers:  postgres.NewSupplierRepository(pool),
			Orders:     postgres.NewPurchaseOrderRepository(pool),
			Reports:    postgres.NewReportRepository(pool),
			close:      pool.Close,
		}, nil
	}
	return nil, fmt.Errorf("DB_DRIVER desconocido: %q", cfg.Driver)
}
