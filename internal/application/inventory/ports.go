package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/stocker-api/internal/domain/entity"
	"github.com/jhoicas/stocker-api/internal/domain/repository"
)

// TxRepos repositorios atados a una misma transacción.
type TxRepos struct {
	Items          repository.ItemRepository
	Movements      repository.StockMovementRepository
	PurchaseOrders repository.PurchaseOrderRepository
	Suppliers      repository.SupplierRepository
}

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn devuelve error (o entra en pánico) se hace Rollback; los bloqueos se liberan en cualquier salida.
type TxRunner interface {
	Run(ctx context.Context, fn func(ctx context.Context, tx TxRepos) error) error
}

// MovementApplied evento publicado después del Commit de cada movimiento.
type MovementApplied struct {
	Movement   entity.StockMovement
	Item       entity.Item // estado del producto tras aplicar el movimiento
	OccurredAt time.Time
}

// EventPublisher publica eventos fuera de la transacción. Un fallo nunca afecta al movimiento ya confirmado.
type EventPublisher interface {
	Publish(ctx context.Context, evt MovementApplied) error
}
