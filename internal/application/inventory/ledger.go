package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/stocker-api/internal/domain"
	"github.com/jhoicas/stocker-api/internal/domain/entity"
	domaininv "github.com/jhoicas/stocker-api/internal/domain/inventory"
	"github.com/jhoicas/stocker-api/internal/domain/repository"
	"github.com/jhoicas/stocker-api/pkg/logger"
)

const maxReasonLen = 200

// LedgerUseCase es el único escritor de OnHand y del historial de movimientos.
// Cada Apply corre en una transacción con bloqueo de fila del producto (SELECT FOR UPDATE):
// dos Apply sobre el mismo producto se serializan; sobre productos distintos corren en paralelo.
type LedgerUseCase struct {
	txRunner  TxRunner
	movements repository.StockMovementRepository
	items     repository.ItemRepository
	publisher EventPublisher
	log       *logger.Logger
	now       func() time.Time
}

// NewLedgerUseCase construye el motor de movimientos. publisher puede ser nil (sin observadores).
func NewLedgerUseCase(
	txRunner TxRunner,
	items repository.ItemRepository,
	movements repository.StockMovementRepository,
	publisher EventPublisher,
	log *logger.Logger,
) *LedgerUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &LedgerUseCase{
		txRunner:  txRunner,
		items:     items,
		movements: movements,
		publisher: publisher,
		log:       log.Component("ledger"),
		now:       time.Now,
	}
}

// WithClock reemplaza el reloj (tests).
func (uc *LedgerUseCase) WithClock(now func() time.Time) *LedgerUseCase {
	uc.now = now
	return uc
}

// ApplyInput entrada de un movimiento. ActorID vacío = movimiento del sistema.
// Quantity es positiva para IN/OUT; para ADJ es el delta con signo.
type ApplyInput struct {
	OwnerID  string
	ItemID   string
	Type     string
	Quantity int64
	Reason   string
	ActorID  string
}

func (in ApplyInput) validate() error {
	if in.OwnerID == "" {
		return domain.Invalid("owner_id", "requerido")
	}
	if in.ItemID == "" {
		return domain.Invalid("item_id", "requerido")
	}
	if len(in.Reason) > maxReasonLen {
		return domain.Invalid("reason", "máximo 200 caracteres")
	}
	return domaininv.ValidateMovement(in.Type, in.Quantity)
}

// Apply valida la entrada (sin tomar bloqueos), abre la transacción, bloquea el producto,
// calcula el nuevo stock, lo guarda y agrega el movimiento con la cantidad resultante.
// Tras el Commit publica MovementApplied; si algo falla antes, no queda ningún efecto.
func (uc *LedgerUseCase) Apply(ctx context.Context, in ApplyInput) (*entity.StockMovement, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	var (
		mov  *entity.StockMovement
		item *entity.Item
	)
	err := uc.txRunner.Run(ctx, func(ctx context.Context, tx TxRepos) error {
		var err error
		mov, item, err = uc.ApplyInTx(ctx, tx, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.Publish(ctx, mov, item)
	return mov, nil
}

// ApplyInTx aplica el movimiento usando los repositorios de la transacción del caller.
// No publica el evento: el caller debe llamar Publish después de su Commit.
func (uc *LedgerUseCase) ApplyInTx(ctx context.Context, tx TxRepos, in ApplyInput) (*entity.StockMovement, *entity.Item, error) {
	if err := in.validate(); err != nil {
		return nil, nil, err
	}
	item, err := tx.Items.GetForUpdate(ctx, in.OwnerID, in.ItemID)
	if err != nil {
		return nil, nil, err
	}
	if item == nil {
		return nil, nil, domain.ErrNotFound
	}

	now := uc.now()
	newQty := domaininv.ComputeOnHand(item.OnHand, in.Type, in.Quantity)
	if err := tx.Items.UpdateOnHand(ctx, item.ID, newQty, now); err != nil {
		return nil, nil, err
	}
	item.OnHand = newQty
	item.UpdatedAt = now

	mov := &entity.StockMovement{
		ID:                uuid.New().String(),
		OwnerID:           item.OwnerID,
		ItemID:            item.ID,
		ItemSKU:           item.SKU,
		ItemName:          item.Name,
		Type:              in.Type,
		Quantity:          in.Quantity,
		Reason:            in.Reason,
		ResultingQuantity: newQty,
		CreatedAt:         now,
	}
	if in.ActorID != "" {
		actor := in.ActorID
		mov.CreatedBy = &actor
	}
	if err := tx.Movements.Create(ctx, mov); err != nil {
		return nil, nil, err
	}
	return mov, item, nil
}

// Publish notifica a los observadores un movimiento ya confirmado. Los errores solo se registran.
func (uc *LedgerUseCase) Publish(ctx context.Context, mov *entity.StockMovement, item *entity.Item) {
	if uc.publisher == nil || mov == nil || item == nil {
		return
	}
	evt := MovementApplied{Movement: *mov, Item: *item, OccurredAt: mov.CreatedAt}
	if err := uc.publisher.Publish(ctx, evt); err != nil {
		uc.log.Warn().Err(err).
			Str("movement_id", mov.ID).
			Str("item_id", mov.ItemID).
			Msg("no se pudo publicar el movimiento")
	}
}

// History lista los movimientos de un producto, más recientes primero.
func (uc *LedgerUseCase) History(ctx context.Context, ownerID, itemID string, limit, offset int) ([]*entity.StockMovement, error) {
	item, err := uc.items.GetByID(ctx, ownerID, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	if limit <= 0 {
		limit = 20
	}
	return uc.movements.ListByItem(ctx, ownerID, itemID, limit, offset)
}
