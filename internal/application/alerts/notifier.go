package alerts

import (
	"context"
	"time"

	"github.com/jhoicas/stocker-api/internal/application/inventory"
	"github.com/jhoicas/stocker-api/pkg/logger"
)

// DefaultCooldown tiempo mínimo entre dos alertas del mismo producto.
const DefaultCooldown = 12 * time.Hour

// CooldownKey clave del marcador de enfriamiento de un producto.
func CooldownKey(itemID string) string {
	return "low_alert_" + itemID
}

// LowStockNotifier reacciona a cada movimiento confirmado: si el producto quedó en o bajo su
// punto de reorden envía una alerta, como máximo una por producto dentro de la ventana de enfriamiento.
// Ningún fallo de este componente llega al motor de movimientos.
type LowStockNotifier struct {
	cooldown   CooldownStore
	mailer     Mailer
	recipients []string
	ttl        time.Duration
	log        *logger.Logger
}

// NewLowStockNotifier construye el notificador. ttl <= 0 usa DefaultCooldown.
func NewLowStockNotifier(cooldown CooldownStore, mailer Mailer, recipients []string, ttl time.Duration, log *logger.Logger) *LowStockNotifier {
	if ttl <= 0 {
		ttl = DefaultCooldown
	}
	if log == nil {
		log = logger.Nop()
	}
	return &LowStockNotifier{
		cooldown:   cooldown,
		mailer:     mailer,
		recipients: recipients,
		ttl:        ttl,
		log:        log.Component("low_stock_notifier"),
	}
}

// HandleMovementApplied es el suscriptor de MovementApplied.
func (n *LowStockNotifier) HandleMovementApplied(ctx context.Context, evt inventory.MovementApplied) {
	item := evt.Item
	if !item.IsLowStock() {
		return
	}
	if len(n.recipients) == 0 {
		n.log.Debug().Str("item_id", item.ID).Msg("sin destinatarios configurados; alerta omitida")
		return
	}

	key := CooldownKey(item.ID)
	acquired, err := n.cooldown.Acquire(ctx, key, n.ttl)
	if err != nil {
		n.log.Warn().Err(err).Str("item_id", item.ID).Msg("cooldown no disponible; alerta omitida")
		return
	}
	if !acquired {
		return
	}

	body, err := renderLowStock(singleItem(&item))
	if err == nil {
		err = n.mailer.Send(ctx, n.recipients, lowStockSubject, body)
	}
	if err != nil {
		// sin marcador, el próximo movimiento bajo el umbral vuelve a intentar
		if relErr := n.cooldown.Release(ctx, key); relErr != nil {
			n.log.Warn().Err(relErr).Str("item_id", item.ID).Msg("no se pudo liberar el cooldown")
		}
		n.log.Error().Err(err).
			Str("item_id", item.ID).
			Str("owner_id", item.OwnerID).
			Str("movement_id", evt.Movement.ID).
			Msg("fallo enviando alerta de bajo stock")
		return
	}
	n.log.Info().
		Str("item_id", item.ID).
		Str("sku", item.SKU).
		Int64("on_hand", item.OnHand).
		Int64("reorder_level", item.ReorderLevel).
		Msg("alerta de bajo stock enviada")
}
