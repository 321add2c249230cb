package alerts

import (
	"context"
	"strings"
	"time"

	"github.com/jhoicas/stocker-api/internal/domain"
	"github.com/jhoicas/stocker-api/internal/domain/entity"
	"github.com/jhoicas/stocker-api/internal/domain/repository"
	"github.com/jhoicas/stocker-api/pkg/logger"
)

const digestLimit = 1000

// DigestUseCase resúmenes por correo (bajo stock y vencimientos) para el job programado.
// ownerID vacío incluye los productos de todos los dueños.
type DigestUseCase struct {
	items  repository.ItemRepository
	mailer Mailer
	defTo  string
	loc    *time.Location
	log    *logger.Logger
	now    func() time.Time
}

// NewDigestUseCase construye el caso de uso. defaultTo se usa cuando el llamador no indica destinatario.
func NewDigestUseCase(items repository.ItemRepository, mailer Mailer, defaultTo string, loc *time.Location, log *logger.Logger) *DigestUseCase {
	if loc == nil {
		loc = time.Local
	}
	if log == nil {
		log = logger.Nop()
	}
	return &DigestUseCase{
		items:  items,
		mailer: mailer,
		defTo:  defaultTo,
		loc:    loc,
		log:    log.Component("digest"),
		now:    time.Now,
	}
}

// WithClock reemplaza el reloj (tests).
func (uc *DigestUseCase) WithClock(now func() time.Time) *DigestUseCase {
	uc.now = now
	return uc
}

func (uc *DigestUseCase) recipient(to string) (string, error) {
	to = strings.TrimSpace(to)
	if to == "" {
		to = uc.defTo
	}
	if to == "" {
		return "", domain.Invalid("to", "sin destinatario (configure MANAGER_EMAIL)")
	}
	return to, nil
}

// SendLowStockDigest envía la lista de productos en o bajo su punto de reorden.
// Devuelve cuántos productos incluyó; 0 sin enviar nada si la lista está vacía.
func (uc *DigestUseCase) SendLowStockDigest(ctx context.Context, ownerID, to string) (int, error) {
	items, err := uc.items.ListLowStock(ctx, ownerID, digestLimit)
	if err != nil {
		return 0, err
	}
	if len(items) == 0 {
		return 0, nil
	}
	rcpt, err := uc.recipient(to)
	if err != nil {
		return 0, err
	}
	body, err := renderLowStock(items)
	if err != nil {
		return 0, err
	}
	if err := uc.mailer.Send(ctx, []string{rcpt}, lowStockSubject, body); err != nil {
		return 0, err
	}
	uc.log.Info().Str("owner_id", ownerID).Int("items", len(items)).Str("to", rcpt).Msg("resumen de bajo stock enviado")
	return len(items), nil
}

// SendExpiryDigest envía los productos cuya fecha de vencimiento es <= hoy + days (incluye vencidos).
func (uc *DigestUseCase) SendExpiryDigest(ctx context.Context, ownerID string, days int, to string) (int, error) {
	if days < 0 {
		return 0, domain.Invalid("days", "debe ser >= 0")
	}
	items, err := uc.items.ListExpiring(ctx, ownerID, ExpiryCutoff(uc.now(), days, uc.loc))
	if err != nil {
		return 0, err
	}
	if len(items) == 0 {
		return 0, nil
	}
	rcpt, err := uc.recipient(to)
	if err != nil {
		return 0, err
	}
	body, err := renderExpiry(items, days)
	if err != nil {
		return 0, err
	}
	if err := uc.mailer.Send(ctx, []string{rcpt}, expirySubjectFor(days), body); err != nil {
		return 0, err
	}
	uc.log.Info().Str("owner_id", ownerID).Int("items", len(items)).Int("days", days).Str("to", rcpt).Msg("resumen de vencimientos enviado")
	return len(items), nil
}

// ExpiryCutoff límite exclusivo para vencimientos: la fecha calendario (hoy + days + 1), con "hoy"
// evaluado en loc. Las fechas de vencimiento se guardan como medianoche UTC, igual que el resultado.
func ExpiryCutoff(now time.Time, days int, loc *time.Location) time.Time {
	local := now.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day()+days+1, 0, 0, 0, 0, time.UTC)
}

func singleItem(item *entity.Item) []*entity.Item {
	return []*entity.Item{item}
}
