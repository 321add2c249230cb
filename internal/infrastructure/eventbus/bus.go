// Package eventbus distribuye los eventos MovementApplied a los observadores (notificador de bajo stock)
// fuera de la transacción del movimiento.
package eventbus

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jhoicas/stocker-api/internal/application/inventory"
	"github.com/jhoicas/stocker-api/pkg/logger"
)

var (
	ErrClosed     = errors.New("eventbus: cerrado")
	ErrBufferFull = errors.New("eventbus: buffer lleno, evento descartado")
)

// DefaultBufferSize capacidad por defecto de la cola.
const DefaultBufferSize = 256

// Handler observador de movimientos. Sus pánicos se recuperan y se registran.
type Handler func(ctx context.Context, evt inventory.MovementApplied)

var _ inventory.EventPublisher = (*Bus)(nil)

type envelope struct {
	ctx context.Context
	evt inventory.MovementApplied
}

// Bus cola en memoria con un worker que entrega cada evento a todos los suscriptores, en orden.
// Publish nunca bloquea al llamador.
type Bus struct {
	mu       sync.RWMutex
	closed   bool
	queue    chan envelope
	handlers []Handler
	done     chan struct{}
	log      *logger.Logger
}

// New crea el bus y arranca su worker.
func New(bufferSize int, log *logger.Logger) *Bus {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	if log == nil {
		log = logger.Nop()
	}
	b := &Bus{
		queue: make(chan envelope, bufferSize),
		done:  make(chan struct{}),
		log:   log.Component("eventbus"),
	}
	go b.run()
	return b
}

// Subscribe registra un observador. Debe llamarse antes de publicar.
func (b *Bus) Subscribe(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, h)
}

// Publish encola el evento. Si la cola está llena el evento se descarta (ErrBufferFull).
// El contexto del llamador se conserva sin su cancelación: el request puede terminar antes de la entrega.
func (b *Bus) Publish(ctx context.Context, evt inventory.MovementApplied) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrClosed
	}
	select {
	case b.queue <- envelope{ctx: context.WithoutCancel(ctx), evt: evt}:
		return nil
	default:
		return ErrBufferFull
	}
}

// Close deja de aceptar eventos y espera a que se entreguen los pendientes o a que ctx venza.
func (b *Bus) Close(ctx context.Context) error {
	b.mu.Lock()
	if !b.closed {
		b.closed = true
		close(b.queue)
	}
	b.mu.Unlock()

	select {
	case <-b.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("eventbus: cierre: %w", ctx.Err())
	}
}

func (b *Bus) run() {
	defer close(b.done)
	for env := range b.queue {
		b.mu.RLock()
		handlers := b.handlers
		b.mu.RUnlock()
		for _, h := range handlers {
			b.dispatch(h, env)
		}
	}
}

func (b *Bus) dispatch(h Handler, env envelope) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error().
				Interface("panic", r).
				Str("movement_id", env.evt.Movement.ID).
				Str("item_id", env.evt.Item.ID).
				Msg("observador en pánico")
		}
	}()
	h(env.ctx, env.evt)
}
