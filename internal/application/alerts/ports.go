package alerts

import (
	"context"
	"time"
)

// CooldownStore marcador con TTL que limita la frecuencia de alertas por producto.
type CooldownStore interface {
	// Acquire crea el marcador key si no existe (atómico) y devuelve true; false si ya estaba activo.
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Release borra el marcador (se usa cuando el envío falló para permitir un reintento).
	Release(ctx context.Context, key string) error
}

// Mailer transporte de correo.
type Mailer interface {
	Send(ctx context.Context, to []string, subject, body string) error
}
