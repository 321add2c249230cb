package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stocker-api/internal/application/dto"
	"github.com/jhoicas/stocker-api/internal/application/purchasing"
	"github.com/jhoicas/stocker-api/internal/domain"
	"github.com/jhoicas/stocker-api/pkg/logger"
)

// writeError traduce los errores de dominio a status + dto.ErrorResponse.
// notFound es el mensaje para ErrNotFound en el contexto del handler.
func writeError(c *fiber.Ctx, err error, notFound string) error {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: verr.Error(), Field: verr.Field})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: notFound})
	case errors.Is(err, domain.ErrDuplicate):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: err.Error()})
	case errors.Is(err, domain.ErrInUse):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "IN_USE", Message: err.Error()})
	case errors.Is(err, domain.ErrOrderClosed):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "ORDER_CLOSED", Message: err.Error()})
	case errors.Is(err, domain.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: err.Error()})
	case errors.Is(err, domain.ErrUnauthorized):
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: err.Error()})
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: err.Error()})
	case errors.Is(err, purchasing.ErrNoPDFGenerator):
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "PDF_UNAVAILABLE", Message: err.Error()})
	}
	requestLogger(c).Error().Err(err).
		Str("method", c.Method()).
		Str("path", c.Path()).
		Str("owner_id", GetOwnerID(c)).
		Msg("error interno")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno del servidor"})
}

// LocalLogger clave en Locals del logger de la petición.
const LocalLogger = "logger"

// withLogger deja el logger disponible para los handlers.
func withLogger(log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(LocalLogger, log)
		return c.Next()
	}
}

func requestLogger(c *fiber.Ctx) *logger.Logger {
	if log, ok := c.Locals(LocalLogger).(*logger.Logger); ok && log != nil {
		return log
	}
	return logger.Nop()
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}

// requireOwner corta la petición si el token no trae dueño.
func requireOwner(c *fiber.Ctx) (string, bool) {
	ownerID := GetOwnerID(c)
	if ownerID == "" {
		_ = c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "owner_id requerido"})
		return "", false
	}
	return ownerID, true
}

// pageParams limit/offset de la query con los topes de la API (limit 1..100, por defecto 20).
func pageParams(c *fiber.Ctx) (int, int) {
	limit := c.QueryInt("limit", 20)
	offset := c.QueryInt("offset", 0)
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
