package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/labreservas-api/internal/application/dto"
	"github.com/jhoicas/labreservas-api/internal/domain"
)

// respondError traduce la taxonomía de errores del dominio a HTTP. Los
// errores de evaluación salen como 503: la operación no fue evaluada y el
// cliente puede reintentar la misma petición.
func respondError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()})
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: err.Error()})
	case errors.Is(err, domain.ErrIllegalState):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "ILLEGAL_STATE", Message: err.Error()})
	case errors.Is(err, domain.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: "conflicto de concurrencia; reintente la operación"})
	case errors.Is(err, domain.ErrEvaluation):
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "NOT_EVALUATED", Message: "la operación no pudo evaluarse; reintente"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}
