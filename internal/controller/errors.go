package controller

import (
	"errors"

	"chatpulse/internal/service"
	"chatpulse/pkg/realtime"

	"github.com/gofiber/fiber/v2"
)

// toHTTPError maps domain errors onto status codes for the error middleware.
func toHTTPError(err error) error {
	switch {
	case errors.Is(err, service.ErrPlanNotFound), errors.Is(err, service.ErrSessionNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, realtime.ErrNotConnected), errors.Is(err, service.ErrStepTerminal):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.Is(err, realtime.ErrConfiguration):
		return fiber.NewError(fiber.StatusServiceUnavailable, err.Error())
	default:
		return err
	}
}

func parseBody(ctx *fiber.Ctx, out interface{}) error {
	if err := ctx.BodyParser(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	return nil
}
