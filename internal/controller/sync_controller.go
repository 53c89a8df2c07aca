package controller

import (
	"chatpulse/internal/dto"
	"chatpulse/internal/pkg/serverutils"
	"chatpulse/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ISyncController interface {
	RegisterRoutes(r fiber.Router)
	Connect(ctx *fiber.Ctx) error
	Disconnect(ctx *fiber.Ctx) error
	Send(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
}

type syncController struct {
	service service.ISyncService
}

func NewSyncController(service service.ISyncService) ISyncController {
	return &syncController{service: service}
}

func (c *syncController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/sync/:identifier")
	h.Get("", c.Show)
	h.Post("/connect", c.Connect)
	h.Post("/disconnect", c.Disconnect)
	h.Post("/send", c.Send)
}

func (c *syncController) Connect(ctx *fiber.Ctx) error {
	res, err := c.service.Connect(ctx.Context(), ctx.Params("identifier"))
	if err != nil {
		return toHTTPError(err)
	}
	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Sync session connecting", res))
}

func (c *syncController) Disconnect(ctx *fiber.Ctx) error {
	res, err := c.service.Disconnect(ctx.Context(), ctx.Params("identifier"))
	if err != nil {
		return toHTTPError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Sync session closed", res))
}

func (c *syncController) Send(ctx *fiber.Ctx) error {
	var req dto.SendSyncMessageRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.service.Send(ctx.Context(), ctx.Params("identifier"), &req); err != nil {
		return toHTTPError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Message sent", nil))
}

func (c *syncController) Show(ctx *fiber.Ctx) error {
	res, err := c.service.Show(ctx.Context(), ctx.Params("identifier"))
	if err != nil {
		return toHTTPError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Success show sync session", res))
}
