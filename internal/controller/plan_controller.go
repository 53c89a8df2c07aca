package controller

import (
	"chatpulse/internal/dto"
	"chatpulse/internal/pkg/serverutils"
	"chatpulse/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IPlanController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Activate(ctx *fiber.Ctx) error
	Complete(ctx *fiber.Ctx) error
	UpdateStep(ctx *fiber.Ctx) error
}

type planController struct {
	service service.IPlanService
}

func NewPlanController(service service.IPlanService) IPlanController {
	return &planController{service: service}
}

func (c *planController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/plans")
	h.Post("", c.Create)
	h.Get("/:id", c.Show)
	h.Post("/:id/activate", c.Activate)
	h.Post("/:id/complete", c.Complete)
	h.Patch("/:id/steps/:stepId", c.UpdateStep)
}

func (c *planController) Create(ctx *fiber.Ctx) error {
	var req dto.CreatePlanRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Create(ctx.Context(), &req)
	if err != nil {
		return toHTTPError(err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Plan created", res))
}

func (c *planController) Show(ctx *fiber.Ctx) error {
	res, err := c.service.Show(ctx.Context(), ctx.Params("id"))
	if err != nil {
		return toHTTPError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Success show plan", res))
}

func (c *planController) Activate(ctx *fiber.Ctx) error {
	res, err := c.service.Activate(ctx.Context(), ctx.Params("id"))
	if err != nil {
		return toHTTPError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Next step activated", res))
}

func (c *planController) Complete(ctx *fiber.Ctx) error {
	var req dto.CompleteStepRequest
	if len(ctx.Body()) > 0 {
		if err := parseBody(ctx, &req); err != nil {
			return err
		}
	}

	res, err := c.service.Complete(ctx.Context(), ctx.Params("id"), &req)
	if err != nil {
		return toHTTPError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Active step completed", res))
}

func (c *planController) UpdateStep(ctx *fiber.Ctx) error {
	var req dto.UpdateStepRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.UpdateStep(ctx.Context(), ctx.Params("id"), ctx.Params("stepId"), &req)
	if err != nil {
		return toHTTPError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Step updated", res))
}
