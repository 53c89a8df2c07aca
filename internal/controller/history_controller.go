package controller

import (
	"chatpulse/internal/dto"
	"chatpulse/internal/pkg/serverutils"
	"chatpulse/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IHistoryController interface {
	RegisterRoutes(r fiber.Router)
	Suggestions(ctx *fiber.Ctx) error
	Record(ctx *fiber.Ctx) error
	Recent(ctx *fiber.Ctx) error
	Popular(ctx *fiber.Ctx) error
	Clear(ctx *fiber.Ctx) error
}

type historyController struct {
	service service.ISuggestionService
}

func NewHistoryController(service service.ISuggestionService) IHistoryController {
	return &historyController{service: service}
}

func (c *historyController) RegisterRoutes(r fiber.Router) {
	r.Get("/suggestions", c.Suggestions)

	h := r.Group("/history")
	h.Post("", c.Record)
	h.Get("/recent", c.Recent)
	h.Get("/popular", c.Popular)
	h.Delete("", c.Clear)
}

func (c *historyController) Suggestions(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Success get suggestions", c.service.Suggestions(ctx.Context())))
}

// Record takes an optional ?identifier= so that identifier's live clients get
// the new suggestions pushed.
func (c *historyController) Record(ctx *fiber.Ctx) error {
	var req dto.RecordQueryRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res := c.service.Record(ctx.Context(), ctx.Query("identifier"), &req)
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Query recorded", res))
}

func (c *historyController) Recent(ctx *fiber.Ctx) error {
	res := c.service.Recent(ctx.Context(), ctx.QueryInt("limit", 0))
	return ctx.JSON(serverutils.SuccessResponse("Success get recent queries", res))
}

func (c *historyController) Popular(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Success get popular queries", c.service.Popular(ctx.Context())))
}

func (c *historyController) Clear(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("History cleared", c.service.Clear(ctx.Context())))
}
