package controller

import (
	"ai-promptscope-be/internal/dto"
	"ai-promptscope-be/internal/pkg/serverutils"
	"ai-promptscope-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type INegotiationController interface {
	RegisterRoutes(r fiber.Router)
	Discover(ctx *fiber.Ctx) error
	Refine(ctx *fiber.Ctx) error
	Answer(ctx *fiber.Ctx) error
	Trace(ctx *fiber.Ctx) error
}

type negotiationController struct {
	negotiationService service.INegotiationService
}

func NewNegotiationController(negotiationService service.INegotiationService) INegotiationController {
	return &negotiationController{
		negotiationService: negotiationService,
	}
}

func (c *negotiationController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/negotiation/v1")
	h.Post("discover", c.Discover)
	h.Post("refine", c.Refine)
	h.Post("answer", c.Answer)
	h.Get(":id/trace", serverutils.JwtMiddleware, c.Trace)
}

func (c *negotiationController) Discover(ctx *fiber.Ctx) error {
	var req dto.DiscoverRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.negotiationService.Discover(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success discover facets", res))
}

func (c *negotiationController) Refine(ctx *fiber.Ctx) error {
	var req dto.RefineRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.negotiationService.Refine(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success refine facets", res))
}

func (c *negotiationController) Answer(ctx *fiber.Ctx) error {
	var req dto.AnswerRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.negotiationService.Answer(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success generate answer", res))
}

func (c *negotiationController) Trace(ctx *fiber.Ctx) error {
	id := ctx.Params("id")

	res, err := c.negotiationService.Trace(ctx.Context(), id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success fetch trace", res))
}
