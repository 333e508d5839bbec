package controller

import (
	"github.com/gofiber/fiber/v2"

	"perfume-advisor-be/internal/dto"
	"perfume-advisor-be/internal/pkg/serverutils"
	"perfume-advisor-be/internal/service"
	"perfume-advisor-be/pkg/conversation"
)

type IAdvisorController interface {
	RegisterRoutes(r fiber.Router)
	StartSession(ctx *fiber.Ctx) error
	Answer(ctx *fiber.Ctx) error
	Restart(ctx *fiber.Ctx) error
	History(ctx *fiber.Ctx) error
	BrandModels(ctx *fiber.Ctx) error
	Health(ctx *fiber.Ctx) error
}

type advisorController struct {
	service service.IAdvisorService
}

func NewAdvisorController(service service.IAdvisorService) IAdvisorController {
	return &advisorController{service: service}
}

func (c *advisorController) RegisterRoutes(r fiber.Router) {
	r.Get("/health", c.Health)

	h := r.Group("/advisor/v1")
	h.Post("/sessions", c.StartSession)
	h.Post("/sessions/:id/answers", c.Answer)
	h.Post("/sessions/:id/restart", c.Restart)
	h.Get("/sessions/:id/history", c.History)
	h.Get("/catalog/brand-models", c.BrandModels)
}

func (c *advisorController) StartSession(ctx *fiber.Ctx) error {
	var req dto.StartSessionRequest
	// an empty body starts at the root question
	if len(ctx.Body()) > 0 {
		if err := ctx.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.StartSession(ctx.UserContext(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Session started", res))
}

func (c *advisorController) Answer(ctx *fiber.Ctx) error {
	var req dto.AnswerRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	out, err := c.service.Answer(ctx.UserContext(), ctx.Params("id"), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Answer recorded", out))
}

func (c *advisorController) Restart(ctx *fiber.Ctx) error {
	out, err := c.service.Restart(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Session restarted", out))
}

func (c *advisorController) History(ctx *fiber.Ctx) error {
	res, err := c.service.History(ctx.UserContext(), ctx.Params("id"), ctx.Query("tag"))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get history", res))
}

func (c *advisorController) BrandModels(ctx *fiber.Ctx) error {
	list, err := c.service.BrandModels(ctx.UserContext())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get brand models", list))
}

func (c *advisorController) Health(ctx *fiber.Ctx) error {
	if !c.service.Ready() {
		return ctx.Status(fiber.StatusServiceUnavailable).
			JSON(serverutils.ErrorResponse(fiber.StatusServiceUnavailable, conversation.NotInitializedText))
	}
	return ctx.JSON(serverutils.SuccessResponse("OK", nil))
}
