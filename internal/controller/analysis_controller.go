package controller

import (
	"ai-notecanvas/internal/dto"
	"ai-notecanvas/internal/pkg/serverutils"
	"ai-notecanvas/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IAnalysisController interface {
	RegisterRoutes(r fiber.Router)
	Analyze(ctx *fiber.Ctx) error
	ApplyConnect(ctx *fiber.Ctx) error
}

type analysisController struct {
	service service.IAnalysisService
}

func NewAnalysisController(service service.IAnalysisService) IAnalysisController {
	return &analysisController{service: service}
}

func (c *analysisController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/analysis/v1")
	h.Post("", c.Analyze)
	h.Post("/apply", c.ApplyConnect)
}

func (c *analysisController) Analyze(ctx *fiber.Ctx) error {
	var req dto.AnalysisRequest
	if err := bind(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.Analyze(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success run analysis", res))
}

func (c *analysisController) ApplyConnect(ctx *fiber.Ctx) error {
	var req dto.ApplyConnectRequest
	if err := bind(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.ApplyConnect(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success apply analysis to document", res))
}
