package controller

import (
	"ai-notecanvas/internal/dto"
	"ai-notecanvas/internal/pkg/serverutils"
	"ai-notecanvas/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IWorkspaceController interface {
	RegisterRoutes(r fiber.Router)
	Document(ctx *fiber.Ctx) error
	UpdateDocument(ctx *fiber.Ctx) error
	Settings(ctx *fiber.Ctx) error
	UpdateSettings(ctx *fiber.Ctx) error
}

type workspaceController struct {
	service service.IWorkspaceService
}

func NewWorkspaceController(service service.IWorkspaceService) IWorkspaceController {
	return &workspaceController{service: service}
}

func (c *workspaceController) RegisterRoutes(r fiber.Router) {
	doc := r.Group("/document/v1")
	doc.Get("", c.Document)
	doc.Put("", c.UpdateDocument)

	settings := r.Group("/settings/v1")
	settings.Get("", c.Settings)
	settings.Put("", c.UpdateSettings)
}

func (c *workspaceController) Document(ctx *fiber.Ctx) error {
	res := c.service.Document(ctx.UserContext())
	return ctx.JSON(serverutils.SuccessResponse("Success get document", res))
}

func (c *workspaceController) UpdateDocument(ctx *fiber.Ctx) error {
	var req dto.UpdateDocumentRequest
	if err := bind(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.UpdateDocument(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success update document", res))
}

func (c *workspaceController) Settings(ctx *fiber.Ctx) error {
	res := c.service.Settings(ctx.UserContext())
	return ctx.JSON(serverutils.SuccessResponse("Success get settings", res))
}

func (c *workspaceController) UpdateSettings(ctx *fiber.Ctx) error {
	var req dto.UpdateSettingsRequest
	if err := bind(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.UpdateSettings(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success update settings", res))
}
