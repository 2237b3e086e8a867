package controller

import (
	"ai-notecanvas/internal/dto"
	"ai-notecanvas/internal/pkg/serverutils"
	"ai-notecanvas/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ICanvasController interface {
	RegisterRoutes(r fiber.Router)
	Graph(ctx *fiber.Ctx) error
	Create(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	UpdateContent(ctx *fiber.Ctx) error
	UpdateTitle(ctx *fiber.Ctx) error
	UpdateStatus(ctx *fiber.Ctx) error
	Move(ctx *fiber.Ctx) error
	SetView(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	Connect(ctx *fiber.Ctx) error
	Disconnect(ctx *fiber.Ctx) error
}

type canvasController struct {
	nodes     service.INodeService
	workspace service.IWorkspaceService
}

func NewCanvasController(nodes service.INodeService, workspace service.IWorkspaceService) ICanvasController {
	return &canvasController{nodes: nodes, workspace: workspace}
}

func (c *canvasController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/canvas/v1")
	h.Get("", c.Graph)

	h.Post("/nodes", c.Create)
	h.Get("/nodes/:id", c.Show)
	h.Put("/nodes/:id/content", c.UpdateContent)
	h.Put("/nodes/:id/title", c.UpdateTitle)
	h.Put("/nodes/:id/status", c.UpdateStatus)
	h.Put("/nodes/:id/position", c.Move)
	h.Put("/nodes/:id/view", c.SetView)
	h.Delete("/nodes/:id", c.Delete)

	h.Post("/edges", c.Connect)
	h.Delete("/edges/:id", c.Disconnect)
}

func (c *canvasController) Graph(ctx *fiber.Ctx) error {
	res := c.workspace.Graph(ctx.UserContext())
	return ctx.JSON(serverutils.SuccessResponse("Success get canvas", res))
}

func (c *canvasController) Create(ctx *fiber.Ctx) error {
	var req dto.CreateNodeRequest
	if err := bind(ctx, &req); err != nil {
		return err
	}

	res, err := c.nodes.Create(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success create note", res))
}

func (c *canvasController) Show(ctx *fiber.Ctx) error {
	res, err := c.nodes.Show(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show note", res))
}

func (c *canvasController) UpdateContent(ctx *fiber.Ctx) error {
	var req dto.UpdateNodeContentRequest
	if err := bind(ctx, &req); err != nil {
		return err
	}
	req.Id = ctx.Params("id")

	res, err := c.nodes.UpdateContent(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success update note content", res))
}

func (c *canvasController) UpdateTitle(ctx *fiber.Ctx) error {
	var req dto.UpdateNodeTitleRequest
	if err := bind(ctx, &req); err != nil {
		return err
	}
	req.Id = ctx.Params("id")

	res, err := c.nodes.UpdateTitle(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success update note title", res))
}

func (c *canvasController) UpdateStatus(ctx *fiber.Ctx) error {
	var req dto.UpdateNodeStatusRequest
	if err := bind(ctx, &req); err != nil {
		return err
	}
	req.Id = ctx.Params("id")

	res, err := c.nodes.UpdateStatus(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success update note status", res))
}

func (c *canvasController) Move(ctx *fiber.Ctx) error {
	var req dto.MoveNodeRequest
	if err := bind(ctx, &req); err != nil {
		return err
	}
	req.Id = ctx.Params("id")

	res, err := c.nodes.Move(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success move note", res))
}

func (c *canvasController) SetView(ctx *fiber.Ctx) error {
	var req dto.SetNodeViewRequest
	if err := bind(ctx, &req); err != nil {
		return err
	}
	req.Id = ctx.Params("id")

	res, err := c.nodes.SetView(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success update note view", res))
}

func (c *canvasController) Delete(ctx *fiber.Ctx) error {
	if err := c.nodes.Delete(ctx.UserContext(), ctx.Params("id")); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success delete note", nil))
}

func (c *canvasController) Connect(ctx *fiber.Ctx) error {
	var req dto.ConnectNodesRequest
	if err := bind(ctx, &req); err != nil {
		return err
	}

	res, err := c.nodes.Connect(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success connect notes", res))
}

func (c *canvasController) Disconnect(ctx *fiber.Ctx) error {
	if err := c.nodes.Disconnect(ctx.UserContext(), ctx.Params("id")); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success disconnect notes", nil))
}
