package controller

import (
	"ai-notecanvas/internal/dto"
	"ai-notecanvas/internal/pkg/serverutils"
	"ai-notecanvas/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	AskNode(ctx *fiber.Ctx) error
	AskGlobal(ctx *fiber.Ctx) error
	History(ctx *fiber.Ctx) error
	Clear(ctx *fiber.Ctx) error
}

type chatController struct {
	service service.IChatService
}

func NewChatController(service service.IChatService) IChatController {
	return &chatController{service: service}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	r.Post("/canvas/v1/nodes/:id/chat", c.AskNode)

	h := r.Group("/chat/v1")
	h.Get("", c.History)
	h.Post("", c.AskGlobal)
	h.Delete("", c.Clear)
}

func (c *chatController) AskNode(ctx *fiber.Ctx) error {
	var req dto.AskRequest
	if err := bind(ctx, &req); err != nil {
		return err
	}

	reply, err := c.service.AskNode(ctx.UserContext(), ctx.Params("id"), req.Question)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success ask note", dto.AskResponse{Reply: *reply}))
}

func (c *chatController) AskGlobal(ctx *fiber.Ctx) error {
	var req dto.AskRequest
	if err := bind(ctx, &req); err != nil {
		return err
	}

	reply, err := c.service.AskGlobal(ctx.UserContext(), req.Question)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success ask workspace", dto.AskResponse{Reply: *reply}))
}

func (c *chatController) History(ctx *fiber.Ctx) error {
	res := dto.ChatHistoryResponse{Messages: c.service.History(ctx.UserContext())}
	return ctx.JSON(serverutils.SuccessResponse("Success get chat history", res))
}

func (c *chatController) Clear(ctx *fiber.Ctx) error {
	if err := c.service.Clear(ctx.UserContext()); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success clear chat history", nil))
}
