package controller

import (
	"ai-notecanvas/internal/pkg/serverutils"
	"ai-notecanvas/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IConnectController interface {
	RegisterRoutes(r fiber.Router)
	Connect(ctx *fiber.Ctx) error
}

type connectController struct {
	service service.IConnectService
}

func NewConnectController(service service.IConnectService) IConnectController {
	return &connectController{service: service}
}

func (c *connectController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/canvas/v1")
	h.Post("/nodes/:id/connect", c.Connect)
}

// Connect blocks until the reconciliation finishes; progress is pushed over
// the websocket as CONNECT_* events while it runs.
func (c *connectController) Connect(ctx *fiber.Ctx) error {
	res, err := c.service.ConnectNote(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success connect note to document", res))
}
