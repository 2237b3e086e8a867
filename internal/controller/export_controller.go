package controller

import (
	"fmt"

	"ai-notecanvas/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IExportController interface {
	RegisterRoutes(r fiber.Router)
	Download(ctx *fiber.Ctx) error
}

type exportController struct {
	service service.IExportService
}

func NewExportController(service service.IExportService) IExportController {
	return &exportController{service: service}
}

func (c *exportController) RegisterRoutes(r fiber.Router) {
	r.Get("/export/v1", c.Download)
}

// Download answers with the raw backup file rather than the usual envelope.
func (c *exportController) Download(ctx *fiber.Ctx) error {
	data, name, err := c.service.Encode(ctx.UserContext())
	if err != nil {
		return err
	}

	ctx.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	ctx.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, name))
	return ctx.Send(data)
}
