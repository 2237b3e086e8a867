package controller

import (
	"ai-notecanvas/internal/pkg/serverutils"

	"github.com/gofiber/fiber/v2"
)

// bind parses the JSON body into req and validates it. A body that does not
// parse is the client's fault, so it surfaces as 400.
func bind(ctx *fiber.Ctx, req interface{}) error {
	if err := ctx.BodyParser(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	return serverutils.ValidateRequest(req)
}
