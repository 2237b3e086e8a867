package serverutils

import (
	"errors"

	"ai-notecanvas/internal/pkg/logger"
	"ai-notecanvas/internal/service"
	"ai-notecanvas/pkg/llm"

	"github.com/gofiber/fiber/v2"
)

// StatusFor maps domain errors onto HTTP status codes.
func StatusFor(err error) int {
	var fiberErr *fiber.Error
	var validationErr *ValidationError

	switch {
	case errors.As(err, &fiberErr):
		return fiberErr.Code
	case errors.As(err, &validationErr):
		return fiber.StatusBadRequest
	case errors.Is(err, service.ErrNodeNotFound), errors.Is(err, service.ErrEdgeNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, service.ErrConnectInProgress):
		return fiber.StatusConflict
	case errors.Is(err, service.ErrSelfLoop),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrNoNotesSelected),
		errors.Is(err, service.ErrInvalidAnalysisResult),
		errors.Is(err, llm.ErrUnknownMode):
		return fiber.StatusBadRequest
	case errors.Is(err, llm.ErrAuth):
		return fiber.StatusUnauthorized
	case errors.Is(err, service.ErrInvalidReconciliation), llm.IsUpstream(err):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

// NewErrorHandler is the fiber.Config ErrorHandler: every error leaves as
// the standard envelope.
func NewErrorHandler(log logger.ILogger) fiber.ErrorHandler {
	return func(ctx *fiber.Ctx, err error) error {
		code := StatusFor(err)

		details := map[string]interface{}{
			"method": ctx.Method(),
			"path":   ctx.Path(),
			"status": code,
			"error":  err.Error(),
		}
		if code >= fiber.StatusInternalServerError {
			log.Error("HTTP", "Request failed", details)
		} else {
			log.Debug("HTTP", "Request rejected", details)
		}

		var validationErr *ValidationError
		if errors.As(err, &validationErr) {
			return ctx.Status(code).JSON(ErrorResponseWithData(code, "Validation failed", validationErr.Fields))
		}
		return ctx.Status(code).JSON(ErrorResponse(code, err.Error()))
	}
}
