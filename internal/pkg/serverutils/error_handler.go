package serverutils

import (
	"errors"

	"ai-promptscope-be/internal/pkg/logger"
	"ai-promptscope-be/pkg/negotiation"

	"github.com/gofiber/fiber/v2"
)

// statusFor maps the negotiation failure taxonomy onto HTTP statuses.
// Anything unmapped is a plain 500.
func statusFor(err error) (int, bool) {
	switch {
	case errors.Is(err, negotiation.ErrSessionNotFound):
		return fiber.StatusNotFound, true
	case errors.Is(err, negotiation.ErrUnknownFacet):
		return fiber.StatusUnprocessableEntity, true
	case errors.Is(err, negotiation.ErrInvalidSessionState):
		return fiber.StatusConflict, true
	case errors.Is(err, negotiation.ErrRefinementLimit):
		return fiber.StatusConflict, true
	case errors.Is(err, negotiation.ErrPromptTooLarge):
		return fiber.StatusRequestEntityTooLarge, true
	case errors.Is(err, negotiation.ErrGenerationTimeout):
		return fiber.StatusGatewayTimeout, true
	case errors.Is(err, negotiation.ErrGenerationFailure):
		return fiber.StatusBadGateway, true
	}
	return fiber.StatusInternalServerError, false
}

// ErrorHandlerMiddleware converts errors bubbling out of handlers into
// the standard response envelope.
func ErrorHandlerMiddleware(log logger.ILogger) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Code, fiberErr.Message))
		}

		status, known := statusFor(err)
		if known {
			return ctx.Status(status).JSON(ErrorResponse(status, err.Error()))
		}

		log.Error("Server", "Unhandled error", map[string]interface{}{
			"path":  ctx.Path(),
			"error": err.Error(),
		})
		return ctx.Status(status).JSON(ErrorResponse(status, "Internal server error"))
	}
}
