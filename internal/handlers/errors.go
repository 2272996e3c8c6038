package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	apperrors "alfredoptarigan/resume-ranker/internal/errors"
)

// ErrorHandler renders handler errors as {"error", "code", "error_code"}.
// AppErrors choose their own status; anything else is a 500.
func ErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := err.Error()
		errorCode := ""

		var (
			fiberErr *fiber.Error
			details  map[string]any
		)
		if appErr, ok := apperrors.As(err); ok {
			code = appErr.HTTPStatus()
			message = appErr.Message
			errorCode = appErr.Code
			details = appErr.Context
		} else if errors.As(err, &fiberErr) {
			code = fiberErr.Code
			message = fiberErr.Message
		} else {
			message = "internal server error"
		}

		fields := []zap.Field{
			zap.Int("status", code),
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err),
		}
		if len(details) > 0 {
			fields = append(fields, zap.Any("context", details))
		}
		if code >= fiber.StatusInternalServerError {
			logger.Error("❌ Request failed", fields...)
		} else {
			logger.Warn("⚠️ Request rejected", fields...)
		}

		body := fiber.Map{
			"error": message,
			"code":  code,
		}
		if errorCode != "" {
			body["error_code"] = errorCode
		}
		return c.Status(code).JSON(body)
	}
}
