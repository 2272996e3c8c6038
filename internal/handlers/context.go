package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// HeaderRunID carries the run history id when run history is enabled.
const HeaderRunID = "X-Run-ID"

func requestContext(c *fiber.Ctx, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(c.UserContext())
	}
	return context.WithTimeout(c.UserContext(), timeout)
}

func setRunID(c *fiber.Ctx, runID uuid.UUID) {
	if runID != uuid.Nil {
		c.Set(HeaderRunID, runID.String())
	}
}
