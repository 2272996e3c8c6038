package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	apperrors "alfredoptarigan/resume-ranker/internal/errors"
	"alfredoptarigan/resume-ranker/internal/services"
)

type RunHandler struct {
	recorder services.RunRecorder
}

func NewRunHandler(recorder services.RunRecorder) *RunHandler {
	return &RunHandler{
		recorder: recorder,
	}
}

// HandleGetRun handles GET /api/v1/runs/:id
func (h *RunHandler) HandleGetRun(c *fiber.Ctx) error {
	runID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return apperrors.NewValidationError(apperrors.ErrCodeInvalidRequest, "invalid run ID format", err)
	}

	run, err := h.recorder.GetRun(runID)
	if err != nil {
		return err
	}

	return c.JSON(run)
}
