package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"alfredoptarigan/resume-ranker/internal/models"
	"alfredoptarigan/resume-ranker/internal/services"
)

type ExtractHandler struct {
	intake         *DocumentIntake
	extractor      services.CriteriaExtractor
	recorder       services.RunRecorder
	requestTimeout time.Duration
	logger         *zap.Logger
}

func NewExtractHandler(
	intake *DocumentIntake,
	extractor services.CriteriaExtractor,
	recorder services.RunRecorder,
	requestTimeout time.Duration,
	logger *zap.Logger,
) *ExtractHandler {
	return &ExtractHandler{
		intake:         intake,
		extractor:      extractor,
		recorder:       recorder,
		requestTimeout: requestTimeout,
		logger:         logger,
	}
}

// HandleExtract handles POST /extract-criteria
func (h *ExtractHandler) HandleExtract(c *fiber.Ctx) error {
	doc, err := h.intake.SingleFile(c, "file", "job_description")
	if err != nil {
		return err
	}

	ctx, cancel := requestContext(c, h.requestTimeout)
	defer cancel()

	runID := h.recorder.Start(models.RunKindExtract, nil, 1)
	setRunID(c, runID)

	criteria, err := h.extractor.ExtractCriteria(ctx, doc)
	if err != nil {
		h.recorder.Fail(runID, err)
		return err
	}
	h.recorder.CompleteExtraction(runID, criteria)

	h.logger.Info("✅ Criteria extracted",
		zap.String("file_name", doc.FileName),
		zap.Int("criteria", len(criteria)))

	return c.JSON(models.ExtractCriteriaResponse{Criteria: criteria})
}
