package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"alfredoptarigan/resume-ranker/internal/models"
	"alfredoptarigan/resume-ranker/internal/services"
)

type SuggestHandler struct {
	intake         *DocumentIntake
	suggester      services.ResumeSuggester
	recorder       services.RunRecorder
	requestTimeout time.Duration
	logger         *zap.Logger
}

func NewSuggestHandler(
	intake *DocumentIntake,
	suggester services.ResumeSuggester,
	recorder services.RunRecorder,
	requestTimeout time.Duration,
	logger *zap.Logger,
) *SuggestHandler {
	return &SuggestHandler{
		intake:         intake,
		suggester:      suggester,
		recorder:       recorder,
		requestTimeout: requestTimeout,
		logger:         logger,
	}
}

// HandleSuggest handles POST /suggest-improvements
func (h *SuggestHandler) HandleSuggest(c *fiber.Ctx) error {
	criteria, docs, err := parseBatchForm(c, h.intake)
	if err != nil {
		return err
	}

	ctx, cancel := requestContext(c, h.requestTimeout)
	defer cancel()

	runID := h.recorder.Start(models.RunKindSuggest, criteria, len(docs))
	setRunID(c, runID)

	resp := h.suggester.SuggestImprovements(ctx, docs, criteria)
	h.recorder.CompleteSuggestions(runID, resp)

	if len(resp.Suggestions) == 0 {
		return services.AllResumesFailedError(len(docs), resp.Failures)
	}

	h.logger.Info("✅ Suggestions generated",
		zap.Int("resumes", len(resp.Suggestions)),
		zap.Int("failed", len(resp.Failures)))

	return c.JSON(resp)
}
