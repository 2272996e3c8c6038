package handlers

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	apperrors "alfredoptarigan/resume-ranker/internal/errors"
	"alfredoptarigan/resume-ranker/internal/models"
	"alfredoptarigan/resume-ranker/internal/services"
)

// HeaderFailedResumes lists, comma separated, the uploads left out of the report.
const HeaderFailedResumes = "X-Failed-Resumes"

type ScoreHandler struct {
	intake         *DocumentIntake
	scorer         services.ResumeScorer
	reports        services.ReportBuilder
	recorder       services.RunRecorder
	requestTimeout time.Duration
	logger         *zap.Logger
}

func NewScoreHandler(
	intake *DocumentIntake,
	scorer services.ResumeScorer,
	reports services.ReportBuilder,
	recorder services.RunRecorder,
	requestTimeout time.Duration,
	logger *zap.Logger,
) *ScoreHandler {
	return &ScoreHandler{
		intake:         intake,
		scorer:         scorer,
		reports:        reports,
		recorder:       recorder,
		requestTimeout: requestTimeout,
		logger:         logger,
	}
}

// HandleScore handles POST /score-resumes
func (h *ScoreHandler) HandleScore(c *fiber.Ctx) error {
	criteria, docs, err := parseBatchForm(c, h.intake)
	if err != nil {
		return err
	}

	ctx, cancel := requestContext(c, h.requestTimeout)
	defer cancel()

	runID := h.recorder.Start(models.RunKindScore, criteria, len(docs))
	setRunID(c, runID)

	report := h.scorer.ScoreResumes(ctx, docs, criteria)
	h.recorder.CompleteScoring(runID, report)

	if len(report.Failures) > 0 {
		c.Set(HeaderFailedResumes, strings.Join(report.FailedFileNames(), ","))
	}
	if len(report.Records) == 0 {
		return services.AllResumesFailedError(len(docs), report.Failures)
	}

	var buf bytes.Buffer
	if err := h.reports.WriteCSV(&buf, report); err != nil {
		return apperrors.NewInternalError(apperrors.ErrCodeReportFailed, "failed to build report", err)
	}

	c.Set(fiber.HeaderContentType, services.ReportMIMEType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%s", services.ReportFileName))
	return c.Send(buf.Bytes())
}

// parseBatchForm reads the criteria and files fields shared by the scoring
// and suggestion endpoints.
func parseBatchForm(c *fiber.Ctx, intake *DocumentIntake) ([]string, []*models.Document, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, nil, apperrors.NewValidationError(apperrors.ErrCodeInvalidRequest,
			"failed to parse multipart form", err)
	}

	var raw string
	if values := form.Value["criteria"]; len(values) > 0 {
		raw = values[0]
	}
	criteria, err := services.ParseCriteria(raw)
	if err != nil {
		return nil, nil, err
	}

	docs, err := intake.Files(form, "files", "resume")
	if err != nil {
		return nil, nil, err
	}
	return criteria, docs, nil
}
