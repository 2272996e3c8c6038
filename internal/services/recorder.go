package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "alfredoptarigan/resume-ranker/internal/errors"
	"alfredoptarigan/resume-ranker/internal/models"
	"alfredoptarigan/resume-ranker/internal/repositories"
)

// RunRecorder keeps an audit trail of requests in the database. Recording
// problems are logged and never fail the request being recorded.
type RunRecorder interface {
	Start(kind models.RunKind, criteria []string, fileCount int) uuid.UUID
	CompleteExtraction(runID uuid.UUID, criteria []string)
	CompleteScoring(runID uuid.UUID, report *models.Report)
	CompleteSuggestions(runID uuid.UUID, resp *models.SuggestionsResponse)
	Fail(runID uuid.UUID, err error)
	GetRun(id uuid.UUID) (*models.RunResponse, error)
}

type runRecorder struct {
	runs       repositories.RunRepository
	candidates repositories.CandidateResultRepository
	logger     *zap.Logger
}

func NewRunRecorder(
	runs repositories.RunRepository,
	candidates repositories.CandidateResultRepository,
	logger *zap.Logger,
) RunRecorder {
	return &runRecorder{
		runs:       runs,
		candidates: candidates,
		logger:     logger,
	}
}

func (r *runRecorder) Start(kind models.RunKind, criteria []string, fileCount int) uuid.UUID {
	run := &models.ScoringRun{
		ID:        uuid.New(),
		Kind:      kind,
		Status:    models.RunStatusProcessing,
		Criteria:  encodeCriteria(criteria),
		FileCount: fileCount,
	}
	if err := r.runs.Create(run); err != nil {
		r.logger.Warn("⚠️ Failed to record run", zap.String("kind", string(kind)), zap.Error(err))
		return uuid.Nil
	}
	return run.ID
}

func (r *runRecorder) CompleteExtraction(runID uuid.UUID, criteria []string) {
	if runID == uuid.Nil {
		return
	}
	if err := r.runs.UpdateCriteria(runID, encodeCriteria(criteria)); err != nil {
		r.logger.Warn("⚠️ Failed to record extracted criteria", zap.String("run_id", runID.String()), zap.Error(err))
	}
	r.finish(runID, 1, 0)
}

func (r *runRecorder) CompleteScoring(runID uuid.UUID, report *models.Report) {
	if runID == uuid.Nil {
		return
	}

	rows := make([]models.CandidateResult, 0, len(report.Records)+len(report.Failures))
	for _, rec := range report.Records {
		scores, err := json.Marshal(rec.Scores)
		if err != nil {
			r.logger.Warn("⚠️ Failed to encode scores", zap.String("file_name", rec.FileName), zap.Error(err))
			continue
		}
		total := rec.TotalScore
		rows = append(rows, models.CandidateResult{
			ID:            uuid.New(),
			RunID:         runID,
			Position:      len(rows),
			FileName:      rec.FileName,
			CandidateName: rec.CandidateName,
			Scores:        stringPtr(string(scores)),
			TotalScore:    &total,
		})
	}
	rows = appendFailures(rows, runID, report.Failures)

	r.saveCandidates(runID, rows)
	r.finish(runID, len(report.Records), len(report.Failures))
}

func (r *runRecorder) CompleteSuggestions(runID uuid.UUID, resp *models.SuggestionsResponse) {
	if runID == uuid.Nil {
		return
	}

	rows := make([]models.CandidateResult, 0, len(resp.Suggestions)+len(resp.Failures))
	for _, s := range resp.Suggestions {
		body, err := json.Marshal(s)
		if err != nil {
			r.logger.Warn("⚠️ Failed to encode suggestions", zap.String("file_name", s.FileName), zap.Error(err))
			continue
		}
		rows = append(rows, models.CandidateResult{
			ID:          uuid.New(),
			RunID:       runID,
			Position:    len(rows),
			FileName:    s.FileName,
			Suggestions: stringPtr(string(body)),
		})
	}
	rows = appendFailures(rows, runID, resp.Failures)

	r.saveCandidates(runID, rows)
	r.finish(runID, len(resp.Suggestions), len(resp.Failures))
}

func (r *runRecorder) Fail(runID uuid.UUID, err error) {
	if runID == uuid.Nil {
		return
	}
	msg := failureMessage(err)
	if updateErr := r.runs.UpdateError(runID, msg); updateErr != nil {
		r.logger.Warn("⚠️ Failed to record run failure", zap.String("run_id", runID.String()), zap.Error(updateErr))
	}
}

func (r *runRecorder) GetRun(id uuid.UUID) (*models.RunResponse, error) {
	run, err := r.runs.FindByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrRunNotFound) {
			return nil, apperrors.NewNotFoundError(apperrors.ErrCodeRunNotFound,
				fmt.Sprintf("run %s not found", id))
		}
		return nil, apperrors.NewInternalError(apperrors.ErrCodeStorageFailed, "failed to load run", err)
	}
	return toRunResponse(run), nil
}

func (r *runRecorder) saveCandidates(runID uuid.UUID, rows []models.CandidateResult) {
	if err := r.candidates.CreateBatch(rows); err != nil {
		r.logger.Warn("⚠️ Failed to record candidate results", zap.String("run_id", runID.String()), zap.Error(err))
	}
}

func (r *runRecorder) finish(runID uuid.UUID, succeeded, failed int) {
	if err := r.runs.Finish(runID, RunStatusFor(succeeded, failed), succeeded, failed); err != nil {
		r.logger.Warn("⚠️ Failed to finish run", zap.String("run_id", runID.String()), zap.Error(err))
	}
}

// RunStatusFor derives the final status of a run from its item counts.
func RunStatusFor(succeeded, failed int) models.RunStatus {
	switch {
	case failed == 0:
		return models.RunStatusCompleted
	case succeeded == 0:
		return models.RunStatusFailed
	default:
		return models.RunStatusPartial
	}
}

func appendFailures(rows []models.CandidateResult, runID uuid.UUID, failures []models.ScoringFailure) []models.CandidateResult {
	for _, f := range failures {
		rows = append(rows, models.CandidateResult{
			ID:           uuid.New(),
			RunID:        runID,
			Position:     len(rows),
			FileName:     f.FileName,
			ErrorMessage: stringPtr(f.Error),
		})
	}
	return rows
}

func toRunResponse(run *models.ScoringRun) *models.RunResponse {
	resp := &models.RunResponse{
		ID:             run.ID.String(),
		Kind:           string(run.Kind),
		Status:         string(run.Status),
		Criteria:       decodeCriteria(run.Criteria),
		FileCount:      run.FileCount,
		SucceededCount: run.SucceededCount,
		FailedCount:    run.FailedCount,
		ErrorMessage:   run.ErrorMessage,
		Candidates:     make([]models.CandidateResponse, 0, len(run.Candidates)),
		CreatedAt:      run.CreatedAt.Format(time.RFC3339),
	}

	for _, c := range run.Candidates {
		item := models.CandidateResponse{
			FileName:      c.FileName,
			CandidateName: c.CandidateName,
			TotalScore:    c.TotalScore,
			ErrorMessage:  c.ErrorMessage,
		}
		if c.Scores != nil {
			var scores map[string]int
			if err := json.Unmarshal([]byte(*c.Scores), &scores); err == nil {
				item.Scores = scores
			}
		}
		if c.Suggestions != nil {
			var s models.ResumeSuggestion
			if err := json.Unmarshal([]byte(*c.Suggestions), &s); err == nil {
				item.Suggestions = &s
			}
		}
		resp.Candidates = append(resp.Candidates, item)
	}

	return resp
}

func encodeCriteria(criteria []string) string {
	if len(criteria) == 0 {
		return "[]"
	}
	b, err := json.Marshal(criteria)
	if err != nil {
		return "[]"
	}
	return string(b)
}

func decodeCriteria(raw string) []string {
	criteria := []string{}
	if raw == "" {
		return criteria
	}
	_ = json.Unmarshal([]byte(raw), &criteria)
	return criteria
}

func stringPtr(s string) *string {
	return &s
}

type noopRunRecorder struct{}

// NewNoopRunRecorder is used when no database is configured.
func NewNoopRunRecorder() RunRecorder {
	return noopRunRecorder{}
}

func (noopRunRecorder) Start(models.RunKind, []string, int) uuid.UUID { return uuid.Nil }
func (noopRunRecorder) CompleteExtraction(uuid.UUID, []string) {}
func (noopRunRecorder) CompleteScoring(uuid.UUID, *models.Report) {}
func (noopRunRecorder) CompleteSuggestions(uuid.UUID, *models.SuggestionsResponse) {}
func (noopRunRecorder) Fail(uuid.UUID, error) {}

func (noopRunRecorder) GetRun(id uuid.UUID) (*models.RunResponse, error) {
	return nil, apperrors.NewNotFoundError(apperrors.ErrCodeRunNotFound,
		"run history is not enabled")
}
