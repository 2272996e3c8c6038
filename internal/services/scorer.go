package services

import (
	"context"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	apperrors "alfredoptarigan/resume-ranker/internal/errors"
	"alfredoptarigan/resume-ranker/internal/llm"
	"alfredoptarigan/resume-ranker/internal/metrics"
	"alfredoptarigan/resume-ranker/internal/models"
)

// ResumeScorer rates resumes against ranking criteria.
type ResumeScorer interface {
	ScoreResume(ctx context.Context, doc *models.Document, criteria []string) (*models.ResumeRecord, error)
	ScoreResumes(ctx context.Context, docs []*models.Document, criteria []string) *models.Report
}

type scoreResponse struct {
	CandidateName string             `json:"candidate_name"`
	Scores        map[string]float64 `json:"scores"`
	TotalScore    float64            `json:"total_score"`
}

type resumeScorer struct {
	llm         llm.LLMService
	worker      Worker
	rubric      RubricRetriever
	prompts     *PromptBuilder
	temperature float32
	logger      *zap.Logger
}

func NewResumeScorer(
	llmService llm.LLMService,
	worker Worker,
	rubric RubricRetriever,
	temperature float32,
	logger *zap.Logger,
) ResumeScorer {
	if rubric == nil {
		rubric = NewNoopRubricRetriever()
	}
	return &resumeScorer{
		llm:         llmService,
		worker:      worker,
		rubric:      rubric,
		prompts:     NewPromptBuilder(),
		temperature: temperature,
		logger:      logger,
	}
}

// ScoreResume scores a single resume.
func (s *resumeScorer) ScoreResume(ctx context.Context, doc *models.Document, criteria []string) (*models.ResumeRecord, error) {
	return s.score(ctx, doc, criteria, s.rubric.Retrieve(ctx, criteria))
}

// ScoreResumes scores every resume on the worker pool. Records keep upload
// order; resumes that fail are reported in Failures.
func (s *resumeScorer) ScoreResumes(ctx context.Context, docs []*models.Document, criteria []string) *models.Report {
	rubricContext := s.rubric.Retrieve(ctx, criteria)

	records, errs := RunBatch(ctx, s.worker, len(docs), func(ctx context.Context, i int) (*models.ResumeRecord, error) {
		return s.score(ctx, docs[i], criteria, rubricContext)
	})

	report := &models.Report{Criteria: criteria}
	for i, doc := range docs {
		if errs[i] != nil {
			metrics.ResumesProcessed.WithLabelValues(llm.OperationScoreResume, "error").Inc()
			s.logger.Warn("⚠️ Resume scoring failed",
				zap.String("file_name", doc.FileName),
				zap.Error(errs[i]))
			report.Failures = append(report.Failures, models.ScoringFailure{
				FileName: doc.FileName,
				Error:    failureMessage(errs[i]),
			})
			continue
		}
		metrics.ResumesProcessed.WithLabelValues(llm.OperationScoreResume, "success").Inc()
		report.Records = append(report.Records, *records[i])
	}

	s.logger.Info("✅ Resumes scored",
		zap.Int("scored", len(report.Records)),
		zap.Int("failed", len(report.Failures)))

	return report
}

func (s *resumeScorer) score(ctx context.Context, doc *models.Document, criteria []string, rubricContext string) (*models.ResumeRecord, error) {
	system, user := s.prompts.BuildScoringPrompt(criteria, documentBody(doc), rubricContext)

	response, err := s.llm.Complete(ctx, llm.CompletionRequest{
		Operation:    llm.OperationScoreResume,
		SystemPrompt: system,
		UserPrompt:   user,
		Images:       visionInput(doc),
		Temperature:  s.temperature,
		JSON:         true,
	})
	if err != nil {
		return nil, asModelCallError(err, fmt.Sprintf("scoring %s failed", doc.FileName))
	}

	var parsed scoreResponse
	if err := parseJSONResponse(response, &parsed); err != nil {
		return nil, apperrors.NewModelCallError(apperrors.ErrCodeInvalidModelReply,
			fmt.Sprintf("model returned malformed scores for %s", doc.FileName), err)
	}

	scores, err := matchScores(criteria, parsed.Scores)
	if err != nil {
		return nil, apperrors.NewModelCallError(apperrors.ErrCodeInvalidModelReply,
			fmt.Sprintf("model returned unusable scores for %s", doc.FileName), err)
	}

	total := 0
	for _, v := range scores {
		total += v
	}

	name := strings.TrimSpace(parsed.CandidateName)
	if name == "" {
		name = doc.Stem()
	}

	return &models.ResumeRecord{
		CandidateName: name,
		FileName:      doc.FileName,
		Scores:        scores,
		TotalScore:    total,
	}, nil
}

// maxScoreMagnitude bounds a single score so that rounding and summing stay
// exact.
const maxScoreMagnitude = 1e6

// matchScores maps the model's score keys onto the request criteria, first
// by exact text and then ignoring case and spacing. Every criterion must
// be scored with a finite value.
func matchScores(criteria []string, raw map[string]float64) (map[string]int, error) {
	byKey := make(map[string]float64, len(raw))
	for k, v := range raw {
		byKey[criterionKey(k)] = v
	}

	scores := make(map[string]int, len(criteria))
	var missing []string
	for _, c := range criteria {
		v, ok := raw[c]
		if !ok {
			v, ok = byKey[criterionKey(c)]
		}
		if !ok {
			missing = append(missing, c)
			continue
		}
		if math.IsNaN(v) || math.Abs(v) > maxScoreMagnitude {
			return nil, fmt.Errorf("score %v for %q is out of range", v, c)
		}
		scores[c] = int(math.Round(v))
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("no score for criteria: %s", strings.Join(missing, ", "))
	}
	return scores, nil
}

// AllResumesFailedError reports a batch in which no resume produced a
// result. The first failure is surfaced in the message and the full list
// is attached as context.
func AllResumesFailedError(total int, failures []models.ScoringFailure) error {
	appErr := apperrors.NewModelCallError(apperrors.ErrCodeAllResumesFailed,
		fmt.Sprintf("none of the %d resumes could be processed", total), nil)
	if len(failures) > 0 {
		appErr.Message = fmt.Sprintf("%s: %s", appErr.Message, failures[0].Error)
		appErr.WithContext("failures", failures)
	}
	return appErr
}

// failureMessage is the client facing text for a per-resume failure.
func failureMessage(err error) string {
	if appErr, ok := apperrors.As(err); ok {
		return appErr.Message
	}
	return err.Error()
}
