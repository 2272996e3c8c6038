package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	apperrors "alfredoptarigan/resume-ranker/internal/errors"
	"alfredoptarigan/resume-ranker/internal/llm"
	"alfredoptarigan/resume-ranker/internal/metrics"
	"alfredoptarigan/resume-ranker/internal/models"
)

// ResumeSuggester produces improvement advice for resumes against a role's criteria.
type ResumeSuggester interface {
	SuggestImprovements(ctx context.Context, docs []*models.Document, criteria []string) *models.SuggestionsResponse
}

type suggestionResponse struct {
	MissingSkills     []string          `json:"missing_skills"`
	WeakAreas         []models.WeakArea `json:"weak_areas"`
	FormatSuggestions []string          `json:"format_suggestions"`
}

type resumeSuggester struct {
	llm         llm.LLMService
	worker      Worker
	prompts     *PromptBuilder
	temperature float32
	logger      *zap.Logger
}

func NewResumeSuggester(llmService llm.LLMService, worker Worker, temperature float32, logger *zap.Logger) ResumeSuggester {
	return &resumeSuggester{
		llm:         llmService,
		worker:      worker,
		prompts:     NewPromptBuilder(),
		temperature: temperature,
		logger:      logger,
	}
}

func (s *resumeSuggester) SuggestImprovements(ctx context.Context, docs []*models.Document, criteria []string) *models.SuggestionsResponse {
	suggestions, errs := RunBatch(ctx, s.worker, len(docs), func(ctx context.Context, i int) (*models.ResumeSuggestion, error) {
		return s.suggest(ctx, docs[i], criteria)
	})

	out := &models.SuggestionsResponse{
		Suggestions: []models.ResumeSuggestion{},
		Failures:    []models.ScoringFailure{},
	}
	for i, doc := range docs {
		if errs[i] != nil {
			metrics.ResumesProcessed.WithLabelValues(llm.OperationSuggest, "error").Inc()
			s.logger.Warn("⚠️ Resume review failed",
				zap.String("file_name", doc.FileName),
				zap.Error(errs[i]))
			out.Failures = append(out.Failures, models.ScoringFailure{
				FileName: doc.FileName,
				Error:    failureMessage(errs[i]),
			})
			continue
		}
		metrics.ResumesProcessed.WithLabelValues(llm.OperationSuggest, "success").Inc()
		out.Suggestions = append(out.Suggestions, *suggestions[i])
	}
	return out
}

func (s *resumeSuggester) suggest(ctx context.Context, doc *models.Document, criteria []string) (*models.ResumeSuggestion, error) {
	system, user := s.prompts.BuildSuggestionPrompt(criteria, documentBody(doc))

	response, err := s.llm.Complete(ctx, llm.CompletionRequest{
		Operation:    llm.OperationSuggest,
		SystemPrompt: system,
		UserPrompt:   user,
		Images:       visionInput(doc),
		Temperature:  s.temperature,
		JSON:         true,
	})
	if err != nil {
		return nil, asModelCallError(err, fmt.Sprintf("reviewing %s failed", doc.FileName))
	}

	var parsed suggestionResponse
	if err := parseJSONResponse(response, &parsed); err != nil {
		return nil, apperrors.NewModelCallError(apperrors.ErrCodeInvalidModelReply,
			fmt.Sprintf("model returned malformed suggestions for %s", doc.FileName), err)
	}

	weak := make([]models.WeakArea, 0, len(parsed.WeakAreas))
	for _, w := range parsed.WeakAreas {
		if strings.TrimSpace(w.Skill) == "" && strings.TrimSpace(w.Suggestion) == "" {
			continue
		}
		weak = append(weak, w)
	}

	return &models.ResumeSuggestion{
		FileName:          doc.FileName,
		MissingSkills:     nonBlank(parsed.MissingSkills),
		WeakAreas:         weak,
		FormatSuggestions: nonBlank(parsed.FormatSuggestions),
	}, nil
}

func nonBlank(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
