package services

import (
	"context"
	"strings"

	"go.uber.org/zap"

	apperrors "alfredoptarigan/resume-ranker/internal/errors"
	"alfredoptarigan/resume-ranker/internal/llm"
	"alfredoptarigan/resume-ranker/internal/models"
)

// CriteriaExtractor derives ranking criteria from a job description.
type CriteriaExtractor interface {
	ExtractCriteria(ctx context.Context, doc *models.Document) ([]string, error)
}

type extractionResponse struct {
	ExtractedContent string   `json:"extracted_content"`
	Criteria         []string `json:"criteria"`
}

type criteriaExtractor struct {
	llm         llm.LLMService
	prompts     *PromptBuilder
	temperature float32
	logger      *zap.Logger
}

func NewCriteriaExtractor(llmService llm.LLMService, temperature float32, logger *zap.Logger) CriteriaExtractor {
	return &criteriaExtractor{
		llm:         llmService,
		prompts:     NewPromptBuilder(),
		temperature: temperature,
		logger:      logger,
	}
}

// ExtractCriteria returns the criteria in the order the model listed them,
// without blanks or repeated entries. Entries that differ only in case or
// spacing count as repeats, so the result can be shorter than the model's list.
func (e *criteriaExtractor) ExtractCriteria(ctx context.Context, doc *models.Document) ([]string, error) {
	system, user := e.prompts.BuildExtractionPrompt(documentBody(doc))

	response, err := e.llm.Complete(ctx, llm.CompletionRequest{
		Operation:    llm.OperationExtractCriteria,
		SystemPrompt: system,
		UserPrompt:   user,
		Images:       visionInput(doc),
		Temperature:  e.temperature,
		JSON:         true,
	})
	if err != nil {
		return nil, asModelCallError(err, "criteria extraction failed")
	}

	var parsed extractionResponse
	if err := parseJSONResponse(response, &parsed); err != nil {
		return nil, apperrors.NewModelCallError(apperrors.ErrCodeInvalidModelReply,
			"model returned malformed criteria JSON", err)
	}

	seen := make(map[string]struct{}, len(parsed.Criteria))
	criteria := make([]string, 0, len(parsed.Criteria))
	for _, c := range parsed.Criteria {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		key := criterionKey(c)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		criteria = append(criteria, c)
	}

	if len(criteria) == 0 {
		return nil, apperrors.NewModelCallError(apperrors.ErrCodeInvalidModelReply,
			"model returned no ranking criteria", nil).WithContext("file_name", doc.FileName)
	}

	e.logger.Info("✅ Criteria extracted",
		zap.String("file_name", doc.FileName),
		zap.Int("count", len(criteria)))

	return criteria, nil
}

// asModelCallError keeps AppErrors from the model layer intact and wraps anything else.
func asModelCallError(err error, msg string) error {
	if _, ok := apperrors.As(err); ok {
		return err
	}
	return apperrors.NewModelCallError(apperrors.ErrCodeModelCallFailed, msg, err)
}
