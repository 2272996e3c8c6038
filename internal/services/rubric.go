package services

import (
	"context"

	"go.uber.org/zap"

	"alfredoptarigan/resume-ranker/internal/llm"
)

// DocTypeScoringRubric tags rubric chunks in the vector store.
const DocTypeScoringRubric = "scoring_rubric"

// RubricRetriever looks up scoring guidance for a set of criteria. An empty
// result means no guidance; lookup failures are logged, never returned.
type RubricRetriever interface {
	Retrieve(ctx context.Context, criteria []string) string
}

type rubricRetriever struct {
	llm     llm.LLMService
	qdrant  QdrantService
	prompts *PromptBuilder
	limit   int
	logger  *zap.Logger
}

func NewRubricRetriever(llmService llm.LLMService, qdrant QdrantService, limit int, logger *zap.Logger) RubricRetriever {
	if limit <= 0 {
		limit = 3
	}
	return &rubricRetriever{
		llm:     llmService,
		qdrant:  qdrant,
		prompts: NewPromptBuilder(),
		limit:   limit,
		logger:  logger,
	}
}

func (r *rubricRetriever) Retrieve(ctx context.Context, criteria []string) string {
	query := r.prompts.BuildRubricQuery(criteria)

	embedding, err := r.llm.Embed(ctx, query)
	if err != nil {
		r.logger.Warn("⚠️ Failed to embed rubric query", zap.Error(err))
		return ""
	}

	results, err := r.qdrant.SearchSimilar(ctx, embedding, DocTypeScoringRubric, r.limit)
	if err != nil {
		r.logger.Warn("⚠️ Failed to search scoring rubric", zap.Error(err))
		return ""
	}

	r.logger.Debug("📚 Rubric context retrieved", zap.Int("chunks", len(results)))
	return FormatRAGContext(results)
}

type noopRubricRetriever struct{}

// NewNoopRubricRetriever is used when no rubric knowledge base is configured.
func NewNoopRubricRetriever() RubricRetriever {
	return noopRubricRetriever{}
}

func (noopRubricRetriever) Retrieve(context.Context, []string) string {
	return ""
}
