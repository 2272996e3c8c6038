package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"alfredoptarigan/resume-ranker/internal/llm"
	"alfredoptarigan/resume-ranker/internal/models"
)

const (
	rubricChunkSize    = 1000
	rubricChunkOverlap = 200
)

// RubricIngester loads scoring guidance into the rubric knowledge base.
type RubricIngester interface {
	// Ingest replaces the chunks previously stored for the document and
	// returns how many chunks were stored. Nothing is written unless every
	// chunk embedded.
	Ingest(ctx context.Context, doc *models.Document) (int, error)
}

type rubricIngester struct {
	llm     llm.LLMService
	qdrant  QdrantService
	chunker TextChunker
	logger  *zap.Logger
}

func NewRubricIngester(llmService llm.LLMService, qdrant QdrantService, logger *zap.Logger) RubricIngester {
	return &rubricIngester{
		llm:     llmService,
		qdrant:  qdrant,
		chunker: NewTextChunker(),
		logger:  logger,
	}
}

func (r *rubricIngester) Ingest(ctx context.Context, doc *models.Document) (int, error) {
	docID := doc.Stem()

	chunks := r.chunker.ChunkText(doc.Text, rubricChunkSize, rubricChunkOverlap)
	if len(chunks) == 0 {
		return 0, fmt.Errorf("%s has no text to ingest", doc.FileName)
	}
	r.logger.Info("✂️ Rubric chunked", zap.String("doc_id", docID), zap.Int("chunks", len(chunks)))

	batch := make([]RubricChunk, 0, len(chunks))
	var errs []error
	for i, chunk := range chunks {
		embedding, err := r.llm.Embed(ctx, chunk)
		if err != nil {
			errs = append(errs, fmt.Errorf("chunk %d: failed to generate embedding: %w", i+1, err))
			continue
		}
		batch = append(batch, RubricChunk{
			DocID:     docID,
			DocType:   DocTypeScoringRubric,
			Index:     i,
			Text:      chunk,
			Embedding: embedding,
		})

		if (i+1)%5 == 0 || i == len(chunks)-1 {
			r.logger.Info("📊 Progress", zap.String("doc_id", docID), zap.Int("embedded", len(batch)), zap.Int("total", len(chunks)))
		}
	}
	// the stored version stays untouched unless the whole document embedded
	if len(errs) > 0 {
		return 0, errors.Join(errs...)
	}

	if err := r.qdrant.UpsertChunks(ctx, batch); err != nil {
		return 0, err
	}
	// point ids are per chunk index, so only a longer previous version leaves chunks behind
	if err := r.qdrant.DeleteChunksFrom(ctx, docID, len(batch)); err != nil {
		return len(batch), fmt.Errorf("failed to remove stale chunks of %s: %w", doc.FileName, err)
	}
	return len(batch), nil
}
