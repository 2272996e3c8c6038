package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"alfredoptarigan/resume-ranker/internal/services"
)

func newIngestRubricCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ingest-rubric [rubric-files...]",
		Short: "Load scoring rubric documents into the rubric knowledge base",
		Long: `Chunk, embed and store PDF or DOCX scoring rubrics in Qdrant. Scoring
requests then receive the best matching guidance. Re-ingesting a file
replaces its previous chunks. Requires QDRANT_URL.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := getLoggerFromContext(cmd.Context())

			container, err := containerFromCommand(cmd)
			if err != nil {
				return err
			}
			defer container.Close()

			if container.Qdrant == nil {
				return fmt.Errorf("rubric knowledge base is not configured: set QDRANT_URL")
			}

			docs, err := loadFiles(container, args)
			if err != nil {
				return err
			}

			ingester := services.NewRubricIngester(container.LLM, container.Qdrant, logger)
			failed := 0
			for _, doc := range docs {
				logger.Info("📄 Processing rubric", zap.String("file_name", doc.FileName))

				stored, err := ingester.Ingest(cmd.Context(), doc)
				if err != nil {
					failed++
					logger.Error("❌ Rubric ingestion incomplete",
						zap.String("file_name", doc.FileName),
						zap.Int("stored", stored),
						zap.Error(err))
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d chunks stored\n", doc.FileName, stored)
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d rubric documents failed to ingest", failed, len(docs))
			}
			return nil
		},
	}
}
