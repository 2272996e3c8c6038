package cli

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"alfredoptarigan/resume-ranker/internal/models"
)

func newExtractCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "extract [job-description-file]",
		Short: "Extract ranking criteria from a job description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := containerFromCommand(cmd)
			if err != nil {
				return err
			}
			defer container.Close()

			doc, err := container.Loader.LoadFile(args[0], filepath.Base(args[0]))
			if err != nil {
				return err
			}

			criteria, err := container.Extractor.ExtractCriteria(cmd.Context(), doc)
			if err != nil {
				return err
			}

			out, err := openOutput(cmd, output)
			if err != nil {
				return err
			}
			defer out.Close()

			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			if err := enc.Encode(models.ExtractCriteriaResponse{Criteria: criteria}); err != nil {
				return fmt.Errorf("failed to write criteria: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file path (default: stdout)")
	return cmd
}
