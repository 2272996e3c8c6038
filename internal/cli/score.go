package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"alfredoptarigan/resume-ranker/internal/bootstrap"
	"alfredoptarigan/resume-ranker/internal/models"
	"alfredoptarigan/resume-ranker/internal/services"
)

func newScoreCommand() *cobra.Command {
	var criteriaArg, output string

	cmd := &cobra.Command{
		Use:   "score --criteria <json|@file> [resume-files...]",
		Short: "Score resumes against criteria and write a CSV report",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			criteria, err := readCriteria(criteriaArg)
			if err != nil {
				return err
			}

			container, err := containerFromCommand(cmd)
			if err != nil {
				return err
			}
			defer container.Close()

			docs, err := loadFiles(container, args)
			if err != nil {
				return err
			}

			report := container.Scorer.ScoreResumes(cmd.Context(), docs, criteria)
			reportFailures(cmd, report.Failures)
			if len(report.Records) == 0 {
				return services.AllResumesFailedError(len(docs), report.Failures)
			}

			out, err := openOutput(cmd, output)
			if err != nil {
				return err
			}
			defer out.Close()

			return container.Reports.WriteCSV(out, report)
		},
	}

	cmd.Flags().StringVarP(&criteriaArg, "criteria", "c", "", `Criteria as a JSON list, or @path to a file holding one`)
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file path (default: stdout)")
	_ = cmd.MarkFlagRequired("criteria")
	return cmd
}

func newSuggestCommand() *cobra.Command {
	var criteriaArg, output string

	cmd := &cobra.Command{
		Use:   "suggest --criteria <json|@file> [resume-files...]",
		Short: "Suggest resume improvements for the given criteria",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			criteria, err := readCriteria(criteriaArg)
			if err != nil {
				return err
			}

			container, err := containerFromCommand(cmd)
			if err != nil {
				return err
			}
			defer container.Close()

			docs, err := loadFiles(container, args)
			if err != nil {
				return err
			}

			resp := container.Suggester.SuggestImprovements(cmd.Context(), docs, criteria)
			reportFailures(cmd, resp.Failures)
			if len(resp.Suggestions) == 0 {
				return services.AllResumesFailedError(len(docs), resp.Failures)
			}

			out, err := openOutput(cmd, output)
			if err != nil {
				return err
			}
			defer out.Close()

			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			if err := enc.Encode(resp); err != nil {
				return fmt.Errorf("failed to write suggestions: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&criteriaArg, "criteria", "c", "", `Criteria as a JSON list, or @path to a file holding one`)
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file path (default: stdout)")
	_ = cmd.MarkFlagRequired("criteria")
	return cmd
}

// readCriteria accepts an inline JSON list or @path to a file containing one.
func readCriteria(arg string) ([]string, error) {
	raw := arg
	if path, ok := strings.CutPrefix(arg, "@"); ok {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read criteria file: %w", err)
		}
		raw = string(data)
	}
	return services.ParseCriteria(raw)
}

func loadFiles(container *bootstrap.Container, paths []string) ([]*models.Document, error) {
	for _, path := range paths {
		if _, err := services.DetectFormat(path); err != nil {
			return nil, err
		}
	}

	docs := make([]*models.Document, 0, len(paths))
	for _, path := range paths {
		doc, err := container.Loader.LoadFile(path, filepath.Base(path))
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func reportFailures(cmd *cobra.Command, failures []models.ScoringFailure) {
	for _, f := range failures {
		fmt.Fprintf(cmd.ErrOrStderr(), "skipped %s: %s\n", f.FileName, f.Error)
	}
}
