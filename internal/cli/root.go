package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"alfredoptarigan/resume-ranker/internal/bootstrap"
	"alfredoptarigan/resume-ranker/internal/config"
)

type configKeyType struct{}
type loggerKeyType struct{}

var configKey = configKeyType{}
var loggerKey = loggerKeyType{}

// newContainer is replaced in tests.
var newContainer = bootstrap.New

func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "ranker",
		Short: "Extract ranking criteria and score resumes from the command line",
		Long: `ranker runs the resume ranking pipeline without the HTTP API. It reads
PDF and DOCX files, asks the configured model for criteria or scores, and
writes JSON or CSV output.`,
		SilenceUsage: true,
	}

	root.AddCommand(newExtractCommand())
	root.AddCommand(newScoreCommand())
	root.AddCommand(newSuggestCommand())
	root.AddCommand(newIngestRubricCommand())
	root.AddCommand(newVersionCommand())
	return root
}

// Execute runs the root command with cfg and logger available to every subcommand.
func Execute(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	ctx = context.WithValue(ctx, configKey, cfg)
	ctx = context.WithValue(ctx, loggerKey, logger)
	return NewRootCommand().ExecuteContext(ctx)
}

func getConfigFromContext(ctx context.Context) (*config.Config, error) {
	if cfg, ok := ctx.Value(configKey).(*config.Config); ok {
		return cfg, nil
	}
	return nil, fmt.Errorf("config not found in context")
}

func getLoggerFromContext(ctx context.Context) *zap.Logger {
	if logger, ok := ctx.Value(loggerKey).(*zap.Logger); ok {
		return logger
	}
	return zap.NewNop()
}

func containerFromCommand(cmd *cobra.Command) (*bootstrap.Container, error) {
	cfg, err := getConfigFromContext(cmd.Context())
	if err != nil {
		return nil, err
	}
	container, err := newContainer(cmd.Context(), cfg, getLoggerFromContext(cmd.Context()))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}
	return container, nil
}

// openOutput returns stdout when path is empty.
func openOutput(cmd *cobra.Command, path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{cmd.OutOrStdout()}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, nil
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }
