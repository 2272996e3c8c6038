package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"alfredoptarigan/resume-ranker/internal/routes"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "ranker %s\n", routes.Version)
			return err
		},
	}
}
