package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newVersionCommand(info BuildInfo) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "enricher %s\n", info.Version)
			if info.Commit != "" {
				fmt.Fprintf(out, "  commit: %s\n", info.Commit)
			}
			if info.Date != "" {
				fmt.Fprintf(out, "  built:  %s\n", info.Date)
			}
			return nil
		},
	}
}
