// Package cli implements the enricher command line.
package cli

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Viniciusalvim1/lumia-data-forge/internal/core"
	"github.com/Viniciusalvim1/lumia-data-forge/internal/logging"
)

// originCLI tags runs started from the command line.
const originCLI = "cli"

// BuildInfo is set by the linker in release builds.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

type globalFlags struct {
	logLevel  string
	logFormat string
}

// NewRootCommand builds the enricher command tree.
func NewRootCommand(info BuildInfo) *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:   "enricher",
		Short: "Enrich CPF lists with contact data from a master file",
		Long: `enricher joins a work list of CPFs against a master file and fills in
nome, email and telefone for every CPF found.

Inputs may be CSV (any of , ; tab |), plain text with one CPF per line,
or XLSX workbooks.`,
		Version:       info.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetVersionTemplate("enricher {{.Version}}\n")

	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	root.PersistentFlags().StringVar(&flags.logFormat, "log-format", "text", "log format: text or json")

	root.AddCommand(newRunCommand(flags))
	root.AddCommand(newInspectCommand(flags))
	root.AddCommand(newVersionCommand(info))

	return root
}

// Execute runs the command tree with args.
func Execute(ctx context.Context, info BuildInfo, args []string) error {
	root := NewRootCommand(info)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// logger writes diagnostics to stderr so stdout stays clean for results.
func (g *globalFlags) logger(cmd *cobra.Command) *slog.Logger {
	return logging.New(cmd.ErrOrStderr(), g.logLevel, g.logFormat)
}

func commandContext(cmd *cobra.Command) context.Context {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return core.ContextWithOrigin(ctx, originCLI)
}
