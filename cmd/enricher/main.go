// Command enricher runs the CPF enrichment pipeline from the terminal.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Viniciusalvim1/lumia-data-forge/internal/cli"
	"github.com/Viniciusalvim1/lumia-data-forge/internal/core"
)

// Set via -ldflags at release time.
var (
	version = "dev"
	commit  = ""
	date    = ""
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	info := cli.BuildInfo{Version: version, Commit: commit, Date: date}
	if err := cli.Execute(ctx, info, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, core.FormatUserError(err))
		fmt.Fprintf(os.Stderr, "erro: %v\n", err)
		stop()
		os.Exit(cli.ExitCode(err))
	}
}
