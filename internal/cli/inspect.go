package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Viniciusalvim1/lumia-data-forge/internal/core"
)

func newInspectCommand(g *globalFlags) *cobra.Command {
	var (
		noHeader bool
		asJSON   bool
		encoding string
	)

	cmd := &cobra.Command{
		Use:   "inspect FILE",
		Short: "Show how a file's columns are detected and mapped",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			enc, err := core.ParseEncoding(encoding)
			if err != nil {
				return err
			}
			opts := core.DefaultOptions()
			opts.Encoding = enc
			opts.Logger = g.logger(cmd)

			svc := core.NewService(opts)
			defer svc.Close()

			file, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open %s: %w", args[0], err)
			}
			defer file.Close()

			ins, err := svc.Inspect(commandContext(cmd), core.Source{Name: args[0], Reader: file}, noHeader)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(ins)
			}
			return printInspection(cmd.OutOrStdout(), ins)
		},
	}

	cmd.Flags().BoolVar(&noHeader, "no-header", false, "file has no header row")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the inspection as JSON")
	cmd.Flags().StringVar(&encoding, "encoding", string(core.EncodingAuto), "input encoding: auto, utf-8, windows-1252, iso-8859-1")

	return cmd
}
