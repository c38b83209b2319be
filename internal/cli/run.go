package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/Viniciusalvim1/lumia-data-forge/internal/core"
)

// stdinName selects standard input for --cpfs.
const stdinName = "-"

type runFlags struct {
	master         string
	work           string
	cpfs           string
	out            string
	format         string
	delimiter      string
	noBOM          bool
	keep           string
	nameFromMaster bool
	encoding       string
	noHeader       bool
	maxSize        int64
}

func newRunCommand(g *globalFlags) *cobra.Command {
	f := &runFlags{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Enrich a work list from a master file",
		Example: `  enricher run --master clientes.csv --cpfs lista.txt
  enricher run --master clientes.xlsx --work trabalho.csv --format xlsx
  cat lista.txt | enricher run --master clientes.csv --cpfs - --out saida.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runEnrich(cmd, g, f)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.master, "master", "", "master file with cpf, nome, email, telefone (.csv, .txt, .xlsx)")
	flags.StringVar(&f.work, "work", "", "work file with the CPFs to enrich")
	flags.StringVar(&f.cpfs, "cpfs", "", `file with one CPF per line, or "-" for stdin`)
	flags.StringVarP(&f.out, "out", "o", "", "output file (default dados_enriquecidos_YYYY-MM-DD.<format>)")
	flags.StringVar(&f.format, "format", "", "output format: csv or xlsx (default from --out, else csv)")
	flags.StringVar(&f.delimiter, "delimiter", string(core.DefaultOutputDelimiter), "output field separator")
	flags.BoolVar(&f.noBOM, "no-bom", false, "omit the UTF-8 byte-order mark from csv output")
	flags.StringVar(&f.keep, "keep", string(core.KeepFirst), "master row kept for a repeated CPF: first or last")
	flags.BoolVar(&f.nameFromMaster, "name-from-master", false, "fill nome from the master when the work input has none")
	flags.StringVar(&f.encoding, "encoding", string(core.EncodingAuto), "input encoding: auto, utf-8, windows-1252, iso-8859-1")
	flags.BoolVar(&f.noHeader, "no-header", false, "input files have no header row")
	flags.Int64Var(&f.maxSize, "max-size", 100*1024*1024, "maximum size of each input in bytes")
	cmd.MarkFlagsMutuallyExclusive("work", "cpfs")

	return cmd
}

func runEnrich(cmd *cobra.Command, g *globalFlags, f *runFlags) error {
	opts, format, err := f.options()
	if err != nil {
		return err
	}
	opts.Logger = g.logger(cmd)

	svc := core.NewService(opts)
	defer svc.Close()

	req := core.EnrichRequest{NoHeader: f.noHeader}
	var closers []io.Closer
	defer func() {
		for _, c := range closers {
			c.Close()
		}
	}()

	if f.master != "" {
		file, err := os.Open(f.master)
		if err != nil {
			return fmt.Errorf("open master: %w", err)
		}
		closers = append(closers, file)
		req.Master = &core.Source{Name: f.master, Reader: file}
	}

	switch {
	case f.work != "":
		file, err := os.Open(f.work)
		if err != nil {
			return fmt.Errorf("open work: %w", err)
		}
		closers = append(closers, file)
		req.Work = &core.Source{Name: f.work, Reader: file}
	case f.cpfs != "":
		list, err := readList(cmd, f.cpfs, f.maxSize)
		if err != nil {
			return err
		}
		req.List = list
	}

	res, err := svc.Enrich(commandContext(cmd), req)
	if err != nil {
		return err
	}

	data, name, err := svc.Export(res.RunID, format)
	if err != nil {
		return err
	}
	if f.out != "" {
		name = f.out
	}
	if err := os.WriteFile(name, data, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	out := cmd.OutOrStdout()
	if err := printPreview(out, res.Preview); err != nil {
		return err
	}
	printSummary(out, res)
	for _, w := range res.Warnings {
		fmt.Fprintf(cmd.ErrOrStderr(), "aviso: %s\n", w)
	}
	fmt.Fprintf(out, "Arquivo salvo em %s\n", name)
	return nil
}

// options validates the flags and builds pipeline options and the output
// format.
func (f *runFlags) options() (core.Options, core.Format, error) {
	opts := core.DefaultOptions()

	enc, err := core.ParseEncoding(f.encoding)
	if err != nil {
		return opts, "", err
	}
	opts.Encoding = enc

	if utf8.RuneCountInString(f.delimiter) != 1 {
		return opts, "", fmt.Errorf("--delimiter must be a single character, got %q", f.delimiter)
	}
	delim, _ := utf8.DecodeRuneInString(f.delimiter)
	opts.Serialize = core.SerializeOptions{Delimiter: delim, BOM: !f.noBOM}

	switch policy := core.DuplicatePolicy(strings.ToLower(f.keep)); policy {
	case core.KeepFirst, core.KeepLast:
		opts.Duplicates = policy
	default:
		return opts, "", fmt.Errorf("--keep must be first or last, got %q", f.keep)
	}

	if f.nameFromMaster {
		opts.NameFallback = core.NameFromMaster
	}
	opts.MaxInputBytes = f.maxSize

	formatName := f.format
	if formatName == "" {
		formatName = strings.TrimPrefix(strings.ToLower(filepath.Ext(f.out)), ".")
		if formatName != string(core.FormatXLSX) {
			formatName = string(core.FormatCSV)
		}
	}
	format, err := core.ParseFormat(formatName)
	if err != nil {
		return opts, "", err
	}
	return opts, format, nil
}

// readList reads a CPF list from a file or stdin.
func readList(cmd *cobra.Command, name string, max int64) (string, error) {
	var r io.Reader
	if name == stdinName {
		r = cmd.InOrStdin()
	} else {
		file, err := os.Open(name)
		if err != nil {
			return "", fmt.Errorf("open cpfs: %w", err)
		}
		defer file.Close()
		r = file
	}

	data, err := core.ReadAllLimited(commandContext(cmd), r, max)
	if err != nil {
		return "", fmt.Errorf("read cpfs: %w", err)
	}
	text, err := core.Decode(data, core.EncodingAuto)
	if err != nil {
		return "", fmt.Errorf("read cpfs: %w", err)
	}
	return string(text), nil
}

// ExitCode maps an error to a process exit code: 2 for input problems the
// user can fix, 1 for everything else.
func ExitCode(err error) int {
	var missing *core.MissingInputError
	switch {
	case err == nil:
		return 0
	case errors.As(err, &missing), core.IsStructural(err), errors.Is(err, core.ErrUnsupportedFormat):
		return 2
	}
	return 1
}
