package cli

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/Viniciusalvim1/lumia-data-forge/internal/core"
)

// notFound is shown for enriched fields that stayed empty.
const notFound = "Não encontrado"

var previewHeaders = []any{"CPF", "Nome", "Email", "Telefone"}

func newTable(w io.Writer, columns int) *tablewriter.Table {
	align := make([]tw.Align, columns)
	for i := range align {
		align[i] = tw.AlignLeft
	}
	cfg := tablewriter.Config{}
	cfg.Header.Alignment = tw.CellAlignment{PerColumn: align}
	cfg.Row.Alignment = tw.CellAlignment{PerColumn: align}
	return tablewriter.NewTable(w, tablewriter.WithConfig(cfg))
}

// printPreview renders enriched rows, marking empty fields as not found.
func printPreview(w io.Writer, records []core.EnrichedRecord) error {
	table := newTable(w, len(previewHeaders))
	table.Header(previewHeaders...)

	for _, r := range records {
		if err := table.Append(r.CPF, orNotFound(r.Nome), orNotFound(r.Email), orNotFound(r.Telefone)); err != nil {
			return err
		}
	}
	return table.Render()
}

// printSummary writes the match rate, its level and the summary line.
func printSummary(w io.Writer, res *core.RunResult) {
	fmt.Fprintf(w, "Taxa de correspondência: %.1f%% (%s)\n", res.MatchRate, res.MatchLevel)
	fmt.Fprintln(w, res.Summary)
	if len(res.Duplicates) > 0 {
		fmt.Fprintf(w, "CPFs repetidos no arquivo mestre: %d\n", len(res.Duplicates))
	}
}

// printInspection renders the detected column mapping and the preview rows.
func printInspection(w io.Writer, ins *core.Inspection) error {
	fmt.Fprintf(w, "Arquivo: %s\n", ins.Name)
	if ins.Delimiter != "" {
		fmt.Fprintf(w, "Separador: %q\n", ins.Delimiter)
	}
	fmt.Fprintf(w, "Estratégia: %s\n", ins.Strategy)
	fmt.Fprintf(w, "Linhas: %d\n", ins.Rows)

	mapping := newTable(w, 2)
	mapping.Header("Coluna", "Campo")
	for _, col := range ins.Columns {
		if err := mapping.Append(col, ins.Mapping[col]); err != nil {
			return err
		}
	}
	if err := mapping.Render(); err != nil {
		return err
	}

	if len(ins.Preview) == 0 {
		return nil
	}
	fields := previewColumns(ins)
	header := make([]any, len(fields))
	for i, f := range fields {
		header[i] = f
	}
	preview := newTable(w, len(fields))
	preview.Header(header...)
	for _, row := range ins.Preview {
		cells := make([]any, len(fields))
		for i, f := range fields {
			cells[i] = row[f]
		}
		if err := preview.Append(cells...); err != nil {
			return err
		}
	}
	return preview.Render()
}

// previewColumns lists the canonical column names in source order.
func previewColumns(ins *core.Inspection) []string {
	seen := make(map[string]bool, len(ins.Columns))
	var out []string
	for _, col := range ins.Columns {
		name := ins.Mapping[col]
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}

func orNotFound(v string) string {
	if v == "" {
		return notFound
	}
	return v
}
