package core

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// DefaultOutputDelimiter suits spreadsheet tools in locales that use a comma
// as decimal separator.
const DefaultOutputDelimiter = ';'

// ExportSheet is the worksheet name of xlsx exports.
const ExportSheet = "dados_enriquecidos"

// SerializeOptions controls SerializeCSV.
type SerializeOptions struct {
	// Delimiter separates fields. Zero means DefaultOutputDelimiter.
	Delimiter rune

	// BOM prefixes the output with a UTF-8 byte-order mark.
	BOM bool
}

// DefaultSerializeOptions returns the semicolon-with-BOM layout.
func DefaultSerializeOptions() SerializeOptions {
	return SerializeOptions{Delimiter: DefaultOutputDelimiter, BOM: true}
}

// SerializeCSV renders records with a cpf,nome,email,telefone header, one
// record per CRLF-terminated line.
func SerializeCSV(records []EnrichedRecord, opts SerializeOptions) ([]byte, error) {
	delim := opts.Delimiter
	if delim == 0 {
		delim = DefaultOutputDelimiter
	}

	var buf bytes.Buffer
	if opts.BOM {
		buf.Write(utf8BOM)
	}

	w := csv.NewWriter(&buf)
	w.Comma = delim
	w.UseCRLF = true

	if err := w.Write(CanonicalFields); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	for i, r := range records {
		if err := w.Write(r.Values()); err != nil {
			return nil, fmt.Errorf("write record %d: %w", i, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// SerializeXLSX renders records into a single-sheet workbook.
func SerializeXLSX(records []EnrichedRecord) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ExportSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]interface{}, len(CanonicalFields))
	for i, h := range CanonicalFields {
		header[i] = h
	}
	if err := f.SetSheetRow(ExportSheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	for i, r := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		// Text cells keep leading zeros of unformatted CPFs.
		row := []interface{}{r.CPF, r.Nome, r.Email, r.Telefone}
		if err := f.SetSheetRow(ExportSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write record %d: %w", i, err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

// ParseFormat resolves a user-supplied export format.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: export format %q", ErrUnsupportedFormat, s)
	}
}

// ExportFilename returns dados_enriquecidos_YYYY-MM-DD with the format's
// extension.
func ExportFilename(t time.Time, format Format) string {
	if format == "" {
		format = FormatCSV
	}
	return fmt.Sprintf("dados_enriquecidos_%s.%s", t.Format("2006-01-02"), format)
}

// ContentType returns the MIME type of an export format.
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}
