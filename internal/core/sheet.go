package core

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrUnsupportedFormat is returned for files that are neither delimited text
// nor xlsx workbooks.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// SourceKind classifies an input file by its name.
type SourceKind int

const (
	KindDelimited SourceKind = iota
	KindSpreadsheet
	KindList
)

// KindOf returns the SourceKind implied by a file name. Unknown or missing
// extensions are treated as delimited text.
func KindOf(name string) (SourceKind, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		return KindSpreadsheet, nil
	case ".xls":
		return 0, fmt.Errorf("%w: legacy .xls workbooks must be saved as .xlsx or .csv", ErrUnsupportedFormat)
	case ".txt":
		return KindList, nil
	default:
		return KindDelimited, nil
	}
}

// ParseSpreadsheet reads the first worksheet of an xlsx workbook into a Table
// with the same rules as Parse. Delimiter and Encoding options are ignored.
func ParseSpreadsheet(data []byte, opts ParseOptions) (*Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("invalid xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &ParseError{Kind: Structural, Code: CodeEmpty}
	}
	sheet := sheets[0]

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("invalid xlsx: read sheet %q: %w", sheet, err)
	}
	emit(opts.Sink, slog.LevelDebug, ComponentParser, "reading worksheet", "sheet", sheet, "rows", len(rows))

	b := newTableBuilder(',', opts)
	b.padShort = true
	for i, rec := range rows {
		b.add(rec, i+1)
	}
	return b.finish()
}
