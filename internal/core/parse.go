package core

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

// ParseErrorKind separates fatal parse failures from tolerated row problems.
type ParseErrorKind string

const (
	// Structural failures abort the whole run.
	Structural ParseErrorKind = "structural"
	// RowShape problems are reported and the row is still emitted.
	RowShape ParseErrorKind = "row_shape"
)

// Parse error codes.
const (
	CodeQuotes        = "quotes"
	CodeDelimiter     = "delimiter"
	CodeEmpty         = "empty"
	CodeTooFewFields  = "too_few_fields"
	CodeTooManyFields = "too_many_fields"
)

// DelimiterCandidates are tried, in order, when no delimiter is given.
var DelimiterCandidates = []rune{',', ';', '\t', '|'}

// delimiterSampleRows is how many records are inspected to guess the delimiter.
const delimiterSampleRows = 10

// ParseError describes a parse failure or a row-shape warning.
type ParseError struct {
	Kind ParseErrorKind
	Code string
	Line int // 1-based line in the input, 0 when not tied to a line
	Want int // header field count for row-shape warnings
	Got  int // row field count for row-shape warnings
	Err  error
}

func (e *ParseError) Error() string {
	switch e.Code {
	case CodeQuotes:
		return fmt.Sprintf("invalid csv: %v", e.Err)
	case CodeDelimiter:
		return "invalid csv: unable to detect a consistent delimiter"
	case CodeEmpty:
		return "empty file: no data rows found"
	case CodeTooFewFields:
		return fmt.Sprintf("line %d: too few fields: expected %d, got %d", e.Line, e.Want, e.Got)
	case CodeTooManyFields:
		return fmt.Sprintf("line %d: too many fields: expected %d, got %d", e.Line, e.Want, e.Got)
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "invalid csv"
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// IsStructural reports whether err is a fatal parse error.
func IsStructural(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe) && pe.Kind == Structural
}

// ParseOptions controls Parse.
type ParseOptions struct {
	// HasHeader treats the first non-blank line as column labels. Without a
	// header, columns are labeled "0", "1", ...
	HasHeader bool

	// Delimiter forces a field separator. Zero means auto-detect.
	Delimiter rune

	// Encoding of the input bytes. Empty means EncodingAuto.
	Encoding Encoding

	Sink DiagnosticSink
}

// Parse converts delimited text into a Table.
//
// Blank lines are skipped and header labels are trimmed. A quote inside an
// unquoted field is kept as text. A quoted field that never closes, an
// undetectable delimiter or an input without data rows fail with a
// Structural *ParseError. Rows with more or fewer fields than the header are
// kept: missing fields read as "" and surplus values are stored under
// ExtraColumn, and a RowShape warning is added to the table.
func Parse(data []byte, opts ParseOptions) (*Table, error) {
	text, err := Decode(data, opts.Encoding)
	if err != nil {
		return nil, err
	}

	delim := opts.Delimiter
	if delim == 0 {
		delim, err = detectDelimiter(text)
		if err != nil {
			emit(opts.Sink, slog.LevelError, ComponentParser, "delimiter detection failed")
			return nil, err
		}
		emit(opts.Sink, slog.LevelDebug, ComponentParser, "delimiter detected", "delimiter", string(delim))
	}

	recs, err := readRecords(text, delim, false)
	if errors.Is(err, csv.ErrBareQuote) {
		if line, open := unterminatedQuote(text, delim); open {
			err = &csv.ParseError{StartLine: line, Line: line, Column: 1, Err: csv.ErrQuote}
		} else {
			emit(opts.Sink, slog.LevelDebug, ComponentParser, "bare quotes read as literal text")
			recs, err = readRecords(text, delim, true)
		}
	}
	if err != nil {
		pe := &ParseError{Kind: Structural, Code: CodeQuotes, Err: err}
		var csvErr *csv.ParseError
		if errors.As(err, &csvErr) {
			pe.Line = csvErr.StartLine
		}
		emit(opts.Sink, slog.LevelError, ComponentParser, "malformed quoting", "line", pe.Line, "error", err.Error())
		return nil, pe
	}

	b := newTableBuilder(delim, opts)
	for _, rec := range recs {
		b.add(rec.fields, rec.line)
	}
	return b.finish()
}

type record struct {
	fields []string
	line   int
}

// readRecords reads every record of text. With lazy set, a quote inside an
// unquoted field is kept as a literal character.
func readRecords(text []byte, delim rune, lazy bool) ([]record, error) {
	r := newCSVReader(text, delim)
	r.LazyQuotes = lazy

	var out []record
	for {
		fields, err := r.Read()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		line, _ := r.FieldPos(0)
		out = append(out, record{fields: fields, line: line})
	}
}

// unterminatedQuote reports the line of a quoted field that is still open at
// the end of text. Quotes inside unquoted fields are literal, and a quote
// inside a quoted field ends it only before a delimiter, a line break or the
// end of input.
func unterminatedQuote(text []byte, delim rune) (int, bool) {
	s := string(text)
	line, openLine := 1, 0
	quoted, fieldStart := false, true

	for i := 0; i < len(s); {
		c, size := utf8.DecodeRuneInString(s[i:])
		i += size

		if quoted {
			switch c {
			case '\n':
				line++
			case '"':
				next, n := utf8.DecodeRuneInString(s[i:])
				switch {
				case n == 0, next == delim, next == '\n':
					quoted = false
				case next == '"':
					i += n
				case next == '\r' && (i+n == len(s) || s[i+n] == '\n'):
					quoted = false
				}
			}
			continue
		}

		switch {
		case c == '"' && fieldStart:
			quoted, openLine = true, line
			fieldStart = false
		case c == delim:
			fieldStart = true
		case c == '\n':
			line++
			fieldStart = true
		default:
			fieldStart = false
		}
	}
	return openLine, quoted
}

// ParseIdentifierList maps each non-blank trimmed line to a WorkRecord.
func ParseIdentifierList(text string) []WorkRecord {
	text = strings.TrimPrefix(text, "\uFEFF")
	var out []WorkRecord
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		out = append(out, WorkRecord{CPF: line})
	}
	return out
}

func newCSVReader(text []byte, delim rune) *csv.Reader {
	r := csv.NewReader(bytes.NewReader(text))
	r.Comma = delim
	r.FieldsPerRecord = -1
	r.LazyQuotes = false
	return r
}

// tableBuilder turns records into a Table, shared by the CSV and
// spreadsheet readers.
type tableBuilder struct {
	table     *Table
	hasHeader bool
	sink      DiagnosticSink

	// padShort fills short rows silently. Spreadsheet readers drop trailing
	// empty cells, so a short row there is not a shape problem.
	padShort bool
}

func newTableBuilder(delim rune, opts ParseOptions) *tableBuilder {
	return &tableBuilder{
		table:     &Table{Delimiter: delim},
		hasHeader: opts.HasHeader,
		sink:      opts.Sink,
	}
}

func (b *tableBuilder) add(rec []string, line int) {
	if isEmptyRow(rec) {
		return
	}
	t := b.table
	if t.Columns == nil {
		if b.hasHeader {
			t.Columns = headerLabels(rec)
			return
		}
		t.Columns = positionalLabels(len(rec))
	}
	t.Rows = append(t.Rows, b.buildRow(rec, line))
}

func (b *tableBuilder) finish() (*Table, error) {
	t := b.table
	if len(t.Rows) == 0 {
		emit(b.sink, slog.LevelError, ComponentParser, "no data rows")
		return nil, &ParseError{Kind: Structural, Code: CodeEmpty}
	}

	emit(b.sink, slog.LevelInfo, ComponentParser, "parsed table",
		"rows", len(t.Rows),
		"columns", len(t.Columns),
		"warnings", len(t.Warnings),
	)
	return t, nil
}

func (b *tableBuilder) buildRow(rec []string, line int) RawRow {
	t := b.table
	cols := t.Columns
	row := make(RawRow, len(cols))
	for i, c := range cols {
		if i < len(rec) {
			row[c] = rec[i]
		} else {
			row[c] = ""
		}
	}

	if len(rec) == len(cols) || (b.padShort && len(rec) < len(cols)) {
		return row
	}

	w := &ParseError{Kind: RowShape, Line: line, Want: len(cols), Got: len(rec)}
	if len(rec) > len(cols) {
		w.Code = CodeTooManyFields
		row[ExtraColumn] = strings.Join(rec[len(cols):], string(t.Delimiter))
	} else {
		w.Code = CodeTooFewFields
	}
	t.Warnings = append(t.Warnings, w)
	emit(b.sink, slog.LevelWarn, ComponentParser, "row shape mismatch",
		"line", line,
		"code", w.Code,
		"want", w.Want,
		"got", w.Got,
	)
	return row
}

// headerLabels trims labels and disambiguates repeats as label_1, label_2.
func headerLabels(rec []string) []string {
	labels := make([]string, len(rec))
	seen := make(map[string]int, len(rec))
	for i, raw := range rec {
		label := strings.TrimSpace(raw)
		if n, ok := seen[label]; ok {
			seen[label] = n + 1
			label = label + "_" + strconv.Itoa(n+1)
		} else {
			seen[label] = 0
		}
		labels[i] = label
	}
	return labels
}

func positionalLabels(n int) []string {
	labels := make([]string, n)
	for i := range labels {
		labels[i] = strconv.Itoa(i)
	}
	return labels
}

// detectDelimiter picks the candidate whose sampled rows have the most stable
// field count, requiring at least two fields per row on average. Input where
// every candidate yields one field is single-column and uses a comma.
func detectDelimiter(text []byte) (rune, error) {
	best := rune(0)
	bestDelta := math.MaxFloat64
	bestAvg := 0.0
	multiField := false

	for _, cand := range DelimiterCandidates {
		counts, ok := sampleFieldCounts(text, cand)
		if !ok || len(counts) == 0 {
			continue
		}

		avg, delta := fieldCountStats(counts)
		for _, c := range counts {
			if c > 1 {
				multiField = true
			}
		}
		if avg < 1.99 {
			continue
		}
		if delta < bestDelta || (delta == bestDelta && avg > bestAvg) {
			best, bestDelta, bestAvg = cand, delta, avg
		}
	}

	if best != 0 {
		return best, nil
	}
	if multiField {
		return 0, &ParseError{Kind: Structural, Code: CodeDelimiter}
	}
	return ',', nil
}

// sampleFieldCounts returns field counts of the first non-blank records.
// ok is false when the sample cannot be read with this delimiter. Bare quotes
// in unquoted fields do not disqualify a delimiter.
func sampleFieldCounts(text []byte, delim rune) ([]int, bool) {
	counts, err := countFields(text, delim, false)
	if errors.Is(err, csv.ErrBareQuote) {
		counts, err = countFields(text, delim, true)
	}
	return counts, err == nil
}

func countFields(text []byte, delim rune, lazy bool) ([]int, error) {
	r := newCSVReader(text, delim)
	r.LazyQuotes = lazy
	var counts []int
	for len(counts) < delimiterSampleRows {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if isEmptyRow(rec) {
			continue
		}
		counts = append(counts, len(rec))
	}
	return counts, nil
}

// fieldCountStats returns the mean field count and the summed squared
// deviation from it.
func fieldCountStats(counts []int) (avg, delta float64) {
	total := 0
	for _, c := range counts {
		total += c
	}
	avg = float64(total) / float64(len(counts))
	for _, c := range counts {
		d := float64(c) - avg
		delta += d * d
	}
	return avg, delta
}

func isEmptyRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
