package core

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// DefaultPreviewRows is the number of enriched rows shown before download.
const DefaultPreviewRows = 5

// Options configures a Service.
type Options struct {
	// Delimiter forces the input field separator. Zero means auto-detect.
	Delimiter rune
	Encoding  Encoding

	Serialize    SerializeOptions
	Duplicates   DuplicatePolicy
	NameFallback NameFallback

	// Strategies are tried in order by the normalizer. Empty means every
	// registered strategy.
	Strategies []Strategy

	MaxInputBytes int64
	MaxConcurrent int
	MaxWait       time.Duration

	// ReadTimeout bounds reading both inputs. Zero disables it.
	ReadTimeout time.Duration

	ResultTTL   time.Duration
	PreviewRows int

	Logger *slog.Logger
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		Encoding:      EncodingAuto,
		Serialize:     DefaultSerializeOptions(),
		Duplicates:    KeepFirst,
		NameFallback:  NameBlank,
		MaxInputBytes: 100 * 1024 * 1024,
		MaxConcurrent: DefaultMaxConcurrentRuns,
		MaxWait:       DefaultMaxWaitTime,
		ResultTTL:     DefaultResultTTL,
		PreviewRows:   DefaultPreviewRows,
	}
}

// Service runs enrichment jobs from uploaded sources and keeps their results
// available for download.
type Service struct {
	opts    Options
	logger  *slog.Logger
	limiter *RunLimiter
	results *ResultStore
}

// NewService creates a Service.
func NewService(opts Options) *Service {
	if opts.PreviewRows <= 0 {
		opts.PreviewRows = DefaultPreviewRows
	}
	if len(opts.Strategies) == 0 {
		opts.Strategies = RegisteredStrategies()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		opts:    opts,
		logger:  logger,
		limiter: NewRunLimiter(opts.MaxConcurrent, opts.MaxWait),
		results: NewResultStore(opts.ResultTTL),
	}
}

// EnrichRequest holds the inputs of one run. Work is used when present,
// otherwise List is parsed as one CPF per line.
type EnrichRequest struct {
	Master *Source
	Work   *Source
	List   string

	// NoHeader marks input files whose first line is data.
	NoHeader bool
}

// Enrich validates the inputs, reads both sources concurrently, then parses,
// normalizes and joins them. The result is stored for later download.
func (s *Service) Enrich(ctx context.Context, req EnrichRequest) (*RunResult, error) {
	if !req.Master.present() {
		return nil, &MissingInputError{Input: InputMaster}
	}
	if !req.Work.present() && strings.TrimSpace(req.List) == "" {
		return nil, &MissingInputError{Input: InputWork}
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	runID := uuid.NewString()
	logger := s.logger.With(
		"run_id", runID,
		"origin", OriginFromContext(ctx),
		"client_ip", ClientIPFromContext(ctx),
	)
	rec := &Recorder{}
	sink := MultiSink{rec, NewLogSink(logger)}
	start := time.Now()

	masterData, workData, err := s.readInputs(ctx, req)
	if err != nil {
		logger.Warn("reading inputs failed", "error", err)
		return nil, err
	}

	parseOpts := s.parseOptions(req, sink)
	normalizer := NewNormalizer(sink, s.opts.Strategies...)

	masterTable, err := loadTable(req.Master.Name, masterData, parseOpts)
	if err != nil {
		return nil, fmt.Errorf("master file %s: %w", req.Master.Name, err)
	}
	master := normalizer.Normalize(masterTable)
	if !master.Has(FieldCPF) {
		emit(sink, slog.LevelWarn, ComponentService, "master file has no cpf column", "columns", master.Columns)
	}

	work, err := s.loadWork(req, workData, parseOpts, normalizer)
	if err != nil {
		return nil, err
	}
	if len(work.records) == 0 {
		return nil, &MissingInputError{Input: InputWork}
	}

	jr := Join(MasterRecords(master), work.records, JoinOptions{
		WorkHasName:  work.hasName,
		NameFallback: s.opts.NameFallback,
		Duplicates:   s.opts.Duplicates,
		Sink:         sink,
	})

	result := &RunResult{
		RunID:          runID,
		CreatedAt:      time.Now(),
		Total:          jr.Total(),
		MatchCount:     jr.MatchCount,
		MatchRate:      math.Round(jr.MatchRate()*10) / 10,
		MatchLevel:     MatchLevel(jr.MatchRate()),
		Records:        jr.Records,
		Preview:        jr.Records[:min(s.opts.PreviewRows, len(jr.Records))],
		MasterStrategy: master.Strategy,
		WorkStrategy:   work.strategy,
		WorkHasName:    work.hasName,
		Duplicates:     jr.Duplicates,
		Warnings:       append(tableWarnings("master", masterTable), work.warnings...),
		Diagnostics:    rec.AtLeast(slog.LevelInfo),
		Summary:        Summary(jr.MatchCount, jr.Total()),
	}
	s.results.Put(result)

	logger.Info("run complete",
		"total", result.Total,
		"matches", result.MatchCount,
		"match_rate", result.MatchRate,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return result, nil
}

// Inspection describes how a single file would be read and normalized.
type Inspection struct {
	Name      string         `json:"name"`
	Delimiter string         `json:"delimiter,omitempty"`
	Columns   []string       `json:"columns"`
	Mapping   Mapping        `json:"mapping"`
	Strategy  string         `json:"strategy"`
	Rows      int            `json:"rows"`
	Preview   []CanonicalRow `json:"preview"`
	Warnings  []string       `json:"warnings,omitempty"`
}

// Inspect parses and normalizes one file without joining it.
func (s *Service) Inspect(ctx context.Context, src Source, noHeader bool) (*Inspection, error) {
	if !src.present() {
		return nil, &MissingInputError{Input: InputMaster}
	}
	data, err := ReadAllLimited(ctx, src.Reader, s.opts.MaxInputBytes)
	if err != nil {
		return nil, err
	}

	logger := s.logger.With(
		"origin", OriginFromContext(ctx),
		"client_ip", ClientIPFromContext(ctx),
	)
	sink := NewLogSink(logger)
	opts := s.parseOptions(EnrichRequest{NoHeader: noHeader}, sink)
	table, err := loadTable(src.Name, data, opts)
	if err != nil {
		return nil, err
	}
	canon := NewNormalizer(sink, s.opts.Strategies...).Normalize(table)

	ins := &Inspection{
		Name:     src.Name,
		Columns:  table.Columns,
		Mapping:  canon.Mapping,
		Strategy: canon.Strategy,
		Rows:     len(canon.Rows),
		Preview:  canon.Rows[:min(s.opts.PreviewRows, len(canon.Rows))],
		Warnings: tableWarnings("", table),
	}
	if kind, _ := KindOf(src.Name); kind != KindSpreadsheet {
		ins.Delimiter = string(table.Delimiter)
	}
	return ins, nil
}

// Result returns a stored run.
func (s *Service) Result(runID string) (*RunResult, error) {
	return s.results.Get(runID)
}

// Export renders a stored run and returns the bytes and download file name.
func (s *Service) Export(runID string, format Format) ([]byte, string, error) {
	res, err := s.results.Get(runID)
	if err != nil {
		return nil, "", err
	}

	var data []byte
	switch format {
	case FormatXLSX:
		data, err = SerializeXLSX(res.Records)
	default:
		format = FormatCSV
		data, err = SerializeCSV(res.Records, s.opts.Serialize)
	}
	if err != nil {
		return nil, "", fmt.Errorf("export run %s: %w", runID, err)
	}
	return data, ExportFilename(res.CreatedAt, format), nil
}

// LimiterStatus returns the run limiter state.
func (s *Service) LimiterStatus() LimiterStatus {
	return s.limiter.Status()
}

// WaitForRuns blocks until active runs finish or ctx ends.
func (s *Service) WaitForRuns(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

// Close drops stored results.
func (s *Service) Close() {
	s.results.Close()
}

// MatchLevel labels a match percentage: "Alto" above 50, "Baixo" otherwise.
func MatchLevel(rate float64) string {
	if rate > 50 {
		return "Alto"
	}
	return "Baixo"
}

// Summary returns the user-facing run summary.
func Summary(matches, total int) string {
	return fmt.Sprintf("%d de %d registros foram enriquecidos", matches, total)
}

func (s *Service) parseOptions(req EnrichRequest, sink DiagnosticSink) ParseOptions {
	return ParseOptions{
		HasHeader: !req.NoHeader,
		Delimiter: s.opts.Delimiter,
		Encoding:  s.opts.Encoding,
		Sink:      sink,
	}
}

// readInputs reads the master and work sources in parallel.
func (s *Service) readInputs(ctx context.Context, req EnrichRequest) (master, work []byte, err error) {
	if s.opts.ReadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.ReadTimeout)
		defer cancel()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		data, err := ReadAllLimited(gctx, req.Master.Reader, s.opts.MaxInputBytes)
		if err != nil {
			return fmt.Errorf("read master file %s: %w", req.Master.Name, err)
		}
		master = data
		return nil
	})
	if req.Work.present() {
		g.Go(func() error {
			data, err := ReadAllLimited(gctx, req.Work.Reader, s.opts.MaxInputBytes)
			if err != nil {
				return fmt.Errorf("read work file %s: %w", req.Work.Name, err)
			}
			work = data
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return master, work, nil
}

type workInput struct {
	records  []WorkRecord
	hasName  bool
	strategy string
	warnings []string
}

// loadWork builds work records from the work file or the pasted list. A
// single-column work file without a recognizable cpf column is read as a
// plain identifier list, header line included.
func (s *Service) loadWork(req EnrichRequest, data []byte, opts ParseOptions, n *Normalizer) (*workInput, error) {
	if !req.Work.present() {
		return &workInput{records: ParseIdentifierList(req.List), strategy: "list"}, nil
	}

	name := req.Work.Name
	kind, err := KindOf(name)
	if err != nil {
		return nil, fmt.Errorf("work file %s: %w", name, err)
	}
	if kind == KindList {
		text, err := Decode(data, opts.Encoding)
		if err != nil {
			return nil, fmt.Errorf("work file %s: %w", name, err)
		}
		return &workInput{records: ParseIdentifierList(string(text)), strategy: "list"}, nil
	}

	table, err := loadTable(name, data, opts)
	if err != nil {
		return nil, fmt.Errorf("work file %s: %w", name, err)
	}
	canon := n.Normalize(table)
	warnings := tableWarnings("work", table)

	if !canon.Has(FieldCPF) && len(table.Columns) == 1 {
		emit(opts.Sink, slog.LevelInfo, ComponentService, "single-column work file read as identifier list", "column", table.Columns[0])
		return &workInput{records: singleColumnList(table, opts.HasHeader), strategy: "list", warnings: warnings}, nil
	}
	if !canon.Has(FieldCPF) {
		emit(opts.Sink, slog.LevelWarn, ComponentService, "work file has no cpf column", "columns", canon.Columns)
	}

	return &workInput{
		records:  WorkRecords(canon),
		hasName:  canon.Has(FieldNome),
		strategy: canon.Strategy,
		warnings: warnings,
	}, nil
}

func singleColumnList(t *Table, hasHeader bool) []WorkRecord {
	col := t.Columns[0]
	var lines []string
	if hasHeader {
		lines = append(lines, col)
	}
	for _, row := range t.Rows {
		lines = append(lines, row[col])
	}
	return ParseIdentifierList(strings.Join(lines, "\n"))
}

// loadTable parses data as a spreadsheet or delimited text depending on name.
func loadTable(name string, data []byte, opts ParseOptions) (*Table, error) {
	kind, err := KindOf(name)
	if err != nil {
		return nil, err
	}
	if kind == KindSpreadsheet {
		return ParseSpreadsheet(data, opts)
	}
	return Parse(data, opts)
}

func tableWarnings(prefix string, t *Table) []string {
	if t == nil || len(t.Warnings) == 0 {
		return nil
	}
	out := make([]string, 0, len(t.Warnings))
	for _, w := range t.Warnings {
		if prefix == "" {
			out = append(out, w.Error())
			continue
		}
		out = append(out, prefix+": "+w.Error())
	}
	return out
}
