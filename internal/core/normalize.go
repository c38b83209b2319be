package core

import (
	"log/slog"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// StrategyPassthrough names the mapping used when no strategy recognizes a
// table: every label is cleaned and kept.
const StrategyPassthrough = "passthrough"

// Plan is a strategy's decision for one table.
type Plan struct {
	Mapping Mapping

	// SkipRows is the number of leading rows consumed as a schema row and
	// dropped from the output.
	SkipRows int
}

// Strategy infers a label mapping for a parsed table.
type Strategy interface {
	Name() string

	// Plan returns the mapping and true when the strategy recognized at least
	// one canonical field.
	Plan(t *Table) (Plan, bool)
}

// Normalizer remaps table labels to canonical field names using the first
// strategy that recognizes the table.
type Normalizer struct {
	Strategies []Strategy
	Sink       DiagnosticSink
}

// NewNormalizer returns a Normalizer. Without explicit strategies it uses
// every registered strategy in registration order.
func NewNormalizer(sink DiagnosticSink, strategies ...Strategy) *Normalizer {
	if len(strategies) == 0 {
		strategies = RegisteredStrategies()
	}
	return &Normalizer{Strategies: strategies, Sink: sink}
}

// Normalize remaps t with the registered strategies and no diagnostics.
func Normalize(t *Table) *CanonicalTable {
	return NewNormalizer(nil).Normalize(t)
}

// Normalize never fails. Unrecognized labels are kept, cleaned.
func (n *Normalizer) Normalize(t *Table) *CanonicalTable {
	if t == nil {
		t = &Table{}
	}

	name := StrategyPassthrough
	plan := Plan{Mapping: passthroughMapping(t.Columns)}
	for _, s := range n.Strategies {
		if p, ok := s.Plan(t); ok {
			name, plan = s.Name(), p
			break
		}
		emit(n.Sink, slog.LevelDebug, ComponentNormalizer, "strategy did not match", "strategy", s.Name())
	}

	mapping := n.resolveCollisions(t.Columns, plan.Mapping)
	out := &CanonicalTable{Mapping: mapping, Strategy: name}
	for _, c := range t.Columns {
		out.Columns = append(out.Columns, mapping[c])
	}

	skip := plan.SkipRows
	if skip > len(t.Rows) {
		skip = len(t.Rows)
	}
	hasExtra := false
	for _, raw := range t.Rows[skip:] {
		row := make(CanonicalRow, len(raw))
		for k, v := range raw {
			if mapped, ok := mapping[k]; ok {
				row[mapped] = v
			} else {
				row[k] = v
				hasExtra = hasExtra || k == ExtraColumn
			}
		}
		out.Rows = append(out.Rows, row)
	}
	if hasExtra {
		out.Columns = append(out.Columns, ExtraColumn)
	}

	emit(n.Sink, slog.LevelInfo, ComponentNormalizer, "normalized table",
		"strategy", name,
		"mapping", mapping,
		"rows", len(out.Rows),
		"schema_rows_dropped", skip,
	)
	return out
}

// resolveCollisions makes output labels unique. The first column in header
// order keeps a contested label; later columns fall back to their cleaned
// label, then to a numeric suffix.
func (n *Normalizer) resolveCollisions(cols []string, m Mapping) Mapping {
	out := make(Mapping, len(cols))
	used := make(map[string]bool, len(cols))
	for _, c := range cols {
		target, ok := m[c]
		if !ok {
			target = CleanLabel(c)
		}
		if used[target] {
			contested := target
			target = CleanLabel(c)
			for i := 2; used[target]; i++ {
				target = CleanLabel(c) + "_" + strconv.Itoa(i)
			}
			emit(n.Sink, slog.LevelWarn, ComponentNormalizer, "label collision",
				"column", c,
				"contested", contested,
				"assigned", target,
			)
		}
		used[target] = true
		out[c] = target
	}
	return out
}

func passthroughMapping(cols []string) Mapping {
	m := make(Mapping, len(cols))
	for _, c := range cols {
		m[c] = CleanLabel(c)
	}
	return m
}

// CleanLabel lower-cases a label and strips whitespace, '-' and '_'.
func CleanLabel(label string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '-' || r == '_' {
			return -1
		}
		return unicode.ToLower(r)
	}, label)
}

// foldAccents removes diacritics so "Número" and "numero" match the same
// keyword. Only used for matching; output labels keep their accents.
func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

func containsAny(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
