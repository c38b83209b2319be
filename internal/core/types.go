package core

import "time"

// Canonical field names produced by the normalizer.
const (
	FieldCPF      = "cpf"
	FieldNome     = "nome"
	FieldEmail    = "email"
	FieldTelefone = "telefone"
)

// ExtraColumn holds surplus values of rows longer than the header.
const ExtraColumn = "__parsed_extra"

// CanonicalFields lists the canonical names in output order.
var CanonicalFields = []string{FieldCPF, FieldNome, FieldEmail, FieldTelefone}

// RawRow maps an original column label to its raw value.
type RawRow map[string]string

// Table is the parser's output: column labels in file order and one RawRow per
// data line.
type Table struct {
	Columns   []string
	Rows      []RawRow
	Delimiter rune

	// Warnings holds row-shape problems. They never abort a run.
	Warnings []*ParseError
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Mapping maps an original column label to its output label.
type Mapping map[string]string

// CanonicalRow is a row keyed by normalized labels.
type CanonicalRow map[string]string

// CanonicalTable is the normalizer's output.
type CanonicalTable struct {
	Columns  []string
	Rows     []CanonicalRow
	Mapping  Mapping
	Strategy string
}

// Has reports whether a normalized column is present.
func (t *CanonicalTable) Has(field string) bool {
	if t == nil {
		return false
	}
	for _, c := range t.Columns {
		if c == field {
			return true
		}
	}
	return false
}

// MasterRecord is an authoritative row carrying contact details.
type MasterRecord struct {
	CPF      string
	Nome     string
	Email    string
	Telefone string

	// Extra carries pass-through columns such as address fields.
	Extra map[string]string
}

// WorkRecord is an identifier to be enriched, optionally with its own name.
type WorkRecord struct {
	CPF  string
	Nome string
}

// EnrichedRecord is one output row. CPF and Nome come from the work side;
// Email and Telefone come from the matched master record or are empty.
type EnrichedRecord struct {
	CPF      string `json:"cpf"`
	Nome     string `json:"nome"`
	Email    string `json:"email"`
	Telefone string `json:"telefone"`
	Matched  bool   `json:"matched"`
}

// Values returns the record's fields in CanonicalFields order.
func (r EnrichedRecord) Values() []string {
	return []string{r.CPF, r.Nome, r.Email, r.Telefone}
}

// DuplicatePolicy decides which master record holds a key seen more than once.
type DuplicatePolicy string

const (
	KeepFirst DuplicatePolicy = "first"
	KeepLast  DuplicatePolicy = "last"
)

// NameFallback decides the output name when the work input has no name column.
type NameFallback string

const (
	NameBlank      NameFallback = "blank"
	NameFromMaster NameFallback = "master"
)

// DuplicateKey records a master key that appeared more than once.
type DuplicateKey struct {
	Key        string `json:"key"`
	KeptRow    int    `json:"kept_row"`
	DroppedRow int    `json:"dropped_row"`
}

// Format is an export format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// RunResult is the outcome of one enrichment run.
type RunResult struct {
	RunID          string           `json:"run_id"`
	CreatedAt      time.Time        `json:"created_at"`
	Total          int              `json:"total"`
	MatchCount     int              `json:"match_count"`
	MatchRate      float64          `json:"match_rate"`
	MatchLevel     string           `json:"match_level"`
	Records        []EnrichedRecord `json:"-"`
	Preview        []EnrichedRecord `json:"preview"`
	MasterStrategy string           `json:"master_strategy"`
	WorkStrategy   string           `json:"work_strategy"`
	WorkHasName    bool             `json:"work_has_name"`
	Duplicates     []DuplicateKey   `json:"duplicates,omitempty"`
	Warnings       []string         `json:"warnings,omitempty"`
	Diagnostics    []Diagnostic     `json:"diagnostics,omitempty"`
	Summary        string           `json:"summary"`
}
