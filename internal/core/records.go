package core

import (
	"strings"
	"unicode"
)

// NormalizeCPF deletes '.', '-' and whitespace from a tax id. Other
// characters, including '/', are kept.
func NormalizeCPF(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '.' || r == '-' || unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// MasterFromRow builds a MasterRecord. Non-canonical columns are kept in Extra.
func MasterFromRow(row CanonicalRow) MasterRecord {
	m := MasterRecord{
		CPF:      row[FieldCPF],
		Nome:     row[FieldNome],
		Email:    row[FieldEmail],
		Telefone: row[FieldTelefone],
	}
	for k, v := range row {
		switch k {
		case FieldCPF, FieldNome, FieldEmail, FieldTelefone:
			continue
		}
		if m.Extra == nil {
			m.Extra = make(map[string]string)
		}
		m.Extra[k] = v
	}
	return m
}

// WorkFromRow builds a WorkRecord.
func WorkFromRow(row CanonicalRow) WorkRecord {
	return WorkRecord{CPF: row[FieldCPF], Nome: row[FieldNome]}
}

// MasterRecords converts every row of a normalized master table.
func MasterRecords(t *CanonicalTable) []MasterRecord {
	out := make([]MasterRecord, 0, len(t.Rows))
	for _, row := range t.Rows {
		out = append(out, MasterFromRow(row))
	}
	return out
}

// WorkRecords converts every row of a normalized work table.
func WorkRecords(t *CanonicalTable) []WorkRecord {
	out := make([]WorkRecord, 0, len(t.Rows))
	for _, row := range t.Rows {
		out = append(out, WorkFromRow(row))
	}
	return out
}
