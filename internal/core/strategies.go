package core

import "strings"

// HeaderDriven maps columns by their labels. A cleaned label containing
// "cpf", "documento", "cnpj" or "doc" maps to cpf; a bare "nome" or "name" to
// nome; "email" to email; "telefone", "phone" or "fone" to telefone, checked
// in that order. Qualified name labels such as "Nome Completo" pass through
// as their cleaned label.
type HeaderDriven struct{}

// Name implements Strategy.
func (HeaderDriven) Name() string { return "header" }

// Plan implements Strategy.
func (HeaderDriven) Plan(t *Table) (Plan, bool) {
	m := make(Mapping, len(t.Columns))
	recognized := false
	for _, c := range t.Columns {
		cleaned := CleanLabel(c)
		if field, ok := classifyLabel(cleaned); ok {
			m[c] = field
			recognized = true
			continue
		}
		m[c] = cleaned
	}
	return Plan{Mapping: m}, recognized
}

// MapLabel returns the header-driven output label for a single column label.
func MapLabel(label string) string {
	cleaned := CleanLabel(label)
	if field, ok := classifyLabel(cleaned); ok {
		return field
	}
	return cleaned
}

func classifyLabel(cleaned string) (string, bool) {
	key := foldAccents(cleaned)
	switch {
	case containsAny(key, "cpf", "documento", "cnpj", "doc"):
		return FieldCPF, true
	case key == "nome" || key == "name":
		return FieldNome, true
	case strings.Contains(key, "email"):
		return FieldEmail, true
	case containsAny(key, "telefone", "phone", "fone"):
		return FieldTelefone, true
	}
	return "", false
}

// ContentSniffed maps columns of header-less or positionally labeled tables
// by inspecting the first row. The first row describes the schema and is
// dropped from the output.
//
// A column is cpf when its sample mentions "cpf" or "documento" or its label
// is "3"; nome when the sample mentions "nome" or "name" or the label is ""
// or "0"; email when the sample mentions "email" or the label is "1";
// telefone when the sample mentions "telefone", "phone" or "fone" or the
// label is "2".
type ContentSniffed struct{}

// Name implements Strategy.
func (ContentSniffed) Name() string { return "content" }

// Plan implements Strategy.
func (ContentSniffed) Plan(t *Table) (Plan, bool) {
	if t.Len() == 0 {
		return Plan{}, false
	}
	first := t.Rows[0]

	m := make(Mapping, len(t.Columns))
	recognized := false
	for _, c := range t.Columns {
		if field, ok := sniffColumn(c, first[c]); ok {
			m[c] = field
			recognized = true
			continue
		}
		m[c] = CleanLabel(c)
	}
	return Plan{Mapping: m, SkipRows: 1}, recognized
}

func sniffColumn(label, sample string) (string, bool) {
	v := foldAccents(CleanLabel(sample))
	switch {
	case containsAny(v, "cpf", "documento") || label == "3":
		return FieldCPF, true
	case containsAny(v, "nome", "name") || label == "" || label == "0":
		return FieldNome, true
	case strings.Contains(v, "email") || label == "1":
		return FieldEmail, true
	case containsAny(v, "telefone", "phone", "fone") || label == "2":
		return FieldTelefone, true
	}
	return "", false
}
