package core

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapLabel(t *testing.T) {
	tests := []struct {
		label string
		want  string
	}{
		{"CPF/CNPJ", FieldCPF},
		{"cpf", FieldCPF},
		{"Documento", FieldCPF},
		{"CNPJ", FieldCPF},
		{"Nº Doc", FieldCPF},
		{"E-mail", FieldEmail},
		{"email_contato", FieldEmail},
		{"Telefone", FieldTelefone},
		{"Phone", FieldTelefone},
		{"Fone Celular", FieldTelefone},
		{"Nome", FieldNome},
		{" name ", FieldNome},
		{"Nome Completo", "nomecompleto"},
		{"Endereço", "endereço"},
		{"Data_de-Nascimento", "datadenascimento"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			assert.Equal(t, tt.want, MapLabel(tt.label))
		})
	}
}

func TestMapLabel_Precedence(t *testing.T) {
	// cpf wins over the other rules
	assert.Equal(t, FieldCPF, MapLabel("email_documento"))
	assert.Equal(t, FieldCPF, MapLabel("telefone-cpf"))
	// email wins over telefone
	assert.Equal(t, FieldEmail, MapLabel("email telefone"))
}

func TestCleanLabel(t *testing.T) {
	assert.Equal(t, "nomecompleto", CleanLabel("  Nome Completo "))
	assert.Equal(t, "email", CleanLabel("E-Mail"))
	assert.Equal(t, "abc", CleanLabel("a_b-c"))
}

func TestNormalize_HeaderDriven(t *testing.T) {
	table := &Table{
		Columns: []string{"CPF/CNPJ", "Nome", "E-mail", "Telefone", "Cidade"},
		Rows: []RawRow{
			{"CPF/CNPJ": "111", "Nome": "Ana", "E-mail": "a@x.com", "Telefone": "9", "Cidade": "Recife"},
			{"CPF/CNPJ": "222", "Nome": "Bia", "E-mail": "", "Telefone": "", "Cidade": "Natal"},
		},
	}

	out := Normalize(table)

	assert.Equal(t, "header", out.Strategy)
	assert.Equal(t, []string{"cpf", "nome", "email", "telefone", "cidade"}, out.Columns)
	require.Len(t, out.Rows, 2)
	assert.Equal(t, CanonicalRow{"cpf": "111", "nome": "Ana", "email": "a@x.com", "telefone": "9", "cidade": "Recife"}, out.Rows[0])
	assert.Equal(t, "Natal", out.Rows[1]["cidade"])
}

func TestNormalize_ContentSniffedDropsSchemaRow(t *testing.T) {
	table := &Table{
		Columns: []string{"0", "1", "2", "3"},
		Rows: []RawRow{
			{"0": "Nome", "1": "Email", "2": "Telefone", "3": "CPF"},
			{"0": "Ana", "1": "a@x.com", "2": "111", "3": "111.111.111-11"},
			{"0": "Bia", "1": "b@x.com", "2": "222", "3": "222.222.222-22"},
		},
	}

	out := Normalize(table)

	assert.Equal(t, "content", out.Strategy)
	assert.Equal(t, []string{"nome", "email", "telefone", "cpf"}, out.Columns)
	require.Len(t, out.Rows, 2)
	assert.Equal(t, CanonicalRow{"nome": "Ana", "email": "a@x.com", "telefone": "111", "cpf": "111.111.111-11"}, out.Rows[0])
}

func TestNormalize_ContentSniffedBySampleValue(t *testing.T) {
	table := &Table{
		Columns: []string{"col a", "col b"},
		Rows: []RawRow{
			{"col a": "Documento CPF", "col b": "Nome do cliente"},
			{"col a": "111", "col b": "Ana"},
		},
	}

	out := Normalize(table)

	assert.Equal(t, "content", out.Strategy)
	assert.Equal(t, Mapping{"col a": FieldCPF, "col b": FieldNome}, out.Mapping)
	require.Len(t, out.Rows, 1)
	assert.Equal(t, "Ana", out.Rows[0][FieldNome])
}

func TestContentSniffed_EnglishAndShortKeywords(t *testing.T) {
	table := &Table{
		Columns: []string{"a", "b", "c", "d"},
		Rows: []RawRow{
			{"a": "Name", "b": "Phone", "c": "Fone", "d": "CPF"},
			{"a": "Ana", "b": "111", "c": "222", "d": "111.111.111-11"},
		},
	}

	plan, ok := ContentSniffed{}.Plan(table)

	require.True(t, ok)
	assert.Equal(t, 1, plan.SkipRows)
	assert.Equal(t, Mapping{"a": FieldNome, "b": FieldTelefone, "c": FieldTelefone, "d": FieldCPF}, plan.Mapping)
}

func TestNormalize_PassthroughWhenNothingMatches(t *testing.T) {
	table := &Table{
		Columns: []string{"Nome Completo", "Cidade"},
		Rows: []RawRow{
			{"Nome Completo": "Ana Souza", "Cidade": "Recife"},
		},
	}

	out := Normalize(table)

	assert.Equal(t, StrategyPassthrough, out.Strategy)
	assert.Equal(t, []string{"nomecompleto", "cidade"}, out.Columns)
	require.Len(t, out.Rows, 1)
	assert.Equal(t, "Ana Souza", out.Rows[0]["nomecompleto"])
}

func TestNormalize_CollisionFirstColumnWins(t *testing.T) {
	rec := &Recorder{}
	table := &Table{
		Columns: []string{"CPF", "Documento"},
		Rows:    []RawRow{{"CPF": "111", "Documento": "RG-9"}},
	}

	out := NewNormalizer(rec).Normalize(table)

	assert.Equal(t, Mapping{"CPF": FieldCPF, "Documento": "documento"}, out.Mapping)
	assert.Equal(t, "111", out.Rows[0][FieldCPF])
	assert.Equal(t, "RG-9", out.Rows[0]["documento"])

	warns := rec.AtLeast(slog.LevelWarn)
	require.Len(t, warns, 1)
	assert.Equal(t, ComponentNormalizer, warns[0].Component)
	assert.Equal(t, "Documento", warns[0].Attrs["column"])
}

func TestNormalize_KeepsExtraColumn(t *testing.T) {
	table := &Table{
		Columns: []string{"cpf"},
		Rows:    []RawRow{{"cpf": "1", ExtraColumn: "x,y"}},
	}

	out := Normalize(table)

	assert.Equal(t, []string{FieldCPF, ExtraColumn}, out.Columns)
	assert.Equal(t, "x,y", out.Rows[0][ExtraColumn])
}

func TestNormalize_EmptyTable(t *testing.T) {
	out := Normalize(nil)
	assert.Equal(t, StrategyPassthrough, out.Strategy)
	assert.Empty(t, out.Rows)
}

func TestNormalizer_ExplicitStrategyOrder(t *testing.T) {
	table := &Table{
		Columns: []string{"0", "1"},
		Rows: []RawRow{
			{"0": "x", "1": "y"},
			{"0": "Ana", "1": "a@x.com"},
		},
	}

	headerOnly := NewNormalizer(nil, HeaderDriven{}).Normalize(table)
	assert.Equal(t, StrategyPassthrough, headerOnly.Strategy)
	assert.Len(t, headerOnly.Rows, 2)

	sniffed := NewNormalizer(nil, ContentSniffed{}).Normalize(table)
	assert.Equal(t, "content", sniffed.Strategy)
	assert.Len(t, sniffed.Rows, 1)
}

func TestStrategyRegistry(t *testing.T) {
	assert.Equal(t, []string{"header", "content"}, StrategyNames())

	s, ok := LookupStrategy(" Header ")
	require.True(t, ok)
	assert.Equal(t, "header", s.Name())

	got, err := StrategiesByName([]string{"content", "header"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "content", got[0].Name())

	_, err = StrategiesByName([]string{"fuzzy"})
	assert.Error(t, err)

	assert.Panics(t, func() { RegisterStrategy(HeaderDriven{}) })
}
