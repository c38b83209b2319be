package core

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeCPF(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"123.456.789-00", "12345678900"},
		{" 123 456 789 00 ", "12345678900"},
		{"\t123.456.789-00\r\n", "12345678900"},
		{"12.345.678/0001-90", "12345678/000190"},
		{"", ""},
		{" . - ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := NormalizeCPF(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, NormalizeCPF(got), "must be idempotent")
		})
	}
}

func TestJoin_EndToEndScenario(t *testing.T) {
	master := []MasterRecord{
		{CPF: "111.111.111-11", Nome: "Ana", Email: "a@x.com", Telefone: "111"},
	}
	work := ParseIdentifierList("111.111.111-11\n222.222.222-22\n")

	res := Join(master, work, JoinOptions{})

	assert.Equal(t, []EnrichedRecord{
		{CPF: "111.111.111-11", Nome: "", Email: "a@x.com", Telefone: "111", Matched: true},
		{CPF: "222.222.222-22", Nome: "", Email: "", Telefone: ""},
	}, res.Records)
	assert.Equal(t, 1, res.MatchCount)
	assert.Equal(t, 2, res.Total())
	assert.InDelta(t, 50.0, res.MatchRate(), 0.001)
}

func TestJoin_FormattingIndependentMatch(t *testing.T) {
	master := []MasterRecord{{CPF: "12345678900", Email: "m@x.com", Telefone: "9"}}
	work := []WorkRecord{{CPF: " 123.456.789-00 "}}

	res := Join(master, work, JoinOptions{})

	require.Len(t, res.Records, 1)
	assert.Equal(t, " 123.456.789-00 ", res.Records[0].CPF, "work cpf keeps its formatting")
	assert.Equal(t, "m@x.com", res.Records[0].Email)
	assert.Equal(t, "9", res.Records[0].Telefone)
}

func TestJoin_MatchCountIgnoresFieldEmptiness(t *testing.T) {
	master := []MasterRecord{{CPF: "1"}}
	work := []WorkRecord{{CPF: "1"}, {CPF: "1"}, {CPF: "2"}}

	res := Join(master, work, JoinOptions{})

	assert.Equal(t, 2, res.MatchCount)
	for _, r := range res.Records {
		assert.Empty(t, r.Email)
		assert.Empty(t, r.Telefone)
	}
	assert.True(t, res.Records[0].Matched)
	assert.False(t, res.Records[2].Matched)
}

func TestJoin_PreservesWorkOrderAndCardinality(t *testing.T) {
	master := []MasterRecord{
		{CPF: "3", Email: "c"},
		{CPF: "1", Email: "a"},
	}
	work := []WorkRecord{{CPF: "1"}, {CPF: "9"}, {CPF: "3"}, {CPF: "1"}, {CPF: ""}}

	res := Join(master, work, JoinOptions{})

	require.Len(t, res.Records, len(work))
	var emails []string
	for i, r := range res.Records {
		assert.Equal(t, work[i].CPF, r.CPF)
		emails = append(emails, r.Email)
	}
	assert.Equal(t, []string{"a", "", "c", "a", ""}, emails)
	assert.Equal(t, 3, res.MatchCount)
}

func TestJoin_SkipsEmptyMasterKeys(t *testing.T) {
	master := []MasterRecord{{CPF: " .- ", Email: "ghost"}, {CPF: "", Email: "ghost"}, {CPF: "1", Email: "a"}}
	work := []WorkRecord{{CPF: ""}, {CPF: "1"}}

	res := Join(master, work, JoinOptions{})

	assert.Equal(t, 2, res.SkippedMaster)
	assert.Equal(t, 1, res.Indexed)
	assert.Equal(t, "", res.Records[0].Email)
	assert.Equal(t, "a", res.Records[1].Email)
}

func TestJoin_DuplicatePolicies(t *testing.T) {
	master := []MasterRecord{
		{CPF: "111.111.111-11", Email: "first@x.com"},
		{CPF: "11111111111", Email: "last@x.com"},
	}
	work := []WorkRecord{{CPF: "111.111.111-11"}}

	t.Run("keep first by default", func(t *testing.T) {
		rec := &Recorder{}
		res := Join(master, work, JoinOptions{Sink: rec})

		assert.Equal(t, "first@x.com", res.Records[0].Email)
		require.Len(t, res.Duplicates, 1)
		assert.Equal(t, DuplicateKey{Key: "11111111111", KeptRow: 0, DroppedRow: 1}, res.Duplicates[0])

		warns := rec.AtLeast(slog.LevelWarn)
		require.Len(t, warns, 1)
		assert.Equal(t, ComponentJoin, warns[0].Component)
		assert.Equal(t, 1, warns[0].Attrs["dropped_row"])
	})

	t.Run("keep last", func(t *testing.T) {
		res := Join(master, work, JoinOptions{Duplicates: KeepLast})

		assert.Equal(t, "last@x.com", res.Records[0].Email)
		assert.Equal(t, DuplicateKey{Key: "11111111111", KeptRow: 1, DroppedRow: 0}, res.Duplicates[0])
	})
}

func TestJoin_NamePolicy(t *testing.T) {
	master := []MasterRecord{{CPF: "1", Nome: "Master Name", Email: "a"}}

	tests := []struct {
		name string
		work []WorkRecord
		opts JoinOptions
		want []string
	}{
		{
			name: "work name used when work carries names",
			work: []WorkRecord{{CPF: "1", Nome: "Work Name"}, {CPF: "2", Nome: "Other"}},
			opts: JoinOptions{WorkHasName: true},
			want: []string{"Work Name", "Other"},
		},
		{
			name: "blank without work names",
			work: []WorkRecord{{CPF: "1"}, {CPF: "2"}},
			opts: JoinOptions{},
			want: []string{"", ""},
		},
		{
			name: "master fallback fills matched rows only",
			work: []WorkRecord{{CPF: "1"}, {CPF: "2"}},
			opts: JoinOptions{NameFallback: NameFromMaster},
			want: []string{"Master Name", ""},
		},
		{
			name: "master fallback ignored when work carries names",
			work: []WorkRecord{{CPF: "1", Nome: ""}},
			opts: JoinOptions{WorkHasName: true, NameFallback: NameFromMaster},
			want: []string{""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Join(master, tt.work, tt.opts)
			var names []string
			for _, r := range res.Records {
				names = append(names, r.Nome)
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestJoin_EmptyInputs(t *testing.T) {
	res := Join(nil, nil, JoinOptions{})
	assert.NotNil(t, res.Records)
	assert.Empty(t, res.Records)
	assert.Equal(t, 0.0, res.MatchRate())
}
