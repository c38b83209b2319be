package core

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// workbook builds an xlsx file whose first sheet holds rows.
func workbook(t *testing.T, rows [][]string) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for i, row := range rows {
		for j, v := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellStr("Sheet1", cell, v))
		}
	}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return buf.Bytes()
}

func TestParseSpreadsheet(t *testing.T) {
	data := workbook(t, [][]string{
		{" CPF ", "Nome", "E-mail", "Telefone"},
		{"111.111.111-11", "Ana", "a@x.com", "111"},
		{},
		{"222.222.222-22", "Bia"},
	})

	table, err := ParseSpreadsheet(data, ParseOptions{HasHeader: true})
	require.NoError(t, err)

	assert.Equal(t, []string{"CPF", "Nome", "E-mail", "Telefone"}, table.Columns)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "a@x.com", table.Rows[0]["E-mail"])
	assert.Equal(t, "", table.Rows[1]["Telefone"])
	assert.Empty(t, table.Warnings, "trailing empty cells are not a shape problem")
}

func TestParseSpreadsheet_HeaderOnlyIsEmpty(t *testing.T) {
	data := workbook(t, [][]string{{"cpf", "nome"}})

	_, err := ParseSpreadsheet(data, ParseOptions{HasHeader: true})
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, CodeEmpty, pe.Code)
}

func TestParseSpreadsheet_NotAWorkbook(t *testing.T) {
	_, err := ParseSpreadsheet([]byte("cpf,nome\n1,Ana\n"), ParseOptions{HasHeader: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid xlsx")
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name    string
		want    SourceKind
		wantErr bool
	}{
		{"mestre.csv", KindDelimited, false},
		{"MESTRE.XLSX", KindSpreadsheet, false},
		{"cpfs.txt", KindList, false},
		{"dados", KindDelimited, false},
		{"antigo.xls", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := KindOf(tt.name)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
