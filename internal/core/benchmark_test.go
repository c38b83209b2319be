package core

import (
	"fmt"
	"strings"
	"testing"
)

// syntheticMaster builds a semicolon-separated master file with n rows.
func syntheticMaster(n int) []byte {
	var b strings.Builder
	b.WriteString("CPF;Nome;E-mail;Telefone;Cidade\n")
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "%03d.%03d.%03d-%02d;Pessoa %d;p%d@x.com;%d;Recife\n",
			i/1000000%1000, i/1000%1000, i%1000, i%100, i, i, i)
	}
	return []byte(b.String())
}

// ============================================================================
// Parse Benchmarks
// ============================================================================

// BenchmarkParse measures delimiter detection plus reading 10k rows.
func BenchmarkParse(b *testing.B) {
	data := syntheticMaster(10000)
	b.SetBytes(int64(len(data)))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Parse(data, ParseOptions{HasHeader: true}); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkDetectDelimiter measures detection on the sample window only.
func BenchmarkDetectDelimiter(b *testing.B) {
	text := syntheticMaster(100)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := detectDelimiter(text); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkDecode_Windows1252 measures the legacy-encoding fallback.
func BenchmarkDecode_Windows1252(b *testing.B) {
	data := []byte(strings.Repeat("Jo\xe3o;S\xe3o Paulo;\x80\n", 1000))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Decode(data, EncodingAuto); err != nil {
			b.Fatal(err)
		}
	}
}

// ============================================================================
// Normalize Benchmarks
// ============================================================================

// BenchmarkMapLabel measures label classification including accent folding.
func BenchmarkMapLabel(b *testing.B) {
	labels := []string{"CPF/CNPJ", "Nome", "E-mail", "Telefone Celular", "Endereço", "Observações"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, l := range labels {
			MapLabel(l)
		}
	}
}

// BenchmarkNormalize measures normalizing a parsed 10k-row table.
func BenchmarkNormalize(b *testing.B) {
	table, err := Parse(syntheticMaster(10000), ParseOptions{HasHeader: true})
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Normalize(table)
	}
}

// ============================================================================
// Join Benchmarks
// ============================================================================

// BenchmarkNormalizeCPF measures key normalization, the join's hot path.
func BenchmarkNormalizeCPF(b *testing.B) {
	for i := 0; i < b.N; i++ {
		NormalizeCPF(" 123.456.789-00 ")
	}
}

// BenchmarkJoin measures a 100k master by 10k work join.
func BenchmarkJoin(b *testing.B) {
	master := make([]MasterRecord, 100000)
	for i := range master {
		master[i] = MasterRecord{CPF: fmt.Sprintf("%011d", i), Email: "x@y.com"}
	}
	work := make([]WorkRecord, 10000)
	for i := range work {
		work[i] = WorkRecord{CPF: fmt.Sprintf("%011d", i*20)}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Join(master, work, JoinOptions{})
	}
}

// ============================================================================
// Serialize Benchmarks
// ============================================================================

// BenchmarkSerializeCSV measures rendering 10k enriched records.
func BenchmarkSerializeCSV(b *testing.B) {
	records := make([]EnrichedRecord, 10000)
	for i := range records {
		records[i] = EnrichedRecord{CPF: fmt.Sprintf("%011d", i), Nome: "Ana; Maria", Email: "a@x.com", Telefone: "9"}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := SerializeCSV(records, DefaultSerializeOptions()); err != nil {
			b.Fatal(err)
		}
	}
}
