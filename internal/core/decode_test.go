package core

import (
	"testing"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		enc   Encoding
		want  string
	}{
		{"utf8 passthrough", []byte("João"), EncodingAuto, "João"},
		{"bom stripped", []byte("\xEF\xBB\xBFcpf"), EncodingAuto, "cpf"},
		{"auto falls back to windows-1252", []byte("Jo\xe3o \x80"), EncodingAuto, "João €"},
		{"explicit latin1", []byte("S\xe3o Paulo"), EncodingLatin1, "São Paulo"},
		{"explicit windows-1252", []byte("\x93aspas\x94"), EncodingWindows1252, "“aspas”"},
		{"utf8 sanitizes invalid bytes", []byte("a\xffb"), EncodingUTF8, "a\uFFFDb"},
		{"empty", nil, EncodingAuto, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.input, tt.enc)
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("Decode() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDecode_UnknownEncoding(t *testing.T) {
	if _, err := Decode([]byte("x"), Encoding("ebcdic")); err == nil {
		t.Error("expected error for unknown encoding")
	}
}

func TestParseEncoding(t *testing.T) {
	tests := []struct {
		in      string
		want    Encoding
		wantErr bool
	}{
		{"", EncodingAuto, false},
		{"AUTO", EncodingAuto, false},
		{"utf8", EncodingUTF8, false},
		{"cp1252", EncodingWindows1252, false},
		{"latin1", EncodingLatin1, false},
		{"utf-16", "", true},
	}

	for _, tt := range tests {
		got, err := ParseEncoding(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseEncoding(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseEncoding(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
