package core

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// Encoding names a text encoding accepted for input files.
type Encoding string

const (
	EncodingAuto        Encoding = "auto"
	EncodingUTF8        Encoding = "utf-8"
	EncodingWindows1252 Encoding = "windows-1252"
	EncodingLatin1      Encoding = "iso-8859-1"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ParseEncoding resolves a user-supplied encoding name.
func ParseEncoding(name string) (Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "auto":
		return EncodingAuto, nil
	case "utf8", "utf-8":
		return EncodingUTF8, nil
	case "windows-1252", "cp1252", "win1252":
		return EncodingWindows1252, nil
	case "iso-8859-1", "latin1", "latin-1":
		return EncodingLatin1, nil
	default:
		return "", fmt.Errorf("unknown encoding %q", name)
	}
}

// Decode returns data as UTF-8 text without a leading byte-order mark.
//
// EncodingAuto keeps valid UTF-8 as is and otherwise assumes Windows-1252,
// the usual encoding of spreadsheet exports that are not UTF-8. EncodingUTF8
// replaces invalid bytes with U+FFFD.
func Decode(data []byte, enc Encoding) ([]byte, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	switch enc {
	case "", EncodingAuto:
		if utf8.Valid(data) {
			return data, nil
		}
		return transcode(data, charmap.Windows1252)
	case EncodingUTF8:
		return sanitizeUTF8(data), nil
	case EncodingWindows1252:
		return transcode(data, charmap.Windows1252)
	case EncodingLatin1:
		return transcode(data, charmap.ISO8859_1)
	default:
		return nil, fmt.Errorf("encoding error: unsupported encoding %q", enc)
	}
}

func transcode(data []byte, enc encoding.Encoding) ([]byte, error) {
	out, _, err := transform.Bytes(enc.NewDecoder(), data)
	if err != nil {
		return nil, fmt.Errorf("encoding error: %w", err)
	}
	return out, nil
}

func sanitizeUTF8(data []byte) []byte {
	if utf8.Valid(data) {
		return data
	}

	var buf bytes.Buffer
	buf.Grow(len(data))

	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			buf.WriteRune(utf8.RuneError)
		} else {
			buf.WriteRune(r)
		}
		data = data[size:]
	}

	return buf.Bytes()
}
