// Package textenc handles the 8-bit Latin-family encoding (windows-1252)
// the Receita Federal publishes its archives in, and that the Postgres
// backend is configured to speak on its client connection.
package textenc

import (
	"bytes"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// Codec is the shared windows-1252 codec used to decode archive members
// on read and re-encode sanitized strings on write.
var Codec encoding.Encoding = charmap.Windows1252

// DecodeLine converts a windows-1252-encoded byte slice to a UTF-8 string.
// Bytes with no windows-1252 mapping decode to the Unicode replacement
// character rather than failing the whole line.
func DecodeLine(b []byte) string {
	out, err := Codec.NewDecoder().Bytes(b)
	if err != nil {
		// NewDecoder().Bytes never fails for windows-1252 (a single-byte,
		// total encoding), but fall back to the raw bytes rather than
		// dropping the row if something unexpected happens.
		return string(b)
	}
	return string(out)
}

// EncodeReplace converts s to windows-1252 bytes, substituting '?' for
// any rune that has no representation in the target encoding. This is
// the "re-encode with replacement of uncoercible characters" step
// spec.md §4.D requires before a value is stored or streamed via COPY.
func EncodeReplace(s string) []byte {
	enc := Codec.NewEncoder()
	out, err := enc.Bytes([]byte(s))
	if err == nil {
		return out
	}
	// Encoder.Bytes stops at the first unmappable rune; replace unmappable
	// runes one at a time rather than truncating the rest of the value.
	var buf bytes.Buffer
	for _, r := range s {
		eb, err := enc.Bytes([]byte(string(r)))
		if err != nil {
			buf.WriteByte('?')
			continue
		}
		buf.Write(eb)
	}
	return buf.Bytes()
}
