package hslang

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
)

// ErrEncoding is returned by Decode when the encoding name isn't recognized.
var ErrEncoding = errors.New("unsupported source encoding")

// Decode converts source bytes in the named encoding to a UTF-8 string. The
// recognized encodings are "utf-8", "utf-16", "utf-16le", "utf-16be",
// "utf-32", "utf-32le", "utf-32be", and "windows-1252" (alias "latin1").
// An empty name or "auto" sniffs a byte order mark and falls back to UTF-8.
// UTF-16 and UTF-32 without an explicit byte order honor a byte order mark
// and otherwise assume little endian. A leading UTF-8 BOM is always dropped.
func Decode(data []byte, enc string) (string, error) {
	var d encoding.Encoding
	switch strings.ToLower(strings.ReplaceAll(enc, "_", "-")) {
	case "", "auto":
		d = sniff(data)
	case "utf-8", "utf8":
		d = unicode.UTF8BOM
	case "utf-16", "utf16", "ucs2", "ucs-2":
		d = unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)
	case "utf-16le", "utf16le":
		d = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)
	case "utf-16be", "utf16be":
		d = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)
	case "utf-32", "utf32", "ucs4", "ucs-4":
		d = utf32.UTF32(utf32.LittleEndian, utf32.UseBOM)
	case "utf-32le", "utf32le":
		d = utf32.UTF32(utf32.LittleEndian, utf32.IgnoreBOM)
	case "utf-32be", "utf32be":
		d = utf32.UTF32(utf32.BigEndian, utf32.IgnoreBOM)
	case "windows-1252", "cp1252", "latin1", "ascii":
		d = charmap.Windows1252
	default:
		return "", fmt.Errorf("hslang: %w %q", ErrEncoding, enc)
	}
	b, err := d.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("hslang: decoding %s source: %w", enc, err)
	}
	if !utf8.Valid(b) {
		return "", fmt.Errorf("hslang: source is not valid %s", enc)
	}
	return string(b), nil
}

// sniff picks an encoding from a byte order mark. UTF-32 marks are checked
// first since the little endian UTF-32 mark begins with the UTF-16 one.
func sniff(data []byte) encoding.Encoding {
	switch {
	case bytes.HasPrefix(data, []byte{0xff, 0xfe, 0, 0}):
		return utf32.UTF32(utf32.LittleEndian, utf32.UseBOM)
	case bytes.HasPrefix(data, []byte{0, 0, 0xfe, 0xff}):
		return utf32.UTF32(utf32.BigEndian, utf32.UseBOM)
	case bytes.HasPrefix(data, []byte{0xff, 0xfe}):
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)
	case bytes.HasPrefix(data, []byte{0xfe, 0xff}):
		return unicode.UTF16(unicode.BigEndian, unicode.UseBOM)
	}
	return unicode.UTF8BOM
}
