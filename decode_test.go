package hslang_test

import (
	"errors"
	"testing"

	"github.com/zephyrtronium/hslang"
)

func TestDecode(t *testing.T) {
	cases := map[string]struct {
		data []byte
		enc  string
		want string
	}{
		"plain":         {[]byte("print 1;"), "", "print 1;"},
		"utf8-bom":      {[]byte("\xef\xbb\xbfprint 1;"), "utf-8", "print 1;"},
		"utf8-bom-auto": {[]byte("\xef\xbb\xbfvar x;"), "auto", "var x;"},
		"utf16le-auto":  {[]byte{0xff, 0xfe, 'h', 0, 'i', 0}, "", "hi"},
		"utf16be-auto":  {[]byte{0xfe, 0xff, 0, 'h', 0, 'i'}, "", "hi"},
		"utf16be":       {[]byte{0, 'h', 0, 'i'}, "UTF-16BE", "hi"},
		"utf16-default": {[]byte{'h', 0, 'i', 0}, "utf16", "hi"},
		"utf32le-auto":  {[]byte{0xff, 0xfe, 0, 0, 'x', 0, 0, 0}, "", "x"},
		"utf32be":       {[]byte{0, 0, 0, 'x', 0, 0, 0, 'y'}, "utf_32be", "xy"},
		"windows-1252":  {[]byte{'"', 0xe9, '"'}, "windows-1252", "\"é\""},
		"latin1-euro":   {[]byte{0x80}, "latin1", "€"},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			got, err := hslang.Decode(c.data, c.enc)
			if err != nil {
				t.Fatalf("couldn't decode %q as %q: %v", c.data, c.enc, err)
			}
			if got != c.want {
				t.Errorf("wrong decoding of %q as %q: want %q, got %q", c.data, c.enc, c.want, got)
			}
		})
	}
}

func TestDecodeUnsupported(t *testing.T) {
	if _, err := hslang.Decode([]byte("x"), "ebcdic"); !errors.Is(err, hslang.ErrEncoding) {
		t.Errorf("want ErrEncoding for an unknown encoding, got %v", err)
	}
}
