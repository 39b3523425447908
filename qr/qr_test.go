package qr

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func TestPNGEncoder(t *testing.T) {
	data, err := NewPNGEncoder().Encode("https://example.test/o/SO-1001")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !bytes.HasPrefix(data, pngMagic) {
		t.Fatalf("output is not a PNG")
	}
}

func TestPNGEncoderErrors(t *testing.T) {
	enc := &PNGEncoder{}
	cases := map[string]string{
		"empty":    "",
		"too long": strings.Repeat("x", 8000),
	}
	for name, payload := range cases {
		_, err := enc.Encode(payload)
		var encErr *EncodingError
		if !errors.As(err, &encErr) {
			t.Errorf("%s: expected EncodingError, got %v", name, err)
		}
	}
}
