package textenc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name     string
		encoding string
		input    []byte
		want     string
	}{
		{"utf-8 passthrough", "utf-8", []byte("héllo"), "héllo"},
		{"empty name passthrough", "", []byte("abc"), "abc"},
		{"latin1", "latin1", []byte{'c', 'a', 'f', 0xE9}, "café"},
		{"windows-1252 euro", "Windows-1252", []byte{0x80, '5'}, "€5"},
		{"utf-16le", "utf-16le", []byte{'h', 0, 'i', 0}, "hi"},
		{"utf-16 with bom", "utf-16", []byte{0xFE, 0xFF, 0, 'o', 0, 'k'}, "ok"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.input, tt.encoding)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestDecodeUnknown(t *testing.T) {
	_, err := Decode([]byte("x"), "ebcdic-42")
	assert.ErrorIs(t, err, ErrUnknownEncoding)
}

func TestNames(t *testing.T) {
	names := Names()
	assert.Contains(t, names, "utf-8")
	assert.Contains(t, names, "latin1")
}
