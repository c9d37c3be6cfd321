// Package textenc converts legacy-encoded text into UTF-8 before it reaches
// a rope.
package textenc

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrUnknownEncoding indicates an encoding name that is not supported.
var ErrUnknownEncoding = errors.New("unknown encoding")

var encodings = map[string]encoding.Encoding{
	"latin1":       charmap.ISO8859_1,
	"iso-8859-1":   charmap.ISO8859_1,
	"iso-8859-15":  charmap.ISO8859_15,
	"windows-1252": charmap.Windows1252,
	"cp1252":       charmap.Windows1252,
	"cp437":        charmap.CodePage437,
	"utf-16":       unicode.UTF16(unicode.LittleEndian, unicode.UseBOM),
	"utf-16le":     unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM),
	"utf-16be":     unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM),
}

// Names returns the supported encoding names, plus "utf-8".
func Names() []string {
	names := []string{"utf-8"}
	for name := range encodings {
		names = append(names, name)
	}
	return names
}

// Reader wraps r so it yields UTF-8. "utf-8" and "" return r unchanged.
func Reader(r io.Reader, name string) (io.Reader, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || name == "utf-8" || name == "utf8" {
		return r, nil
	}
	enc, ok := encodings[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, name)
	}
	return transform.NewReader(r, enc.NewDecoder()), nil
}

// Decode converts b from the named encoding to UTF-8.
func Decode(b []byte, name string) ([]byte, error) {
	rd, err := Reader(strings.NewReader(string(b)), name)
	if err != nil {
		return nil, err
	}
	return io.ReadAll(rd)
}
