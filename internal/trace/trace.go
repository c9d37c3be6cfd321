// Package trace loads recorded editing traces and replays them against a
// rope.
//
// Two JSON layouts are understood. The transaction layout:
//
//	{
//	  "startContent": "",
//	  "endContent": "hi",
//	  "txns": [{"patches": [[0, 0, "hi"]]}]
//	}
//
// and the flat layout:
//
//	{"edits": [[0, 0, "hi"]], "finalText": "hi"}
//
// Each patch is [position, deleteCount, insertText] with positions and
// counts in Unicode codepoints. Files ending in .gz are decompressed.
package trace

import (
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/tidwall/gjson"
)

// Errors returned by trace operations.
var (
	// ErrMalformed indicates the input is not a usable trace.
	ErrMalformed = errors.New("malformed trace")

	// ErrPatchOutOfRange indicates a patch addresses text that does not exist.
	ErrPatchOutOfRange = errors.New("patch out of range")

	// ErrContentMismatch indicates the replayed text differs from the
	// trace's recorded final content.
	ErrContentMismatch = errors.New("replayed content does not match trace")
)

// Patch is a single edit: delete Del characters at Pos, then insert Ins
// there.
type Patch struct {
	Pos int
	Del int
	Ins string
}

// Trace is a recorded editing session.
type Trace struct {
	// Start is the document before the first patch.
	Start string

	// End is the recorded final document, valid when HasEnd is set.
	End    string
	HasEnd bool

	Patches []Patch

	// Txns counts transactions in the transaction layout. It is zero for
	// the flat layout.
	Txns int
}

// LoadFile loads a trace from path, decompressing .gz files.
func LoadFile(path string) (*Trace, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		defer gz.Close()
		r = gz
	}

	t, err := Load(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Load parses a trace from r.
func Load(r io.Reader) (*Trace, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse parses a trace from JSON bytes.
func Parse(data []byte) (*Trace, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: invalid json", ErrMalformed)
	}
	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return nil, fmt.Errorf("%w: top level is not an object", ErrMalformed)
	}

	t := &Trace{Start: doc.Get("startContent").String()}
	for _, key := range []string{"endContent", "finalText"} {
		if end := doc.Get(key); end.Exists() {
			t.End, t.HasEnd = end.String(), true
			break
		}
	}

	var perr error
	collect := func(patches gjson.Result) {
		patches.ForEach(func(_, v gjson.Result) bool {
			p, err := parsePatch(v, len(t.Patches))
			if err != nil {
				perr = err
				return false
			}
			t.Patches = append(t.Patches, p)
			return true
		})
	}

	switch {
	case doc.Get("txns").IsArray():
		doc.Get("txns").ForEach(func(_, txn gjson.Result) bool {
			t.Txns++
			collect(txn.Get("patches"))
			return perr == nil
		})
	case doc.Get("edits").IsArray():
		collect(doc.Get("edits"))
	default:
		return nil, fmt.Errorf("%w: no txns or edits array", ErrMalformed)
	}
	if perr != nil {
		return nil, perr
	}
	return t, nil
}

func parsePatch(v gjson.Result, index int) (Patch, error) {
	fields := v.Array()
	if !v.IsArray() || len(fields) != 3 ||
		fields[0].Type != gjson.Number || fields[1].Type != gjson.Number ||
		fields[2].Type != gjson.String {
		return Patch{}, fmt.Errorf("%w: patch %d is not [pos, del, ins]: %s", ErrMalformed, index, v.Raw)
	}
	p := Patch{
		Pos: int(fields[0].Int()),
		Del: int(fields[1].Int()),
		Ins: fields[2].String(),
	}
	if p.Pos < 0 || p.Del < 0 {
		return Patch{}, fmt.Errorf("%w: patch %d has negative values", ErrMalformed, index)
	}
	return p, nil
}
