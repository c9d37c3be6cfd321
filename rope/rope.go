package rope

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Rope is a mutable UTF-8 string built from skip-list linked chunks.
// The zero value is not usable; create ropes with New or FromString.
type Rope struct {
	cfg     Config
	alloc   Allocator
	heights heightGen

	arena arena

	// height is the number of levels the head participates in. It is always
	// one more than the tallest non-head node.
	height int

	chars int
	bytes int

	// path is scratch space for searches, reused across operations.
	path []step

	closed bool
}

// New creates an empty rope.
func New(opts ...Option) (*Rope, error) {
	o, err := buildOptions(opts)
	if err != nil {
		return nil, err
	}
	return newRope(o.cfg, o.alloc, newHeightGen(o.cfg))
}

func newRope(cfg Config, alloc Allocator, heights heightGen) (*Rope, error) {
	buf, err := alloc.Alloc(chunkAlloc(0, cfg.MaxNodeBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: head chunk: %v", ErrOutOfMemory, err)
	}

	r := &Rope{
		cfg:     cfg,
		alloc:   alloc,
		heights: heights,
		height:  1,
		path:    make([]step, cfg.MaxHeight+1),
	}
	// The head can be one level taller than any other node.
	head := node{buf: buf, skips: make([]skip, cfg.MaxHeight+1)}
	for i := range head.skips {
		head.skips[i].next = nilID
	}
	r.arena.add(head)
	return r, nil
}

// FromString creates a rope holding s.
func FromString(s string, opts ...Option) (*Rope, error) {
	return FromBytes([]byte(s), opts...)
}

// FromBytes creates a rope holding the UTF-8 text b.
// Shorthand for New followed by Insert at position 0.
func FromBytes(b []byte, opts ...Option) (*Rope, error) {
	r, err := New(opts...)
	if err != nil {
		return nil, err
	}
	if err := r.Insert(0, b); err != nil {
		r.Close()
		return nil, err
	}
	return r, nil
}

// FromReader creates a rope from an io.Reader.
// Codepoints split across reads are reassembled; the whole stream must be
// valid UTF-8.
func FromReader(rd io.Reader, opts ...Option) (*Rope, error) {
	r, err := New(opts...)
	if err != nil {
		return nil, err
	}

	buf := make([]byte, 64*1024) // 64KB read buffer
	carry := 0
	for {
		n, readErr := rd.Read(buf[carry:])
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			r.Close()
			return nil, readErr
		}
		n += carry
		cut := n
		if readErr == nil {
			cut = completePrefix(buf[:n])
		}
		if cut > 0 {
			if err := r.Insert(r.chars, buf[:cut]); err != nil {
				r.Close()
				return nil, err
			}
		}
		carry = copy(buf, buf[cut:n])

		if readErr != nil {
			break
		}
	}
	return r, nil
}

// Copy returns a deep copy of r. The copy shares only the allocator and
// tunables with r.
func (r *Rope) Copy() (*Rope, error) {
	if r.closed {
		return nil, ErrClosed
	}

	c := &Rope{
		cfg:     r.cfg,
		alloc:   r.alloc,
		heights: r.heights.fork(),
		height:  r.height,
		chars:   r.chars,
		bytes:   r.bytes,
		path:    make([]step, len(r.path)),
	}
	c.arena.nodes = make([]node, len(r.arena.nodes))
	c.arena.free = append([]nodeID(nil), r.arena.free...)

	for i := range r.arena.nodes {
		src := &r.arena.nodes[i]
		if !src.live() {
			continue
		}
		buf, err := r.alloc.Alloc(len(src.buf))
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("%w: copy: %v", ErrOutOfMemory, err)
		}
		copy(buf, src.data())
		c.arena.nodes[i] = node{
			buf:   buf,
			n:     src.n,
			skips: append([]skip(nil), src.skips...),
		}
	}
	return c, nil
}

// Close releases every chunk back to the allocator. The rope must not be
// used afterwards; mutating calls return ErrClosed and queries report an
// empty rope.
func (r *Rope) Close() {
	if r.closed {
		return
	}
	// Non-head chunks first, then the head.
	for i := len(r.arena.nodes) - 1; i >= 0; i-- {
		nd := &r.arena.nodes[i]
		if nd.buf != nil {
			r.alloc.Free(nd.buf)
		}
	}
	r.arena = arena{}
	r.path = nil
	r.chars, r.bytes, r.height = 0, 0, 0
	r.closed = true
}

// CharCount returns the number of codepoints in the rope.
func (r *Rope) CharCount() int {
	return r.chars
}

// ByteCount returns the length of the rope encoded as UTF-8.
func (r *Rope) ByteCount() int {
	return r.bytes
}

// IsEmpty returns true if the rope contains no text.
func (r *Rope) IsEmpty() bool {
	return r.chars == 0
}

// Config returns the tunables the rope was built with.
func (r *Rope) Config() Config {
	return r.cfg
}

// WriteCString copies the rope's bytes into dst followed by a terminating 0
// and returns ByteCount()+1. It panics if dst is shorter than that.
func (r *Rope) WriteCString(dst []byte) int {
	need := r.bytes + 1
	if len(dst) < need {
		panic(fmt.Sprintf("rope: WriteCString buffer too small: %d < %d", len(dst), need))
	}
	n := r.appendTo(dst[:0])
	dst[len(n)] = 0
	return need
}

// CString returns a newly allocated copy of the rope's bytes followed by a
// terminating 0.
func (r *Rope) CString() []byte {
	out := make([]byte, r.bytes+1)
	r.WriteCString(out)
	return out
}

// Bytes returns a copy of the rope's content.
func (r *Rope) Bytes() []byte {
	return r.appendTo(make([]byte, 0, r.bytes))
}

// String returns the full text as a string.
// Use sparingly for large ropes.
func (r *Rope) String() string {
	var sb strings.Builder
	sb.Grow(r.bytes)
	for id := r.first(); id != nilID; id = r.arena.at(id).skips[0].next {
		sb.Write(r.arena.at(id).data())
	}
	return sb.String()
}

// WriteTo writes the rope's content to w. It implements io.WriterTo.
func (r *Rope) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for id := r.first(); id != nilID; id = r.arena.at(id).skips[0].next {
		n, err := w.Write(r.arena.at(id).data())
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

func (r *Rope) appendTo(dst []byte) []byte {
	for id := r.first(); id != nilID; id = r.arena.at(id).skips[0].next {
		dst = append(dst, r.arena.at(id).data()...)
	}
	return dst
}

// first returns the head, or nilID once the rope is closed.
func (r *Rope) first() nodeID {
	if r.closed {
		return nilID
	}
	return headID
}

// Slice returns up to count characters starting at character pos.
// Out-of-range requests are clamped.
func (r *Rope) Slice(pos, count int) string {
	if r.closed || count <= 0 || pos >= r.chars {
		return ""
	}
	pos = max(pos, 0)
	count = min(count, r.chars-pos)

	path := r.seek(pos)
	id, offset := path[0].id, path[0].offset

	var sb strings.Builder
	for count > 0 {
		nd := r.arena.at(id)
		if offset == nd.chars() {
			id, offset = nd.skips[0].next, 0
			continue
		}
		take := min(count, nd.chars()-offset)
		data := nd.data()
		start := byteOffset(data, offset)
		end := start + byteOffset(data[start:], take)
		sb.Write(data[start:end])
		count -= take
		id, offset = nd.skips[0].next, 0
	}
	return sb.String()
}

// Equal reports whether r and other hold the same text.
// It compares content, not chunk layout.
func (r *Rope) Equal(other *Rope) bool {
	if r.chars != other.chars || r.bytes != other.bytes {
		return false
	}
	a, b := r.Segments(), other.Segments()
	var x, y []byte
	for {
		for len(x) == 0 && a.Next() {
			x = a.Bytes()
		}
		for len(y) == 0 && b.Next() {
			y = b.Bytes()
		}
		if len(x) == 0 || len(y) == 0 {
			return len(x) == len(y)
		}
		n := min(len(x), len(y))
		if !bytes.Equal(x[:n], y[:n]) {
			return false
		}
		x, y = x[n:], y[n:]
	}
}
