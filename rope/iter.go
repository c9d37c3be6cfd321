package rope

import (
	"iter"
	"unicode/utf8"
)

// SegmentIterator walks the rope's chunks from head to tail.
//
// The views it returns alias the rope's memory. Any insert, delete or close
// performed during iteration invalidates the iterator; this is not detected.
type SegmentIterator struct {
	rope    *Rope
	id      nodeID
	started bool
}

// Segments returns an iterator over the rope's chunks.
// The head chunk is always produced first, even when empty.
func (r *Rope) Segments() *SegmentIterator {
	return &SegmentIterator{rope: r, id: nilID}
}

// Next advances to the next chunk.
// Returns true if there is a chunk, false if iteration is complete.
func (it *SegmentIterator) Next() bool {
	if !it.started {
		it.started = true
		it.id = it.rope.first()
		return it.id != nilID
	}
	if it.id == nilID {
		return false
	}
	it.id = it.rope.arena.at(it.id).skips[0].next
	return it.id != nilID
}

// Bytes returns the current chunk's bytes. The slice must not be modified.
func (it *SegmentIterator) Bytes() []byte {
	if it.id == nilID {
		return nil
	}
	return it.rope.arena.at(it.id).data()
}

// Chars returns the current chunk's character count.
func (it *SegmentIterator) Chars() int {
	if it.id == nilID {
		return 0
	}
	return it.rope.arena.at(it.id).chars()
}

// Reset rewinds the iterator to the head.
func (it *SegmentIterator) Reset() {
	it.id = nilID
	it.started = false
}

// All yields each chunk's bytes and character count, head to tail.
// The same mutation rules as SegmentIterator apply.
func (r *Rope) All() iter.Seq2[[]byte, int] {
	return func(yield func([]byte, int) bool) {
		it := r.Segments()
		for it.Next() {
			if !yield(it.Bytes(), it.Chars()) {
				return
			}
		}
	}
}

// Runes yields each codepoint with its character index.
func (r *Rope) Runes() iter.Seq2[int, rune] {
	return func(yield func(int, rune) bool) {
		i := 0
		for data := range r.All() {
			for len(data) > 0 {
				c, n := utf8.DecodeRune(data)
				if !yield(i, c) {
					return
				}
				data = data[n:]
				i++
			}
		}
	}
}
