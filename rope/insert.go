package rope

import "fmt"

// InsertString inserts s at character position pos. See Insert.
func (r *Rope) InsertString(pos int, s string) error {
	return r.Insert(pos, []byte(s))
}

// Insert inserts the UTF-8 text at character position pos.
//
// Positions past the end append; negative positions insert at the start.
// If text is not valid UTF-8 the rope is unchanged and the error wraps
// ErrInvalidUTF8. If the allocator refuses memory the rope is unchanged and
// the error wraps ErrOutOfMemory.
func (r *Rope) Insert(pos int, text []byte) error {
	if r.closed {
		return ErrClosed
	}
	chars, size, err := Measure(text)
	if err != nil {
		return err
	}
	if size == 0 {
		return nil
	}
	pos = min(max(pos, 0), r.chars)

	path := r.seek(pos)
	id, offset := path[0].id, path[0].offset
	nd := r.arena.at(id)
	offBytes := byteOffset(nd.data(), offset)
	limit := r.cfg.MaxNodeBytes

	fits := nd.n+size <= limit
	if !fits && offBytes == nd.n {
		// At the end of a full chunk the text can go at the start of the
		// next one instead.
		if next := nd.skips[0].next; next != nilID && r.arena.at(next).n+size <= limit {
			for i := range r.arena.at(next).skips {
				path[i] = step{id: next, offset: 0}
			}
			id, offset, offBytes = next, 0, 0
			fits = true
		}
	}

	if fits {
		return r.insertInPlace(path, id, offBytes, text, chars)
	}
	return r.insertSplit(path, id, offset, offBytes, text, chars)
}

// insertInPlace splices text into chunk id at byte offset off.
func (r *Rope) insertInPlace(path []step, id nodeID, off int, text []byte, chars int) error {
	nd := r.arena.at(id)
	size := len(text)
	if need := nd.n + size; need > len(nd.buf) {
		buf, err := r.alloc.Realloc(nd.buf, growCap(len(nd.buf), need, r.cfg.MaxNodeBytes))
		if err != nil {
			return fmt.Errorf("%w: grow chunk: %v", ErrOutOfMemory, err)
		}
		nd.buf = buf
	}

	copy(nd.buf[off+size:nd.n+size], nd.buf[off:nd.n])
	copy(nd.buf[off:], text)
	nd.n += size

	r.shiftPath(path, chars)
	r.chars += chars
	r.bytes += size
	return nil
}

// piece is a run of text destined for a single new chunk.
type piece struct {
	src   []byte
	chars int
	buf   []byte
}

// insertSplit handles an insert that does not fit in the target chunk. The
// target is cut at the insertion point, and the new text followed by the cut
// tail is laid out in fresh chunks linked in after it.
func (r *Rope) insertSplit(path []step, id nodeID, offset, offBytes int, text []byte, chars int) error {
	limit := r.cfg.MaxNodeBytes
	nd := r.arena.at(id)

	var pieces []piece
	for rest := text; len(rest) > 0; {
		size, n := fitPrefix(rest, limit)
		pieces = append(pieces, piece{src: rest[:size], chars: n})
		rest = rest[size:]
	}
	tail := nd.data()[offBytes:]
	tailChars := nd.chars() - offset
	if len(tail) > 0 {
		pieces = append(pieces, piece{src: tail, chars: tailChars})
	}

	// Reserve every buffer before touching the structure so a refusal
	// leaves the rope as it was.
	for i := range pieces {
		buf, err := r.alloc.Alloc(chunkAlloc(len(pieces[i].src), limit))
		if err != nil {
			for _, p := range pieces[:i] {
				r.alloc.Free(p.buf)
			}
			return fmt.Errorf("%w: new chunk: %v", ErrOutOfMemory, err)
		}
		copy(buf, pieces[i].src)
		pieces[i].buf = buf
	}

	if len(tail) > 0 {
		r.shiftPath(path, -tailChars)
		r.chars -= tailChars
		r.bytes -= len(tail)
		nd.n = offBytes
	}
	for _, p := range pieces {
		path = r.link(path, p.buf, len(p.src), p.chars)
	}
	return nil
}

// Replace deletes count characters at pos and inserts text in their place.
//
// The text is validated before anything is deleted. An ErrOutOfMemory from
// the insert leaves the deletion applied.
func (r *Rope) Replace(pos, count int, text []byte) error {
	if r.closed {
		return ErrClosed
	}
	if _, _, err := Measure(text); err != nil {
		return err
	}
	r.Delete(pos, count)
	return r.Insert(pos, text)
}
