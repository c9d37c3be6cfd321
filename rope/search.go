package rope

// step is one level of a search path: the last node visited at that level
// and the character offset from that node's start to the target position.
type step struct {
	id     nodeID
	offset int
}

// seek locates character position pos, which must be in [0, r.chars].
//
// The returned path has an entry for every level below r.height. path[0]
// names the node containing pos and the in-node character offset. A
// position on a chunk boundary resolves to the end of the earlier chunk, so
// appends land in the tail chunk. The path aliases r.path and is valid until
// the next seek.
func (r *Rope) seek(pos int) []step {
	path := r.path[:r.height]
	id := headID
	offset := pos
	for h := r.height - 1; h >= 0; h-- {
		for {
			s := r.arena.at(id).skips[h]
			if offset <= s.distance {
				break
			}
			offset -= s.distance
			id = s.next
		}
		path[h] = step{id: id, offset: offset}
	}
	return path
}

// heightOf returns the number of levels id participates in.
func (r *Rope) heightOf(id nodeID) int {
	if id == headID {
		return r.height
	}
	return len(r.arena.at(id).skips)
}

// shiftPath adds delta characters to the span covering the search point at
// every level.
func (r *Rope) shiftPath(path []step, delta int) {
	for h := 0; h < r.height; h++ {
		r.arena.at(path[h].id).skips[h].distance += delta
	}
}

// raise grows the head so it is taller than a node of height h, extending
// path to cover the new levels.
func (r *Rope) raise(path []step, h int) []step {
	head := r.arena.at(headID)
	for r.height <= h {
		// The head's top level always runs to the end of the rope, so a new
		// top level is a copy of it.
		head.skips[r.height] = head.skips[r.height-1]
		path = path[:r.height+1]
		path[r.height] = path[r.height-1]
		r.height++
	}
	return path
}

// link inserts a new chunk holding buf[:size] at the search point described
// by path, then advances path past it so consecutive links append in order.
func (r *Rope) link(path []step, buf []byte, size, chars int) []step {
	h := r.heights.next()
	path = r.raise(path, h)

	id := r.arena.add(node{buf: buf, n: size, skips: make([]skip, h)})
	nd := r.arena.at(id)
	for i := 0; i < h; i++ {
		prev := &r.arena.at(path[i].id).skips[i]
		nd.skips[i] = skip{
			distance: chars + prev.distance - path[i].offset,
			next:     prev.next,
		}
		prev.distance = path[i].offset
		prev.next = id
		path[i] = step{id: id, offset: chars}
	}
	for i := h; i < r.height; i++ {
		r.arena.at(path[i].id).skips[i].distance += chars
		path[i].offset += chars
	}

	r.chars += chars
	r.bytes += size
	return path
}
