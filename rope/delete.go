package rope

// Delete removes up to count characters starting at character position pos.
// Ranges running past the end are truncated; a pos at or past the end, or a
// non-positive count, does nothing. Chunks left under-full are not merged.
func (r *Rope) Delete(pos, count int) {
	pos = max(pos, 0)
	if count <= 0 || pos >= r.chars {
		return
	}
	count = min(count, r.chars-pos)

	path := r.seek(pos)
	id, offset := path[0].id, path[0].offset
	r.chars -= count

	for count > 0 {
		nd := r.arena.at(id)
		if offset == nd.chars() {
			// End of this chunk; continue at the start of the next.
			id = r.arena.at(path[0].id).skips[0].next
			offset = 0
			nd = r.arena.at(id)
		}

		own := nd.chars()
		removed := min(count, own-offset)
		height := r.heightOf(id)

		if removed < own || id == headID {
			r.trim(id, offset, removed)
			for i := 0; i < height; i++ {
				nd.skips[i].distance -= removed
			}
			id = nd.skips[0].next
		} else {
			next := nd.skips[0].next
			for i := 0; i < height; i++ {
				prev := &r.arena.at(path[i].id).skips[i]
				prev.next = nd.skips[i].next
				prev.distance += nd.skips[i].distance - removed
			}
			r.bytes -= nd.n
			r.alloc.Free(nd.buf)
			r.arena.remove(id)
			id = next
		}

		for i := height; i < r.height; i++ {
			r.arena.at(path[i].id).skips[i].distance -= removed
		}
		count -= removed
		offset = 0
	}
}

// trim removes chars characters from chunk id starting at character offset.
func (r *Rope) trim(id nodeID, offset, chars int) {
	nd := r.arena.at(id)
	data := nd.data()
	start := byteOffset(data, offset)
	end := start + byteOffset(data[start:], chars)
	copy(nd.buf[start:], nd.buf[end:nd.n])
	nd.n -= end - start
	r.bytes -= end - start
}
