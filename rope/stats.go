package rope

// Stats summarizes the rope's internal layout.
type Stats struct {
	Chars int
	Bytes int

	// Nodes counts chunks including the head.
	Nodes int

	// Levels is the number of skip-list levels in use.
	Levels int

	// Heights[h] counts non-head chunks of height h.
	Heights []int

	// Fill is Bytes divided by the total chunk capacity.
	Fill float64

	// Allocated is the total size of all chunk buffers.
	Allocated int
}

// Stats walks the rope and returns layout statistics.
func (r *Rope) Stats() Stats {
	s := Stats{
		Chars:   r.chars,
		Bytes:   r.bytes,
		Levels:  r.height,
		Heights: make([]int, r.cfg.MaxHeight+1),
	}
	for id := r.first(); id != nilID; id = r.arena.at(id).skips[0].next {
		nd := r.arena.at(id)
		s.Nodes++
		s.Allocated += len(nd.buf)
		if id != headID {
			s.Heights[len(nd.skips)]++
		}
	}
	if s.Nodes > 0 {
		s.Fill = float64(s.Bytes) / float64(s.Nodes*r.cfg.MaxNodeBytes)
	}
	return s
}
