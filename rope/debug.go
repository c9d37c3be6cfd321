//go:build !ropenodebug

package rope

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
)

// Check verifies every structural invariant of the rope and returns an
// error wrapping ErrCorrupt describing the first violation found.
// It costs O(n) and is meant for tests and debugging.
func (r *Rope) Check() error {
	if r.closed {
		return nil
	}
	corrupt := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrCorrupt, fmt.Sprintf(format, args...))
	}

	if r.height < 1 || r.height > r.cfg.MaxHeight+1 {
		return corrupt("head height %d out of range", r.height)
	}
	if next := r.arena.at(headID).skips[r.height-1].next; next != nilID {
		return corrupt("head top level links to node %d", next)
	}

	// Level 0: contents, per-node counts and positions.
	start := make(map[nodeID]int)
	tall := make([]int, r.height)
	chars, size, visited := 0, 0, 0
	for id := headID; id != nilID; id = r.arena.at(id).skips[0].next {
		if _, seen := start[id]; seen {
			return corrupt("level 0 revisits node %d", id)
		}
		nd := r.arena.at(id)
		if !nd.live() {
			return corrupt("level 0 reaches freed slot %d", id)
		}
		if nd.n > r.cfg.MaxNodeBytes || nd.n > len(nd.buf) {
			return corrupt("node %d holds %d bytes (cap %d, buf %d)", id, nd.n, r.cfg.MaxNodeBytes, len(nd.buf))
		}
		n, _, err := Measure(nd.data())
		if err != nil {
			return corrupt("node %d: %v", id, err)
		}
		if n != nd.chars() {
			return corrupt("node %d decodes to %d chars, level 0 says %d", id, n, nd.chars())
		}
		if id != headID {
			if h := len(nd.skips); h < 1 || h > r.cfg.MaxHeight || h >= r.height {
				return corrupt("node %d height %d (head height %d)", id, h, r.height)
			}
			if nd.n == 0 {
				return corrupt("node %d is empty", id)
			}
		}
		for h := 0; h < min(r.heightOf(id), r.height); h++ {
			tall[h]++
		}
		start[id] = chars
		chars += n
		size += nd.n
		visited++
	}
	if chars != r.chars {
		return corrupt("char total %d, nodes sum to %d", r.chars, chars)
	}
	if size != r.bytes {
		return corrupt("byte total %d, nodes sum to %d", r.bytes, size)
	}
	if live := r.arena.len(); live != visited {
		return corrupt("arena holds %d nodes, level 0 reaches %d", live, visited)
	}

	// Upper levels: every tall-enough node is linked in order, and each
	// distance equals the characters up to the next linked node.
	for h := 0; h < r.height; h++ {
		want, got := tall[h], 0
		for id := headID; id != nilID; {
			if r.heightOf(id) <= h {
				return corrupt("level %d links node %d of height %d", h, id, r.heightOf(id))
			}
			s := r.arena.at(id).skips[h]
			end := r.chars
			if s.next != nilID {
				pos, ok := start[s.next]
				if !ok {
					return corrupt("level %d links node %d to unreachable node %d", h, id, s.next)
				}
				if pos < start[id] || (pos == start[id] && id != headID) {
					return corrupt("level %d goes backwards at node %d", h, id)
				}
				end = pos
			}
			if s.distance != end-start[id] {
				return corrupt("level %d node %d distance %d, want %d", h, id, s.distance, end-start[id])
			}
			got++
			if got > want {
				return corrupt("level %d has a cycle", h)
			}
			id = s.next
		}
		if got != want {
			return corrupt("level %d links %d nodes, %d are tall enough", h, got, want)
		}
	}
	return nil
}

// Dump writes a table of every chunk and its links to w.
func (r *Rope) Dump(w io.Writer) {
	fmt.Fprintf(w, "chars: %d  bytes: %d  levels: %d  nodes: %d\n",
		r.chars, r.bytes, r.height, r.arena.len())

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Node", "Height", "Bytes", "Chars", "Skips", "Text"})
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoWrapText(false)

	for id := r.first(); id != nilID; id = r.arena.at(id).skips[0].next {
		nd := r.arena.at(id)
		h := r.heightOf(id)
		skips := make([]string, h)
		for i := 0; i < h; i++ {
			next := "end"
			if s := nd.skips[i]; s.next != nilID {
				next = strconv.Itoa(int(s.next))
			}
			skips[i] = fmt.Sprintf("%d->%s", nd.skips[i].distance, next)
		}
		table.Append([]string{
			strconv.Itoa(int(id)),
			strconv.Itoa(h),
			strconv.Itoa(nd.n),
			strconv.Itoa(nd.chars()),
			strings.Join(skips, " "),
			preview(nd.data(), 24),
		})
	}
	table.Render()
}

// preview quotes up to limit characters of b.
func preview(b []byte, limit int) string {
	s := string(b)
	if n, _, _ := Measure(b); n > limit {
		s = string(b[:byteOffset(b, limit)]) + "..."
	}
	return strconv.Quote(s)
}
