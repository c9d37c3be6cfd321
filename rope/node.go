package rope

// nodeID addresses a node in the rope's arena.
type nodeID int32

const (
	// headID is the inline first node. It is never removed.
	headID nodeID = 0

	// nilID terminates a chain.
	nilID nodeID = -1
)

// skip is one level of a node's linkage.
//
// distance is the number of characters from the start of this node to the
// start of next. When next is nilID it is the number of characters from the
// start of this node to the end of the rope. At level 0 that is the node's
// own character count.
type skip struct {
	distance int
	next     nodeID
}

// node is a chunk of text plus its skip-list links.
// buf[:n] holds complete UTF-8 codepoints; len(buf) is the allocated size.
type node struct {
	buf   []byte
	n     int
	skips []skip
}

// data returns the bytes in use.
func (nd *node) data() []byte {
	return nd.buf[:nd.n:nd.n]
}

// chars returns the node's own character count.
func (nd *node) chars() int {
	return nd.skips[0].distance
}

// live reports whether the slot holds a linked node.
func (nd *node) live() bool {
	return nd.skips != nil
}

// arena owns every node of a rope. Freed slots are recycled so IDs stay
// small and stable for the lifetime of a node.
type arena struct {
	nodes []node
	free  []nodeID
}

// at returns the node for id. The pointer is invalidated by add.
func (a *arena) at(id nodeID) *node {
	return &a.nodes[id]
}

// add stores nd and returns its ID.
func (a *arena) add(nd node) nodeID {
	if k := len(a.free); k > 0 {
		id := a.free[k-1]
		a.free = a.free[:k-1]
		a.nodes[id] = nd
		return id
	}
	a.nodes = append(a.nodes, nd)
	return nodeID(len(a.nodes) - 1)
}

// remove clears the slot for id and makes it available to add.
func (a *arena) remove(id nodeID) {
	a.nodes[id] = node{}
	a.free = append(a.free, id)
}

// len returns the number of live nodes.
func (a *arena) len() int {
	return len(a.nodes) - len(a.free)
}

// chunkAlloc returns the allocation size for a chunk that must hold need
// bytes, rounded up to limit growth reallocations.
func chunkAlloc(need, limit int) int {
	const granule = 16
	size := (need + granule - 1) / granule * granule
	return max(min(size, limit), need)
}

// growCap returns the next allocation size for a chunk currently sized cur
// that must hold need bytes.
func growCap(cur, need, limit int) int {
	return chunkAlloc(max(need, 2*cur), limit)
}
