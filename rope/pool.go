package rope

import "sync"

// PoolAllocator recycles chunk buffers through a sync.Pool.
//
// Every buffer it hands out has capacity size, so Realloc within that
// capacity is a reslice. Requests larger than size fall through to the heap
// and are not recycled.
//
// It's primarily beneficial for:
//   - High-frequency edit workloads that create and delete many chunks
//   - Many short-lived ropes copied from a common source
type PoolAllocator struct {
	size int
	pool sync.Pool
}

// NewPoolAllocator creates a pool of buffers with capacity size.
// Pass the rope's MaxNodeBytes so every chunk request is served from it.
func NewPoolAllocator(size int) *PoolAllocator {
	p := &PoolAllocator{size: size}
	p.pool.New = func() any {
		b := make([]byte, size)
		return &b
	}
	return p
}

// Alloc implements Allocator.
func (p *PoolAllocator) Alloc(size int) ([]byte, error) {
	if size > p.size {
		return make([]byte, size), nil
	}
	b := p.pool.Get().(*[]byte)
	buf := (*b)[:size]
	clear(buf)
	return buf, nil
}

// Realloc implements Allocator.
func (p *PoolAllocator) Realloc(buf []byte, size int) ([]byte, error) {
	if cap(buf) >= size {
		return buf[:size], nil
	}
	grown, err := p.Alloc(size)
	if err != nil {
		return nil, err
	}
	copy(grown, buf)
	p.Free(buf)
	return grown, nil
}

// Free implements Allocator.
func (p *PoolAllocator) Free(buf []byte) {
	if cap(buf) != p.size {
		return
	}
	b := buf[:p.size]
	p.pool.Put(&b)
}
