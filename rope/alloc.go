package rope

import (
	"fmt"
	"sync"
)

// Allocator supplies the byte buffers that back rope chunks.
//
// Alloc returns a buffer of exactly size bytes. Realloc returns a buffer of
// exactly size bytes whose prefix holds the old contents; it may return buf
// itself. Free hands a buffer back; the rope never touches it afterwards.
// An allocator that cannot satisfy a request returns an error, which the
// rope reports as ErrOutOfMemory.
type Allocator interface {
	Alloc(size int) ([]byte, error)
	Realloc(buf []byte, size int) ([]byte, error)
	Free(buf []byte)
}

// HeapAllocator allocates from the Go heap. It is the default.
type HeapAllocator struct{}

// Alloc implements Allocator.
func (HeapAllocator) Alloc(size int) ([]byte, error) {
	return make([]byte, size), nil
}

// Realloc implements Allocator.
func (HeapAllocator) Realloc(buf []byte, size int) ([]byte, error) {
	if cap(buf) >= size {
		return buf[:size], nil
	}
	grown := make([]byte, size)
	copy(grown, buf)
	return grown, nil
}

// Free implements Allocator. The garbage collector reclaims the buffer.
func (HeapAllocator) Free([]byte) {}

// FuncAllocator adapts three plain functions to the Allocator interface.
// A nil field falls back to HeapAllocator behaviour.
type FuncAllocator struct {
	AllocFunc   func(size int) ([]byte, error)
	ReallocFunc func(buf []byte, size int) ([]byte, error)
	FreeFunc    func(buf []byte)
}

// Alloc implements Allocator.
func (f FuncAllocator) Alloc(size int) ([]byte, error) {
	if f.AllocFunc == nil {
		return HeapAllocator{}.Alloc(size)
	}
	return f.AllocFunc(size)
}

// Realloc implements Allocator.
func (f FuncAllocator) Realloc(buf []byte, size int) ([]byte, error) {
	if f.ReallocFunc == nil {
		return HeapAllocator{}.Realloc(buf, size)
	}
	return f.ReallocFunc(buf, size)
}

// Free implements Allocator.
func (f FuncAllocator) Free(buf []byte) {
	if f.FreeFunc != nil {
		f.FreeFunc(buf)
	}
}

// LimitAllocator enforces a byte budget on top of another allocator and
// tracks how much memory is outstanding.
type LimitAllocator struct {
	base  Allocator
	limit int

	mu    sync.Mutex
	used  int
	live  int
	peak  int
	fails int
}

// NewLimitAllocator wraps base with a budget of limit bytes.
// A nil base selects HeapAllocator.
func NewLimitAllocator(base Allocator, limit int) *LimitAllocator {
	if base == nil {
		base = HeapAllocator{}
	}
	return &LimitAllocator{base: base, limit: limit}
}

// Alloc implements Allocator.
func (a *LimitAllocator) Alloc(size int) ([]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.used+size > a.limit {
		a.fails++
		return nil, fmt.Errorf("alloc %d bytes: budget %d exhausted", size, a.limit)
	}
	buf, err := a.base.Alloc(size)
	if err != nil {
		a.fails++
		return nil, err
	}
	a.used += len(buf)
	a.live++
	a.peak = max(a.peak, a.used)
	return buf, nil
}

// Realloc implements Allocator.
func (a *LimitAllocator) Realloc(buf []byte, size int) ([]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.used-len(buf)+size > a.limit {
		a.fails++
		return nil, fmt.Errorf("realloc to %d bytes: budget %d exhausted", size, a.limit)
	}
	grown, err := a.base.Realloc(buf, size)
	if err != nil {
		a.fails++
		return nil, err
	}
	a.used += len(grown) - len(buf)
	a.peak = max(a.peak, a.used)
	return grown, nil
}

// Free implements Allocator.
func (a *LimitAllocator) Free(buf []byte) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.used -= len(buf)
	a.live--
	a.base.Free(buf)
}

// Used returns the bytes currently outstanding.
func (a *LimitAllocator) Used() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.used
}

// Live returns the number of buffers not yet freed.
func (a *LimitAllocator) Live() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.live
}

// Peak returns the highest value Used has reached.
func (a *LimitAllocator) Peak() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.peak
}

// Failures returns how many requests were refused.
func (a *LimitAllocator) Failures() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.fails
}

// SetLimit changes the budget. Outstanding buffers are unaffected.
func (a *LimitAllocator) SetLimit(limit int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.limit = limit
}
