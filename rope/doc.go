// Package rope provides a mutable UTF-8 rope for efficient text editing.
//
// The rope stores text in fixed-capacity byte chunks linked together by a
// probabilistic skip list. Each link records how many characters (Unicode
// codepoints) it spans, so locating a character position costs expected
// O(log n) without any tree rebalancing. Inserts and deletes mutate the rope
// in place.
//
// Key properties:
//   - Positions and counts are measured in codepoints, not bytes
//   - Input is validated as strict UTF-8 before anything is modified
//   - Chunk boundaries never fall inside a multi-byte sequence
//   - Under-full chunks left behind by deletes are never merged
//   - Chunk memory is obtained through a pluggable Allocator
//
// Basic usage:
//
//	r, _ := rope.FromString("hello world")
//	_ = r.InsertString(5, ",")     // "hello, world"
//	r.Delete(0, 7)                 // "world"
//	text := r.String()             // "world"
//
// A Rope is not safe for concurrent use. Callers sharing one across
// goroutines must provide their own locking.
package rope
