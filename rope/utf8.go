package rope

import (
	"fmt"
	"unicode/utf8"
)

// Measure validates b as strict UTF-8 and returns its codepoint count and
// byte length.
//
// Overlong encodings, surrogate halves (U+D800..U+DFFF), values above
// U+10FFFF, truncated sequences and stray continuation bytes are rejected
// with an error wrapping ErrInvalidUTF8.
func Measure(b []byte) (chars, size int, err error) {
	for i := 0; i < len(b); {
		c := b[i]
		if c < utf8.RuneSelf {
			i++
			chars++
			continue
		}
		r, n := utf8.DecodeRune(b[i:])
		if r == utf8.RuneError && n == 1 {
			return 0, 0, fmt.Errorf("%w: bad byte 0x%02x at offset %d", ErrInvalidUTF8, c, i)
		}
		i += n
		chars++
	}
	return chars, len(b), nil
}

// ValidString reports whether s is strict UTF-8.
func ValidString(s string) bool {
	return utf8.ValidString(s)
}

// seqLen returns the length of the sequence introduced by lead byte c.
// Only meaningful for bytes already known to start a valid sequence.
func seqLen(c byte) int {
	switch {
	case c < 0x80:
		return 1
	case c < 0xE0:
		return 2
	case c < 0xF0:
		return 3
	default:
		return 4
	}
}

// byteOffset returns the byte offset of the chars-th codepoint in valid
// UTF-8 b. chars may equal the codepoint count of b.
func byteOffset(b []byte, chars int) int {
	i := 0
	for ; chars > 0; chars-- {
		i += seqLen(b[i])
	}
	return i
}

// fitPrefix returns the longest prefix of valid UTF-8 b that is at most
// limit bytes and ends on a codepoint boundary.
func fitPrefix(b []byte, limit int) (size, chars int) {
	for size < len(b) {
		n := seqLen(b[size])
		if size+n > limit {
			break
		}
		size += n
		chars++
	}
	return size, chars
}

// completePrefix returns the length of the prefix of b that does not end
// inside an unfinished multi-byte sequence. Used when text arrives in
// arbitrary pieces.
func completePrefix(b []byte) int {
	for back := 1; back <= utf8.UTFMax && back <= len(b); back++ {
		c := b[len(b)-back]
		if c&0xC0 == 0x80 {
			continue
		}
		if c >= 0xC0 && seqLen(c) > back {
			return len(b) - back
		}
		return len(b)
	}
	return len(b)
}
