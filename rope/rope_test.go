package rope

import (
	"bytes"
	"errors"
	"math/rand"
	"strings"
	"testing"
	"testing/iotest"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustRope(t testing.TB, s string, opts ...Option) *Rope {
	t.Helper()
	r, err := FromString(s, append([]Option{WithSeed(42)}, opts...)...)
	require.NoError(t, err)
	require.NoError(t, r.Check())
	return r
}

func requireContent(t testing.TB, r *Rope, want string) {
	t.Helper()
	require.NoError(t, r.Check())
	require.Equal(t, want, r.String())
	require.Equal(t, utf8.RuneCountInString(want), r.CharCount())
	require.Equal(t, len(want), r.ByteCount())
}

func TestNew(t *testing.T) {
	r, err := New()
	require.NoError(t, err)
	assert.Equal(t, 0, r.CharCount())
	assert.Equal(t, 0, r.ByteCount())
	assert.True(t, r.IsEmpty())
	assert.Equal(t, "", r.String())
	assert.Equal(t, DefaultConfig(), r.Config())
	require.NoError(t, r.Check())
}

func TestNewInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		opt  Option
	}{
		{"node bytes too small", WithMaxNodeBytes(3)},
		{"node bytes too large", WithMaxNodeBytes(MaxNodeBytesLimit + 1)},
		{"negative bias", WithBias(-1)},
		{"bias 100", WithBias(100)},
		{"zero height", WithMaxHeight(0)},
		{"height too large", WithMaxHeight(MaxHeightLimit + 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := New(tt.opt)
			assert.Nil(t, r)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestFromString(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"single char", "a"},
		{"short string", "hello"},
		{"with newline", "hello\nworld"},
		{"unicode", "hello 世界 🌍"},
		{"exactly one chunk", strings.Repeat("x", DefaultMaxNodeBytes)},
		{"one past a chunk", strings.Repeat("x", DefaultMaxNodeBytes+1)},
		{"long string", strings.Repeat("abcdefghij", 100)},
		{"very long string", strings.Repeat("x", 10000)},
		{"long multibyte", strings.Repeat("日本語🎉", 500)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := mustRope(t, tt.input)
			requireContent(t, r, tt.input)
		})
	}
}

func TestInsert(t *testing.T) {
	tests := []struct {
		name     string
		initial  string
		pos      int
		text     string
		expected string
	}{
		{"insert at start", "world", 0, "hello ", "hello world"},
		{"insert at end", "hello", 5, " world", "hello world"},
		{"insert in middle", "helloworld", 5, " ", "hello world"},
		{"insert into empty", "", 0, "hello", "hello"},
		{"insert empty string", "hello", 3, "", "hello"},
		{"insert unicode", "hello", 5, " 世界", "hello 世界"},
		{"insert between codepoints", "世界", 1, "!", "世!界"},
		{"past end appends", "abc", 100, "d", "abcd"},
		{"negative prepends", "abc", -4, "z", "zabc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := mustRope(t, tt.initial)
			require.NoError(t, r.InsertString(tt.pos, tt.text))
			requireContent(t, r, tt.expected)
		})
	}
}

func TestInsertInvalidUTF8(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
	}{
		{"lone continuation", []byte{0x80}},
		{"overlong slash", []byte{0xC0, 0xAF}},
		{"overlong three byte", []byte{0xE0, 0x80, 0xAF}},
		{"surrogate half", []byte{0xED, 0xA0, 0x80}},
		{"above max codepoint", []byte{0xF4, 0x90, 0x80, 0x80}},
		{"truncated", []byte("abc\xe2\x82")},
		{"invalid byte", []byte{0xFF}},
		{"valid prefix then garbage", []byte("ok then \xc3")},
	}

	base := strings.Repeat("0123456789", 40)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := mustRope(t, base)
			before := r.Stats()

			err := r.Insert(200, tt.input)
			require.ErrorIs(t, err, ErrInvalidUTF8)

			requireContent(t, r, base)
			assert.Equal(t, before, r.Stats())
		})
	}
}

func TestDelete(t *testing.T) {
	tests := []struct {
		name     string
		initial  string
		pos      int
		count    int
		expected string
	}{
		{"delete from start", "hello world", 0, 6, "world"},
		{"delete from end", "hello world", 5, 6, "hello"},
		{"delete from middle", "hello world", 5, 1, "helloworld"},
		{"delete all", "hello", 0, 5, ""},
		{"delete nothing", "hello", 3, 0, "hello"},
		{"negative count", "hello", 3, -2, "hello"},
		{"past end truncates", "hello", 3, 100, "hel"},
		{"at end is a no-op", "hello", 5, 1, "hello"},
		{"beyond end is a no-op", "hello", 50, 1, "hello"},
		{"negative pos starts at zero", "hello", -1, 2, "llo"},
		{"unicode", "日本語テキスト", 2, 3, "日本スト"},
		{"emoji", "a🎉b🎉c", 1, 3, "ac"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := mustRope(t, tt.initial)
			r.Delete(tt.pos, tt.count)
			requireContent(t, r, tt.expected)
		})
	}
}

func TestDeleteAcrossChunks(t *testing.T) {
	text := strings.Repeat("αβγδε", 200)
	runes := []rune(text)

	for _, span := range []struct{ pos, count int }{
		{0, len(runes)},
		{1, len(runes) - 2},
		{17, 400},
		{300, 1},
		{0, 137},
		{len(runes) - 50, 50},
	} {
		r := mustRope(t, text, WithMaxNodeBytes(16))
		r.Delete(span.pos, span.count)
		want := string(runes[:span.pos]) + string(runes[span.pos+span.count:])
		requireContent(t, r, want)
	}
}

func TestInsertDeleteRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	base := strings.Repeat("The quick brown fox 🦊 jumps over the lazy dog. ", 30)
	inserts := []string{"x", "世界", strings.Repeat("ü", 300), "\n", strings.Repeat("ab", 100)}

	for i := 0; i < 50; i++ {
		r := mustRope(t, base, WithMaxNodeBytes(32), WithSeed(int64(i+1)))
		s := inserts[i%len(inserts)]
		p := rng.Intn(r.CharCount() + 1)

		require.NoError(t, r.InsertString(p, s))
		require.NoError(t, r.Check())
		r.Delete(p, utf8.RuneCountInString(s))

		requireContent(t, r, base)
	}
}

func TestLongInsertSplitsOnCodepoints(t *testing.T) {
	text := strings.Repeat("a日🎉ß", 100)
	r := mustRope(t, "", WithMaxNodeBytes(8))
	require.NoError(t, r.InsertString(0, text))
	requireContent(t, r, text)

	require.NoError(t, r.InsertString(37, text))
	runes := []rune(text)
	requireContent(t, r, string(runes[:37])+text+string(runes[37:]))

	chunks := 0
	for data, chars := range r.All() {
		chunks++
		assert.LessOrEqual(t, len(data), 8)
		assert.True(t, utf8.Valid(data), "chunk %q ends mid-codepoint", data)
		assert.Equal(t, utf8.RuneCount(data), chars)
	}
	assert.Greater(t, chunks, 2*len(text)/8)
}

// TestRandomEdits compares the rope against a rune slice over a long
// sequence of random edits, checking the structure after every one.
func TestRandomEdits(t *testing.T) {
	alphabet := []rune("abcdefgh 日本🎉ßΩ\n")
	for _, nodeBytes := range []int{MinNodeBytes, 16, DefaultMaxNodeBytes} {
		rng := rand.New(rand.NewSource(int64(nodeBytes)))
		r := mustRope(t, "", WithMaxNodeBytes(nodeBytes), WithBias(50))
		var model []rune

		for i := 0; i < 2000; i++ {
			if rng.Intn(3) > 0 {
				ins := make([]rune, rng.Intn(40))
				for j := range ins {
					ins[j] = alphabet[rng.Intn(len(alphabet))]
				}
				pos := rng.Intn(len(model) + 5)
				require.NoError(t, r.InsertString(pos, string(ins)))

				pos = min(pos, len(model))
				model = append(model[:pos], append(ins, model[pos:]...)...)
			} else {
				pos := rng.Intn(len(model) + 3)
				count := rng.Intn(30)
				r.Delete(pos, count)

				if pos < len(model) {
					end := min(pos+count, len(model))
					model = append(model[:pos], model[end:]...)
				}
			}
			if i%10 == 0 {
				require.NoError(t, r.Check(), "after op %d", i)
			}
		}
		requireContent(t, r, string(model))
	}
}

func TestCopy(t *testing.T) {
	r := mustRope(t, strings.Repeat("copy me ", 100), WithMaxNodeBytes(16))
	c, err := r.Copy()
	require.NoError(t, err)
	requireContent(t, c, r.String())
	assert.True(t, c.Equal(r))
	assert.Equal(t, r.Stats(), c.Stats())

	require.NoError(t, c.InsertString(3, "XYZ"))
	c.Delete(100, 300)
	r.Delete(0, 10)

	requireContent(t, r, strings.Repeat("copy me ", 100)[10:])
	assert.False(t, c.Equal(r))
	require.NoError(t, c.Check())
}

func TestCloseReleasesEveryBuffer(t *testing.T) {
	alloc := NewLimitAllocator(nil, 1<<20)
	r := mustRope(t, strings.Repeat("release ", 200), WithAllocator(alloc), WithMaxNodeBytes(24))

	r.Delete(50, 700)
	require.NoError(t, r.InsertString(10, strings.Repeat("again ", 50)))
	assert.Equal(t, r.Stats().Nodes, alloc.Live())

	c, err := r.Copy()
	require.NoError(t, err)
	assert.Equal(t, 2*r.Stats().Nodes, alloc.Live())

	r.Close()
	c.Close()
	assert.Equal(t, 0, alloc.Live())
	assert.Equal(t, 0, alloc.Used())

	assert.ErrorIs(t, r.InsertString(0, "x"), ErrClosed)
	assert.Equal(t, "", r.String())
	_, err = r.Copy()
	assert.ErrorIs(t, err, ErrClosed)
	r.Close()
}

func TestOutOfMemory(t *testing.T) {
	t.Run("new chunk", func(t *testing.T) {
		alloc := NewLimitAllocator(nil, 64)
		r, err := New(WithAllocator(alloc))
		require.NoError(t, err)

		err = r.InsertString(0, strings.Repeat("x", 200))
		require.ErrorIs(t, err, ErrOutOfMemory)
		requireContent(t, r, "")
		assert.Equal(t, 1, alloc.Live())
	})

	t.Run("grow chunk", func(t *testing.T) {
		alloc := NewLimitAllocator(nil, 10)
		r, err := New(WithAllocator(alloc))
		require.NoError(t, err)

		err = r.InsertString(0, "hello world!!")
		require.ErrorIs(t, err, ErrOutOfMemory)
		requireContent(t, r, "")
	})

	t.Run("copy", func(t *testing.T) {
		alloc := NewLimitAllocator(nil, 1<<20)
		r := mustRope(t, strings.Repeat("z", 1000), WithAllocator(alloc))
		alloc.SetLimit(alloc.Used() + 100)

		c, err := r.Copy()
		require.ErrorIs(t, err, ErrOutOfMemory)
		assert.Nil(t, c)
		assert.Equal(t, r.Stats().Nodes, alloc.Live())
	})

	t.Run("head", func(t *testing.T) {
		failing := FuncAllocator{AllocFunc: func(int) ([]byte, error) {
			return nil, errors.New("no memory")
		}}
		r, err := New(WithAllocator(failing))
		assert.Nil(t, r)
		assert.ErrorIs(t, err, ErrOutOfMemory)
	})
}

func TestWriteCString(t *testing.T) {
	r := mustRope(t, "héllo wörld")
	dst := make([]byte, r.ByteCount()+1)
	n := r.WriteCString(dst)
	assert.Equal(t, r.ByteCount()+1, n)
	assert.Equal(t, byte(0), dst[n-1])
	assert.Equal(t, "héllo wörld", string(dst[:n-1]))

	assert.Panics(t, func() {
		r.WriteCString(make([]byte, r.ByteCount()))
	})

	c := r.CString()
	assert.Len(t, c, r.ByteCount()+1)
	assert.Equal(t, dst, c)
}

func TestWriteTo(t *testing.T) {
	text := strings.Repeat("write to me ", 50)
	r := mustRope(t, text)

	var buf bytes.Buffer
	n, err := r.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(len(text)), n)
	assert.Equal(t, text, buf.String())
	assert.Equal(t, []byte(text), r.Bytes())
}

func TestSlice(t *testing.T) {
	text := strings.Repeat("0123456789αβ", 40)
	runes := []rune(text)
	r := mustRope(t, text, WithMaxNodeBytes(10))

	tests := []struct {
		pos, count int
		want       string
	}{
		{0, 5, string(runes[:5])},
		{10, 30, string(runes[10:40])},
		{len(runes) - 3, 10, string(runes[len(runes)-3:])},
		{len(runes), 3, ""},
		{-5, 2, string(runes[:2])},
		{4, 0, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, r.Slice(tt.pos, tt.count), "Slice(%d, %d)", tt.pos, tt.count)
	}
}

func TestReplace(t *testing.T) {
	r := mustRope(t, "hello world")
	require.NoError(t, r.Replace(6, 5, []byte("universe")))
	requireContent(t, r, "hello universe")

	err := r.Replace(0, 5, []byte{0xFF})
	require.ErrorIs(t, err, ErrInvalidUTF8)
	requireContent(t, r, "hello universe")
}

func TestEqual(t *testing.T) {
	text := strings.Repeat("same text, different chunks. ", 20)
	a := mustRope(t, text, WithMaxNodeBytes(7))
	b := mustRope(t, text, WithMaxNodeBytes(200))
	assert.True(t, a.Equal(b))
	assert.True(t, b.Equal(a))

	b.Delete(5, 1)
	require.NoError(t, b.InsertString(5, "T"))
	assert.False(t, a.Equal(b))

	e1, e2 := mustRope(t, ""), mustRope(t, "")
	assert.True(t, e1.Equal(e2))
}

func TestFromReader(t *testing.T) {
	text := strings.Repeat("streamed 日本語 🎉 text\n", 300)

	r, err := FromReader(iotest.OneByteReader(strings.NewReader(text)), WithSeed(1))
	require.NoError(t, err)
	requireContent(t, r, text)

	r, err = FromReader(iotest.HalfReader(strings.NewReader(text)), WithSeed(1))
	require.NoError(t, err)
	requireContent(t, r, text)

	_, err = FromReader(strings.NewReader("bad \xed\xa0\x80 surrogate"))
	assert.ErrorIs(t, err, ErrInvalidUTF8)

	_, err = FromReader(strings.NewReader("cut short \xe6\x97"))
	assert.ErrorIs(t, err, ErrInvalidUTF8)

	boom := errors.New("boom")
	_, err = FromReader(iotest.ErrReader(boom))
	assert.ErrorIs(t, err, boom)
}

func TestStats(t *testing.T) {
	r := mustRope(t, strings.Repeat("s", 1000), WithMaxNodeBytes(50))
	s := r.Stats()

	assert.Equal(t, 1000, s.Chars)
	assert.Equal(t, 1000, s.Bytes)
	assert.GreaterOrEqual(t, s.Nodes, 20)

	sum := 0
	for _, n := range s.Heights {
		sum += n
	}
	assert.Equal(t, s.Nodes-1, sum)
	assert.Greater(t, s.Levels, 1)
	assert.Greater(t, s.Fill, 0.0)
	assert.LessOrEqual(t, s.Fill, 1.0)
}

func TestPoolAllocator(t *testing.T) {
	pool := NewPoolAllocator(32)
	r := mustRope(t, "", WithAllocator(pool), WithMaxNodeBytes(32))

	var model strings.Builder
	for i := 0; i < 200; i++ {
		require.NoError(t, r.InsertString(r.CharCount(), "pooled "))
		model.WriteString("pooled ")
	}
	requireContent(t, r, model.String())

	r.Delete(0, r.CharCount()/2)
	require.NoError(t, r.Check())

	buf, err := pool.Alloc(10)
	require.NoError(t, err)
	assert.Len(t, buf, 10)
	assert.Equal(t, 32, cap(buf))

	grown, err := pool.Realloc(buf, 30)
	require.NoError(t, err)
	assert.Len(t, grown, 30)

	big, err := pool.Realloc(grown, 64)
	require.NoError(t, err)
	assert.Len(t, big, 64)
	pool.Free(big)
}
