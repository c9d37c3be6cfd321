package rope

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHeightDistribution(t *testing.T) {
	const samples = 200000
	g := newHeightGen(Config{Bias: DefaultBias, MaxHeight: DefaultMaxHeight, Seed: 99})

	counts := make([]int, DefaultMaxHeight+1)
	for i := 0; i < samples; i++ {
		h := g.next()
		if h < 1 || h > DefaultMaxHeight {
			t.Fatalf("height %d out of range", h)
		}
		counts[h]++
	}

	// P(height >= k) = p^(k-1) for a geometric distribution.
	p := float64(DefaultBias) / 100
	atLeast := samples
	for k := 1; k <= 4; k++ {
		got := float64(atLeast) / samples
		want := math.Pow(p, float64(k-1))
		assert.InDelta(t, want, got, 0.01, "P(height >= %d)", k)
		atLeast -= counts[k]
	}
}

func TestHeightBounds(t *testing.T) {
	tests := []struct {
		name string
		bias int
		max  int
		want func(h int) bool
	}{
		{"zero bias", 0, 60, func(h int) bool { return h == 1 }},
		{"height one", 99, 1, func(h int) bool { return h == 1 }},
		{"capped", 99, 5, func(h int) bool { return h >= 1 && h <= 5 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newHeightGen(Config{Bias: tt.bias, MaxHeight: tt.max, Seed: 1})
			for i := 0; i < 1000; i++ {
				h := g.next()
				if !tt.want(h) {
					t.Fatalf("unexpected height %d", h)
				}
			}
		})
	}
}

func TestHeightSeedIsDeterministic(t *testing.T) {
	cfg := Config{Bias: 50, MaxHeight: 20, Seed: 1234}
	a, b := newHeightGen(cfg), newHeightGen(cfg)
	for i := 0; i < 100; i++ {
		assert.Equal(t, a.next(), b.next())
	}
}

// TestNodeHeightsFollowBias checks the heights actually assigned to chunks,
// not just the generator.
func TestNodeHeightsFollowBias(t *testing.T) {
	r := mustRope(t, "", WithMaxNodeBytes(MinNodeBytes), WithSeed(5))
	text := make([]byte, 40000)
	for i := range text {
		text[i] = 'a' + byte(i%26)
	}
	if err := r.Insert(0, text); err != nil {
		t.Fatal(err)
	}

	s := r.Stats()
	nodes := float64(s.Nodes - 1)
	assert.InDelta(t, 0.75, float64(s.Heights[1])/nodes, 0.03)
	assert.InDelta(t, 0.1875, float64(s.Heights[2])/nodes, 0.03)
}
