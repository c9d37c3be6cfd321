package rope

import (
	"math/rand"
	"time"
)

// heightGen draws node heights from a geometric distribution: each extra
// level is granted with probability bias/100, up to max.
type heightGen struct {
	rng  *rand.Rand
	bias int
	max  int
}

func newHeightGen(cfg Config) heightGen {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return heightGen{
		rng:  rand.New(rand.NewSource(seed)),
		bias: cfg.Bias,
		max:  cfg.MaxHeight,
	}
}

// next returns a height in [1, max].
func (g heightGen) next() int {
	h := 1
	for h < g.max && g.rng.Intn(100) < g.bias {
		h++
	}
	return h
}

// fork returns an independent generator seeded from g.
func (g heightGen) fork() heightGen {
	return heightGen{
		rng:  rand.New(rand.NewSource(g.rng.Int63())),
		bias: g.bias,
		max:  g.max,
	}
}
