package rope

import (
	"fmt"
	"math"
	"unicode/utf8"
)

// Default tunables.
const (
	// DefaultMaxNodeBytes is the byte capacity of a single chunk.
	DefaultMaxNodeBytes = 136

	// DefaultBias is the percentage chance a node grows one level taller.
	DefaultBias = 25

	// DefaultMaxHeight caps node height. The rope stays efficient up to
	// roughly (100/Bias)^MaxHeight chunks.
	DefaultMaxHeight = 60
)

// Limits enforced by Config.Validate.
const (
	// MinNodeBytes guarantees any single codepoint fits in a chunk.
	MinNodeBytes = utf8.UTFMax

	// MaxNodeBytesLimit keeps chunk byte counts within 16 bits.
	MaxNodeBytesLimit = math.MaxUint16

	// MaxHeightLimit keeps node heights within 8 bits.
	MaxHeightLimit = math.MaxUint8 - 1
)

// Config holds the construction-time tunables of a Rope.
type Config struct {
	// MaxNodeBytes is the maximum number of bytes stored in one chunk.
	MaxNodeBytes int

	// Bias is the percentage probability, in [0, 99], that the height
	// generator adds another level.
	Bias int

	// MaxHeight is the tallest height a node may be assigned.
	MaxHeight int

	// Seed seeds the height generator. Zero picks a time-based seed.
	Seed int64
}

// DefaultConfig returns the default tunables.
func DefaultConfig() Config {
	return Config{
		MaxNodeBytes: DefaultMaxNodeBytes,
		Bias:         DefaultBias,
		MaxHeight:    DefaultMaxHeight,
	}
}

// Validate checks every tunable against its allowed range.
func (c Config) Validate() error {
	if c.MaxNodeBytes < MinNodeBytes || c.MaxNodeBytes > MaxNodeBytesLimit {
		return fmt.Errorf("%w: max node bytes %d not in [%d, %d]",
			ErrInvalidConfig, c.MaxNodeBytes, MinNodeBytes, MaxNodeBytesLimit)
	}
	if c.Bias < 0 || c.Bias > 99 {
		return fmt.Errorf("%w: bias %d not in [0, 99]", ErrInvalidConfig, c.Bias)
	}
	if c.MaxHeight < 1 || c.MaxHeight > MaxHeightLimit {
		return fmt.Errorf("%w: max height %d not in [1, %d]",
			ErrInvalidConfig, c.MaxHeight, MaxHeightLimit)
	}
	return nil
}

// Option configures a Rope during creation.
type Option func(*options)

type options struct {
	cfg   Config
	alloc Allocator
}

// WithConfig replaces all tunables at once.
func WithConfig(cfg Config) Option {
	return func(o *options) {
		o.cfg = cfg
	}
}

// WithMaxNodeBytes sets the chunk byte capacity.
func WithMaxNodeBytes(n int) Option {
	return func(o *options) {
		o.cfg.MaxNodeBytes = n
	}
}

// WithBias sets the height growth percentage.
func WithBias(bias int) Option {
	return func(o *options) {
		o.cfg.Bias = bias
	}
}

// WithMaxHeight sets the maximum node height.
func WithMaxHeight(h int) Option {
	return func(o *options) {
		o.cfg.MaxHeight = h
	}
}

// WithSeed makes height generation deterministic.
func WithSeed(seed int64) Option {
	return func(o *options) {
		o.cfg.Seed = seed
	}
}

// WithAllocator routes all chunk memory through a.
// A nil allocator selects the heap allocator.
func WithAllocator(a Allocator) Option {
	return func(o *options) {
		o.alloc = a
	}
}

func buildOptions(opts []Option) (options, error) {
	o := options{cfg: DefaultConfig()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.alloc == nil {
		o.alloc = HeapAllocator{}
	}
	if err := o.cfg.Validate(); err != nil {
		return options{}, err
	}
	return o, nil
}
