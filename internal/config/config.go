package config

import (
	"fmt"

	"github.com/dshills/skiprope/internal/logging"
	"github.com/dshills/skiprope/rope"
)

// Allocator names accepted in RopeSettings.Allocator.
const (
	AllocatorHeap = "heap"
	AllocatorPool = "pool"
)

// Config is the complete tool configuration.
type Config struct {
	Rope RopeSettings `toml:"rope" yaml:"rope"`
	Log  LogSettings  `toml:"log" yaml:"log"`
}

// RopeSettings holds the rope tunables.
type RopeSettings struct {
	MaxNodeBytes int    `toml:"max_node_bytes" yaml:"max_node_bytes"`
	Bias         int    `toml:"bias" yaml:"bias"`
	MaxHeight    int    `toml:"max_height" yaml:"max_height"`
	Seed         int64  `toml:"seed" yaml:"seed"`
	Allocator    string `toml:"allocator" yaml:"allocator"`

	// MemoryLimit caps chunk memory in bytes. Zero means unlimited.
	MemoryLimit int `toml:"memory_limit" yaml:"memory_limit"`
}

// LogSettings configures internal/logging.
type LogSettings struct {
	Level  string `toml:"level" yaml:"level"`
	Format string `toml:"format" yaml:"format"`
}

// Default returns the built-in configuration.
func Default() Config {
	d := rope.DefaultConfig()
	return Config{
		Rope: RopeSettings{
			MaxNodeBytes: d.MaxNodeBytes,
			Bias:         d.Bias,
			MaxHeight:    d.MaxHeight,
			Allocator:    AllocatorHeap,
		},
		Log: LogSettings{
			Level:  "info",
			Format: "text",
		},
	}
}

// RopeConfig returns the rope tunables.
func (c Config) RopeConfig() rope.Config {
	return rope.Config{
		MaxNodeBytes: c.Rope.MaxNodeBytes,
		Bias:         c.Rope.Bias,
		MaxHeight:    c.Rope.MaxHeight,
		Seed:         c.Rope.Seed,
	}
}

// RopeOptions converts the settings into rope options. Each call builds a
// fresh allocator.
func (c Config) RopeOptions() []rope.Option {
	var alloc rope.Allocator = rope.HeapAllocator{}
	if c.Rope.Allocator == AllocatorPool {
		alloc = rope.NewPoolAllocator(c.Rope.MaxNodeBytes)
	}
	if c.Rope.MemoryLimit > 0 {
		alloc = rope.NewLimitAllocator(alloc, c.Rope.MemoryLimit)
	}
	return []rope.Option{
		rope.WithConfig(c.RopeConfig()),
		rope.WithAllocator(alloc),
	}
}

// LoggingOptions converts the log settings for logging.Init.
func (c Config) LoggingOptions() logging.Options {
	return logging.Options{Level: c.Log.Level, Format: c.Log.Format}
}

// Validate checks every setting.
func (c Config) Validate() error {
	if err := c.RopeConfig().Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}
	switch c.Rope.Allocator {
	case AllocatorHeap, AllocatorPool:
	default:
		return fmt.Errorf("%w: allocator %q (must be %s or %s)",
			ErrValidationFailed, c.Rope.Allocator, AllocatorHeap, AllocatorPool)
	}
	if c.Rope.MemoryLimit < 0 {
		return fmt.Errorf("%w: negative memory limit %d", ErrValidationFailed, c.Rope.MemoryLimit)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log format %q (must be text or json)", ErrValidationFailed, c.Log.Format)
	}
	return nil
}
