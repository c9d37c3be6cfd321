package config

import (
	"strconv"
	"strings"
)

// EnvPrefix prefixes every environment variable the loader reads.
const EnvPrefix = "SKIPROPE_"

// envVar binds an environment variable suffix to a setting.
type envVar struct {
	name string
	set  func(cfg *Config, value string) error
}

func intSetter(dst func(*Config) *int) func(*Config, string) error {
	return func(cfg *Config, value string) error {
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return err
		}
		*dst(cfg) = n
		return nil
	}
}

func stringSetter(dst func(*Config) *string) func(*Config, string) error {
	return func(cfg *Config, value string) error {
		*dst(cfg) = strings.ToLower(strings.TrimSpace(value))
		return nil
	}
}

// envVars returns the environment variable mappings.
func envVars() []envVar {
	return []envVar{
		{"MAX_NODE_BYTES", intSetter(func(c *Config) *int { return &c.Rope.MaxNodeBytes })},
		{"BIAS", intSetter(func(c *Config) *int { return &c.Rope.Bias })},
		{"MAX_HEIGHT", intSetter(func(c *Config) *int { return &c.Rope.MaxHeight })},
		{"MEMORY_LIMIT", intSetter(func(c *Config) *int { return &c.Rope.MemoryLimit })},
		{"SEED", func(c *Config, value string) error {
			n, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
			if err != nil {
				return err
			}
			c.Rope.Seed = n
			return nil
		}},
		{"ALLOCATOR", stringSetter(func(c *Config) *string { return &c.Rope.Allocator })},
		{"LOG_LEVEL", stringSetter(func(c *Config) *string { return &c.Log.Level })},
		{"LOG_FORMAT", stringSetter(func(c *Config) *string { return &c.Log.Format })},
	}
}

// applyEnv overlays set environment variables onto cfg.
// Empty values are treated as unset.
func (l *Loader) applyEnv(cfg *Config) error {
	for _, v := range envVars() {
		name := l.prefix + v.name
		value, ok := l.lookupEnv(name)
		if !ok || value == "" {
			continue
		}
		if err := v.set(cfg, value); err != nil {
			return &ParseError{Path: name, Message: err.Error(), Err: err}
		}
	}
	return nil
}
