// Package config loads settings for skiprope tools.
//
// Settings are layered, lowest precedence first:
//
//  1. Built-in defaults (the rope package defaults)
//  2. A configuration file, TOML or YAML chosen by extension
//  3. SKIPROPE_* environment variables
//  4. Command-line flags, applied by the caller
//
// Example skiprope.toml:
//
//	[rope]
//	max_node_bytes = 136
//	bias = 25
//	max_height = 60
//	allocator = "pool"
//
//	[log]
//	level = "debug"
//	format = "json"
package config
