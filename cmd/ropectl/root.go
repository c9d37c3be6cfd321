package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/dshills/skiprope/internal/config"
	"github.com/dshills/skiprope/internal/logging"
	"github.com/dshills/skiprope/internal/textenc"
	"github.com/dshills/skiprope/rope"
)

var (
	// Global flags
	configPath string
	logLevel   string
	logFormat  string
	verbose    bool
	quiet      bool

	// cfg is loaded before every command runs.
	cfg = config.Default()

	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

var rootCmd = &cobra.Command{
	Use:   "ropectl",
	Short: "Load, edit and measure skip-list ropes",
	Long: `ropectl drives the skiprope library from the command line. It replays
recorded editing traces, runs synthetic benchmarks, executes Lua edit
scripts and prints the internal layout of a rope built from a file.

Settings come from a TOML or YAML file (--config), then SKIPROPE_*
environment variables, then flags.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (.toml, .yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format: text, json")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
}

// setup loads the configuration and initializes logging.
func setup(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if logLevel != "" {
		loaded.Log.Level = logLevel
	}
	if logFormat != "" {
		loaded.Log.Format = logFormat
	}

	opts := loaded.LoggingOptions()
	opts.Output = stderr
	if err := logging.Init(opts); err != nil {
		return err
	}
	cfg = loaded
	logging.L.Debug("configuration loaded", "path", configPath, "max_node_bytes", cfg.Rope.MaxNodeBytes,
		"allocator", cfg.Rope.Allocator)
	return nil
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Helper functions for output

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...any) {
	if !quiet {
		fmt.Fprintf(stdout, format, args...)
	}
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...any) {
	if verbose && !quiet {
		fmt.Fprintf(stdout, format, args...)
	}
}

// openRope reads the file at path, converting it from encoding, into a new
// rope built with the loaded settings.
func openRope(path, encoding string) (*rope.Rope, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rd, err := textenc.Reader(f, encoding)
	if err != nil {
		return nil, err
	}
	r, err := rope.FromReader(rd, cfg.RopeOptions()...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	printVerbose("Loaded %s: %d chars, %d bytes\n", path, r.CharCount(), r.ByteCount())
	return r, nil
}
