package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/dshills/skiprope/internal/logging"
	"github.com/dshills/skiprope/internal/script"
	"github.com/dshills/skiprope/rope"
)

var (
	scriptInput    string
	scriptOutput   string
	scriptEncoding string
	scriptWatch    bool
)

// watchDelay coalesces the burst of events an editor save produces.
const watchDelay = 100 * time.Millisecond

func init() {
	cmd := newScriptCmd()
	cmd.Flags().StringVarP(&scriptInput, "input", "i", "", "File loaded into the rope before the script runs")
	cmd.Flags().StringVarP(&scriptOutput, "output", "o", "", "Write the final text here instead of stdout")
	cmd.Flags().StringVarP(&scriptEncoding, "encoding", "e", "utf-8", "Encoding of the input file")
	cmd.Flags().BoolVarP(&scriptWatch, "watch", "w", false, "Re-run whenever the script changes")
	rootCmd.AddCommand(cmd)
}

func newScriptCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "script <file.lua>",
		Short: "Run a Lua edit script against a rope",
		Long: `The script command runs a Lua program with a global "rope" table that
inserts, deletes and reads text by codepoint position. The rope starts
empty or with the contents of --input. The final text goes to --output,
or stdout.

Example:
  ropectl script edits.lua --input notes.txt --output notes.out
  ropectl script edits.lua --input notes.txt --watch`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScript(cmd.Context(), args[0])
		},
	}
}

func runScript(ctx context.Context, path string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if !scriptWatch {
		return runScriptOnce(ctx, path)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()
	return watchScript(ctx, path, func() {
		if err := runScriptOnce(ctx, path); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
		}
	})
}

func runScriptOnce(ctx context.Context, path string) error {
	var (
		r   *rope.Rope
		err error
	)
	if scriptInput != "" {
		r, err = openRope(scriptInput, scriptEncoding)
	} else {
		r, err = rope.New(cfg.RopeOptions()...)
	}
	if err != nil {
		return err
	}
	defer r.Close()

	e := script.NewEngine(r, script.WithOutput(stdout))
	defer e.Close()

	started := time.Now()
	if err := e.RunFile(ctx, path); err != nil {
		return err
	}
	printVerbose("Ran %s in %s: %d chars\n", path, time.Since(started), r.CharCount())

	if scriptOutput == "" {
		_, err := r.WriteTo(stdout)
		return err
	}
	f, err := os.Create(scriptOutput)
	if err != nil {
		return err
	}
	if _, err := r.WriteTo(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// watchScript calls run now and again after each change to path until ctx
// is done. The parent directory is watched so editors that replace the
// file on save are seen.
func watchScript(ctx context.Context, path string, run func()) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return err
	}

	run()
	printInfo("Watching %s (Ctrl-C to stop)\n", path)

	timer := time.NewTimer(watchDelay)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs || !(ev.Op.Has(fsnotify.Write) || ev.Op.Has(fsnotify.Create)) {
				continue
			}
			logging.L.Debug("script changed", "path", ev.Name, "op", ev.Op.String())
			timer.Reset(watchDelay)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logging.L.Warn("watch error", "err", err)

		case <-timer.C:
			printInfo("--- %s changed, re-running\n", path)
			run()
		}
	}
}
