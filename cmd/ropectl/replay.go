package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/skiprope/internal/trace"
	"github.com/dshills/skiprope/rope"
)

var (
	replayCheckEvery int
	replayJSON       bool
	replaySkipVerify bool
)

func init() {
	cmd := newReplayCmd()
	cmd.Flags().IntVar(&replayCheckEvery, "check-every", 0, "Verify rope consistency every N patches (0 disables)")
	cmd.Flags().BoolVar(&replayJSON, "json", false, "Output the result as JSON")
	cmd.Flags().BoolVar(&replaySkipVerify, "skip-verify", false, "Do not compare against the recorded final text")
	rootCmd.AddCommand(cmd)
}

func newReplayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "replay <trace>",
		Short: "Replay a recorded editing trace",
		Long: `The replay command applies every patch of a JSON editing trace to a
rope holding the trace's starting text, then checks the result against the
recorded final text. Traces ending in .gz are decompressed.

Example:
  ropectl replay automerge-paper.json.gz
  ropectl replay trace.json --check-every 1000 --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(cmd, args)
		},
	}
}

func runReplay(cmd *cobra.Command, args []string) error {
	printVerbose("Loading trace: %s\n", args[0])
	t, err := trace.LoadFile(args[0])
	if err != nil {
		return err
	}

	r, err := rope.FromString(t.Start, cfg.RopeOptions()...)
	if err != nil {
		return err
	}
	defer r.Close()

	res, err := trace.Replay(cmd.Context(), r, t, trace.ReplayOptions{
		CheckEvery: replayCheckEvery,
		SkipVerify: replaySkipVerify,
	})
	if err != nil {
		return err
	}

	if replayJSON {
		out, err := res.JSON()
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, string(out))
		return nil
	}

	printInfo("Replayed %d patches", res.Patches)
	if res.Txns > 0 {
		printInfo(" in %d transactions", res.Txns)
	}
	printInfo(" in %s (%.0f patches/s)\n", res.Duration, res.PatchesPerSecond())
	printInfo("Final text: %d chars, %d bytes in %d nodes\n", res.Stats.Chars, res.Stats.Bytes, res.Stats.Nodes)
	switch {
	case res.Verified:
		printInfo("Final text matches the trace\n")
	case !t.HasEnd:
		printInfo("Trace has no final text to compare\n")
	}
	printVerbose("Run ID: %s\n", res.RunID)
	return nil
}
