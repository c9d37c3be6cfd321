package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/skiprope/internal/bench"
)

var (
	benchOps      int
	benchSize     int
	benchRuns     int
	benchSeed     int64
	benchWorkload string
)

func init() {
	cmd := newBenchCmd()
	cmd.Flags().IntVar(&benchOps, "ops", 100000, "Edits per run")
	cmd.Flags().IntVar(&benchSize, "size", 10000, "Characters in the starting document")
	cmd.Flags().IntVar(&benchRuns, "runs", 3, "How many times to repeat each workload")
	cmd.Flags().Int64Var(&benchSeed, "seed", time.Now().UnixNano(), "Seed for the edit generator")
	cmd.Flags().StringVarP(&benchWorkload, "workload", "w", "all",
		"Workloads to run: all or comma list ("+strings.Join(bench.Workloads(), ",")+")")
	rootCmd.AddCommand(cmd)
}

func newBenchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bench",
		Short: "Time synthetic editing workloads",
		Long: `The bench command runs random insert, random delete, append and mixed
editing workloads against ropes built with the loaded settings and prints
a table of timings.

Example:
  ropectl bench
  ropectl bench --workload append,mixed --ops 1000000 --runs 5`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBench(cmd)
		},
	}
}

func parseWorkloads(s string) []string {
	if s == "" || s == "all" {
		return bench.Workloads()
	}
	var out []string
	for _, w := range strings.Split(s, ",") {
		if w = strings.TrimSpace(w); w != "" {
			out = append(out, w)
		}
	}
	return out
}

func runBench(cmd *cobra.Command) error {
	workloads := parseWorkloads(benchWorkload)
	printVerbose("Workloads: %s, seed %d\n", strings.Join(workloads, ","), benchSeed)

	results := make([]bench.Result, 0, len(workloads))
	for _, w := range workloads {
		res, err := bench.Run(cmd.Context(), bench.Options{
			Workload: w,
			Ops:      benchOps,
			Size:     benchSize,
			Runs:     benchRuns,
			Seed:     benchSeed,
			Rope:     cfg.RopeOptions(),
		})
		if err != nil {
			return fmt.Errorf("bench: %w", err)
		}
		results = append(results, res)
	}

	if !quiet {
		bench.Render(stdout, results)
	}
	return nil
}
