package main

import (
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var statsEncoding string

func init() {
	cmd := newStatsCmd()
	cmd.Flags().StringVarP(&statsEncoding, "encoding", "e", "utf-8", "Source encoding")
	rootCmd.AddCommand(cmd)
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats <file>",
		Short: "Show layout statistics for a file loaded into a rope",
		Long: `The stats command loads a file into a rope and reports its size, chunk
count, fill ratio and the distribution of node heights.

Example:
  ropectl stats notes.txt
  ropectl stats legacy.txt --encoding latin1`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(args)
		},
	}
}

func runStats(args []string) error {
	r, err := openRope(args[0], statsEncoding)
	if err != nil {
		return err
	}
	defer r.Close()

	s := r.Stats()
	printInfo("File:       %s\n", args[0])
	printInfo("Chars:      %d\n", s.Chars)
	printInfo("Bytes:      %d\n", s.Bytes)
	printInfo("Nodes:      %d\n", s.Nodes)
	printInfo("Levels:     %d\n", s.Levels)
	printInfo("Fill:       %.1f%%\n", s.Fill*100)
	printInfo("Allocated:  %d\n", s.Allocated)

	if quiet {
		return nil
	}
	table := tablewriter.NewWriter(stdout)
	table.SetHeader([]string{"Height", "Nodes"})
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	for h, n := range s.Heights {
		if n == 0 {
			continue
		}
		table.Append([]string{strconv.Itoa(h), strconv.Itoa(n)})
	}
	table.Render()
	return nil
}
