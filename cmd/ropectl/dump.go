package main

import (
	"github.com/spf13/cobra"
)

var dumpEncoding string

func init() {
	cmd := newDumpCmd()
	cmd.Flags().StringVarP(&dumpEncoding, "encoding", "e", "utf-8", "Source encoding")
	rootCmd.AddCommand(cmd)
}

func newDumpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dump <file>",
		Short: "Print every chunk of a rope and its links",
		Long: `The dump command loads a file into a rope and prints one row per chunk
with its height, sizes, skip links and a preview of its text. The rope is
checked for consistency first.

Example:
  ropectl dump notes.txt
  ropectl dump notes.txt -c small-chunks.toml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDump(args)
		},
	}
}

func runDump(args []string) error {
	r, err := openRope(args[0], dumpEncoding)
	if err != nil {
		return err
	}
	defer r.Close()

	if err := r.Check(); err != nil {
		return err
	}
	r.Dump(stdout)
	return nil
}
