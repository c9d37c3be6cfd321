package main

import (
	"github.com/spf13/cobra"
)

var catEncoding string

func init() {
	cmd := newCatCmd()
	cmd.Flags().StringVarP(&catEncoding, "encoding", "e", "utf-8", "Source encoding")
	rootCmd.AddCommand(cmd)
}

func newCatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cat <file>",
		Short: "Print a file as UTF-8 through a rope",
		Long: `The cat command loads a file into a rope, converting it from the given
encoding, and writes the rope's text to stdout.

Example:
  ropectl cat notes.txt
  ropectl cat legacy.txt --encoding windows-1252`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCat(args)
		},
	}
}

func runCat(args []string) error {
	r, err := openRope(args[0], catEncoding)
	if err != nil {
		return err
	}
	defer r.Close()

	_, err = r.WriteTo(stdout)
	return err
}
