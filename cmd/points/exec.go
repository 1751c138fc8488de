package main

import "github.com/spf13/cobra"

func execCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "exec [verb] [args]...",
		Short: "Run a raw command line, e.g. \"exec help\" or \"exec reload\"",
		RunE:  runVerb,
	}
}
