package main

import "github.com/spf13/cobra"

func undoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "undo",
		Short: "Cancel your latest add or sub",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerb(cmd, []string{"undo"})
		},
	}
}

func redoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "redo",
		Short: "Restore your most recently cancelled operation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerb(cmd, []string{"redo"})
		},
	}
}
