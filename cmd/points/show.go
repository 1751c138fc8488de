package main

import "github.com/spf13/cobra"

func showCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "show",
		Aliases: []string{"me"},
		Short:   "Print your point history and total",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerb(cmd, nil)
		},
	}
}
