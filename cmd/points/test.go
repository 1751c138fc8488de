package main

import "github.com/spf13/cobra"

func testCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test <selector>...",
		Short: "List who a selector matches without changing any points",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerb(cmd, append([]string{"test"}, args...))
		},
	}
}
