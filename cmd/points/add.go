package main

import "github.com/spf13/cobra"

func addCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <points> <selector>...",
		Short: "Give points to every participant the selector matches",
		Example: `  points add 10 teams:red
  points add 5 players:all,!Bob tags-filter:!banned`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerb(cmd, append([]string{"add"}, args...))
		},
	}
}

func subCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sub <points> <selector>...",
		Short: "Take points from every participant the selector matches",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerb(cmd, append([]string{"sub"}, args...))
		},
	}
}
