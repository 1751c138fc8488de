package main

import "github.com/spf13/cobra"

func broadcastCmd() *cobra.Command {
	var withoutOperators bool
	cmd := &cobra.Command{
		Use:   "broadcast",
		Short: "Print the leaderboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			verb := []string{"broadcast"}
			if cmd.Flags().Changed("without-operators") {
				if withoutOperators {
					verb = append(verb, "true")
				} else {
					verb = append(verb, "false")
				}
			}
			return runVerb(cmd, verb)
		},
	}
	cmd.Flags().BoolVar(&withoutOperators, "without-operators", false, "Leave operators out of the ranking (defaults to the config)")
	return cmd
}
