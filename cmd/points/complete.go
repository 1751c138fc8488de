package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func completeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "complete [args]...",
		Short: "Print completion candidates for the last argument",
		Long:  "Print completion candidates for the last argument. Pass an empty string to complete a new argument.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			a, err := openApp(ctx, nil)
			if err != nil {
				return err
			}
			defer a.Close(ctx)

			for _, candidate := range a.dispatcher.Complete(ctx, args) {
				fmt.Fprintln(cmd.OutOrStdout(), candidate)
			}
			return nil
		},
	}
	return cmd
}
