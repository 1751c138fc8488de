package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"points/internal/logging"
)

var (
	configPath string
	verbose    bool
	senderName string
	colorMode  string

	logger = zap.NewNop()
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "points",
		Short:         "Selector-driven points ledger",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			l, err := logging.New(verbose)
			if err != nil {
				return err
			}
			logger = l
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Sync()
		},
	}
	root.Version = version
	root.SetVersionTemplate("{{.Version}}\n")
	root.PersistentFlags().StringVar(&configPath, "config", "points.yaml", "Path to the project config")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&senderName, "as", "", "Participant issuing the command (defaults to the configured actor)")
	root.PersistentFlags().StringVar(&colorMode, "color", "auto", "Colour output: auto, always or never")

	root.AddCommand(addCmd())
	root.AddCommand(subCmd())
	root.AddCommand(undoCmd())
	root.AddCommand(redoCmd())
	root.AddCommand(showCmd())
	root.AddCommand(broadcastCmd())
	root.AddCommand(testCmd())
	root.AddCommand(execCmd())
	root.AddCommand(completeCmd())
	root.AddCommand(rosterCmd())
	root.AddCommand(validateCmd())
	root.AddCommand(serveCmd())
	root.AddCommand(initCmd())
	root.AddCommand(versionCmd())

	return root
}
