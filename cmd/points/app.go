package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"points/internal/command"
	"points/internal/config"
	"points/internal/ledger"
	"points/internal/messages"
	"points/internal/store"
)

// errReported means the failure has already been printed.
var errReported = errors.New("command failed")

type app struct {
	cfg        *config.ProjectConfig
	db         store.Store
	ledger     *ledger.Ledger
	dispatcher *command.Dispatcher
}

func openApp(ctx context.Context, metrics *ledger.Metrics) (*app, error) {
	cfg, err := config.LoadProjectConfig(configPath)
	if err != nil {
		return nil, err
	}
	style, err := outputStyle()
	if err != nil {
		return nil, err
	}

	db, err := openDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	l := ledger.New(db, ledger.WithLogger(logger), ledger.WithMetrics(metrics))
	dispatcher, err := command.NewDispatcher(db, l, catalogLoader(cfg.Messages, style), command.Config{
		MinPoint:         cfg.Ledger.MinPoint,
		BroadcastTop:     cfg.Broadcast.Top,
		ExcludeOperators: cfg.Broadcast.ExcludeOperators,
		TimeFormat:       cfg.History.TimeFormat,
	}, command.WithLogger(logger))
	if err != nil {
		db.Close(ctx)
		return nil, err
	}

	return &app{cfg: cfg, db: db, ledger: l, dispatcher: dispatcher}, nil
}

func (a *app) Close(ctx context.Context) {
	if err := a.db.Close(ctx); err != nil {
		logger.Warn("closing store", zap.Error(err))
	}
}

// catalogLoader reads the configured languages file, falling back to the
// embedded catalog when the file does not exist.
func catalogLoader(path string, style messages.Style) command.CatalogLoader {
	return func() (*messages.Catalog, error) {
		if path != "" {
			if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
				return messages.Default(style), nil
			}
		}
		return messages.Load(path, style)
	}
}

func outputStyle() (messages.Style, error) {
	switch colorMode {
	case "always":
		return messages.ANSI, nil
	case "never":
		return messages.Plain, nil
	case "auto", "":
		if isatty.IsTerminal(os.Stdout.Fd()) {
			return messages.ANSI, nil
		}
		return messages.Plain, nil
	default:
		return messages.Plain, fmt.Errorf("invalid --color value %q", colorMode)
	}
}

func (a *app) sender(ctx context.Context) (command.Sender, error) {
	name := senderName
	if name == "" {
		name = a.cfg.Actor
	}
	if name == "" {
		return command.Sender{}, fmt.Errorf("--as is required when no actor is configured")
	}
	return a.dispatcher.SenderNamed(ctx, name)
}

// runVerb executes one command as the current sender and prints the reply.
func runVerb(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := openApp(ctx, nil)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	sender, err := a.sender(ctx)
	if err != nil {
		return err
	}

	reply := a.dispatcher.Execute(ctx, sender, args)
	out := cmd.OutOrStdout()
	for _, line := range reply.Broadcast {
		fmt.Fprintln(out, line)
	}
	for _, line := range reply.Lines {
		fmt.Fprintln(out, line)
	}
	if reply.Err != nil {
		return errReported
	}
	return nil
}
