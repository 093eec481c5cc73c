package main

import (
	"context"
	"fmt"
	"os"

	"github.com/evcrm/charger-crm/internal/app"
	"github.com/evcrm/charger-crm/internal/cli"
	"github.com/evcrm/charger-crm/internal/config"
	"github.com/evcrm/charger-crm/internal/logger"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := cli.NewRootCommand(open).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// open restores the state from the configured snapshot store
func open(ctx context.Context) (*cli.Session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// only warnings and errors reach the terminal
	log, err := logger.NewLogger(&cfg.Logging, &cfg.App, zap.IncreaseLevel(zapcore.WarnLevel))
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	cfg, err = config.LoadWithSecrets(ctx, log)
	if err != nil {
		return nil, fmt.Errorf("failed to load secrets: %w", err)
	}

	store, db, err := app.OpenSnapshotStore(cfg, log)
	if err != nil {
		return nil, err
	}

	state, err := app.OpenState(ctx, store, nil, log)
	if err != nil {
		app.CloseDatabase(db, log)
		return nil, err
	}

	return &cli.Session{
		State:    state,
		Services: app.NewServices(state, cfg, nil, log),
		Close: func(ctx context.Context) error {
			defer func() { _ = log.Sync() }()
			defer app.CloseDatabase(db, log)

			ctx, cancel := context.WithTimeout(ctx, cfg.Snapshot.FlushTimeoutDuration())
			defer cancel()
			if err := state.Close(ctx); err != nil {
				log.Error("Failed to flush snapshots", zap.Error(err))
				return err
			}
			return nil
		},
	}, nil
}
