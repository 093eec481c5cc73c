package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/evcrm/charger-crm/internal/appstate"
	"go.uber.org/zap"
)

// Stopper halts background work; the returned context is done once it has finished
type Stopper interface {
	Stop() context.Context
}

// Drainer stops accepting requests and waits for in-flight ones
type Drainer interface {
	Shutdown(ctx context.Context) error
}

// Shutdown stops the scheduler, drains the server and flushes pending snapshot
// writes. Every step runs even when an earlier one fails. scheduler may be nil.
func Shutdown(srv Drainer, scheduler Stopper, state *appstate.State, drainTimeout, flushTimeout time.Duration, log *zap.Logger) error {
	var errs []error

	if scheduler != nil {
		<-scheduler.Stop().Done()
		log.Info("Scheduler stopped")
	}

	drainCtx, cancelDrain := context.WithTimeout(context.Background(), drainTimeout)
	defer cancelDrain()
	if err := srv.Shutdown(drainCtx); err != nil {
		errs = append(errs, fmt.Errorf("failed to drain server: %w", err))
	}

	flushCtx, cancelFlush := context.WithTimeout(context.Background(), flushTimeout)
	defer cancelFlush()
	if err := state.Close(flushCtx); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}
