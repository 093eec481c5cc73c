package app_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/evcrm/charger-crm/internal/app"
	"github.com/evcrm/charger-crm/internal/appstate"
	"github.com/evcrm/charger-crm/internal/domain"
	"github.com/evcrm/charger-crm/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type switchableStore struct {
	*appstate.MemoryStore
	mu   sync.Mutex
	fail error
}

func (s *switchableStore) setFailure(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail = err
}

func (s *switchableStore) Save(ctx context.Context, slot string, data []byte) error {
	s.mu.Lock()
	err := s.fail
	s.mu.Unlock()
	if err != nil {
		return err
	}
	return s.MemoryStore.Save(ctx, slot, data)
}

type fakeDrainer struct {
	err     error
	drained bool
}

func (d *fakeDrainer) Shutdown(context.Context) error {
	d.drained = true
	return d.err
}

type fakeStopper struct {
	stopped bool
}

func (s *fakeStopper) Stop() context.Context {
	s.stopped = true
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	return ctx
}

func TestShutdown(t *testing.T) {
	tests := []struct {
		name         string
		drainErr     error
		withStopper  bool
		flushFailure error
		wantErr      string
		wantFlushed  bool
	}{
		{
			name:        "clean shutdown",
			withStopper: true,
			wantFlushed: true,
		},
		{
			name:        "drain failure still stops and flushes",
			drainErr:    errors.New("deadline exceeded"),
			withStopper: true,
			wantErr:     "failed to drain server",
			wantFlushed: true,
		},
		{
			name:        "no scheduler",
			drainErr:    errors.New("deadline exceeded"),
			wantErr:     "failed to drain server",
			wantFlushed: true,
		},
		{
			name:         "flush failure is reported",
			withStopper:  true,
			flushFailure: errors.New("disk full"),
			wantErr:      "failed to flush state",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			store := &switchableStore{MemoryStore: appstate.NewMemoryStore()}
			state := appstate.New(store, zap.NewNop())
			require.NoError(t, state.Open(ctx))

			// leave one customer delete pending in memory
			store.setFailure(errors.New("offline"))
			require.NoError(t, state.Mutate(ctx, func() error {
				return state.Customers.Delete("3")
			}))
			store.setFailure(tt.flushFailure)

			drainer := &fakeDrainer{err: tt.drainErr}
			stopper := &fakeStopper{}
			var scheduler app.Stopper
			if tt.withStopper {
				scheduler = stopper
			}

			err := app.Shutdown(drainer, scheduler, state, time.Second, time.Second, zap.NewNop())

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			assert.True(t, drainer.drained)
			assert.Equal(t, tt.withStopper, stopper.stopped)

			data, err := store.Load(ctx, repository.SlotCustomers)
			require.NoError(t, err)
			var stored []domain.Customer
			require.NoError(t, json.Unmarshal(data, &stored))
			if tt.wantFlushed {
				assert.Len(t, stored, 2)
			} else {
				assert.Len(t, stored, 3)
			}
		})
	}
}
