// Package appstate owns the in-memory collections of the CRM and their
// persistence. All mutations go through State.Mutate, which serializes them
// and writes every changed collection to the snapshot store afterwards.
package appstate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/evcrm/charger-crm/internal/metrics"
	"github.com/evcrm/charger-crm/internal/repository"
	"go.uber.org/zap"
)

// SnapshotStore persists one encoded collection per slot.
// Load returns nil data when the slot has never been written.
type SnapshotStore interface {
	Load(ctx context.Context, slot string) ([]byte, error)
	Save(ctx context.Context, slot string, data []byte) error
}

// collection is what State needs from a repository
type collection interface {
	Slot() string
	Version() uint64
	Seed()
	MarshalSnapshot() ([]byte, uint64, error)
	LoadSnapshot(data []byte) error
}

// State is the application context shared by services, handlers and the CLI
type State struct {
	Customers *repository.CustomerRepository
	Users     *repository.UserRepository
	Chargers  *repository.ChargerRepository

	store   SnapshotStore
	logger  *zap.Logger
	metrics *metrics.Metrics
	clock   func() time.Time

	mu        sync.Mutex
	persisted map[string]uint64
}

// Option customizes a State
type Option func(*State)

// WithClock sets the time source for timestamps and ids
func WithClock(clock func() time.Time) Option {
	return func(s *State) { s.clock = clock }
}

// WithMetrics records persistence outcomes in m
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *State) { s.metrics = m }
}

// New creates a State with empty collections. Call Open before use.
func New(store SnapshotStore, logger *zap.Logger, opts ...Option) *State {
	s := &State{
		store:     store,
		logger:    logger,
		clock:     time.Now,
		persisted: make(map[string]uint64),
	}
	for _, opt := range opts {
		opt(s)
	}

	ids := repository.NewIDGenerator(s.clock)
	s.Customers = repository.NewCustomerRepository(ids)
	s.Users = repository.NewUserRepository(ids)
	s.Chargers = repository.NewChargerRepository(ids)
	return s
}

func (s *State) collections() []collection {
	return []collection{s.Users, s.Customers, s.Chargers}
}

// Now returns the current time of the state clock in UTC
func (s *State) Now() time.Time {
	return s.clock().UTC()
}

// Open loads every collection from the store. Absent or empty slots are
// seeded with the built-in dataset and written back. A malformed slot is an error.
func (s *State) Open(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.collections() {
		data, err := s.store.Load(ctx, c.Slot())
		if err != nil {
			return fmt.Errorf("failed to load %s: %w", c.Slot(), err)
		}

		if len(bytes.TrimSpace(data)) == 0 {
			c.Seed()
			s.logger.Info("Seeded collection with built-in data",
				zap.String("slot", c.Slot()),
			)
			s.persist(ctx, c)
			continue
		}

		if err := c.LoadSnapshot(data); err != nil {
			return fmt.Errorf("failed to restore %s: %w", c.Slot(), err)
		}
		s.persisted[c.Slot()] = c.Version()
		s.metrics.CollectionVersion(c.Slot(), c.Version())
	}

	s.logger.Info("Application state opened",
		zap.Int("customers", len(s.Customers.All())),
		zap.Int("users", len(s.Users.All())),
		zap.Int("chargers", len(s.Chargers.All())),
	)
	return nil
}

// Mutate runs fn while holding the state lock, so one mutation completes
// before the next begins. Collections changed by fn are persisted
// afterwards; a failed write is logged and does not fail the mutation.
func (s *State) Mutate(ctx context.Context, fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := make(map[string]uint64, 3)
	for _, c := range s.collections() {
		before[c.Slot()] = c.Version()
	}

	err := fn()

	for _, c := range s.collections() {
		if c.Version() != before[c.Slot()] {
			s.persist(ctx, c)
		}
	}
	return err
}

// persist writes one collection. Caller holds s.mu.
func (s *State) persist(ctx context.Context, c collection) {
	if err := s.save(ctx, c); err != nil {
		s.metrics.PersistFailed(c.Slot())
		s.logger.Warn("Failed to persist collection",
			zap.String("slot", c.Slot()),
			zap.Error(err),
		)
	}
}

func (s *State) save(ctx context.Context, c collection) error {
	data, version, err := c.MarshalSnapshot()
	if err != nil {
		return err
	}
	if err := s.store.Save(ctx, c.Slot(), data); err != nil {
		return err
	}
	s.persisted[c.Slot()] = version
	s.metrics.CollectionVersion(c.Slot(), version)
	return nil
}

// Flush writes every collection whose latest version has not been stored yet
func (s *State) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	for _, c := range s.collections() {
		if stored, ok := s.persisted[c.Slot()]; ok && stored == c.Version() {
			continue
		}
		if err := s.save(ctx, c); err != nil {
			s.metrics.PersistFailed(c.Slot())
			errs = append(errs, fmt.Errorf("%s: %w", c.Slot(), err))
		}
	}
	return errors.Join(errs...)
}

// Close flushes pending changes
func (s *State) Close(ctx context.Context) error {
	if err := s.Flush(ctx); err != nil {
		return fmt.Errorf("failed to flush state: %w", err)
	}
	s.logger.Info("Application state closed")
	return nil
}

// Export returns the encoded form of every collection keyed by slot,
// taken under the state lock so the collections are mutually consistent.
func (s *State) Export() (map[string][]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string][]byte, 3)
	for _, c := range s.collections() {
		data, _, err := c.MarshalSnapshot()
		if err != nil {
			return nil, fmt.Errorf("failed to export %s: %w", c.Slot(), err)
		}
		out[c.Slot()] = data
	}
	return out, nil
}
