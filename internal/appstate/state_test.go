package appstate_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/evcrm/charger-crm/internal/appstate"
	"github.com/evcrm/charger-crm/internal/domain"
	"github.com/evcrm/charger-crm/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func fixedClock() time.Time {
	return time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
}

// flakyStore wraps a MemoryStore and fails every Save while failSaves is set
type flakyStore struct {
	*appstate.MemoryStore
	mu        sync.Mutex
	failSaves error
}

func newFlakyStore() *flakyStore {
	return &flakyStore{MemoryStore: appstate.NewMemoryStore()}
}

func (f *flakyStore) setFailure(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failSaves = err
}

func (f *flakyStore) Save(ctx context.Context, slot string, data []byte) error {
	f.mu.Lock()
	err := f.failSaves
	f.mu.Unlock()
	if err != nil {
		return err
	}
	return f.MemoryStore.Save(ctx, slot, data)
}

func put(t *testing.T, store appstate.SnapshotStore, slot string, data []byte) {
	t.Helper()
	require.NoError(t, store.Save(context.Background(), slot, data))
}

func openState(t *testing.T, store appstate.SnapshotStore) *appstate.State {
	t.Helper()
	s := appstate.New(store, zap.NewNop(), appstate.WithClock(fixedClock))
	require.NoError(t, s.Open(context.Background()))
	return s
}

// ============================================================================
// Open
// ============================================================================

func TestOpen_SeedsAbsentSlotsAndPersistsThem(t *testing.T) {
	store := appstate.NewMemoryStore()
	s := openState(t, store)

	assert.Len(t, s.Users.All(), 3)
	assert.Len(t, s.Customers.All(), 3)
	assert.Len(t, s.Chargers.All(), 7)

	for _, slot := range []string{repository.SlotUsers, repository.SlotCustomers, repository.SlotChargers} {
		data, err := store.Load(context.Background(), slot)
		require.NoError(t, err)
		assert.NotEmpty(t, data, slot)
	}
}

func TestOpen_EmptyArrayIsKept(t *testing.T) {
	store := appstate.NewMemoryStore()
	put(t, store, repository.SlotChargers, []byte(`[]`))

	s := openState(t, store)

	assert.Empty(t, s.Chargers.All())
	assert.Len(t, s.Users.All(), 3)
}

func TestOpen_BlankSlotIsSeeded(t *testing.T) {
	store := appstate.NewMemoryStore()
	put(t, store, repository.SlotCustomers, []byte("  \n"))

	s := openState(t, store)

	assert.Len(t, s.Customers.All(), 3)
}

func TestOpen_MalformedSlotFails(t *testing.T) {
	store := appstate.NewMemoryStore()
	put(t, store, repository.SlotUsers, []byte(`{"not":"a list"`))

	s := appstate.New(store, zap.NewNop())
	err := s.Open(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "users")
}

func TestOpen_RestoresStoredData(t *testing.T) {
	store := appstate.NewMemoryStore()
	users := []domain.User{{ID: "u9", FullName: "Only Admin", Email: "a@x.vn", Role: domain.RoleAdmin, Status: true}}
	data, err := json.Marshal(users)
	require.NoError(t, err)
	put(t, store, repository.SlotUsers, data)

	s := openState(t, store)

	all := s.Users.All()
	require.Len(t, all, 1)
	assert.Equal(t, "Only Admin", all[0].FullName)
}

// ============================================================================
// Mutate / Flush
// ============================================================================

func TestMutate_PersistsChangedCollectionOnly(t *testing.T) {
	store := appstate.NewMemoryStore()
	s := openState(t, store)
	ctx := context.Background()

	put(t, store, repository.SlotChargers, []byte(`"untouched"`))

	err := s.Mutate(ctx, func() error {
		return s.Customers.Delete("3")
	})
	require.NoError(t, err)

	data, err := store.Load(ctx, repository.SlotCustomers)
	require.NoError(t, err)
	var stored []domain.Customer
	require.NoError(t, json.Unmarshal(data, &stored))
	assert.Len(t, stored, 2)

	chargers, err := store.Load(ctx, repository.SlotChargers)
	require.NoError(t, err)
	assert.Equal(t, `"untouched"`, string(chargers))
}

func TestMutate_PersistFailureDoesNotFailCommand(t *testing.T) {
	store := newFlakyStore()
	s := openState(t, store)
	ctx := context.Background()

	store.setFailure(errors.New("disk full"))

	err := s.Mutate(ctx, func() error {
		return s.Customers.Delete("1")
	})
	require.NoError(t, err)
	assert.Len(t, s.Customers.All(), 2)

	// the pending change is written once the store recovers
	require.Error(t, s.Flush(ctx))
	store.setFailure(nil)
	require.NoError(t, s.Flush(ctx))

	data, err := store.Load(ctx, repository.SlotCustomers)
	require.NoError(t, err)
	var stored []domain.Customer
	require.NoError(t, json.Unmarshal(data, &stored))
	assert.Len(t, stored, 2)
}

func TestMutate_ReturnsCallbackError(t *testing.T) {
	s := openState(t, appstate.NewMemoryStore())
	want := errors.New("rejected")

	err := s.Mutate(context.Background(), func() error { return want })

	assert.ErrorIs(t, err, want)
}

func TestExport_ContainsAllSlots(t *testing.T) {
	s := openState(t, appstate.NewMemoryStore())

	out, err := s.Export()
	require.NoError(t, err)

	assert.Len(t, out, 3)
	assert.Contains(t, out, repository.SlotCustomers)
	assert.Contains(t, out, repository.SlotUsers)
	assert.Contains(t, out, repository.SlotChargers)
}

func TestNow_UsesClock(t *testing.T) {
	s := openState(t, appstate.NewMemoryStore())
	assert.Equal(t, fixedClock(), s.Now())
}
