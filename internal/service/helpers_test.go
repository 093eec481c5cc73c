package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/evcrm/charger-crm/internal/appstate"
	"github.com/evcrm/charger-crm/internal/domain"
	"github.com/evcrm/charger-crm/internal/geo"
	"github.com/evcrm/charger-crm/internal/service"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// tickingClock advances one second on every read
type tickingClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *tickingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

type fixture struct {
	state     *appstate.State
	store     *appstate.MemoryStore
	customers *service.CustomerService
	lifecycle *service.LifecycleService
	users     *service.UserService
	chargers  *service.ChargerService
	proposals *service.ProposalService
	dashboard *service.DashboardService
}

var testLocation = domain.Location{Lat: 21.0285, Lng: 105.8542}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	clock := &tickingClock{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
	store := appstate.NewMemoryStore()
	state := appstate.New(store, zap.NewNop(), appstate.WithClock(clock.Now))
	require.NoError(t, state.Open(context.Background()))

	logger := zap.NewNop()
	return &fixture{
		state:     state,
		store:     store,
		customers: service.NewCustomerService(state, geo.FixedGeocoder{Location: testLocation}, logger),
		lifecycle: service.NewLifecycleService(state, nil, logger),
		users:     service.NewUserService(state, logger),
		chargers:  service.NewChargerService(state, logger),
		proposals: service.NewProposalService(state, logger),
		dashboard: service.NewDashboardService(state, logger),
	}
}

func (f *fixture) user(t *testing.T, id string) *domain.User {
	t.Helper()
	u, err := f.users.Lookup(id)
	require.NoError(t, err)
	return u
}

func (f *fixture) admin(t *testing.T) *domain.User { return f.user(t, "u1") }
func (f *fixture) sales(t *testing.T) *domain.User { return f.user(t, "u2") }
func (f *fixture) tech(t *testing.T) *domain.User  { return f.user(t, "u3") }

func (f *fixture) createCustomer(t *testing.T, actor *domain.User, req domain.CreateCustomerRequest) *domain.CustomerDTO {
	t.Helper()
	dto, err := f.customers.Create(context.Background(), actor, &req)
	require.NoError(t, err)
	return dto
}

func strPtr(s string) *string { return &s }
