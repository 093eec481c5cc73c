package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/evcrm/charger-crm/internal/domain"
	"github.com/evcrm/charger-crm/internal/quote"
	"github.com/evcrm/charger-crm/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func cableRequest(title string) *domain.ProposalRequest {
	return &domain.ProposalRequest{
		Title: title,
		Items: []domain.ProposalItemRequest{
			{Description: "Cable", Quantity: quote.Amount(2), Unit: "m", Price: quote.Amount(100)},
			{Description: "Breaker", Quantity: quote.Amount(1), Unit: "pc", Price: quote.Amount(150)},
		},
	}
}

// ============================================================================
// ProposalService
// ============================================================================

func TestProposalService_Create_PrependsAndTotals(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.proposals.Create(ctx, f.sales(t), "1", cableRequest("First"))
	require.NoError(t, err)
	second, err := f.proposals.Create(ctx, f.sales(t), "1", cableRequest(""))
	require.NoError(t, err)

	assert.Equal(t, int64(350), first.Total)
	assert.Equal(t, "350 ₫", first.TotalFormatted)
	assert.Equal(t, service.DefaultProposalTitle, second.Title)
	assert.NotEqual(t, first.ID, second.ID)

	list, err := f.proposals.List(ctx, f.sales(t), "1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID, "newest proposal first")
}

func TestProposalService_Create_NegativeAmountsBecomeZero(t *testing.T) {
	f := newFixture(t)

	dto, err := f.proposals.Create(context.Background(), f.admin(t), "2", &domain.ProposalRequest{
		Items: []domain.ProposalItemRequest{
			{Description: "Refund", Quantity: quote.Amount(-3), Price: quote.Amount(100)},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(0), dto.Items[0].Quantity)
	assert.Equal(t, int64(0), dto.Total)
}

func TestProposalService_Update_KeepsIdentity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.proposals.Create(ctx, f.sales(t), "3", cableRequest("Draft"))
	require.NoError(t, err)

	updated, err := f.proposals.Update(ctx, f.sales(t), "3", created.ID, &domain.ProposalRequest{
		Title: "Final",
		Items: []domain.ProposalItemRequest{{Description: "Wallbox", Quantity: quote.Amount(1), Price: quote.Amount(1000)}},
	})
	require.NoError(t, err)

	assert.Equal(t, created.ID, updated.ID)
	assert.True(t, created.CreatedAt.Equal(updated.CreatedAt))
	assert.Equal(t, "Final", updated.Title)
	assert.Equal(t, int64(1000), updated.Total)

	_, err = f.proposals.Update(ctx, f.sales(t), "3", "missing", cableRequest("x"))
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestProposalService_Delete_RequiresConfirmation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.proposals.Create(ctx, f.admin(t), "1", cableRequest("Temp"))
	require.NoError(t, err)

	deleted, err := f.proposals.Delete(ctx, f.admin(t), "1", created.ID, false)
	require.NoError(t, err)
	assert.False(t, deleted)

	deleted, err = f.proposals.Delete(ctx, f.admin(t), "1", created.ID, true)
	require.NoError(t, err)
	assert.True(t, deleted)

	list, err := f.proposals.List(ctx, f.admin(t), "1")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestProposalService_Access(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("technician has no consultation view", func(t *testing.T) {
		_, err := f.proposals.Create(ctx, f.tech(t), "1", cableRequest("x"))
		assert.ErrorIs(t, err, service.ErrPermissionDenied)
	})

	t.Run("sales cannot reach a customer of someone else", func(t *testing.T) {
		_, err := f.proposals.Create(ctx, f.sales(t), "2", cableRequest("x"))
		assert.ErrorIs(t, err, service.ErrNotFound)
	})

	t.Run("sales manages customers they created for someone else", func(t *testing.T) {
		c := f.createCustomer(t, f.sales(t), domain.CreateCustomerRequest{
			Name: "Handed over", Phone: "0900000001", Address: "Ha Noi",
			Type: domain.CustomerTypeBusiness, AssignedTo: "u1",
		})

		dto, err := f.proposals.Create(ctx, f.sales(t), c.ID, cableRequest("Mine"))
		require.NoError(t, err)
		assert.Equal(t, c.ID, dto.CustomerID)
	})
}

// ============================================================================
// DashboardService
// ============================================================================

func TestDashboardService_Metrics(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	m, err := f.dashboard.Metrics(ctx, f.admin(t))
	require.NoError(t, err)

	assert.Equal(t, 3, m.TotalCustomers)
	assert.Equal(t, 1, m.Installing)
	assert.Equal(t, 0, m.Completed)
	assert.Equal(t, 1, m.SevenKWDemand)
	assert.Equal(t, 7, m.CatalogModelsCount)
	assert.Len(t, m.StatusCounts, len(domain.AllProjectStatuses()))
	assert.Len(t, m.ChargerTypeCounts, len(domain.AllChargerTypes()))
	assert.Equal(t, domain.StatusNew, m.StatusCounts[0].Status)
	assert.Equal(t, 0, m.StatusCounts[0].Count)

	for i := 0; i < 4; i++ {
		f.createCustomer(t, f.admin(t), domain.CreateCustomerRequest{
			Name: "Fleet", Phone: "0900000000", Address: "Ha Noi", Type: domain.CustomerTypeBusiness,
		})
	}
	m, err = f.dashboard.Metrics(ctx, f.admin(t))
	require.NoError(t, err)
	assert.Equal(t, 7, m.TotalCustomers)
	assert.Len(t, m.RecentCustomers, 5)
	assert.Equal(t, "Fleet", m.RecentCustomers[0].Name)
}

func TestDashboardService_ScopedToActor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	m, err := f.dashboard.Metrics(ctx, f.sales(t))
	require.NoError(t, err)
	assert.Equal(t, 2, m.TotalCustomers)

	pins, err := f.dashboard.MapPins(ctx, f.sales(t))
	require.NoError(t, err)
	require.Len(t, pins, 2)
	for _, p := range pins {
		assert.NotEqual(t, "2", p.ID)
	}

	_, err = f.dashboard.Metrics(ctx, f.tech(t))
	assert.ErrorIs(t, err, service.ErrPermissionDenied)
}

// ============================================================================
// AdvisorService
// ============================================================================

type stubGenerator struct {
	advice *domain.TechnicalAdvice
	err    error
	calls  int
}

func (g *stubGenerator) GenerateTechnicalAdvice(ctx context.Context, customer *domain.Customer) (*domain.TechnicalAdvice, error) {
	g.calls++
	if _, ok := ctx.Deadline(); !ok {
		return nil, errors.New("expected a deadline")
	}
	return g.advice, g.err
}

func TestAdvisorService_Advise(t *testing.T) {
	advice := &domain.TechnicalAdvice{
		InstallationSpot:       "Basement B2",
		ElectricalRequirements: "32A dedicated circuit",
		EstimatedTime:          "1 day",
		SafetyNotes:            "RCD type A",
	}

	t.Run("available", func(t *testing.T) {
		f := newFixture(t)
		gen := &stubGenerator{advice: advice}
		svc := service.NewAdvisorService(f.state, gen, time.Second, nil, zap.NewNop())

		dto, err := svc.Advise(context.Background(), f.sales(t), "1")
		require.NoError(t, err)

		assert.True(t, dto.Available)
		assert.Equal(t, "Basement B2", dto.Advice.InstallationSpot)
		assert.Equal(t, 1, gen.calls)
	})

	t.Run("failure is unavailable", func(t *testing.T) {
		f := newFixture(t)
		before := f.state.Customers.Version()
		svc := service.NewAdvisorService(f.state, &stubGenerator{err: errors.New("boom")}, time.Second, nil, zap.NewNop())

		dto, err := svc.Advise(context.Background(), f.sales(t), "1")
		require.NoError(t, err)

		assert.False(t, dto.Available)
		assert.Nil(t, dto.Advice)
		assert.Equal(t, before, f.state.Customers.Version())
	})

	t.Run("disabled", func(t *testing.T) {
		f := newFixture(t)
		svc := service.NewAdvisorService(f.state, nil, time.Second, nil, zap.NewNop())

		dto, err := svc.Advise(context.Background(), f.admin(t), "2")
		require.NoError(t, err)
		assert.False(t, dto.Available)
	})

	t.Run("access", func(t *testing.T) {
		f := newFixture(t)
		gen := &stubGenerator{advice: advice}
		svc := service.NewAdvisorService(f.state, gen, time.Second, nil, zap.NewNop())

		_, err := svc.Advise(context.Background(), f.tech(t), "1")
		assert.ErrorIs(t, err, service.ErrPermissionDenied)

		_, err = svc.Advise(context.Background(), f.sales(t), "2")
		assert.ErrorIs(t, err, service.ErrNotFound)
		assert.Zero(t, gen.calls)
	})
}
