package service_test

import (
	"context"
	"testing"

	"github.com/evcrm/charger-crm/internal/domain"
	"github.com/evcrm/charger-crm/internal/policy"
	"github.com/evcrm/charger-crm/internal/repository"
	"github.com/evcrm/charger-crm/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// Create
// ============================================================================

func TestCustomerService_Create_SalesDefaults(t *testing.T) {
	f := newFixture(t)

	dto := f.createCustomer(t, f.sales(t), domain.CreateCustomerRequest{
		Name: "A", Phone: "0900000000", Address: "X", Type: domain.CustomerTypeIndividual,
	})

	assert.Equal(t, domain.StatusNew, dto.Status)
	assert.Equal(t, "u2", dto.AssignedTo)
	assert.Equal(t, "u2", dto.CreatedBy)
	assert.Empty(t, dto.Notes)
	assert.Empty(t, dto.Proposals)
	assert.Equal(t, domain.ChargerKW7, dto.ChargerType)
	assert.Equal(t, domain.SourceWebsite, dto.Source)
	assert.Equal(t, testLocation, dto.Location)

	all := f.state.Customers.All()
	assert.Equal(t, dto.ID, all[0].ID, "new customers are prepended")
}

func TestCustomerService_Create_InitialNote(t *testing.T) {
	f := newFixture(t)

	dto := f.createCustomer(t, f.admin(t), domain.CreateCustomerRequest{
		Name: "B", Phone: "0911111111", Address: "Y", Type: domain.CustomerTypeBusiness,
		AssignedTo: "u3", Note: "  Call after 5pm ",
	})

	require.Len(t, dto.Notes, 1)
	assert.Equal(t, domain.StatusNew, dto.Notes[0].Status)
	assert.Equal(t, "Call after 5pm", dto.Notes[0].Note)
	assert.Equal(t, "u3", dto.AssignedTo)
}

func TestCustomerService_Create_Rejections(t *testing.T) {
	f := newFixture(t)
	valid := domain.CreateCustomerRequest{Name: "A", Phone: "1", Address: "X", Type: domain.CustomerTypeIndividual}

	tests := []struct {
		name    string
		actor   *domain.User
		mutate  func(r *domain.CreateCustomerRequest)
		wantErr error
	}{
		{"technician cannot create", f.tech(t), func(r *domain.CreateCustomerRequest) {}, service.ErrPermissionDenied},
		{"blank name", f.sales(t), func(r *domain.CreateCustomerRequest) { r.Name = "  " }, service.ErrInvalidInput},
		{"missing phone", f.sales(t), func(r *domain.CreateCustomerRequest) { r.Phone = "" }, service.ErrInvalidInput},
		{"bad type", f.sales(t), func(r *domain.CreateCustomerRequest) { r.Type = "OTHER" }, service.ErrInvalidInput},
		{"unknown assignee", f.sales(t), func(r *domain.CreateCustomerRequest) { r.AssignedTo = "u404" }, service.ErrInvalidInput},
		{"no actor", nil, func(r *domain.CreateCustomerRequest) {}, service.ErrPermissionDenied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := f.state.Customers.Version()
			req := valid
			tt.mutate(&req)

			_, err := f.customers.Create(context.Background(), tt.actor, &req)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, before, f.state.Customers.Version(), "no repository change on failure")
		})
	}
}

func TestCustomerService_Create_IDsAreUnique(t *testing.T) {
	f := newFixture(t)
	seen := map[string]bool{}

	for i := 0; i < 50; i++ {
		dto := f.createCustomer(t, f.admin(t), domain.CreateCustomerRequest{
			Name: "N", Phone: "1", Address: "A", Type: domain.CustomerTypeIndividual,
		})
		assert.False(t, seen[dto.ID], "duplicate id %s", dto.ID)
		seen[dto.ID] = true
	}
}

// ============================================================================
// Update
// ============================================================================

func TestCustomerService_Update_KeepsCreatedBy(t *testing.T) {
	f := newFixture(t)
	created := f.createCustomer(t, f.sales(t), domain.CreateCustomerRequest{
		Name: "A", Phone: "1", Address: "X", Type: domain.CustomerTypeIndividual,
	})

	updated, err := f.customers.Update(context.Background(), f.admin(t), created.ID, &domain.UpdateCustomerRequest{
		Name:       strPtr("A renamed"),
		AssignedTo: strPtr("u3"),
	})

	require.NoError(t, err)
	assert.Equal(t, "A renamed", updated.Name)
	assert.Equal(t, "u3", updated.AssignedTo)
	assert.Equal(t, created.CreatedBy, updated.CreatedBy)
	assert.Equal(t, created.Status, updated.Status)
}

func TestCustomerService_Update_SameNoteIsNotDuplicated(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.customers.Update(ctx, f.sales(t), "1", &domain.UpdateCustomerRequest{Note: strPtr("Site survey booked")})
	require.NoError(t, err)
	require.Len(t, first.Notes, 2)
	assert.Equal(t, "Site survey booked", first.Notes[0].Note)
	assert.Equal(t, domain.StatusInstalling, first.Notes[0].Status, "note carries the current status")

	second, err := f.customers.Update(ctx, f.sales(t), "1", &domain.UpdateCustomerRequest{Note: strPtr("Site survey booked")})
	require.NoError(t, err)
	assert.Len(t, second.Notes, 2)

	blank, err := f.customers.Update(ctx, f.sales(t), "1", &domain.UpdateCustomerRequest{Note: strPtr("   ")})
	require.NoError(t, err)
	assert.Len(t, blank.Notes, 2)
}

func TestCustomerService_Update_Permissions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.customers.Update(ctx, f.sales(t), "2", &domain.UpdateCustomerRequest{Name: strPtr("x")})
	assert.ErrorIs(t, err, service.ErrPermissionDenied, "customer 2 belongs to u1")

	_, err = f.customers.Update(ctx, f.tech(t), "1", &domain.UpdateCustomerRequest{Name: strPtr("x")})
	assert.ErrorIs(t, err, service.ErrPermissionDenied)

	_, err = f.customers.Update(ctx, f.admin(t), "missing", &domain.UpdateCustomerRequest{})
	assert.ErrorIs(t, err, service.ErrNotFound)

	c, err := f.state.Customers.GetByID("2")
	require.NoError(t, err)
	assert.NotEqual(t, "x", c.Name)
}

// ============================================================================
// Delete
// ============================================================================

func TestCustomerService_Delete_RequiresConfirmation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	deleted, err := f.customers.Delete(ctx, f.admin(t), "3", false)
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.True(t, f.state.Customers.All().Has("3"))

	deleted, err = f.customers.Delete(ctx, f.admin(t), "3", true)
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.False(t, f.state.Customers.All().Has("3"))
}

func TestCustomerService_Delete_AdminOnly(t *testing.T) {
	f := newFixture(t)

	_, err := f.customers.Delete(context.Background(), f.sales(t), "1", true)

	assert.ErrorIs(t, err, service.ErrPermissionDenied)
	assert.True(t, f.state.Customers.All().Has("1"))
}

// ============================================================================
// Visibility
// ============================================================================

func TestCustomerService_List_Visibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.createCustomer(t, f.admin(t), domain.CreateCustomerRequest{
		Name: "Tech job", Phone: "1", Address: "A", Type: domain.CustomerTypeIndividual, AssignedTo: "u3",
	})

	salesView, err := f.customers.List(ctx, f.sales(t), policy.ViewCustomers, nil)
	require.NoError(t, err)
	for _, c := range salesView {
		assert.Equal(t, "u2", c.AssignedTo)
	}
	assert.Len(t, salesView, 2)

	adminView, err := f.customers.List(ctx, f.admin(t), policy.ViewCustomers, nil)
	require.NoError(t, err)
	assert.Len(t, adminView, 4)
}

func TestCustomerService_List_ConsultationIncludesCreated(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created := f.createCustomer(t, f.sales(t), domain.CreateCustomerRequest{
		Name: "Handed over", Phone: "1", Address: "A", Type: domain.CustomerTypeIndividual, AssignedTo: "u3",
	})

	progress, err := f.customers.List(ctx, f.sales(t), policy.ViewProgress, nil)
	require.NoError(t, err)
	for _, c := range progress {
		assert.NotEqual(t, created.ID, c.ID)
	}

	consultation, err := f.customers.List(ctx, f.sales(t), policy.ViewProposals, nil)
	require.NoError(t, err)
	ids := make([]string, 0, len(consultation))
	for _, c := range consultation {
		ids = append(ids, c.ID)
	}
	assert.Contains(t, ids, created.ID)
}

func TestCustomerService_List_Filters(t *testing.T) {
	f := newFixture(t)
	business := domain.CustomerTypeBusiness

	got, err := f.customers.List(context.Background(), f.admin(t), policy.ViewCustomers, &repository.CustomerFilters{Type: &business})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "2", got[0].ID)

	got, err = f.customers.List(context.Background(), f.admin(t), policy.ViewCustomers, &repository.CustomerFilters{Search: "0912"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "3", got[0].ID)
}

func TestCustomerService_Get_HiddenIsNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.customers.Get(context.Background(), f.sales(t), policy.ViewCustomers, "2")
	assert.ErrorIs(t, err, service.ErrNotFound)

	_, err = f.customers.Get(context.Background(), f.tech(t), policy.ViewCustomers, "1")
	assert.ErrorIs(t, err, service.ErrPermissionDenied, "technicians cannot open the customer view")
}

func TestCustomerService_LockedActorIsRefused(t *testing.T) {
	f := newFixture(t)
	sales := f.sales(t)
	sales.Status = false

	_, err := f.customers.List(context.Background(), sales, policy.ViewCustomers, nil)

	var perr *service.PermissionError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "account is locked", perr.Reason)
}
