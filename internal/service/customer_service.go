package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/evcrm/charger-crm/internal/appstate"
	"github.com/evcrm/charger-crm/internal/domain"
	"github.com/evcrm/charger-crm/internal/geo"
	"github.com/evcrm/charger-crm/internal/mapper"
	"github.com/evcrm/charger-crm/internal/policy"
	"github.com/evcrm/charger-crm/internal/repository"
	"go.uber.org/zap"
)

type CustomerService struct {
	state    *appstate.State
	geocoder geo.Geocoder
	logger   *zap.Logger
}

func NewCustomerService(state *appstate.State, geocoder geo.Geocoder, logger *zap.Logger) *CustomerService {
	return &CustomerService{
		state:    state,
		geocoder: geocoder,
		logger:   logger,
	}
}

// Create adds a lead. The customer starts as NEW, is created by actor and
// assigned to req.AssignedTo or actor. A supplied note becomes the first history entry.
func (s *CustomerService) Create(ctx context.Context, actor *domain.User, req *domain.CreateCustomerRequest) (*domain.CustomerDTO, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if err := check("create customer", policy.CanCreateCustomer(actor)); err != nil {
		return nil, err
	}

	draft, err := s.draftFromRequest(actor, req)
	if err != nil {
		return nil, err
	}

	location, err := s.geocoder.Locate(ctx, draft.Address)
	if err != nil {
		s.logger.Warn("Geocoding failed, using zero location",
			zap.String("address", draft.Address),
			zap.Error(err),
		)
	}
	draft.Location = location

	var created domain.Customer
	err = s.state.Mutate(ctx, func() error {
		if !s.state.Users.Exists(draft.AssignedTo) {
			return invalid("assignedTo", "must reference an existing user")
		}

		now := s.state.Now()
		draft.ID = s.state.Customers.NextID()
		draft.CreatedAt = now
		if note := strings.TrimSpace(req.Note); note != "" {
			draft.Notes = []domain.StatusHistory{{
				ID:        s.state.Customers.NextNoteID(&draft),
				Status:    domain.StatusNew,
				Note:      note,
				UpdatedAt: now,
			}}
		}

		created = s.state.Customers.Create(draft)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Customer created",
		zap.String("customer_id", created.ID),
		zap.String("created_by", actor.ID),
		zap.String("assigned_to", created.AssignedTo),
	)

	dto := mapper.ToCustomerDTO(&created)
	return &dto, nil
}

func (s *CustomerService) draftFromRequest(actor *domain.User, req *domain.CreateCustomerRequest) (domain.Customer, error) {
	name := strings.TrimSpace(req.Name)
	phone := strings.TrimSpace(req.Phone)
	address := strings.TrimSpace(req.Address)

	switch {
	case name == "":
		return domain.Customer{}, invalid("name", "is required")
	case phone == "":
		return domain.Customer{}, invalid("phone", "is required")
	case address == "":
		return domain.Customer{}, invalid("address", "is required")
	case !req.Type.IsValid():
		return domain.Customer{}, invalid("type", "must be INDIVIDUAL or BUSINESS")
	}

	chargerType := req.ChargerType
	if chargerType == "" {
		chargerType = domain.ChargerKW7
	}
	if !chargerType.IsValid() {
		return domain.Customer{}, invalid("chargerType", "unknown charger type")
	}

	source := strings.TrimSpace(req.Source)
	if source == "" {
		source = domain.SourceWebsite
	}

	assignedTo := strings.TrimSpace(req.AssignedTo)
	if assignedTo == "" {
		assignedTo = actor.ID
	}

	return domain.Customer{
		Name:        name,
		Phone:       phone,
		Address:     address,
		Type:        req.Type,
		Source:      source,
		ChargerType: chargerType,
		Status:      domain.StatusNew,
		Notes:       []domain.StatusHistory{},
		Proposals:   []domain.TechnicalProposal{},
		CreatedBy:   actor.ID,
		AssignedTo:  assignedTo,
	}, nil
}

// Get returns a customer visible to actor in view. Invisible customers are reported as not found.
func (s *CustomerService) Get(ctx context.Context, actor *domain.User, view policy.View, id string) (*domain.CustomerDTO, error) {
	if err := requireView(actor, view); err != nil {
		return nil, err
	}

	customer, err := s.visibleCustomer(actor, view, id)
	if err != nil {
		return nil, err
	}

	dto := mapper.ToCustomerDTO(customer)
	return &dto, nil
}

// List returns the customers visible to actor in view that match filters, newest first
func (s *CustomerService) List(ctx context.Context, actor *domain.User, view policy.View, filters *repository.CustomerFilters) ([]domain.CustomerDTO, error) {
	if err := requireView(actor, view); err != nil {
		return nil, err
	}
	return mapper.ToCustomerDTOs(visibleCustomers(actor, view, s.state.Customers.List(filters))), nil
}

// Update merges the non-nil fields of req into the customer. A note that
// differs from the latest history entry is recorded with the current status.
func (s *CustomerService) Update(ctx context.Context, actor *domain.User, id string, req *domain.UpdateCustomerRequest) (*domain.CustomerDTO, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}

	var updated domain.Customer
	err := s.state.Mutate(ctx, func() error {
		customer, err := s.state.Customers.GetByID(id)
		if err != nil {
			return notFound("customer", id, err)
		}
		if err := check("edit customer", policy.CanEditCustomer(actor, customer)); err != nil {
			return err
		}
		if err := s.applyPatch(customer, req); err != nil {
			return err
		}

		if req.Note != nil {
			note := strings.TrimSpace(*req.Note)
			latest, ok := customer.LatestNote()
			if note != "" && (!ok || latest.Note != note) {
				customer.Notes = append([]domain.StatusHistory{{
					ID:        s.state.Customers.NextNoteID(customer),
					Status:    customer.Status,
					Note:      note,
					UpdatedAt: s.noteTime(customer),
				}}, customer.Notes...)
			}
		}

		if err := s.state.Customers.Update(*customer); err != nil {
			return notFound("customer", id, err)
		}
		updated = *customer
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Customer updated",
		zap.String("customer_id", id),
		zap.String("user_id", actor.ID),
	)

	dto := mapper.ToCustomerDTO(&updated)
	return &dto, nil
}

// applyPatch validates and merges req. It never touches CreatedBy, Status or history.
func (s *CustomerService) applyPatch(c *domain.Customer, req *domain.UpdateCustomerRequest) error {
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return invalid("name", "is required")
		}
		c.Name = name
	}
	if req.Phone != nil {
		phone := strings.TrimSpace(*req.Phone)
		if phone == "" {
			return invalid("phone", "is required")
		}
		c.Phone = phone
	}
	if req.Address != nil {
		address := strings.TrimSpace(*req.Address)
		if address == "" {
			return invalid("address", "is required")
		}
		c.Address = address
	}
	if req.Type != nil {
		if !req.Type.IsValid() {
			return invalid("type", "must be INDIVIDUAL or BUSINESS")
		}
		c.Type = *req.Type
	}
	if req.ChargerType != nil {
		if !req.ChargerType.IsValid() {
			return invalid("chargerType", "unknown charger type")
		}
		c.ChargerType = *req.ChargerType
	}
	if req.Source != nil {
		c.Source = strings.TrimSpace(*req.Source)
	}
	if req.AssignedTo != nil {
		if assignedTo := strings.TrimSpace(*req.AssignedTo); assignedTo != "" {
			if !s.state.Users.Exists(assignedTo) {
				return invalid("assignedTo", "must reference an existing user")
			}
			c.AssignedTo = assignedTo
		}
	}
	return nil
}

// noteTime returns now, or the latest entry's time if the clock went backwards,
// so history stays ordered newest first
func (s *CustomerService) noteTime(c *domain.Customer) time.Time {
	return nextNoteTime(s.state.Now(), c)
}

// Delete removes a customer. Without confirm nothing happens and false is returned.
func (s *CustomerService) Delete(ctx context.Context, actor *domain.User, id string, confirm bool) (bool, error) {
	if err := requireActor(actor); err != nil {
		return false, err
	}
	if err := check("delete customer", policy.CanDeleteCustomer(actor)); err != nil {
		return false, err
	}

	deleted := false
	err := s.state.Mutate(ctx, func() error {
		if _, err := s.state.Customers.GetByID(id); err != nil {
			return notFound("customer", id, err)
		}
		if !confirm {
			return nil
		}
		if err := s.state.Customers.Delete(id); err != nil {
			return notFound("customer", id, err)
		}
		deleted = true
		return nil
	})
	if err != nil {
		return false, err
	}

	if deleted {
		s.logger.Info("Customer deleted",
			zap.String("customer_id", id),
			zap.String("user_id", actor.ID),
		)
	}
	return deleted, nil
}

// visibleCustomer loads id and hides it as not found when actor cannot see it in view
func (s *CustomerService) visibleCustomer(actor *domain.User, view policy.View, id string) (*domain.Customer, error) {
	customer, err := s.state.Customers.GetByID(id)
	if err != nil {
		return nil, notFound("customer", id, err)
	}
	if !policy.CustomerVisible(actor, customer, policy.ScopeFor(view)).Allowed {
		return nil, fmt.Errorf("customer %s: %w", id, ErrNotFound)
	}
	return customer, nil
}

func visibleCustomers(actor *domain.User, view policy.View, customers []domain.Customer) []domain.Customer {
	scope := policy.ScopeFor(view)
	out := make([]domain.Customer, 0, len(customers))
	for i := range customers {
		if policy.CustomerVisible(actor, &customers[i], scope).Allowed {
			out = append(out, customers[i])
		}
	}
	return out
}

// nextNoteTime keeps a new entry no older than the current head of history
func nextNoteTime(now time.Time, c *domain.Customer) time.Time {
	if latest, ok := c.LatestNote(); ok && now.Before(latest.UpdatedAt) {
		return latest.UpdatedAt
	}
	return now
}
