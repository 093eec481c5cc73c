package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/evcrm/charger-crm/internal/appstate"
	"github.com/evcrm/charger-crm/internal/domain"
	applog "github.com/evcrm/charger-crm/internal/logger"
	"github.com/evcrm/charger-crm/internal/mapper"
	"github.com/evcrm/charger-crm/internal/metrics"
	"github.com/evcrm/charger-crm/internal/policy"
	"go.uber.org/zap"
)

// LifecycleService moves customers through the project stages and keeps their history
type LifecycleService struct {
	state   *appstate.State
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func NewLifecycleService(state *appstate.State, m *metrics.Metrics, logger *zap.Logger) *LifecycleService {
	return &LifecycleService{
		state:   state,
		metrics: m,
		logger:  logger,
	}
}

// StatusChangeNote is the history text recorded for a transition
func StatusChangeNote(actor *domain.User, status domain.ProjectStatus) string {
	return fmt.Sprintf("Updated by %s: status changed to %s", actor.FullName, status.Label())
}

// SetStatus moves a customer to status. The new status and its history entry
// are written in a single swap, so readers never see one without the other.
func (s *LifecycleService) SetStatus(ctx context.Context, actor *domain.User, customerID string, status domain.ProjectStatus) (*domain.CustomerDTO, error) {
	if err := requireView(actor, policy.ViewProgress); err != nil {
		return nil, err
	}
	if !status.IsValid() {
		return nil, invalid("status", "unknown project status")
	}
	if err := check("set status", policy.CanSetStatus(actor, status)); err != nil {
		s.logger.Info("Status change denied",
			zap.String("user_id", actor.ID),
			zap.String("customer_id", customerID),
			zap.String("status", string(status)),
		)
		s.metrics.PolicyDenied("set status")
		return nil, err
	}

	var updated domain.Customer
	var previous domain.ProjectStatus
	err := s.state.Mutate(ctx, func() error {
		customer, err := s.progressCustomer(actor, customerID)
		if err != nil {
			return err
		}

		previous = customer.Status
		entry := domain.StatusHistory{
			ID:        s.state.Customers.NextNoteID(customer),
			Status:    status,
			Note:      StatusChangeNote(actor, status),
			UpdatedAt: nextNoteTime(s.state.Now(), customer),
		}
		customer.Status = status
		customer.Notes = append([]domain.StatusHistory{entry}, customer.Notes...)

		if err := s.state.Customers.Update(*customer); err != nil {
			return notFound("customer", customerID, err)
		}
		updated = *customer
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.StatusChanged(string(status))
	applog.WithCustomer(s.logger, customerID).Info("Customer status changed",
		zap.String("user_id", actor.ID),
		zap.String("from", string(previous)),
		zap.String("to", string(status)),
	)

	dto := mapper.ToCustomerDTO(&updated)
	return &dto, nil
}

// AddNote records a free-text entry carrying the current status.
// Blank text or an empty customer id is a no-op and returns nil.
func (s *LifecycleService) AddNote(ctx context.Context, actor *domain.User, customerID string, text string) (*domain.CustomerDTO, error) {
	text = strings.TrimSpace(text)
	if customerID == "" || text == "" {
		return nil, nil
	}
	if err := requireView(actor, policy.ViewProgress); err != nil {
		return nil, err
	}

	var updated domain.Customer
	err := s.state.Mutate(ctx, func() error {
		customer, err := s.progressCustomer(actor, customerID)
		if err != nil {
			return err
		}

		entry := domain.StatusHistory{
			ID:        s.state.Customers.NextNoteID(customer),
			Status:    customer.Status,
			Note:      fmt.Sprintf("%s: %s", actor.FullName, text),
			UpdatedAt: nextNoteTime(s.state.Now(), customer),
		}
		customer.Notes = append([]domain.StatusHistory{entry}, customer.Notes...)

		if err := s.state.Customers.Update(*customer); err != nil {
			return notFound("customer", customerID, err)
		}
		updated = *customer
		return nil
	})
	if err != nil {
		return nil, err
	}

	applog.WithCustomer(s.logger, customerID).Debug("Note added",
		zap.String("user_id", actor.ID),
	)

	dto := mapper.ToCustomerDTO(&updated)
	return &dto, nil
}

// History returns the notes of a customer, newest first
func (s *LifecycleService) History(ctx context.Context, actor *domain.User, customerID string) ([]domain.StatusHistoryDTO, error) {
	if err := requireView(actor, policy.ViewProgress); err != nil {
		return nil, err
	}
	customer, err := s.progressCustomer(actor, customerID)
	if err != nil {
		return nil, err
	}
	return mapper.ToStatusHistoryDTOs(customer.Notes), nil
}

// Board groups the customers visible in the progress view by status, in stage order.
// Every stage has a column, empty or not.
func (s *LifecycleService) Board(ctx context.Context, actor *domain.User) ([]domain.ProgressColumnDTO, error) {
	if err := requireView(actor, policy.ViewProgress); err != nil {
		return nil, err
	}

	visible := visibleCustomers(actor, policy.ViewProgress, s.state.Customers.List(nil))

	columns := make([]domain.ProgressColumnDTO, 0, len(domain.AllProjectStatuses()))
	for _, status := range domain.AllProjectStatuses() {
		col := domain.ProgressColumnDTO{
			Status:    status,
			Label:     status.Label(),
			Customers: []domain.CustomerDTO{},
		}
		for i := range visible {
			if visible[i].Status == status {
				col.Customers = append(col.Customers, mapper.ToCustomerDTO(&visible[i]))
			}
		}
		columns = append(columns, col)
	}
	return columns, nil
}

// progressCustomer loads a customer that actor can see in the progress view
func (s *LifecycleService) progressCustomer(actor *domain.User, id string) (*domain.Customer, error) {
	customer, err := s.state.Customers.GetByID(id)
	if err != nil {
		return nil, notFound("customer", id, err)
	}
	if !policy.CustomerVisible(actor, customer, policy.ScopeFor(policy.ViewProgress)).Allowed {
		return nil, fmt.Errorf("customer %s: %w", id, ErrNotFound)
	}
	return customer, nil
}
