package service

import (
	"context"
	"fmt"
	"time"

	"github.com/evcrm/charger-crm/internal/appstate"
	"github.com/evcrm/charger-crm/internal/domain"
	"github.com/evcrm/charger-crm/internal/metrics"
	"github.com/evcrm/charger-crm/internal/policy"
	"go.uber.org/zap"
)

// AdviceGenerator produces installation advice for a customer
type AdviceGenerator interface {
	GenerateTechnicalAdvice(ctx context.Context, customer *domain.Customer) (*domain.TechnicalAdvice, error)
}

// AdvisorService asks the advisor about a customer. Advice is never stored and
// a failing advisor only makes the advice unavailable.
type AdvisorService struct {
	state     *appstate.State
	generator AdviceGenerator
	timeout   time.Duration
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// NewAdvisorService creates the service. A nil generator means the advisor is disabled.
func NewAdvisorService(state *appstate.State, generator AdviceGenerator, timeout time.Duration, m *metrics.Metrics, logger *zap.Logger) *AdvisorService {
	return &AdvisorService{
		state:     state,
		generator: generator,
		timeout:   timeout,
		metrics:   m,
		logger:    logger,
	}
}

// Advise returns advice for a customer visible to actor in the proposals view.
// Only access errors are returned; advisor failures yield Available=false.
func (s *AdvisorService) Advise(ctx context.Context, actor *domain.User, customerID string) (*domain.AdviceDTO, error) {
	if err := requireView(actor, policy.ViewProposals); err != nil {
		return nil, err
	}

	// the advisor call runs outside the state lock on a copy
	customer, err := s.state.Customers.GetByID(customerID)
	if err != nil {
		return nil, notFound("customer", customerID, err)
	}
	if !policy.CustomerVisible(actor, customer, policy.ScopeFor(policy.ViewProposals)).Allowed {
		return nil, fmt.Errorf("customer %s: %w", customerID, ErrNotFound)
	}

	out := &domain.AdviceDTO{CustomerID: customerID}
	if s.generator == nil {
		s.metrics.AdviceRequested("disabled")
		return out, nil
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	advice, err := s.generator.GenerateTechnicalAdvice(ctx, customer)
	if err != nil || advice == nil {
		s.metrics.AdviceRequested("unavailable")
		s.logger.Warn("Technical advice unavailable",
			zap.String("customer_id", customerID),
			zap.Error(err),
		)
		return out, nil
	}

	s.metrics.AdviceRequested("ok")
	out.Available = true
	out.Advice = advice
	return out, nil
}
