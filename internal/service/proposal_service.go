package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/evcrm/charger-crm/internal/appstate"
	"github.com/evcrm/charger-crm/internal/domain"
	"github.com/evcrm/charger-crm/internal/mapper"
	"github.com/evcrm/charger-crm/internal/policy"
	"github.com/evcrm/charger-crm/internal/quote"
	"go.uber.org/zap"
)

// DefaultProposalTitle is used when a proposal is saved without a title
const DefaultProposalTitle = "New technical proposal"

// ProposalService manages the technical proposals nested in a customer
type ProposalService struct {
	state  *appstate.State
	logger *zap.Logger
}

func NewProposalService(state *appstate.State, logger *zap.Logger) *ProposalService {
	return &ProposalService{
		state:  state,
		logger: logger,
	}
}

// List returns the proposals of a customer, newest first
func (s *ProposalService) List(ctx context.Context, actor *domain.User, customerID string) ([]domain.ProposalDTO, error) {
	if err := requireView(actor, policy.ViewProposals); err != nil {
		return nil, err
	}
	customer, err := s.consultationCustomer(actor, customerID)
	if err != nil {
		return nil, err
	}

	out := make([]domain.ProposalDTO, len(customer.Proposals))
	for i := range customer.Proposals {
		out[i] = mapper.ToProposalDTO(customer.ID, &customer.Proposals[i])
	}
	return out, nil
}

// Create prepends a proposal to the customer
func (s *ProposalService) Create(ctx context.Context, actor *domain.User, customerID string, req *domain.ProposalRequest) (*domain.ProposalDTO, error) {
	if err := requireView(actor, policy.ViewProposals); err != nil {
		return nil, err
	}

	var created domain.TechnicalProposal
	err := s.state.Mutate(ctx, func() error {
		customer, err := s.manageableCustomer(actor, customerID)
		if err != nil {
			return err
		}

		created = proposalFromRequest(req)
		created.ID = s.state.Customers.NextProposalID(customer)
		created.CreatedAt = s.state.Now()
		customer.Proposals = append([]domain.TechnicalProposal{created}, customer.Proposals...)

		return s.save(customer)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Proposal created",
		zap.String("customer_id", customerID),
		zap.String("proposal_id", created.ID),
		zap.String("user_id", actor.ID),
	)

	dto := mapper.ToProposalDTO(customerID, &created)
	return &dto, nil
}

// Update replaces the title, items and diagram of a proposal. Its id and creation time are kept.
func (s *ProposalService) Update(ctx context.Context, actor *domain.User, customerID, proposalID string, req *domain.ProposalRequest) (*domain.ProposalDTO, error) {
	if err := requireView(actor, policy.ViewProposals); err != nil {
		return nil, err
	}

	var updated domain.TechnicalProposal
	err := s.state.Mutate(ctx, func() error {
		customer, err := s.manageableCustomer(actor, customerID)
		if err != nil {
			return err
		}

		i := proposalIndex(customer, proposalID)
		if i < 0 {
			return fmt.Errorf("proposal %s: %w", proposalID, ErrNotFound)
		}

		next := proposalFromRequest(req)
		next.ID = customer.Proposals[i].ID
		next.CreatedAt = customer.Proposals[i].CreatedAt
		customer.Proposals[i] = next
		updated = next

		return s.save(customer)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Proposal updated",
		zap.String("customer_id", customerID),
		zap.String("proposal_id", proposalID),
	)

	dto := mapper.ToProposalDTO(customerID, &updated)
	return &dto, nil
}

// Delete removes a proposal. Without confirm nothing happens and false is returned.
func (s *ProposalService) Delete(ctx context.Context, actor *domain.User, customerID, proposalID string, confirm bool) (bool, error) {
	if err := requireView(actor, policy.ViewProposals); err != nil {
		return false, err
	}

	deleted := false
	err := s.state.Mutate(ctx, func() error {
		customer, err := s.manageableCustomer(actor, customerID)
		if err != nil {
			return err
		}

		i := proposalIndex(customer, proposalID)
		if i < 0 {
			return fmt.Errorf("proposal %s: %w", proposalID, ErrNotFound)
		}
		if !confirm {
			return nil
		}

		proposals := make([]domain.TechnicalProposal, 0, len(customer.Proposals)-1)
		proposals = append(proposals, customer.Proposals[:i]...)
		customer.Proposals = append(proposals, customer.Proposals[i+1:]...)
		deleted = true

		return s.save(customer)
	})
	if err != nil {
		return false, err
	}

	if deleted {
		s.logger.Info("Proposal deleted",
			zap.String("customer_id", customerID),
			zap.String("proposal_id", proposalID),
		)
	}
	return deleted, nil
}

func (s *ProposalService) save(customer *domain.Customer) error {
	if err := s.state.Customers.Update(*customer); err != nil {
		return notFound("customer", customer.ID, err)
	}
	return nil
}

// consultationCustomer loads a customer visible to actor in the proposals view
func (s *ProposalService) consultationCustomer(actor *domain.User, id string) (*domain.Customer, error) {
	customer, err := s.state.Customers.GetByID(id)
	if err != nil {
		return nil, notFound("customer", id, err)
	}
	if !policy.CustomerVisible(actor, customer, policy.ScopeFor(policy.ViewProposals)).Allowed {
		return nil, fmt.Errorf("customer %s: %w", id, ErrNotFound)
	}
	return customer, nil
}

func (s *ProposalService) manageableCustomer(actor *domain.User, id string) (*domain.Customer, error) {
	customer, err := s.consultationCustomer(actor, id)
	if err != nil {
		return nil, err
	}
	if err := check("manage proposals", policy.CanManageProposals(actor, customer)); err != nil {
		return nil, err
	}
	return customer, nil
}

func proposalIndex(customer *domain.Customer, proposalID string) int {
	for i := range customer.Proposals {
		if customer.Proposals[i].ID == proposalID {
			return i
		}
	}
	return -1
}

// proposalFromRequest copies the request. Negative quantities and prices become 0.
func proposalFromRequest(req *domain.ProposalRequest) domain.TechnicalProposal {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = DefaultProposalTitle
	}

	items := make([]domain.ProposalItem, len(req.Items))
	for i, item := range req.Items {
		items[i] = domain.ProposalItem{
			Description: strings.TrimSpace(item.Description),
			Quantity:    quote.Coerce(item.Quantity.Int64()),
			Unit:        strings.TrimSpace(item.Unit),
			Price:       quote.Coerce(item.Price.Int64()),
		}
	}

	return domain.TechnicalProposal{
		Title:          title,
		Items:          items,
		WireDiagramURL: strings.TrimSpace(req.WireDiagramURL),
	}
}
