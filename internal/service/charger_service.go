package service

import (
	"context"
	"strings"

	"github.com/evcrm/charger-crm/internal/appstate"
	"github.com/evcrm/charger-crm/internal/domain"
	"github.com/evcrm/charger-crm/internal/mapper"
	"github.com/evcrm/charger-crm/internal/policy"
	"github.com/evcrm/charger-crm/internal/quote"
	"github.com/evcrm/charger-crm/internal/repository"
	"go.uber.org/zap"
)

// ChargerService manages the product catalog. Everyone may read it; only administrators write.
type ChargerService struct {
	state  *appstate.State
	logger *zap.Logger
}

func NewChargerService(state *appstate.State, logger *zap.Logger) *ChargerService {
	return &ChargerService{
		state:  state,
		logger: logger,
	}
}

func (s *ChargerService) List(ctx context.Context, actor *domain.User, filters *repository.ChargerFilters) ([]domain.ChargerDTO, error) {
	if err := requireView(actor, policy.ViewChargers); err != nil {
		return nil, err
	}
	return mapper.ToChargerDTOs(s.state.Chargers.List(filters)), nil
}

func (s *ChargerService) Get(ctx context.Context, actor *domain.User, id string) (*domain.ChargerDTO, error) {
	if err := requireView(actor, policy.ViewChargers); err != nil {
		return nil, err
	}
	model, err := s.state.Chargers.GetByID(id)
	if err != nil {
		return nil, notFound("charger", id, err)
	}
	dto := mapper.ToChargerDTO(model)
	return &dto, nil
}

// Create adds a model at the head of the catalog
func (s *ChargerService) Create(ctx context.Context, actor *domain.User, req *domain.ChargerRequest) (*domain.ChargerDTO, error) {
	if err := s.requireAdmin(actor); err != nil {
		return nil, err
	}
	model, err := modelFromRequest(req)
	if err != nil {
		return nil, err
	}

	var created domain.ChargerModel
	err = s.state.Mutate(ctx, func() error {
		created = s.state.Chargers.Create(model)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Charger model created",
		zap.String("charger_id", created.ID),
		zap.String("name", created.Name),
	)

	dto := mapper.ToChargerDTO(&created)
	return &dto, nil
}

// Update replaces a model in place, keeping its catalog position
func (s *ChargerService) Update(ctx context.Context, actor *domain.User, id string, req *domain.ChargerRequest) (*domain.ChargerDTO, error) {
	if err := s.requireAdmin(actor); err != nil {
		return nil, err
	}
	model, err := modelFromRequest(req)
	if err != nil {
		return nil, err
	}
	model.ID = id

	var updated domain.ChargerModel
	err = s.state.Mutate(ctx, func() error {
		var err error
		updated, err = s.state.Chargers.Update(model)
		if err != nil {
			return notFound("charger", id, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Charger model updated", zap.String("charger_id", id))

	dto := mapper.ToChargerDTO(&updated)
	return &dto, nil
}

// Delete removes a model. Without confirm nothing happens and false is returned.
func (s *ChargerService) Delete(ctx context.Context, actor *domain.User, id string, confirm bool) (bool, error) {
	if err := s.requireAdmin(actor); err != nil {
		return false, err
	}

	deleted := false
	err := s.state.Mutate(ctx, func() error {
		if _, err := s.state.Chargers.GetByID(id); err != nil {
			return notFound("charger", id, err)
		}
		if !confirm {
			return nil
		}
		if err := s.state.Chargers.Delete(id); err != nil {
			return notFound("charger", id, err)
		}
		deleted = true
		return nil
	})
	if err != nil {
		return false, err
	}

	if deleted {
		s.logger.Info("Charger model deleted", zap.String("charger_id", id))
	}
	return deleted, nil
}

func (s *ChargerService) requireAdmin(actor *domain.User) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	return check("manage catalog", policy.CanManageCatalog(actor))
}

func modelFromRequest(req *domain.ChargerRequest) (domain.ChargerModel, error) {
	name := strings.TrimSpace(req.Name)
	power := strings.TrimSpace(req.Power)
	switch {
	case name == "":
		return domain.ChargerModel{}, invalid("name", "is required")
	case power == "":
		return domain.ChargerModel{}, invalid("power", "is required")
	case !req.Type.IsValid():
		return domain.ChargerModel{}, invalid("type", "must be AC or DC")
	case !req.Brand.IsValid():
		return domain.ChargerModel{}, invalid("brand", "unknown brand")
	case req.Price == nil:
		return domain.ChargerModel{}, invalid("price", "must be a number")
	case *req.Price < 0:
		return domain.ChargerModel{}, invalid("price", "must not be negative")
	}

	return domain.ChargerModel{
		Name:     name,
		Power:    power,
		Type:     req.Type,
		Brand:    req.Brand,
		Price:    quote.CatalogPrice(*req.Price),
		Features: repository.CleanFeatures(req.Features),
		ImageURL: strings.TrimSpace(req.ImageURL),
	}, nil
}
