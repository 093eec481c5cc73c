package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/evcrm/charger-crm/internal/appstate"
	"github.com/evcrm/charger-crm/internal/domain"
	"github.com/evcrm/charger-crm/internal/mapper"
	"github.com/evcrm/charger-crm/internal/policy"
	"go.uber.org/zap"
)

type UserService struct {
	state  *appstate.State
	logger *zap.Logger
}

func NewUserService(state *appstate.State, logger *zap.Logger) *UserService {
	return &UserService{
		state:  state,
		logger: logger,
	}
}

// Lookup returns the stored user with id, without any permission check.
// It resolves the acting user of a request.
func (s *UserService) Lookup(id string) (*domain.User, error) {
	user, err := s.state.Users.GetByID(id)
	if err != nil {
		return nil, notFound("user", id, err)
	}
	return user, nil
}

// SessionUsers lists the users that can be picked as the acting user
func (s *UserService) SessionUsers(ctx context.Context) []domain.SessionUserDTO {
	users := s.state.Users.All()
	out := make([]domain.SessionUserDTO, len(users))
	for i := range users {
		out[i] = mapper.ToSessionUserDTO(&users[i])
	}
	return out
}

// Me describes actor and the views they may open
func (s *UserService) Me(ctx context.Context, actor *domain.User) (*domain.MeDTO, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	views := policy.AccessibleViews(actor)
	names := make([]string, len(views))
	for i, v := range views {
		names[i] = string(v)
	}
	return &domain.MeDTO{User: mapper.ToUserDTO(actor), Views: names}, nil
}

// List returns all users with an optional case-insensitive name or email search
func (s *UserService) List(ctx context.Context, actor *domain.User, search string) ([]domain.UserDTO, error) {
	if err := s.requireAdmin(actor); err != nil {
		return nil, err
	}

	search = strings.ToLower(strings.TrimSpace(search))
	users := s.state.Users.All()
	out := make([]domain.UserDTO, 0, len(users))
	for i := range users {
		u := &users[i]
		if search != "" &&
			!strings.Contains(strings.ToLower(u.FullName), search) &&
			!strings.Contains(strings.ToLower(u.Email), search) {
			continue
		}
		out = append(out, mapper.ToUserDTO(u))
	}
	return out, nil
}

func (s *UserService) Get(ctx context.Context, actor *domain.User, id string) (*domain.UserDTO, error) {
	if err := s.requireAdmin(actor); err != nil {
		return nil, err
	}
	user, err := s.Lookup(id)
	if err != nil {
		return nil, err
	}
	dto := mapper.ToUserDTO(user)
	return &dto, nil
}

// Create adds an active user. Emails are unique ignoring case.
func (s *UserService) Create(ctx context.Context, actor *domain.User, req *domain.CreateUserRequest) (*domain.UserDTO, error) {
	if err := s.requireAdmin(actor); err != nil {
		return nil, err
	}

	fullName := strings.TrimSpace(req.FullName)
	email := strings.TrimSpace(req.Email)
	switch {
	case fullName == "":
		return nil, invalid("fullName", "is required")
	case email == "":
		return nil, invalid("email", "is required")
	case !req.Role.IsValid():
		return nil, invalid("role", "must be ADMIN, SALES or TECHNICIAN")
	}

	var created domain.User
	err := s.state.Mutate(ctx, func() error {
		if _, err := s.state.Users.GetByEmail(email); err == nil {
			return fmt.Errorf("email %s: %w", email, ErrConflict)
		}
		created = s.state.Users.Create(domain.User{
			FullName:          fullName,
			Email:             email,
			Role:              req.Role,
			Status:            true,
			AssignedCustomers: []string{},
			CreatedAt:         s.state.Now(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("User created",
		zap.String("user_id", created.ID),
		zap.String("role", string(created.Role)),
		zap.String("created_by", actor.ID),
	)

	dto := mapper.ToUserDTO(&created)
	return &dto, nil
}

// ToggleStatus locks an active user or unlocks a locked one.
// Administrators cannot lock their own account.
func (s *UserService) ToggleStatus(ctx context.Context, actor *domain.User, id string) (*domain.UserDTO, error) {
	if err := s.requireAdmin(actor); err != nil {
		return nil, err
	}
	if id == actor.ID {
		return nil, &PermissionError{Capability: "toggle user status", Reason: "you cannot lock your own account"}
	}

	var updated domain.User
	err := s.state.Mutate(ctx, func() error {
		user, err := s.state.Users.GetByID(id)
		if err != nil {
			return notFound("user", id, err)
		}
		user.Status = !user.Status
		if err := s.state.Users.Update(*user); err != nil {
			return notFound("user", id, err)
		}
		updated = *user
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("User status toggled",
		zap.String("user_id", id),
		zap.Bool("active", updated.Status),
		zap.String("changed_by", actor.ID),
	)

	dto := mapper.ToUserDTO(&updated)
	return &dto, nil
}

// Delete removes a non-administrator user. Without confirm nothing happens and false is returned.
func (s *UserService) Delete(ctx context.Context, actor *domain.User, id string, confirm bool) (bool, error) {
	if err := s.requireAdmin(actor); err != nil {
		return false, err
	}

	deleted := false
	err := s.state.Mutate(ctx, func() error {
		target, err := s.state.Users.GetByID(id)
		if err != nil {
			return notFound("user", id, err)
		}
		if err := check("delete user", policy.CanDeleteUser(actor, target)); err != nil {
			return err
		}
		if !confirm {
			return nil
		}
		if err := s.state.Users.Delete(id); err != nil {
			return notFound("user", id, err)
		}
		deleted = true
		return nil
	})
	if err != nil {
		return false, err
	}

	if deleted {
		s.logger.Info("User deleted",
			zap.String("user_id", id),
			zap.String("deleted_by", actor.ID),
		)
	}
	return deleted, nil
}

func (s *UserService) requireAdmin(actor *domain.User) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	return check("manage users", policy.CanManageUsers(actor))
}
