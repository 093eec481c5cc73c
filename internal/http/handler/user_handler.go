package handler

import (
	"net/http"

	"github.com/evcrm/charger-crm/internal/domain"
	"github.com/evcrm/charger-crm/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// UserHandler serves account administration
type UserHandler struct {
	userService *service.UserService
	logger      *zap.Logger
}

func NewUserHandler(userService *service.UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		logger:      logger,
	}
}

// List godoc
// @Summary List users
// @Tags Users
// @Produce json
// @Param search query string false "Search by name or email"
// @Success 200 {array} domain.UserDTO
// @Failure 403 {object} domain.APIError
// @Security UserID
// @Router /users [get]
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := actor(w, r)
	if !ok {
		return
	}

	users, err := h.userService.List(r.Context(), user, r.URL.Query().Get("search"))
	if err != nil {
		respondServiceError(w, h.logger, "list users", err)
		return
	}

	respondJSON(w, http.StatusOK, users)
}

// Create godoc
// @Summary Create user
// @Description New accounts start active without assigned customers
// @Tags Users
// @Accept json
// @Produce json
// @Param request body domain.CreateUserRequest true "User"
// @Success 201 {object} domain.UserDTO
// @Failure 400 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 409 {object} domain.APIError "Email already in use"
// @Security UserID
// @Router /users [post]
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := actor(w, r)
	if !ok {
		return
	}

	var req domain.CreateUserRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	created, err := h.userService.Create(r.Context(), user, &req)
	if err != nil {
		respondServiceError(w, h.logger, "create user", err)
		return
	}

	respondJSON(w, http.StatusCreated, created)
}

// ToggleStatus godoc
// @Summary Lock or unlock a user
// @Tags Users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} domain.UserDTO
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security UserID
// @Router /users/{id}/toggle-status [post]
func (h *UserHandler) ToggleStatus(w http.ResponseWriter, r *http.Request) {
	user, ok := actor(w, r)
	if !ok {
		return
	}

	updated, err := h.userService.ToggleStatus(r.Context(), user, chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, h.logger, "toggle user status", err)
		return
	}

	respondJSON(w, http.StatusOK, updated)
}

// Delete godoc
// @Summary Delete user
// @Description Administrator accounts cannot be deleted
// @Tags Users
// @Param id path string true "User ID"
// @Param confirm query bool false "Confirm the deletion"
// @Success 204
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 428 {object} domain.APIError
// @Security UserID
// @Router /users/{id} [delete]
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := actor(w, r)
	if !ok {
		return
	}

	deleted, err := h.userService.Delete(r.Context(), user, chi.URLParam(r, "id"), confirmed(r))
	if err != nil {
		respondServiceError(w, h.logger, "delete user", err)
		return
	}
	if !deleted {
		respondNotConfirmed(w)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
