package handler

import (
	"net/http"

	"github.com/evcrm/charger-crm/internal/service"
	"go.uber.org/zap"
)

// AuthHandler exposes the selectable acting users and the current one
type AuthHandler struct {
	userService *service.UserService
	logger      *zap.Logger
}

func NewAuthHandler(userService *service.UserService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		logger:      logger,
	}
}

// SessionUsers godoc
// @Summary Selectable users
// @Description Users a client may act as. Send the chosen id in the X-User-ID header.
// @Tags Auth
// @Produce json
// @Success 200 {array} domain.SessionUserDTO
// @Router /session/users [get]
func (h *AuthHandler) SessionUsers(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.userService.SessionUsers(r.Context()))
}

// Me godoc
// @Summary Current acting user
// @Description The acting user and the views available to their role
// @Tags Auth
// @Produce json
// @Success 200 {object} domain.MeDTO
// @Failure 401 {object} domain.APIError
// @Failure 403 {object} domain.APIError "Account is locked"
// @Security UserID
// @Router /auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := actor(w, r)
	if !ok {
		return
	}

	me, err := h.userService.Me(r.Context(), user)
	if err != nil {
		respondServiceError(w, h.logger, "load current user", err)
		return
	}

	respondJSON(w, http.StatusOK, me)
}
