package handler

import (
	"net/http"

	"github.com/evcrm/charger-crm/internal/domain"
	"github.com/evcrm/charger-crm/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ProgressHandler serves the installation board and customer history
type ProgressHandler struct {
	lifecycleService *service.LifecycleService
	logger           *zap.Logger
}

func NewProgressHandler(lifecycleService *service.LifecycleService, logger *zap.Logger) *ProgressHandler {
	return &ProgressHandler{
		lifecycleService: lifecycleService,
		logger:           logger,
	}
}

// Board godoc
// @Summary Progress board
// @Description Visible customers grouped by project status, one column per status
// @Tags Progress
// @Produce json
// @Success 200 {array} domain.ProgressColumnDTO
// @Failure 401 {object} domain.APIError
// @Security UserID
// @Router /progress [get]
func (h *ProgressHandler) Board(w http.ResponseWriter, r *http.Request) {
	user, ok := actor(w, r)
	if !ok {
		return
	}

	board, err := h.lifecycleService.Board(r.Context(), user)
	if err != nil {
		respondServiceError(w, h.logger, "load progress board", err)
		return
	}

	respondJSON(w, http.StatusOK, board)
}

// SetStatus godoc
// @Summary Change project status
// @Description Moves the customer to a status and records a history entry in the same step
// @Tags Progress
// @Accept json
// @Produce json
// @Param id path string true "Customer ID"
// @Param request body domain.SetStatusRequest true "Target status"
// @Success 200 {object} domain.CustomerDTO
// @Failure 400 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security UserID
// @Router /customers/{id}/status [post]
func (h *ProgressHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	user, ok := actor(w, r)
	if !ok {
		return
	}

	var req domain.SetStatusRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	customer, err := h.lifecycleService.SetStatus(r.Context(), user, chi.URLParam(r, "id"), req.Status)
	if err != nil {
		respondServiceError(w, h.logger, "change status", err)
		return
	}

	respondJSON(w, http.StatusOK, customer)
}

// History godoc
// @Summary Customer history
// @Description Status history and notes, newest first
// @Tags Progress
// @Produce json
// @Param id path string true "Customer ID"
// @Success 200 {array} domain.StatusHistoryDTO
// @Failure 404 {object} domain.APIError
// @Security UserID
// @Router /customers/{id}/notes [get]
func (h *ProgressHandler) History(w http.ResponseWriter, r *http.Request) {
	user, ok := actor(w, r)
	if !ok {
		return
	}

	history, err := h.lifecycleService.History(r.Context(), user, chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, h.logger, "load history", err)
		return
	}

	respondJSON(w, http.StatusOK, history)
}

// AddNote godoc
// @Summary Add note
// @Description Records a note under the current status. A blank note changes nothing.
// @Tags Progress
// @Accept json
// @Produce json
// @Param id path string true "Customer ID"
// @Param request body domain.AddNoteRequest true "Note"
// @Success 201 {object} domain.CustomerDTO
// @Success 204 "Blank note ignored"
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security UserID
// @Router /customers/{id}/notes [post]
func (h *ProgressHandler) AddNote(w http.ResponseWriter, r *http.Request) {
	user, ok := actor(w, r)
	if !ok {
		return
	}

	var req domain.AddNoteRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	customer, err := h.lifecycleService.AddNote(r.Context(), user, chi.URLParam(r, "id"), req.Text)
	if err != nil {
		respondServiceError(w, h.logger, "add note", err)
		return
	}
	if customer == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	respondJSON(w, http.StatusCreated, customer)
}
