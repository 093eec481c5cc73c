package handler

import (
	"net/http"

	"github.com/evcrm/charger-crm/internal/domain"
	"github.com/evcrm/charger-crm/internal/repository"
	"github.com/evcrm/charger-crm/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type ChargerHandler struct {
	chargerService *service.ChargerService
	logger         *zap.Logger
}

func NewChargerHandler(chargerService *service.ChargerService, logger *zap.Logger) *ChargerHandler {
	return &ChargerHandler{
		chargerService: chargerService,
		logger:         logger,
	}
}

// List godoc
// @Summary List charger models
// @Tags Chargers
// @Produce json
// @Param search query string false "Search by model name"
// @Param brand query string false "Filter by brand" Enums(CHARGECORE, STARCHARGE)
// @Success 200 {array} domain.ChargerDTO
// @Failure 403 {object} domain.APIError
// @Security UserID
// @Router /chargers [get]
func (h *ChargerHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := actor(w, r)
	if !ok {
		return
	}

	filters := &repository.ChargerFilters{Search: r.URL.Query().Get("search")}
	if b := r.URL.Query().Get("brand"); b != "" {
		brand := domain.ChargerBrand(b)
		filters.Brand = &brand
	}

	models, err := h.chargerService.List(r.Context(), user, filters)
	if err != nil {
		respondServiceError(w, h.logger, "list chargers", err)
		return
	}

	respondJSON(w, http.StatusOK, models)
}

// GetByID godoc
// @Summary Get charger model
// @Tags Chargers
// @Produce json
// @Param id path string true "Model ID"
// @Success 200 {object} domain.ChargerDTO
// @Failure 404 {object} domain.APIError
// @Security UserID
// @Router /chargers/{id} [get]
func (h *ChargerHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	user, ok := actor(w, r)
	if !ok {
		return
	}

	model, err := h.chargerService.Get(r.Context(), user, chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, h.logger, "get charger", err)
		return
	}

	respondJSON(w, http.StatusOK, model)
}

// Create godoc
// @Summary Create charger model
// @Description Administrators only. Blank features are dropped.
// @Tags Chargers
// @Accept json
// @Produce json
// @Param request body domain.ChargerRequest true "Model"
// @Success 201 {object} domain.ChargerDTO
// @Failure 400 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Security UserID
// @Router /chargers [post]
func (h *ChargerHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := actor(w, r)
	if !ok {
		return
	}

	var req domain.ChargerRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	model, err := h.chargerService.Create(r.Context(), user, &req)
	if err != nil {
		respondServiceError(w, h.logger, "create charger", err)
		return
	}

	w.Header().Set("Location", "/api/v1/chargers/"+model.ID)
	respondJSON(w, http.StatusCreated, model)
}

// Update godoc
// @Summary Update charger model
// @Tags Chargers
// @Accept json
// @Produce json
// @Param id path string true "Model ID"
// @Param request body domain.ChargerRequest true "Model"
// @Success 200 {object} domain.ChargerDTO
// @Failure 400 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security UserID
// @Router /chargers/{id} [put]
func (h *ChargerHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := actor(w, r)
	if !ok {
		return
	}

	var req domain.ChargerRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	model, err := h.chargerService.Update(r.Context(), user, chi.URLParam(r, "id"), &req)
	if err != nil {
		respondServiceError(w, h.logger, "update charger", err)
		return
	}

	respondJSON(w, http.StatusOK, model)
}

// Delete godoc
// @Summary Delete charger model
// @Tags Chargers
// @Param id path string true "Model ID"
// @Param confirm query bool false "Confirm the deletion"
// @Success 204
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 428 {object} domain.APIError
// @Security UserID
// @Router /chargers/{id} [delete]
func (h *ChargerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := actor(w, r)
	if !ok {
		return
	}

	deleted, err := h.chargerService.Delete(r.Context(), user, chi.URLParam(r, "id"), confirmed(r))
	if err != nil {
		respondServiceError(w, h.logger, "delete charger", err)
		return
	}
	if !deleted {
		respondNotConfirmed(w)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
