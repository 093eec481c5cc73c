package handler

import (
	"net/http"

	"github.com/evcrm/charger-crm/internal/domain"
	"github.com/evcrm/charger-crm/internal/policy"
	"github.com/evcrm/charger-crm/internal/repository"
	"github.com/evcrm/charger-crm/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type CustomerHandler struct {
	customerService *service.CustomerService
	logger          *zap.Logger
}

func NewCustomerHandler(customerService *service.CustomerService, logger *zap.Logger) *CustomerHandler {
	return &CustomerHandler{
		customerService: customerService,
		logger:          logger,
	}
}

// List godoc
// @Summary List customers
// @Description Customers visible to the acting user, newest first
// @Tags Customers
// @Produce json
// @Param search query string false "Search by name, phone or address"
// @Param type query string false "Filter by customer type" Enums(INDIVIDUAL, BUSINESS)
// @Param status query string false "Filter by project status" Enums(NEW, SURVEYED, PROPOSAL_SENT, CONTRACTED, INSTALLING, COMPLETED)
// @Success 200 {array} domain.CustomerDTO
// @Failure 401 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Security UserID
// @Router /customers [get]
func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, policy.ViewCustomers)
}

// Consultations godoc
// @Summary List consultation customers
// @Description Customers the acting user may prepare proposals for (assigned or created by them)
// @Tags Consultations
// @Produce json
// @Param search query string false "Search by name, phone or address"
// @Success 200 {array} domain.CustomerDTO
// @Failure 401 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Security UserID
// @Router /consultations [get]
func (h *CustomerHandler) Consultations(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, policy.ViewProposals)
}

func (h *CustomerHandler) list(w http.ResponseWriter, r *http.Request, view policy.View) {
	user, ok := actor(w, r)
	if !ok {
		return
	}

	filters := &repository.CustomerFilters{
		Search: r.URL.Query().Get("search"),
	}
	if t := r.URL.Query().Get("type"); t != "" {
		ct := domain.CustomerType(t)
		filters.Type = &ct
	}
	if s := r.URL.Query().Get("status"); s != "" {
		st := domain.ProjectStatus(s)
		filters.Status = &st
	}

	customers, err := h.customerService.List(r.Context(), user, view, filters)
	if err != nil {
		respondServiceError(w, h.logger, "list customers", err)
		return
	}

	respondJSON(w, http.StatusOK, customers)
}

// GetByID godoc
// @Summary Get customer by ID
// @Tags Customers
// @Produce json
// @Param id path string true "Customer ID"
// @Success 200 {object} domain.CustomerDTO
// @Failure 401 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security UserID
// @Router /customers/{id} [get]
func (h *CustomerHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	user, ok := actor(w, r)
	if !ok {
		return
	}

	customer, err := h.customerService.Get(r.Context(), user, policy.ViewCustomers, chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, h.logger, "get customer", err)
		return
	}

	respondJSON(w, http.StatusOK, customer)
}

// Create godoc
// @Summary Create customer
// @Description Registers a new opportunity with status NEW. A note becomes the first history entry.
// @Tags Customers
// @Accept json
// @Produce json
// @Param request body domain.CreateCustomerRequest true "Customer data"
// @Success 201 {object} domain.CustomerDTO
// @Failure 400 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Security UserID
// @Router /customers [post]
func (h *CustomerHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := actor(w, r)
	if !ok {
		return
	}

	var req domain.CreateCustomerRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	customer, err := h.customerService.Create(r.Context(), user, &req)
	if err != nil {
		respondServiceError(w, h.logger, "create customer", err)
		return
	}

	w.Header().Set("Location", "/api/v1/customers/"+customer.ID)
	respondJSON(w, http.StatusCreated, customer)
}

// Update godoc
// @Summary Update customer
// @Description Patches customer fields. Status changes go through the progress endpoints.
// @Tags Customers
// @Accept json
// @Produce json
// @Param id path string true "Customer ID"
// @Param request body domain.UpdateCustomerRequest true "Fields to change"
// @Success 200 {object} domain.CustomerDTO
// @Failure 400 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security UserID
// @Router /customers/{id} [put]
func (h *CustomerHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := actor(w, r)
	if !ok {
		return
	}

	var req domain.UpdateCustomerRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	customer, err := h.customerService.Update(r.Context(), user, chi.URLParam(r, "id"), &req)
	if err != nil {
		respondServiceError(w, h.logger, "update customer", err)
		return
	}

	respondJSON(w, http.StatusOK, customer)
}

// Delete godoc
// @Summary Delete customer
// @Description Administrators only. Nothing is removed unless confirm=true.
// @Tags Customers
// @Param id path string true "Customer ID"
// @Param confirm query bool false "Confirm the deletion"
// @Success 204
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 428 {object} domain.APIError
// @Security UserID
// @Router /customers/{id} [delete]
func (h *CustomerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := actor(w, r)
	if !ok {
		return
	}

	deleted, err := h.customerService.Delete(r.Context(), user, chi.URLParam(r, "id"), confirmed(r))
	if err != nil {
		respondServiceError(w, h.logger, "delete customer", err)
		return
	}
	if !deleted {
		respondNotConfirmed(w)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
