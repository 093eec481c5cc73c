package handler

import (
	"net/http"

	"github.com/evcrm/charger-crm/internal/domain"
	"github.com/evcrm/charger-crm/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ProposalHandler serves technical proposals and installation advice
type ProposalHandler struct {
	proposalService *service.ProposalService
	advisorService  *service.AdvisorService
	logger          *zap.Logger
}

func NewProposalHandler(proposalService *service.ProposalService, advisorService *service.AdvisorService, logger *zap.Logger) *ProposalHandler {
	return &ProposalHandler{
		proposalService: proposalService,
		advisorService:  advisorService,
		logger:          logger,
	}
}

// List godoc
// @Summary List proposals
// @Tags Consultations
// @Produce json
// @Param id path string true "Customer ID"
// @Success 200 {array} domain.ProposalDTO
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security UserID
// @Router /customers/{id}/proposals [get]
func (h *ProposalHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := actor(w, r)
	if !ok {
		return
	}

	proposals, err := h.proposalService.List(r.Context(), user, chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, h.logger, "list proposals", err)
		return
	}

	respondJSON(w, http.StatusOK, proposals)
}

// Create godoc
// @Summary Create proposal
// @Description Adds a proposal in front of the existing ones. Negative amounts count as 0.
// @Tags Consultations
// @Accept json
// @Produce json
// @Param id path string true "Customer ID"
// @Param request body domain.ProposalRequest true "Proposal"
// @Success 201 {object} domain.ProposalDTO
// @Failure 400 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security UserID
// @Router /customers/{id}/proposals [post]
func (h *ProposalHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := actor(w, r)
	if !ok {
		return
	}

	var req domain.ProposalRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	proposal, err := h.proposalService.Create(r.Context(), user, chi.URLParam(r, "id"), &req)
	if err != nil {
		respondServiceError(w, h.logger, "create proposal", err)
		return
	}

	respondJSON(w, http.StatusCreated, proposal)
}

// Update godoc
// @Summary Update proposal
// @Tags Consultations
// @Accept json
// @Produce json
// @Param id path string true "Customer ID"
// @Param proposalId path string true "Proposal ID"
// @Param request body domain.ProposalRequest true "Proposal"
// @Success 200 {object} domain.ProposalDTO
// @Failure 400 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security UserID
// @Router /customers/{id}/proposals/{proposalId} [put]
func (h *ProposalHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := actor(w, r)
	if !ok {
		return
	}

	var req domain.ProposalRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	proposal, err := h.proposalService.Update(r.Context(), user, chi.URLParam(r, "id"), chi.URLParam(r, "proposalId"), &req)
	if err != nil {
		respondServiceError(w, h.logger, "update proposal", err)
		return
	}

	respondJSON(w, http.StatusOK, proposal)
}

// Delete godoc
// @Summary Delete proposal
// @Tags Consultations
// @Param id path string true "Customer ID"
// @Param proposalId path string true "Proposal ID"
// @Param confirm query bool false "Confirm the deletion"
// @Success 204
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 428 {object} domain.APIError
// @Security UserID
// @Router /customers/{id}/proposals/{proposalId} [delete]
func (h *ProposalHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := actor(w, r)
	if !ok {
		return
	}

	deleted, err := h.proposalService.Delete(r.Context(), user, chi.URLParam(r, "id"), chi.URLParam(r, "proposalId"), confirmed(r))
	if err != nil {
		respondServiceError(w, h.logger, "delete proposal", err)
		return
	}
	if !deleted {
		respondNotConfirmed(w)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Advise godoc
// @Summary Installation advice
// @Description Asks the advisor for installation guidance. When it fails the response has available=false.
// @Tags Consultations
// @Produce json
// @Param id path string true "Customer ID"
// @Success 200 {object} domain.AdviceDTO
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security UserID
// @Router /customers/{id}/advice [post]
func (h *ProposalHandler) Advise(w http.ResponseWriter, r *http.Request) {
	user, ok := actor(w, r)
	if !ok {
		return
	}

	advice, err := h.advisorService.Advise(r.Context(), user, chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, h.logger, "request advice", err)
		return
	}

	respondJSON(w, http.StatusOK, advice)
}
