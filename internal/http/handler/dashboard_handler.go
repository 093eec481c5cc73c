package handler

import (
	"net/http"

	"github.com/evcrm/charger-crm/internal/service"
	"go.uber.org/zap"
)

type DashboardHandler struct {
	dashboardService *service.DashboardService
	logger           *zap.Logger
}

func NewDashboardHandler(dashboardService *service.DashboardService, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
		logger:           logger,
	}
}

// @Summary Get dashboard metrics
// @Description Counts over the customers visible to the acting user.
// @Description
// @Description - `statusCounts`: one entry per project status in pipeline order, zeros included
// @Description - `chargerTypeCounts`: one entry per charger power class
// @Description - `recentCustomers`: the five newest customers
// @Description - `catalogModelsCount`: size of the charger catalog
// @Tags Dashboard
// @Produce json
// @Success 200 {object} domain.DashboardMetricsDTO
// @Failure 403 {object} domain.APIError
// @Security UserID
// @Router /dashboard/metrics [get]
func (h *DashboardHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	user, ok := actor(w, r)
	if !ok {
		return
	}

	metrics, err := h.dashboardService.Metrics(r.Context(), user)
	if err != nil {
		respondServiceError(w, h.logger, "get dashboard metrics", err)
		return
	}

	respondJSON(w, http.StatusOK, metrics)
}

// @Summary Customer map pins
// @Tags Dashboard
// @Produce json
// @Success 200 {array} domain.MapPinDTO
// @Failure 403 {object} domain.APIError
// @Security UserID
// @Router /dashboard/map [get]
func (h *DashboardHandler) GetMapPins(w http.ResponseWriter, r *http.Request) {
	user, ok := actor(w, r)
	if !ok {
		return
	}

	pins, err := h.dashboardService.MapPins(r.Context(), user)
	if err != nil {
		respondServiceError(w, h.logger, "get map pins", err)
		return
	}

	respondJSON(w, http.StatusOK, pins)
}
