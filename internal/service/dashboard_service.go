package service

import (
	"context"

	"github.com/evcrm/charger-crm/internal/appstate"
	"github.com/evcrm/charger-crm/internal/domain"
	"github.com/evcrm/charger-crm/internal/mapper"
	"github.com/evcrm/charger-crm/internal/policy"
	"go.uber.org/zap"
)

// recentCustomersLimit is how many of the newest customers the dashboard lists
const recentCustomersLimit = 5

// DashboardService builds read-only projections for charts and maps
type DashboardService struct {
	state  *appstate.State
	logger *zap.Logger
}

func NewDashboardService(state *appstate.State, logger *zap.Logger) *DashboardService {
	return &DashboardService{
		state:  state,
		logger: logger,
	}
}

// Metrics summarizes the customers actor can see on the dashboard
func (s *DashboardService) Metrics(ctx context.Context, actor *domain.User) (*domain.DashboardMetricsDTO, error) {
	if err := requireView(actor, policy.ViewDashboard); err != nil {
		return nil, err
	}

	customers := visibleCustomers(actor, policy.ViewDashboard, s.state.Customers.List(nil))

	byStatus := make(map[domain.ProjectStatus]int)
	byType := make(map[domain.ChargerType]int)
	for i := range customers {
		byStatus[customers[i].Status]++
		byType[customers[i].ChargerType]++
	}

	statusCounts := make([]domain.StatusCountDTO, 0, len(domain.AllProjectStatuses()))
	for _, st := range domain.AllProjectStatuses() {
		statusCounts = append(statusCounts, domain.StatusCountDTO{
			Status: st,
			Label:  st.Label(),
			Count:  byStatus[st],
		})
	}

	typeCounts := make([]domain.ChargerTypeCountDTO, 0, len(domain.AllChargerTypes()))
	for _, ct := range domain.AllChargerTypes() {
		typeCounts = append(typeCounts, domain.ChargerTypeCountDTO{
			ChargerType: ct,
			Label:       ct.Label(),
			Count:       byType[ct],
		})
	}

	recent := customers
	if len(recent) > recentCustomersLimit {
		recent = recent[:recentCustomersLimit]
	}

	return &domain.DashboardMetricsDTO{
		TotalCustomers:     len(customers),
		Installing:         byStatus[domain.StatusInstalling],
		Completed:          byStatus[domain.StatusCompleted],
		SevenKWDemand:      byType[domain.ChargerKW7],
		StatusCounts:       statusCounts,
		ChargerTypeCounts:  typeCounts,
		RecentCustomers:    mapper.ToCustomerDTOs(recent),
		CatalogModelsCount: len(s.state.Chargers.All()),
	}, nil
}

// MapPins projects the customers actor can see for map widgets
func (s *DashboardService) MapPins(ctx context.Context, actor *domain.User) ([]domain.MapPinDTO, error) {
	if err := requireView(actor, policy.ViewDashboard); err != nil {
		return nil, err
	}

	customers := visibleCustomers(actor, policy.ViewDashboard, s.state.Customers.List(nil))
	pins := make([]domain.MapPinDTO, len(customers))
	for i := range customers {
		pins[i] = mapper.ToMapPinDTO(&customers[i])
	}
	return pins, nil
}
