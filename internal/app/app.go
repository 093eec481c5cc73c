// Package app assembles the application state and services shared by the API server and crmctl.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/evcrm/charger-crm/internal/advisor"
	"github.com/evcrm/charger-crm/internal/appstate"
	"github.com/evcrm/charger-crm/internal/config"
	"github.com/evcrm/charger-crm/internal/database"
	"github.com/evcrm/charger-crm/internal/domain"
	"github.com/evcrm/charger-crm/internal/geo"
	"github.com/evcrm/charger-crm/internal/metrics"
	"github.com/evcrm/charger-crm/internal/repository"
	"github.com/evcrm/charger-crm/internal/service"
	"github.com/evcrm/charger-crm/internal/storage"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Services are the command handlers of the CRM
type Services struct {
	Customers *service.CustomerService
	Lifecycle *service.LifecycleService
	Proposals *service.ProposalService
	Advisor   *service.AdvisorService
	Chargers  *service.ChargerService
	Users     *service.UserService
	Dashboard *service.DashboardService
}

// OpenSnapshotStore returns the store selected by snapshot.store.
// The database handle is non-nil only for the "database" store and must be closed by the caller.
func OpenSnapshotStore(cfg *config.Config, log *zap.Logger) (appstate.SnapshotStore, *gorm.DB, error) {
	switch cfg.Snapshot.Store {
	case "database":
		db, err := database.NewDatabase(&cfg.Database, log)
		if err != nil {
			return nil, nil, err
		}
		if cfg.Database.AutoMigrate {
			if err := database.AutoMigrate(db); err != nil {
				CloseDatabase(db, log)
				return nil, nil, fmt.Errorf("failed to migrate database: %w", err)
			}
		}
		return repository.NewSnapshotRepository(db), db, nil

	case "local", "azure":
		storageCfg := cfg.Storage
		storageCfg.Mode = cfg.Snapshot.Store
		backend, err := storage.NewStorage(&storageCfg, log)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize snapshot storage: %w", err)
		}
		return storage.NewSnapshotStore(backend, cfg.Snapshot.Prefix), nil, nil

	case "memory":
		log.Warn("Snapshot store is in-process memory; state is lost on restart")
		return appstate.NewMemoryStore(), nil, nil
	default:
		return nil, nil, fmt.Errorf("unsupported snapshot store: %s", cfg.Snapshot.Store)
	}
}

// CloseDatabase releases the connection pool
func CloseDatabase(db *gorm.DB, log *zap.Logger) {
	if db == nil {
		return
	}
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Warn("Error closing database", zap.Error(err))
	}
}

// OpenState restores the collections from store, seeding absent ones
func OpenState(ctx context.Context, store appstate.SnapshotStore, m *metrics.Metrics, log *zap.Logger) (*appstate.State, error) {
	state := appstate.New(store, log, appstate.WithMetrics(m))
	if err := state.Open(ctx); err != nil {
		return nil, err
	}
	return state, nil
}

// NewServices builds the services over state
func NewServices(state *appstate.State, cfg *config.Config, m *metrics.Metrics, log *zap.Logger) *Services {
	geocoder := geo.NewScatterGeocoder(
		domain.Location{Lat: cfg.Geocoding.CenterLat, Lng: cfg.Geocoding.CenterLng},
		cfg.Geocoding.Spread,
		time.Now().UnixNano(),
	)

	// a nil *advisor.Client stored in the interface would not compare equal to nil
	var generator service.AdviceGenerator
	if cfg.Advisor.Enabled {
		generator = advisor.NewClient(&cfg.Advisor, log)
	}

	return &Services{
		Customers: service.NewCustomerService(state, geocoder, log),
		Lifecycle: service.NewLifecycleService(state, m, log),
		Proposals: service.NewProposalService(state, log),
		Advisor:   service.NewAdvisorService(state, generator, cfg.Advisor.TimeoutDuration(), m, log),
		Chargers:  service.NewChargerService(state, log),
		Users:     service.NewUserService(state, log),
		Dashboard: service.NewDashboardService(state, log),
	}
}
