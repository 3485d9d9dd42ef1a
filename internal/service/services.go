package service

import (
	"github.com/taqi-m/unique-plant-sync/internal/adapter"
	"github.com/taqi-m/unique-plant-sync/internal/logger"
	"github.com/taqi-m/unique-plant-sync/internal/store"
	"github.com/taqi-m/unique-plant-sync/internal/utils"
	"github.com/taqi-m/unique-plant-sync/models"
)

type Services struct {
	Users       UserProvider
	Dependency  DependencyManager
	Entities    map[models.SyncType]EntitySyncManager
	Coordinator SyncCoordinator
}

func NewServices(storages *store.Storages, remote adapter.DocumentStore, netmon adapter.NetworkMonitor, cfg CoordinatorConfig, log *logger.Logger) *Services {
	users := NewSessionUserProvider(storages.Preferences, log)
	deps := NewDependencyManager(storages.Preferences)
	ids := utils.NewUUIDGenerator()

	entities := make(map[models.SyncType]EntitySyncManager, len(models.ConcreteSyncTypes))
	managers := make([]EntitySyncManager, 0, len(models.ConcreteSyncTypes))
	for _, kind := range models.ConcreteSyncTypes {
		mgr := NewEntitySyncManager(kind, storages.Records, remote, storages.Preferences, ids, log)
		entities[kind] = mgr
		managers = append(managers, mgr)
	}

	return &Services{
		Users:      users,
		Dependency: deps,
		Entities:   entities,
		Coordinator: NewSyncCoordinator(
			deps,
			managers,
			storages.Records,
			storages.Preferences,
			netmon,
			users,
			cfg,
			log,
		),
	}
}
