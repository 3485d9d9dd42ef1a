package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/taqi-m/unique-plant-sync/internal/adapter"
	"github.com/taqi-m/unique-plant-sync/internal/config"
	"github.com/taqi-m/unique-plant-sync/internal/logger"
	"github.com/taqi-m/unique-plant-sync/internal/service"
	"github.com/taqi-m/unique-plant-sync/internal/store"
	"github.com/taqi-m/unique-plant-sync/internal/workers"
	"github.com/taqi-m/unique-plant-sync/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	log := logger.NewLogger("unique-plant-syncd")
	cfg, err := config.GetConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}

	log.Debug().Any("config", cfg).Msg("received configs")

	storages, err := store.NewStorages(cfg.Storage, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating storages")
	}

	remote := adapter.NewHTTPDocumentStore(adapter.HTTPClientConfig{
		BaseURL: cfg.Remote.BaseURL,
		Timeout: cfg.Remote.RequestTimeout,
	})
	netmon := adapter.NewNetworkMonitor(remote, cfg.Sync.ProbeInterval, log)

	services := service.NewServices(storages, remote, netmon, service.CoordinatorConfig{
		PendingScanInterval: cfg.Sync.PendingScanInterval,
		DebounceDelay:       cfg.Sync.DebounceDelay,
	}, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// A token handed to the daemon via the environment replaces whatever
	// session was stored by a previous run.
	if token := os.Getenv("SYNC_SESSION_TOKEN"); token != "" {
		if err = service.StoreSession(ctx, storages.Preferences, remote, token); err != nil {
			log.Fatal().Err(err).Msg("error storing session token")
		}
	}

	userID := service.RestoreSession(ctx, storages.Preferences, remote, log)
	if userID == "" {
		log.Warn().Msg("no usable session stored, sync will idle until one is provided")
	} else {
		log.Info().Str("user_id", userID).Msg("session restored")
	}

	services.Coordinator.Initialize(ctx)
	services.Coordinator.TriggerSync(models.SyncTypeAll)

	job := workers.NewSyncJob(services.Coordinator)
	job.Start(ctx, cfg.Sync.FullSyncInterval)
	defer job.Stop()

	statusCh, unsubscribe := services.Coordinator.SyncStatus()
	defer unsubscribe()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("shutting down")
			return
		case st := <-statusCh:
			log.Info().
				Bool("online", st.IsOnline).
				Bool("syncing", st.IsSyncing).
				Str("last_error", st.LastError).
				Time("last_sync", st.LastSyncTime).
				Msg("sync status")
		}
	}
}

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}
	if buildDate == "" {
		buildDate = "N/A"
	}
	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}
