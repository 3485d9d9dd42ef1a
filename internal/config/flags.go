package config

import (
	"flag"
	"time"
)

// ParseFlags parses all configuration flags.
//
// Flags:
//
//	-d local database path (SQLite file)
//	-r remote document store base URL
//	-a dev server listen address in format [host]:[port]
//	-c/-config json file path with configs
//	-request-timeout outbound request timeout (e.g., "30s", "1m")
//	-probe-interval network probe interval (e.g., "30s")
//	-pending-scan-interval unsynced-count scan interval
//	-debounce-delay delay before the auto full-sync trigger
//	-full-sync-interval periodic full-sync interval (e.g., "5m")
func ParseFlags() *StructuredConfig {
	var databaseDSN string
	var remoteBaseURL string
	var serverAddress string
	var jsonConfigPath string
	var requestTimeout time.Duration
	var probeInterval time.Duration
	var pendingScanInterval time.Duration
	var debounceDelay time.Duration
	var fullSyncInterval time.Duration

	flag.StringVar(&databaseDSN, "d", "", "Local database path")
	flag.StringVar(&remoteBaseURL, "r", "", "Remote document store base URL")
	flag.StringVar(&serverAddress, "a", "", "Dev server address host:port")
	flag.StringVar(&jsonConfigPath, "c", "", "JSON config file path")
	flag.StringVar(&jsonConfigPath, "config", "", "JSON config file path (alias)")
	flag.DurationVar(&requestTimeout, "request-timeout", 0, "Request timeout (e.g., 30s, 1m)")
	flag.DurationVar(&probeInterval, "probe-interval", 0, "Network probe interval (e.g., 30s)")
	flag.DurationVar(&pendingScanInterval, "pending-scan-interval", 0, "Unsynced-count scan interval")
	flag.DurationVar(&debounceDelay, "debounce-delay", 0, "Delay before auto full-sync trigger")
	flag.DurationVar(&fullSyncInterval, "full-sync-interval", 0, "Periodic full-sync interval (e.g., 5m)")

	flag.Parse()

	return &StructuredConfig{
		Storage: Storage{
			DB: DB{
				DSN: databaseDSN,
			},
		},
		Remote: Remote{
			BaseURL:        remoteBaseURL,
			RequestTimeout: requestTimeout,
		},
		Sync: Sync{
			ProbeInterval:       probeInterval,
			PendingScanInterval: pendingScanInterval,
			DebounceDelay:       debounceDelay,
			FullSyncInterval:    fullSyncInterval,
		},
		Server: Server{
			HTTPAddress: serverAddress,
		},
		JSONFilePath: jsonConfigPath,
	}
}
