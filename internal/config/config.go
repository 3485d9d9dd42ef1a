// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Muhammad Taqi

package config

import (
	"time"
)

// StructuredConfig is the top-level configuration container for the sync
// engine. It aggregates all sub-configurations and is populated by
// merging values from environment variables, command-line flags, and an
// optional JSON file.
//
// Struct tags:
//   - envPrefix — prefix applied to all nested env tag lookups (caarlos0/env).
//   - env       — direct environment variable name for scalar fields.
type StructuredConfig struct {
	// App holds application-level settings such as the version string.
	App App `envPrefix:"APP_"`

	// Storage holds the local SQLite database settings.
	Storage Storage `envPrefix:"STORAGE_"`

	// Remote holds the remote document-store endpoint settings.
	Remote Remote `envPrefix:"REMOTE_"`

	// Sync holds the background sync loop intervals.
	Sync Sync `envPrefix:"SYNC_"`

	// Server holds the address the dev document-store server listens on.
	Server Server `envPrefix:"SERVER_"`

	// JSONFilePath is the optional path to a JSON configuration file.
	// When non-empty, the file is parsed and merged on top of the values
	// already loaded from environment variables and flags.
	// Populated via the CONFIG environment variable or the -c / -config flag.
	JSONFilePath string `env:"CONFIG"`
}

// App holds application-level configuration values.
type App struct {
	// Version is the semantic version string of the running application.
	// Env: APP_VERSION
	Version string `env:"VERSION"`
}

// Storage groups the configuration for the local persistence backend.
type Storage struct {
	// DB holds the local database connection settings.
	DB DB `envPrefix:"DB_"`
}

// DB contains local database connection settings.
type DB struct {
	// DSN is the SQLite file path (or ":memory:" for tests).
	// Env: STORAGE_DB_DSN
	DSN string `env:"DSN"`
}

// Remote holds the remote document-store endpoint settings used by the
// HTTP adapter and the reachability probe.
type Remote struct {
	// BaseURL is the document-store base URL (e.g. "http://localhost:8080").
	// Env: REMOTE_BASE_URL
	BaseURL string `env:"BASE_URL"`

	// RequestTimeout is the per-request timeout for outbound calls.
	// Env: REMOTE_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
}

// Sync holds the timing knobs of the background sync loops.
type Sync struct {
	// ProbeInterval is how often the network monitor probes the remote
	// health endpoint.
	// Env: SYNC_PROBE_INTERVAL
	ProbeInterval time.Duration `env:"PROBE_INTERVAL"`

	// PendingScanInterval is how often the unsynced-data observer counts
	// dirty records.
	// Env: SYNC_PENDING_SCAN_INTERVAL
	PendingScanInterval time.Duration `env:"PENDING_SCAN_INTERVAL"`

	// DebounceDelay is the delay between a rising edge in the unsynced
	// count and the automatic full-sync trigger.
	// Env: SYNC_DEBOUNCE_DELAY
	DebounceDelay time.Duration `env:"DEBOUNCE_DELAY"`

	// FullSyncInterval is how often the background job requests a full
	// sync regardless of local activity.
	// Env: SYNC_FULL_SYNC_INTERVAL
	FullSyncInterval time.Duration `env:"FULL_SYNC_INTERVAL"`
}

// Server holds the dev document-store server settings.
type Server struct {
	// HTTPAddress is the listen address in host:port form.
	// Env: SERVER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`
}

// GetConfig builds the final configuration by merging, in order of
// increasing precedence: defaults, environment variables, command-line
// flags, and the optional JSON file, then validating the result.
func GetConfig() (*StructuredConfig, error) {
	return newConfigBuilder().
		withDefaults().
		withEnv().
		withFlags().
		withJSON().
		build()
}
