// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Muhammad Taqi

package config

// validate checks that the final merged [StructuredConfig] satisfies all
// application invariants before it is used at startup.
func (cfg *StructuredConfig) validate() error {
	if cfg.Storage.DB.DSN == "" {
		return ErrInvalidStorageConfigs
	}

	if cfg.Remote.BaseURL == "" || cfg.Remote.RequestTimeout <= 0 {
		return ErrInvalidRemoteConfigs
	}

	if cfg.Sync.ProbeInterval <= 0 || cfg.Sync.PendingScanInterval <= 0 || cfg.Sync.DebounceDelay <= 0 || cfg.Sync.FullSyncInterval <= 0 {
		return ErrInvalidSyncConfigs
	}

	return nil
}
