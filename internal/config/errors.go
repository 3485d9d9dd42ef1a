package config

import "errors"

var (
	// ErrInvalidStorageConfigs is returned when the local database path is
	// missing from the merged configuration.
	ErrInvalidStorageConfigs = errors.New("invalid storage configs: local database path is required")

	// ErrInvalidRemoteConfigs is returned when the remote document-store
	// endpoint settings are incomplete.
	ErrInvalidRemoteConfigs = errors.New("invalid remote configs: base url and request timeout are required")

	// ErrInvalidSyncConfigs is returned when one of the sync loop intervals
	// is zero or negative.
	ErrInvalidSyncConfigs = errors.New("invalid sync configs: intervals must be positive")
)
