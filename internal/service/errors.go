package service

import "errors"

var (
	// ErrNetworkUnavailable is reported when a sync cycle is requested
	// while the device is offline. The request is dropped; the network
	// observer re-triggers a full sync on reconnection.
	ErrNetworkUnavailable = errors.New("network unavailable")

	// ErrDependencyUnmet is reported when every requested type was
	// filtered out by the dependency check. The request is dropped; a
	// future explicit trigger must follow once the dependency completes.
	ErrDependencyUnmet = errors.New("sync dependency constraints not met")

	// ErrNoCurrentUser is returned when an operation requires a signed-in
	// user and none exists.
	ErrNoCurrentUser = errors.New("no current user")
)
