// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Muhammad Taqi

// Package adapter provides transport-layer abstractions for talking to
// the remote document store.
//
// The primary abstraction is [DocumentStore], which decouples the sync
// engine from the underlying protocol. The package ships an HTTP/REST
// implementation ([NewHTTPDocumentStore]) plus [NetworkMonitor], a
// reachability observer built on the same endpoint, and an in-memory
// document-store server (devserver.go) used for local development and
// as a test fixture.
//
// Error values defined in errors.go are mapped from HTTP status codes by
// mapHTTPError so that callers can use [errors.Is] for transport-agnostic
// error handling (e.g. [ErrUnauthorized] for 401).
package adapter

import (
	"context"

	"github.com/taqi-m/unique-plant-sync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/adapter_mock.go -package=mock

// DocumentStore defines transport-agnostic communication with the remote
// document store. Implementations are responsible for serialisation,
// authentication header management, and mapping transport-level errors to
// the sentinel values defined in this package.
type DocumentStore interface {
	// SetToken stores the bearer token attached to all subsequent
	// authenticated requests.
	SetToken(token string)

	// Token returns the bearer token currently stored in the adapter, or
	// an empty string if no token has been set yet.
	Token() string

	// UpsertDocument writes the full document payload under the given
	// collection and document id, creating or replacing it.
	UpsertDocument(ctx context.Context, collection, id string, doc models.Document) error

	// QueryUpdatedAfter returns every document in the collection belonging
	// to userID whose updated_at is strictly greater than the timestamp.
	QueryUpdatedAfter(ctx context.Context, collection, userID string, updatedAfter int64) ([]models.Document, error)

	// Ping probes the store's health endpoint. A nil error means the
	// remote side is reachable.
	Ping(ctx context.Context) error
}

// NetworkMonitor is the reachability observable consumed by the sync
// coordinator. IsOnline is safe from any goroutine; StateChanges delivers
// edge-triggered online/offline transitions.
type NetworkMonitor interface {
	// IsOnline reports the last observed reachability state.
	IsOnline() bool

	// StateChanges returns the stream of reachability transitions. Only
	// actual changes are delivered, not every probe.
	StateChanges() <-chan bool

	// Run drives the probe loop until ctx is cancelled.
	Run(ctx context.Context)
}
