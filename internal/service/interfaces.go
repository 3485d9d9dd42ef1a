package service

import (
	"context"

	"github.com/taqi-m/unique-plant-sync/models"
)

// DependencyManager gates which sync types are allowed to run, based on
// the static dependency graph and durable per-(type,user) initialization
// flags. It is the sole check consulted before the coordinator admits
// work; a premature "yes" would let child entities sync against an empty
// parent dataset.
type DependencyManager interface {
	// CanSync reports whether the type's declared dependencies are all
	// initialized for the user. Types without dependencies always may.
	CanSync(ctx context.Context, t models.SyncType, userID string) (bool, error)

	// IsInitialized reports whether the type completed its first full
	// sync for the user. For Dependent types the answer is derived: the
	// AND of their dependencies' flags. All has its own durable flag
	// meaning "initial full sync completed".
	IsInitialized(ctx context.Context, t models.SyncType, userID string) (bool, error)

	// MarkAsInitialized durably sets the type's flag. Marking a Dependent
	// type whose sibling Dependent type is already marked cascades to set
	// the All flag.
	MarkAsInitialized(ctx context.Context, t models.SyncType, userID string) error

	// GetPendingInitializations returns the types not yet initialized, in
	// the required bootstrap order: Categories, Persons, Expenses, Incomes.
	GetPendingInitializations(ctx context.Context, userID string) ([]models.SyncType, error)

	// ResetInitialization clears every flag for the user. Used on logout
	// or account switch.
	ResetInitialization(ctx context.Context, userID string) error
}

// EntitySyncManager uploads locally dirty records and downloads remotely
// changed records for one entity type. Both operations are idempotent
// and safe to re-run from scratch after a partial prior failure.
type EntitySyncManager interface {
	// Kind identifies the entity type this manager serves.
	Kind() models.SyncType

	// UploadLocal pushes every dirty record of the manager's type to the
	// remote store. Records whose parent has no remote id yet are skipped
	// for this pass, and a failure on one record does not stop the batch;
	// both outcomes are reported in the per-record results. A non-nil
	// error means the batch itself could not run (e.g. the local query
	// failed).
	UploadLocal(ctx context.Context, userID string) ([]models.RecordSyncResult, error)

	// DownloadRemote pulls documents changed since the per-user watermark
	// and reconciles them into the local store, parentless documents
	// first. The watermark advances only after a successful full pass.
	DownloadRemote(ctx context.Context, userID string) error
}

// SyncCoordinator owns the pending-sync queue and the single consumer
// loop that executes sync cycles.
type SyncCoordinator interface {
	// Initialize starts the coordinator's long-lived loops (queue
	// consumer, network observer, unsynced-count observer) bound to the
	// given lifetime context. Repeat calls are no-ops.
	Initialize(ctx context.Context)

	// TriggerSync requests a sync of the given type. Non-blocking and
	// safe to call concurrently; the request is dropped when no user is
	// signed in or the type's dependencies are unmet.
	TriggerSync(t models.SyncType)

	// SyncStatus returns the observable status stream, replaying the
	// latest value to each new subscriber. The returned cancel function
	// releases the subscription.
	SyncStatus() (<-chan models.SyncStatus, func())
}

// UserProvider resolves the currently signed-in user.
type UserProvider interface {
	// CurrentUserID returns the signed-in user's id, or an empty string
	// when no session exists.
	CurrentUserID(ctx context.Context) string
}

// IDGenerator produces new client-side identifiers.
type IDGenerator interface {
	Generate() string
}
