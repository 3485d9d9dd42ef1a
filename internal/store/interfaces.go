package store

import (
	"context"

	"github.com/taqi-m/unique-plant-sync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/store_mock.go -package=mock

// RecordRepository is the local transactional record store consumed by the
// sync engine. Every mutation that marks a row dirty bumps updated_at in
// the same statement, so needs_sync is always set atomically with the
// mutation that produced it.
type RecordRepository interface {
	// Insert persists a brand-new record row. It is used both for locally
	// created records (empty remote_id, needs_sync=1) and for rows
	// materialised from downloaded documents (remote_id set, synced=1).
	// Returns ErrDuplicateLocalID if the local id is already taken.
	Insert(ctx context.Context, rec models.Record) error

	// Update overwrites the mutable payload of a locally edited record
	// (fields, deletion flag, parent reference) and marks it dirty with
	// the given timestamp. The row is addressed by local_id; remote_id is
	// never touched.
	Update(ctx context.Context, rec models.Record) error

	// SoftDelete sets the tombstone flag and marks the row dirty. The row
	// stays in the table until the tombstone has been propagated.
	SoftDelete(ctx context.Context, localID string, now int64) error

	// GetDirty returns every record of the given kind and user with
	// needs_sync set, in insertion order. This is the sole candidate
	// selection used by the upload path.
	GetDirty(ctx context.Context, kind models.SyncType, userID string) ([]models.Record, error)

	// GetByLocalID returns the record with the given client-generated id,
	// or ErrRecordNotFound.
	GetByLocalID(ctx context.Context, localID string) (models.Record, error)

	// GetByRemoteID returns the record with the given remote document id,
	// or ErrRecordNotFound. Lookups span all kinds so parent references
	// can be resolved without knowing the parent's entity type.
	GetByRemoteID(ctx context.Context, remoteID string) (models.Record, error)

	// GetAll returns every live (non-tombstoned) record of the given kind
	// and user.
	GetAll(ctx context.Context, kind models.SyncType, userID string) ([]models.Record, error)

	// MarkSynced records a confirmed remote write: remote_id is assigned
	// if still empty (write-once), synced is set, needs_sync is cleared,
	// and last_synced_at is stamped. Returns ErrRemoteIDConflict if a
	// different remote_id is already present.
	MarkSynced(ctx context.Context, localID, remoteID string, syncedAt int64) error

	// ApplyRemote overwrites a row with the remote version after the
	// download path's conflict resolution decided the remote side wins.
	// The row is addressed by local_id; local_id and remote_id themselves
	// are never rewritten.
	ApplyRemote(ctx context.Context, rec models.Record, syncedAt int64) error

	// CountUnsynced returns the number of dirty records of one kind for
	// the given user.
	CountUnsynced(ctx context.Context, kind models.SyncType, userID string) (int, error)

	// HasUnsynced reports whether any record of any kind is dirty for the
	// given user.
	HasUnsynced(ctx context.Context, userID string) (bool, error)
}

// PreferenceRepository is the small durable key-value store backing the
// dependency manager's initialization flags, the coordinator's retry
// counter, the per-type sync watermarks, and the session token.
//
// Missing keys are not an error for the typed getters: they return the
// zero value, which matches how the flags and counters are consumed.
type PreferenceRepository interface {
	GetBool(ctx context.Context, key string) (bool, error)
	SetBool(ctx context.Context, key string, value bool) error

	GetInt64(ctx context.Context, key string) (int64, error)
	SetInt64(ctx context.Context, key string, value int64) error

	GetString(ctx context.Context, key string) (string, error)
	SetString(ctx context.Context, key, value string) error

	// Delete removes a key. Deleting an absent key is a no-op.
	Delete(ctx context.Context, key string) error
}
