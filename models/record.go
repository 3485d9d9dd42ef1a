package models

import "encoding/json"

// Record is the sync envelope shared by every entity type. The engine
// reads and writes only these fields; entity-specific data travels in
// the opaque Fields blob.
//
// Identity rules:
//   - LocalID is assigned once at creation, client-side, and never
//     changes for the record's lifetime.
//   - RemoteID is empty until the first successful upload and is
//     write-once after that.
//   - ParentRemoteID mirrors the referenced parent's RemoteID; it is
//     populated at upload time and consumed at download time to resolve
//     the foreign key on the receiving device.
type Record struct {
	ID     int64
	Kind   SyncType
	UserID string

	LocalID  string
	RemoteID string

	ParentKind     SyncType
	ParentLocalID  string
	ParentRemoteID string

	Fields json.RawMessage

	IsDeleted bool
	IsSynced  bool
	NeedsSync bool

	CreatedAt    int64 // millisecond epoch
	UpdatedAt    int64
	LastSyncedAt int64
}

// HasParent reports whether the record carries a foreign-key reference
// to another record.
func (r *Record) HasParent() bool {
	return r.ParentLocalID != ""
}

// MarkDirty records a local mutation: the dirty flag and the update
// timestamp move together so the upload path's candidate selection
// stays consistent with the mutation that produced it.
func (r *Record) MarkDirty(now int64) {
	r.NeedsSync = true
	r.IsSynced = false
	r.UpdatedAt = now
}

// Tombstone soft-deletes the record. The row is kept until the
// tombstone has been propagated; physical removal is a separate,
// later concern.
func (r *Record) Tombstone(now int64) {
	r.IsDeleted = true
	r.MarkDirty(now)
}

// Document builds the wire payload for a remote upsert. ParentRemoteID
// must already be resolved by the caller.
func (r *Record) Document() Document {
	return Document{
		LocalID:        r.LocalID,
		RemoteID:       r.RemoteID,
		UserID:         r.UserID,
		ParentKind:     r.ParentKind.Collection(),
		ParentRemoteID: r.ParentRemoteID,
		Fields:         r.Fields,
		Deleted:        r.IsDeleted,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}
