package store

import "errors"

// Sentinel errors returned by repository methods to signal well-known failure
// conditions. Callers should use [errors.Is] to match against these values.
var (
	// ErrRecordNotFound is returned when a query targets a record
	// (identified by local_id or remote_id) that does not exist in the
	// database.
	ErrRecordNotFound = errors.New("record was not found")

	// ErrRecordNotSaved is returned when an INSERT or UPDATE completes
	// without error but the number of affected rows is zero, indicating
	// that no data was actually persisted.
	ErrRecordNotSaved = errors.New("record was not saved")

	// ErrDuplicateLocalID is returned when an INSERT violates the unique
	// constraint on local_id. Local ids are assigned once at creation and
	// must never collide.
	ErrDuplicateLocalID = errors.New("record local id already exists")

	// ErrRemoteIDConflict is returned when a caller attempts to reassign a
	// non-empty remote_id to a different value. Remote ids are write-once.
	ErrRemoteIDConflict = errors.New("record remote id is already assigned")

	// ErrPreferenceNotFound is returned by the preference repository when
	// a key has no stored value and the caller asked for a hard lookup.
	ErrPreferenceNotFound = errors.New("preference was not found")
)
