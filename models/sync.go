package models

import (
	"fmt"
	"time"
)

// SyncType identifies one synchronizable entity type, or All for a full
// sync cycle covering every concrete type as one unit.
type SyncType int

const (
	SyncTypeUnknown SyncType = iota
	SyncTypeCategories
	SyncTypePersons
	SyncTypeExpenses
	SyncTypeIncomes
	SyncTypeAll
)

// ConcreteSyncTypes lists every entity-bearing sync type in bootstrap
// order: parents first, then the types that reference them.
var ConcreteSyncTypes = []SyncType{
	SyncTypeCategories,
	SyncTypePersons,
	SyncTypeExpenses,
	SyncTypeIncomes,
}

func (t SyncType) String() string {
	switch t {
	case SyncTypeCategories:
		return "categories"
	case SyncTypePersons:
		return "persons"
	case SyncTypeExpenses:
		return "expenses"
	case SyncTypeIncomes:
		return "incomes"
	case SyncTypeAll:
		return "all"
	default:
		return "unknown"
	}
}

// Collection returns the remote document-store collection name for a
// concrete sync type. All and Unknown have no collection.
func (t SyncType) Collection() string {
	switch t {
	case SyncTypeCategories, SyncTypePersons, SyncTypeExpenses, SyncTypeIncomes:
		return t.String()
	default:
		return ""
	}
}

// ParseSyncType is the inverse of String.
func ParseSyncType(s string) (SyncType, error) {
	switch s {
	case "categories":
		return SyncTypeCategories, nil
	case "persons":
		return SyncTypePersons, nil
	case "expenses":
		return SyncTypeExpenses, nil
	case "incomes":
		return SyncTypeIncomes, nil
	case "all":
		return SyncTypeAll, nil
	default:
		return SyncTypeUnknown, fmt.Errorf("unknown sync type %q", s)
	}
}

// SyncPriority orders admitted sync types within one cycle. Lower runs
// first.
type SyncPriority int

const (
	PriorityCritical  SyncPriority = 0
	PriorityDependent SyncPriority = 1
	PriorityOptional  SyncPriority = 2
)

func (p SyncPriority) String() string {
	switch p {
	case PriorityCritical:
		return "critical"
	case PriorityDependent:
		return "dependent"
	case PriorityOptional:
		return "optional"
	default:
		return "unknown"
	}
}

// SyncDependency is one row of the static dependency table: a sync
// type, its scheduling priority, and the types that must be initialized
// before it is allowed to sync.
type SyncDependency struct {
	Type         SyncType
	Priority     SyncPriority
	Dependencies []SyncType
}

// SyncStatus is the process-wide observable sync state. It is created
// once with defaults (offline, not syncing, zero pending) and mutated
// exclusively by the coordinator's consumer loop.
type SyncStatus struct {
	IsOnline      bool
	IsSyncing     bool
	PendingCounts map[SyncType]int
	LastSyncTime  time.Time
	LastError     string
}

// Clone returns a deep copy so subscribers never share the pending
// counts map with the single writer.
func (s SyncStatus) Clone() SyncStatus {
	out := s
	if s.PendingCounts != nil {
		out.PendingCounts = make(map[SyncType]int, len(s.PendingCounts))
		for k, v := range s.PendingCounts {
			out.PendingCounts[k] = v
		}
	}
	return out
}

// RecordSyncOutcome classifies what happened to one record during an
// upload pass.
type RecordSyncOutcome int

const (
	// RecordUploaded - the record was written to the remote store and the
	// local row was marked clean.
	RecordUploaded RecordSyncOutcome = iota
	// RecordSkippedParentNotReady - the record references a parent that has
	// no remote id yet; it stays dirty and is retried on a later pass.
	RecordSkippedParentNotReady
	// RecordFailed - the remote write (or the local write-back) failed; the
	// record stays dirty and the batch continues.
	RecordFailed
)

func (o RecordSyncOutcome) String() string {
	switch o {
	case RecordUploaded:
		return "uploaded"
	case RecordSkippedParentNotReady:
		return "skipped_parent_not_ready"
	case RecordFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// RecordSyncResult is the per-record outcome of an upload pass. Upload
// failures are surfaced here instead of aborting the batch.
type RecordSyncResult struct {
	LocalID string
	Outcome RecordSyncOutcome
	Err     error
}
