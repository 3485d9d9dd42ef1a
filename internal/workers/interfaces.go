// Package workers holds the background jobs that run alongside the sync
// coordinator.
package workers

import (
	"context"
	"time"
)

// SyncJob periodically requests a full sync. The job only enqueues work;
// the coordinator decides whether anything actually runs.
type SyncJob interface {
	// Start launches the background loop. A second Start stops the
	// previous loop first.
	Start(ctx context.Context, interval time.Duration)

	// Stop cancels the loop and blocks until it has exited. Safe to call
	// when the job is not running.
	Stop()
}
