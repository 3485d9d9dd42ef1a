package workers

import (
	"context"
	"sync"
	"time"

	"github.com/taqi-m/unique-plant-sync/internal/service"
	"github.com/taqi-m/unique-plant-sync/models"
)

type syncJob struct {
	coordinator service.SyncCoordinator

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewSyncJob creates a syncJob that calls TriggerSync(All) on a ticker.
// The job is idle until Start is called.
func NewSyncJob(coordinator service.SyncCoordinator) SyncJob {
	return &syncJob{coordinator: coordinator}
}

func (j *syncJob) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	j.Stop()

	j.mu.Lock()
	jobCtx, cancel := context.WithCancel(ctx)
	j.cancel = cancel
	j.wg.Add(1)
	j.mu.Unlock()

	go func() {
		defer j.wg.Done()
		t := time.NewTicker(interval)
		defer t.Stop()

		for {
			select {
			case <-jobCtx.Done():
				return
			case <-t.C:
				j.coordinator.TriggerSync(models.SyncTypeAll)
			}
		}
	}()
}

func (j *syncJob) Stop() {
	j.mu.Lock()
	cancel := j.cancel
	j.cancel = nil
	j.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	j.wg.Wait()
}
