// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Muhammad Taqi

package workers

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/taqi-m/unique-plant-sync/models"
)

// countingCoordinator counts trigger requests per type.
type countingCoordinator struct {
	all atomic.Int64
}

func (c *countingCoordinator) Initialize(context.Context) {}

func (c *countingCoordinator) TriggerSync(t models.SyncType) {
	if t == models.SyncTypeAll {
		c.all.Add(1)
	}
}

func (c *countingCoordinator) SyncStatus() (<-chan models.SyncStatus, func()) {
	ch := make(chan models.SyncStatus)
	return ch, func() { close(ch) }
}

func TestSyncJob_TriggersFullSyncOnInterval(t *testing.T) {
	coord := &countingCoordinator{}
	job := NewSyncJob(coord)

	job.Start(context.Background(), 10*time.Millisecond)
	defer job.Stop()

	deadline := time.After(2 * time.Second)
	for coord.all.Load() < 2 {
		select {
		case <-deadline:
			t.Fatal("full sync was not triggered on the ticker")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestSyncJob_StopHaltsTriggers(t *testing.T) {
	coord := &countingCoordinator{}
	job := NewSyncJob(coord)

	job.Start(context.Background(), 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	job.Stop()

	settled := coord.all.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, settled, coord.all.Load())
}

func TestSyncJob_StopWithoutStart(t *testing.T) {
	job := NewSyncJob(&countingCoordinator{})
	job.Stop()
	job.Stop()
}

func TestSyncJob_RestartReplacesLoop(t *testing.T) {
	coord := &countingCoordinator{}
	job := NewSyncJob(coord)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	job.Start(ctx, time.Hour)
	job.Start(ctx, 10*time.Millisecond)
	defer job.Stop()

	deadline := time.After(2 * time.Second)
	for coord.all.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("restarted job never ticked")
		case <-time.After(5 * time.Millisecond):
		}
	}
}
