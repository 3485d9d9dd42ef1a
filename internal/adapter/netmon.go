package adapter

import (
	"context"
	"sync"
	"time"

	"github.com/taqi-m/unique-plant-sync/internal/logger"
)

// networkMonitor derives reachability from periodic health probes against
// the remote store. The last observed state is cached for IsOnline;
// transitions are published to a single edge-triggered channel.
type networkMonitor struct {
	store    DocumentStore
	interval time.Duration
	logger   *logger.Logger

	mu     sync.RWMutex
	online bool

	changes chan bool
}

// NewNetworkMonitor creates a monitor probing the given store every
// interval. The monitor starts offline; the first successful probe flips
// it online and publishes the transition.
func NewNetworkMonitor(store DocumentStore, interval time.Duration, log *logger.Logger) NetworkMonitor {
	if interval <= 0 {
		interval = 30 * time.Second
	}

	return &networkMonitor{
		store:    store,
		interval: interval,
		logger:   log,
		changes:  make(chan bool, 8),
	}
}

func (m *networkMonitor) IsOnline() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.online
}

func (m *networkMonitor) StateChanges() <-chan bool {
	return m.changes
}

// Run probes immediately, then on every tick, until ctx is cancelled.
func (m *networkMonitor) Run(ctx context.Context) {
	m.probe(ctx)

	t := time.NewTicker(m.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			m.probe(ctx)
		}
	}
}

func (m *networkMonitor) probe(ctx context.Context) {
	err := m.store.Ping(ctx)
	online := err == nil

	m.mu.Lock()
	changed := online != m.online
	m.online = online
	m.mu.Unlock()

	if !changed {
		return
	}

	m.logger.Info().
		Str("func", "networkMonitor.probe").
		Bool("online", online).
		Msg("network state changed")

	// Drop the transition if no one is draining the channel fast enough;
	// IsOnline still reflects the latest state.
	select {
	case m.changes <- online:
	default:
	}
}
