package service

import (
	"sync"

	"github.com/taqi-m/unique-plant-sync/models"
)

// statusStream is a replay-latest broadcaster for [models.SyncStatus].
// There is exactly one writer (the coordinator's consumer loop) and any
// number of subscribers. Slow subscribers lose intermediate values, never
// the latest one: each subscription channel holds one pending value that
// is replaced on overflow.
type statusStream struct {
	mu   sync.Mutex
	last models.SyncStatus
	subs map[int]chan models.SyncStatus
	next int
}

func newStatusStream() *statusStream {
	return &statusStream{
		last: models.SyncStatus{PendingCounts: map[models.SyncType]int{}},
		subs: make(map[int]chan models.SyncStatus),
	}
}

// Current returns the latest published status.
func (s *statusStream) Current() models.SyncStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last.Clone()
}

// Publish replaces the latest status and fans it out to all subscribers.
func (s *statusStream) Publish(status models.SyncStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.last = status.Clone()
	for _, ch := range s.subs {
		// Replace the pending value so the subscriber always reads the
		// freshest status next.
		select {
		case <-ch:
		default:
		}
		ch <- s.last.Clone()
	}
}

// Subscribe registers a new observer. The latest value is replayed
// immediately. The returned cancel function must be called to release
// the subscription.
func (s *statusStream) Subscribe() (<-chan models.SyncStatus, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.next
	s.next++

	ch := make(chan models.SyncStatus, 1)
	ch <- s.last.Clone()
	s.subs[id] = ch

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if sub, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(sub)
		}
	}

	return ch, cancel
}
