package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/taqi-m/unique-plant-sync/internal/adapter"
	"github.com/taqi-m/unique-plant-sync/internal/logger"
	"github.com/taqi-m/unique-plant-sync/internal/store"
	"github.com/taqi-m/unique-plant-sync/models"
)

const (
	baseRetryDelay = time.Second
	maxRetryDelay  = time.Minute
)

// backoffDelay computes the retry delay for the given persisted failure
// count: min(1s * 2^retryCount, 60s).
func backoffDelay(retryCount int64) time.Duration {
	if retryCount < 0 {
		retryCount = 0
	}
	// 1s << 6 already exceeds the cap; avoid overflowing the shift.
	if retryCount >= 6 {
		return maxRetryDelay
	}

	delay := baseRetryDelay << uint(retryCount)
	if delay > maxRetryDelay {
		return maxRetryDelay
	}
	return delay
}

// CoordinatorConfig carries the timing knobs of the coordinator's
// observer loops.
type CoordinatorConfig struct {
	// PendingScanInterval is how often dirty records are counted.
	PendingScanInterval time.Duration

	// DebounceDelay postpones the automatic full-sync trigger after a
	// rising edge in the unsynced count.
	DebounceDelay time.Duration
}

func (c CoordinatorConfig) withDefaults() CoordinatorConfig {
	if c.PendingScanInterval <= 0 {
		c.PendingScanInterval = 5 * time.Second
	}
	if c.DebounceDelay <= 0 {
		c.DebounceDelay = 2 * time.Second
	}
	return c
}

// syncCoordinator owns the pending-sync queue and all mutation of the
// observable sync status. External callers only ever enqueue work
// (TriggerSync) or read the status stream; the single consumer loop does
// everything else, which keeps the status single-writer without locks
// around the sync state itself.
type syncCoordinator struct {
	deps     DependencyManager
	managers map[models.SyncType]EntitySyncManager
	local    store.RecordRepository
	prefs    store.PreferenceRepository
	netmon   adapter.NetworkMonitor
	users    UserProvider
	status   *statusStream
	logger   *logger.Logger
	cfg      CoordinatorConfig

	initOnce sync.Once

	mu      sync.Mutex
	pending map[models.SyncType]struct{}
	syncing bool

	trigger chan struct{}
	counts  chan map[models.SyncType]int

	timerMu       sync.Mutex
	retryTimer    *time.Timer
	debounceTimer *time.Timer

	clock func() time.Time
}

func NewSyncCoordinator(
	deps DependencyManager,
	managers []EntitySyncManager,
	local store.RecordRepository,
	prefs store.PreferenceRepository,
	netmon adapter.NetworkMonitor,
	users UserProvider,
	cfg CoordinatorConfig,
	log *logger.Logger,
) SyncCoordinator {
	byKind := make(map[models.SyncType]EntitySyncManager, len(managers))
	for _, mgr := range managers {
		byKind[mgr.Kind()] = mgr
	}

	return &syncCoordinator{
		deps:     deps,
		managers: byKind,
		local:    local,
		prefs:    prefs,
		netmon:   netmon,
		users:    users,
		status:   newStatusStream(),
		logger:   log,
		cfg:      cfg.withDefaults(),
		pending:  make(map[models.SyncType]struct{}),
		trigger:  make(chan struct{}, 1),
		counts:   make(chan map[models.SyncType]int, 1),
		clock:    time.Now,
	}
}

// Initialize starts the network probe loop, the unsynced-count observer,
// and the single queue consumer, all bound to ctx. Repeat calls are
// no-ops.
func (c *syncCoordinator) Initialize(ctx context.Context) {
	c.initOnce.Do(func() {
		go c.netmon.Run(ctx)
		go c.watchUnsynced(ctx)
		go c.runConsumer(ctx)

		c.logger.Info().
			Str("func", "syncCoordinator.Initialize").
			Msg("sync coordinator started")
	})
}

// TriggerSync enqueues a sync request. It never blocks beyond the
// enqueue itself and never mutates sync status: requests from a signed
// out session or with unmet dependencies are dropped here, everything
// else is handed to the consumer loop.
func (c *syncCoordinator) TriggerSync(t models.SyncType) {
	ctx := context.Background()

	userID := c.users.CurrentUserID(ctx)
	if userID == "" {
		c.logger.Debug().
			Str("func", "syncCoordinator.TriggerSync").
			Str("type", t.String()).
			Msg("no current user, sync request dropped")
		return
	}

	allowed, err := c.deps.CanSync(ctx, t, userID)
	if err != nil {
		c.logger.Err(err).
			Str("func", "syncCoordinator.TriggerSync").
			Str("type", t.String()).
			Msg("dependency check failed, sync request dropped")
		return
	}
	if !allowed {
		c.logger.Debug().
			Str("func", "syncCoordinator.TriggerSync").
			Str("type", t.String()).
			Msg("dependencies not met, sync request dropped")
		return
	}

	c.mu.Lock()
	c.pending[t] = struct{}{}
	c.mu.Unlock()

	select {
	case c.trigger <- struct{}{}:
	default:
	}
}

func (c *syncCoordinator) SyncStatus() (<-chan models.SyncStatus, func()) {
	return c.status.Subscribe()
}

// runConsumer is the single long-lived loop that owns every mutation of
// the sync status and the isSyncing guard.
func (c *syncCoordinator) runConsumer(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			c.stopTimers()
			return
		case online := <-c.netmon.StateChanges():
			c.onNetworkChange(ctx, online)
		case counts := <-c.counts:
			st := c.status.Current()
			st.PendingCounts = counts
			c.status.Publish(st)
		case <-c.trigger:
			c.runCycle(ctx)
		}
	}
}

func (c *syncCoordinator) onNetworkChange(ctx context.Context, online bool) {
	st := c.status.Current()
	st.IsOnline = online
	c.status.Publish(st)

	if !online {
		return
	}

	// Reconnection resumes sync only for accounts that finished their
	// initial full sync and still have dirty data.
	userID := c.users.CurrentUserID(ctx)
	if userID == "" {
		return
	}

	initialized, err := c.deps.IsInitialized(ctx, models.SyncTypeAll, userID)
	if err != nil || !initialized {
		return
	}

	unsynced, err := c.local.HasUnsynced(ctx, userID)
	if err != nil {
		c.logger.Err(err).
			Str("func", "syncCoordinator.onNetworkChange").
			Msg("failed to check unsynced records after reconnect")
		return
	}
	if unsynced {
		c.logger.Info().
			Str("func", "syncCoordinator.onNetworkChange").
			Msg("back online with unsynced data, triggering full sync")
		c.TriggerSync(models.SyncTypeAll)
	}
}

// watchUnsynced periodically counts dirty records per type, feeds the
// counts to the consumer for the status stream, and triggers a debounced
// full sync on a rising edge of the total while online and idle.
func (c *syncCoordinator) watchUnsynced(ctx context.Context) {
	t := time.NewTicker(c.cfg.PendingScanInterval)
	defer t.Stop()

	prevTotal := 0

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}

		userID := c.users.CurrentUserID(ctx)
		if userID == "" {
			prevTotal = 0
			continue
		}

		counts := make(map[models.SyncType]int, len(models.ConcreteSyncTypes))
		total := 0
		failed := false
		for _, kind := range models.ConcreteSyncTypes {
			count, err := c.local.CountUnsynced(ctx, kind, userID)
			if err != nil {
				c.logger.Err(err).
					Str("func", "syncCoordinator.watchUnsynced").
					Str("kind", kind.String()).
					Msg("failed to count unsynced records")
				failed = true
				break
			}
			counts[kind] = count
			total += count
		}
		if failed {
			continue
		}

		select {
		case c.counts <- counts:
		default:
		}

		if total > 0 && prevTotal == 0 && c.netmon.IsOnline() && !c.isSyncing() {
			c.scheduleDebouncedTrigger()
		}
		prevTotal = total
	}
}

// runCycle executes one sync attempt: drain, admit, order, run. It is
// only ever called from the consumer goroutine.
func (c *syncCoordinator) runCycle(ctx context.Context) {
	c.mu.Lock()
	if c.syncing {
		// Re-entrancy guard; unreachable with a single consumer but kept
		// as the invariant the rest of the code relies on.
		c.mu.Unlock()
		return
	}
	requested := make([]models.SyncType, 0, len(c.pending))
	for t := range c.pending {
		requested = append(requested, t)
	}
	c.pending = make(map[models.SyncType]struct{})
	c.mu.Unlock()

	if len(requested) == 0 {
		return
	}

	userID := c.users.CurrentUserID(ctx)
	if userID == "" {
		return
	}

	if !c.netmon.IsOnline() {
		// The request is dropped, not queued: reconnection re-triggers a
		// full sync via the network observer.
		st := c.status.Current()
		st.IsOnline = false
		st.IsSyncing = false
		st.LastError = ErrNetworkUnavailable.Error()
		c.status.Publish(st)

		c.logger.Info().
			Str("func", "syncCoordinator.runCycle").
			Msg("offline, sync cycle skipped")
		return
	}

	allowed := c.filterAllowed(ctx, requested, userID)
	if len(allowed) == 0 {
		st := c.status.Current()
		st.IsSyncing = false
		st.LastError = ErrDependencyUnmet.Error()
		c.status.Publish(st)

		c.logger.Info().
			Str("func", "syncCoordinator.runCycle").
			Msg("no requested type passed the dependency check")
		return
	}

	c.setSyncing(true)
	st := c.status.Current()
	st.IsOnline = true
	st.IsSyncing = true
	c.status.Publish(st)

	defer func() {
		c.setSyncing(false)
		done := c.status.Current()
		done.IsSyncing = false
		c.status.Publish(done)
	}()

	runErr := c.runAdmitted(ctx, allowed, userID)

	if runErr == nil {
		if err := c.prefs.SetInt64(ctx, retryCountKey, 0); err != nil {
			c.logger.Err(err).
				Str("func", "syncCoordinator.runCycle").
				Msg("failed to reset retry counter")
		}

		ok := c.status.Current()
		ok.LastSyncTime = c.clock()
		ok.LastError = ""
		c.status.Publish(ok)

		c.logger.Info().
			Str("func", "syncCoordinator.runCycle").
			Msg("sync cycle completed")
		return
	}

	failed := c.status.Current()
	failed.LastError = runErr.Error()
	c.status.Publish(failed)

	c.scheduleRetry(ctx, allowed)

	c.logger.Err(runErr).
		Str("func", "syncCoordinator.runCycle").
		Msg("sync cycle failed, retry scheduled")
}

func (c *syncCoordinator) runAdmitted(ctx context.Context, allowed []models.SyncType, userID string) error {
	for _, t := range allowed {
		if t == models.SyncTypeAll {
			return c.fullSync(ctx, userID)
		}
	}

	sortByPriority(allowed)
	for _, t := range allowed {
		if err := c.syncOne(ctx, t, userID); err != nil {
			return err
		}
	}
	return nil
}

// fullSync runs every concrete type in priority order as one unit, then
// stamps the global watermark for All.
func (c *syncCoordinator) fullSync(ctx context.Context, userID string) error {
	for _, t := range models.ConcreteSyncTypes {
		if err := c.syncOne(ctx, t, userID); err != nil {
			return err
		}
	}

	return c.prefs.SetInt64(ctx, watermarkKey(models.SyncTypeAll, userID), c.clock().UnixMilli())
}

func (c *syncCoordinator) syncOne(ctx context.Context, t models.SyncType, userID string) error {
	mgr, ok := c.managers[t]
	if !ok {
		return ErrDependencyUnmet
	}

	results, err := mgr.UploadLocal(ctx, userID)
	if err != nil {
		return err
	}

	uploaded, skipped, failures := 0, 0, 0
	for _, res := range results {
		switch res.Outcome {
		case models.RecordUploaded:
			uploaded++
		case models.RecordSkippedParentNotReady:
			skipped++
		case models.RecordFailed:
			failures++
		}
	}
	c.logger.Debug().
		Str("func", "syncCoordinator.syncOne").
		Str("type", t.String()).
		Int("uploaded", uploaded).
		Int("skipped", skipped).
		Int("failed", failures).
		Msg("upload pass finished")

	if err = mgr.DownloadRemote(ctx, userID); err != nil {
		return err
	}

	return c.deps.MarkAsInitialized(ctx, t, userID)
}

func (c *syncCoordinator) filterAllowed(ctx context.Context, requested []models.SyncType, userID string) []models.SyncType {
	allowed := make([]models.SyncType, 0, len(requested))
	for _, t := range requested {
		ok, err := c.deps.CanSync(ctx, t, userID)
		if err != nil {
			c.logger.Err(err).
				Str("func", "syncCoordinator.filterAllowed").
				Str("type", t.String()).
				Msg("dependency check failed, type excluded from cycle")
			continue
		}
		if ok {
			allowed = append(allowed, t)
		}
	}
	return allowed
}

// scheduleRetry re-submits the failed types through TriggerSync after
// the backoff delay, so they re-enter dependency filtering and priority
// ordering instead of bypassing them. The retry counter is durable and
// survives process restarts.
func (c *syncCoordinator) scheduleRetry(ctx context.Context, types []models.SyncType) {
	retryCount, err := c.prefs.GetInt64(ctx, retryCountKey)
	if err != nil {
		c.logger.Err(err).
			Str("func", "syncCoordinator.scheduleRetry").
			Msg("failed to read retry counter, assuming zero")
	}

	delay := backoffDelay(retryCount)
	if err = c.prefs.SetInt64(ctx, retryCountKey, retryCount+1); err != nil {
		c.logger.Err(err).
			Str("func", "syncCoordinator.scheduleRetry").
			Msg("failed to persist retry counter")
	}

	resubmit := append([]models.SyncType(nil), types...)

	c.timerMu.Lock()
	if c.retryTimer != nil {
		c.retryTimer.Stop()
	}
	c.retryTimer = time.AfterFunc(delay, func() {
		for _, t := range resubmit {
			c.TriggerSync(t)
		}
	})
	c.timerMu.Unlock()

	c.logger.Info().
		Str("func", "syncCoordinator.scheduleRetry").
		Dur("delay", delay).
		Int64("retry_count", retryCount+1).
		Msg("retry scheduled")
}

func (c *syncCoordinator) scheduleDebouncedTrigger() {
	c.timerMu.Lock()
	defer c.timerMu.Unlock()

	if c.debounceTimer != nil {
		c.debounceTimer.Stop()
	}
	c.debounceTimer = time.AfterFunc(c.cfg.DebounceDelay, func() {
		c.TriggerSync(models.SyncTypeAll)
	})
}

func (c *syncCoordinator) stopTimers() {
	c.timerMu.Lock()
	defer c.timerMu.Unlock()

	if c.retryTimer != nil {
		c.retryTimer.Stop()
	}
	if c.debounceTimer != nil {
		c.debounceTimer.Stop()
	}
}

func (c *syncCoordinator) setSyncing(v bool) {
	c.mu.Lock()
	c.syncing = v
	c.mu.Unlock()
}

func (c *syncCoordinator) isSyncing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.syncing
}

// sortByPriority orders types by ascending SyncPriority; within one
// priority tier the fixed bootstrap order applies.
func sortByPriority(types []models.SyncType) {
	rank := func(t models.SyncType) int {
		for i, other := range models.ConcreteSyncTypes {
			if other == t {
				return i
			}
		}
		return len(models.ConcreteSyncTypes)
	}

	sort.SliceStable(types, func(i, j int) bool {
		pi, pj := DependencyFor(types[i]).Priority, DependencyFor(types[j]).Priority
		if pi != pj {
			return pi < pj
		}
		return rank(types[i]) < rank(types[j])
	})
}
