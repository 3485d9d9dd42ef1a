package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/taqi-m/unique-plant-sync/internal/adapter"
	"github.com/taqi-m/unique-plant-sync/internal/logger"
	"github.com/taqi-m/unique-plant-sync/internal/store"
	"github.com/taqi-m/unique-plant-sync/models"
)

// entitySyncManager reconciles one entity type between the local record
// store and the remote document store. One instance exists per concrete
// sync type; the logic is identical, only the kind differs.
//
// Conflict resolution is last-write-wins by coarse millisecond
// timestamps and is therefore clock-skew sensitive; on equal timestamps
// the local version wins. This mirrors the product's chosen policy and
// is a known limitation, not an accident.
type entitySyncManager struct {
	kind   models.SyncType
	local  store.RecordRepository
	remote adapter.DocumentStore
	prefs  store.PreferenceRepository
	ids    IDGenerator
	logger *logger.Logger

	clock func() time.Time
}

func NewEntitySyncManager(
	kind models.SyncType,
	local store.RecordRepository,
	remote adapter.DocumentStore,
	prefs store.PreferenceRepository,
	ids IDGenerator,
	log *logger.Logger,
) EntitySyncManager {
	return &entitySyncManager{
		kind:   kind,
		local:  local,
		remote: remote,
		prefs:  prefs,
		ids:    ids,
		logger: log,
		clock:  time.Now,
	}
}

func (m *entitySyncManager) Kind() models.SyncType {
	return m.kind
}

// UploadLocal pushes every dirty record of this type. Parent-not-ready
// records are skipped (they stay dirty and are retried on a later pass),
// and a failing record does not stop the batch. An unreachable remote
// aborts the batch: every remaining record would fail the same way.
func (m *entitySyncManager) UploadLocal(ctx context.Context, userID string) ([]models.RecordSyncResult, error) {
	dirty, err := m.local.GetDirty(ctx, m.kind, userID)
	if err != nil {
		return nil, fmt.Errorf("upload %s: get dirty records: %w", m.kind, err)
	}

	results := make([]models.RecordSyncResult, 0, len(dirty))
	for i := range dirty {
		result := m.uploadOne(ctx, &dirty[i])
		results = append(results, result)

		switch result.Outcome {
		case models.RecordSkippedParentNotReady:
			m.logger.Debug().
				Str("func", "entitySyncManager.UploadLocal").
				Str("kind", m.kind.String()).
				Str("local_id", result.LocalID).
				Msg("parent has no remote id yet, record deferred")
		case models.RecordFailed:
			m.logger.Err(result.Err).
				Str("func", "entitySyncManager.UploadLocal").
				Str("kind", m.kind.String()).
				Str("local_id", result.LocalID).
				Msg("record upload failed, batch continues")
			if errors.Is(result.Err, adapter.ErrRemoteUnavailable) {
				return results, fmt.Errorf("upload %s: %w", m.kind, result.Err)
			}
		}
	}

	return results, nil
}

func (m *entitySyncManager) uploadOne(ctx context.Context, rec *models.Record) models.RecordSyncResult {
	if rec.HasParent() {
		parent, err := m.local.GetByLocalID(ctx, rec.ParentLocalID)
		if err != nil {
			if errors.Is(err, store.ErrRecordNotFound) {
				return models.RecordSyncResult{LocalID: rec.LocalID, Outcome: models.RecordSkippedParentNotReady}
			}
			return models.RecordSyncResult{
				LocalID: rec.LocalID,
				Outcome: models.RecordFailed,
				Err:     fmt.Errorf("resolve parent %s: %w", rec.ParentLocalID, err),
			}
		}
		if parent.RemoteID == "" {
			return models.RecordSyncResult{LocalID: rec.LocalID, Outcome: models.RecordSkippedParentNotReady}
		}
		rec.ParentRemoteID = parent.RemoteID
	}

	if rec.RemoteID == "" {
		rec.RemoteID = m.ids.Generate()
	}

	if err := m.remote.UpsertDocument(ctx, m.kind.Collection(), rec.RemoteID, rec.Document()); err != nil {
		return models.RecordSyncResult{LocalID: rec.LocalID, Outcome: models.RecordFailed, Err: err}
	}

	if err := m.local.MarkSynced(ctx, rec.LocalID, rec.RemoteID, m.clock().UnixMilli()); err != nil {
		return models.RecordSyncResult{
			LocalID: rec.LocalID,
			Outcome: models.RecordFailed,
			Err:     fmt.Errorf("mark synced after upload: %w", err),
		}
	}

	return models.RecordSyncResult{LocalID: rec.LocalID, Outcome: models.RecordUploaded}
}

// DownloadRemote pulls documents changed since the per-user watermark.
// Parentless documents are reconciled first so a parent's local row (and
// its remote id) exists before any child tries to resolve its foreign
// key. A child whose parent has not arrived locally is deferred, and the
// watermark is capped just below the oldest deferred document so the
// next strictly-greater query returns it again once its parent exists.
func (m *entitySyncManager) DownloadRemote(ctx context.Context, userID string) error {
	watermark, err := m.prefs.GetInt64(ctx, watermarkKey(m.kind, userID))
	if err != nil {
		return fmt.Errorf("download %s: read watermark: %w", m.kind, err)
	}

	docs, err := m.remote.QueryUpdatedAfter(ctx, m.kind.Collection(), userID, watermark)
	if err != nil {
		return fmt.Errorf("download %s: %w", m.kind, err)
	}

	now := m.clock().UnixMilli()

	var parentless, parented []models.Document
	for _, doc := range docs {
		if doc.ParentRemoteID == "" {
			parentless = append(parentless, doc)
		} else {
			parented = append(parented, doc)
		}
	}

	advanceTo := now
	deferred := 0
	for _, doc := range append(parentless, parented...) {
		orphaned, err := m.reconcile(ctx, doc, now)
		if err != nil {
			return fmt.Errorf("download %s: reconcile %s: %w", m.kind, doc.RemoteID, err)
		}
		if orphaned {
			deferred++
			if doc.UpdatedAt-1 < advanceTo {
				advanceTo = doc.UpdatedAt - 1
			}
		}
	}

	if err = m.prefs.SetInt64(ctx, watermarkKey(m.kind, userID), advanceTo); err != nil {
		return fmt.Errorf("download %s: advance watermark: %w", m.kind, err)
	}

	m.logger.Debug().
		Str("func", "entitySyncManager.DownloadRemote").
		Str("kind", m.kind.String()).
		Int("documents", len(docs)).
		Int("deferred", deferred).
		Int64("watermark", advanceTo).
		Msg("download pass completed")

	return nil
}

// reconcile reports true when the document was deferred because its
// parent has no local row yet.
func (m *entitySyncManager) reconcile(ctx context.Context, doc models.Document, now int64) (bool, error) {
	existing, err := m.local.GetByRemoteID(ctx, doc.RemoteID)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return m.insertDownloaded(ctx, doc, now)
		}
		return false, err
	}

	if doc.UpdatedAt > existing.UpdatedAt {
		applied := existing
		applied.Fields = doc.Fields
		applied.IsDeleted = doc.Deleted
		applied.UpdatedAt = doc.UpdatedAt
		applied.ParentRemoteID = doc.ParentRemoteID
		if doc.ParentRemoteID != "" {
			if parent, perr := m.local.GetByRemoteID(ctx, doc.ParentRemoteID); perr == nil {
				applied.ParentKind = parent.Kind
				applied.ParentLocalID = parent.LocalID
			}
		}
		return false, m.local.ApplyRemote(ctx, applied, now)
	}

	// Local version wins. Only mark the row reconciled when it is not
	// dirty: a pending local edit must keep needs_sync until its own
	// upload confirms.
	if existing.NeedsSync {
		return false, nil
	}
	return false, m.local.MarkSynced(ctx, existing.LocalID, existing.RemoteID, now)
}

func (m *entitySyncManager) insertDownloaded(ctx context.Context, doc models.Document, now int64) (bool, error) {
	rec := doc.Record(m.kind)

	if doc.ParentRemoteID != "" {
		parent, err := m.local.GetByRemoteID(ctx, doc.ParentRemoteID)
		if err != nil {
			if errors.Is(err, store.ErrRecordNotFound) {
				// Parent has not arrived yet; the deferral keeps the
				// watermark behind this document so it is retried once
				// the parent has synced.
				m.logger.Warn().
					Str("func", "entitySyncManager.insertDownloaded").
					Str("kind", m.kind.String()).
					Str("remote_id", doc.RemoteID).
					Str("parent_remote_id", doc.ParentRemoteID).
					Msg("parent not found locally, document deferred")
				return true, nil
			}
			return false, fmt.Errorf("resolve parent %s: %w", doc.ParentRemoteID, err)
		}
		rec.ParentKind = parent.Kind
		rec.ParentLocalID = parent.LocalID
	}

	rec.IsSynced = true
	rec.NeedsSync = false
	rec.LastSyncedAt = now

	return false, m.local.Insert(ctx, rec)
}
