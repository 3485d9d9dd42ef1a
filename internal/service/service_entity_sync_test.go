// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Muhammad Taqi

package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/taqi-m/unique-plant-sync/internal/adapter"
	"github.com/taqi-m/unique-plant-sync/internal/logger"
	"github.com/taqi-m/unique-plant-sync/internal/mock"
	"github.com/taqi-m/unique-plant-sync/internal/store"
	"github.com/taqi-m/unique-plant-sync/models"
)

// stubIDs hands out deterministic ids.
type stubIDs struct {
	next int
}

func (s *stubIDs) Generate() string {
	s.next++
	return fmt.Sprintf("gen-%d", s.next)
}

var testClock = func() time.Time { return time.UnixMilli(5000) }

func newTestEntityManager(t *testing.T, kind models.SyncType) (*entitySyncManager, *mock.MockRecordRepository, *mock.MockDocumentStore, *mock.MockPreferenceRepository) {
	t.Helper()

	ctrl := gomock.NewController(t)
	local := mock.NewMockRecordRepository(ctrl)
	remote := mock.NewMockDocumentStore(ctrl)
	prefs := mock.NewMockPreferenceRepository(ctrl)

	mgr := &entitySyncManager{
		kind:   kind,
		local:  local,
		remote: remote,
		prefs:  prefs,
		ids:    &stubIDs{},
		logger: logger.Nop(),
		clock:  testClock,
	}
	return mgr, local, remote, prefs
}

func TestUploadLocal_AssignsRemoteIDOnFirstUpload(t *testing.T) {
	mgr, local, remote, _ := newTestEntityManager(t, models.SyncTypeCategories)
	ctx := context.Background()

	dirty := []models.Record{
		{Kind: models.SyncTypeCategories, UserID: "user-1", LocalID: "cat-1", NeedsSync: true, UpdatedAt: 100},
		{Kind: models.SyncTypeCategories, UserID: "user-1", LocalID: "cat-2", RemoteID: "r-existing", NeedsSync: true, UpdatedAt: 150},
	}

	local.EXPECT().GetDirty(ctx, models.SyncTypeCategories, "user-1").Return(dirty, nil)

	remote.EXPECT().
		UpsertDocument(ctx, "categories", "gen-1", gomock.Any()).
		DoAndReturn(func(_ context.Context, _, id string, doc models.Document) error {
			assert.Equal(t, "cat-1", doc.LocalID)
			assert.Equal(t, "gen-1", doc.RemoteID)
			return nil
		})
	local.EXPECT().MarkSynced(ctx, "cat-1", "gen-1", int64(5000)).Return(nil)

	// A record that already owns a remote id keeps it.
	remote.EXPECT().UpsertDocument(ctx, "categories", "r-existing", gomock.Any()).Return(nil)
	local.EXPECT().MarkSynced(ctx, "cat-2", "r-existing", int64(5000)).Return(nil)

	results, err := mgr.UploadLocal(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, models.RecordUploaded, results[0].Outcome)
	assert.Equal(t, models.RecordUploaded, results[1].Outcome)
}

func TestUploadLocal_SkipsWhenParentHasNoRemoteID(t *testing.T) {
	mgr, local, _, _ := newTestEntityManager(t, models.SyncTypeExpenses)
	ctx := context.Background()

	dirty := []models.Record{{
		Kind:          models.SyncTypeExpenses,
		UserID:        "user-1",
		LocalID:       "exp-1",
		ParentKind:    models.SyncTypeCategories,
		ParentLocalID: "cat-1",
		NeedsSync:     true,
	}}

	local.EXPECT().GetDirty(ctx, models.SyncTypeExpenses, "user-1").Return(dirty, nil)
	local.EXPECT().GetByLocalID(ctx, "cat-1").
		Return(models.Record{LocalID: "cat-1"}, nil)

	results, err := mgr.UploadLocal(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, models.RecordSkippedParentNotReady, results[0].Outcome)
}

func TestUploadLocal_SkipsWhenParentMissing(t *testing.T) {
	mgr, local, _, _ := newTestEntityManager(t, models.SyncTypeIncomes)
	ctx := context.Background()

	dirty := []models.Record{{
		Kind:          models.SyncTypeIncomes,
		LocalID:       "inc-1",
		ParentKind:    models.SyncTypePersons,
		ParentLocalID: "per-404",
		NeedsSync:     true,
	}}

	local.EXPECT().GetDirty(ctx, models.SyncTypeIncomes, "user-1").Return(dirty, nil)
	local.EXPECT().GetByLocalID(ctx, "per-404").
		Return(models.Record{}, store.ErrRecordNotFound)

	results, err := mgr.UploadLocal(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, models.RecordSkippedParentNotReady, results[0].Outcome)
}

func TestUploadLocal_ResolvesParentRemoteID(t *testing.T) {
	mgr, local, remote, _ := newTestEntityManager(t, models.SyncTypeExpenses)
	ctx := context.Background()

	dirty := []models.Record{{
		Kind:          models.SyncTypeExpenses,
		UserID:        "user-1",
		LocalID:       "exp-1",
		RemoteID:      "r-exp-1",
		ParentKind:    models.SyncTypeCategories,
		ParentLocalID: "cat-1",
		NeedsSync:     true,
	}}

	local.EXPECT().GetDirty(ctx, models.SyncTypeExpenses, "user-1").Return(dirty, nil)
	local.EXPECT().GetByLocalID(ctx, "cat-1").
		Return(models.Record{LocalID: "cat-1", RemoteID: "r-cat-1"}, nil)

	remote.EXPECT().
		UpsertDocument(ctx, "expenses", "r-exp-1", gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _ string, doc models.Document) error {
			assert.Equal(t, "r-cat-1", doc.ParentRemoteID)
			assert.Equal(t, "categories", doc.ParentKind)
			return nil
		})
	local.EXPECT().MarkSynced(ctx, "exp-1", "r-exp-1", int64(5000)).Return(nil)

	results, err := mgr.UploadLocal(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, models.RecordUploaded, results[0].Outcome)
}

func TestUploadLocal_FailedRecordDoesNotStopBatch(t *testing.T) {
	mgr, local, remote, _ := newTestEntityManager(t, models.SyncTypeCategories)
	ctx := context.Background()

	dirty := []models.Record{
		{Kind: models.SyncTypeCategories, LocalID: "cat-1", RemoteID: "r-1", NeedsSync: true},
		{Kind: models.SyncTypeCategories, LocalID: "cat-2", RemoteID: "r-2", NeedsSync: true},
	}

	local.EXPECT().GetDirty(ctx, models.SyncTypeCategories, "user-1").Return(dirty, nil)
	remote.EXPECT().UpsertDocument(ctx, "categories", "r-1", gomock.Any()).
		Return(errors.New("remote rejected payload"))
	remote.EXPECT().UpsertDocument(ctx, "categories", "r-2", gomock.Any()).Return(nil)
	local.EXPECT().MarkSynced(ctx, "cat-2", "r-2", int64(5000)).Return(nil)

	results, err := mgr.UploadLocal(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, models.RecordFailed, results[0].Outcome)
	require.Error(t, results[0].Err)
	assert.Equal(t, models.RecordUploaded, results[1].Outcome)
}

func TestUploadLocal_RemoteOutageAbortsBatch(t *testing.T) {
	mgr, local, remote, _ := newTestEntityManager(t, models.SyncTypeCategories)
	ctx := context.Background()

	dirty := []models.Record{
		{Kind: models.SyncTypeCategories, LocalID: "cat-1", RemoteID: "r-1", NeedsSync: true},
		{Kind: models.SyncTypeCategories, LocalID: "cat-2", RemoteID: "r-2", NeedsSync: true},
	}

	local.EXPECT().GetDirty(ctx, models.SyncTypeCategories, "user-1").Return(dirty, nil)
	remote.EXPECT().UpsertDocument(ctx, "categories", "r-1", gomock.Any()).
		Return(fmt.Errorf("upsert: %w", adapter.ErrRemoteUnavailable))

	results, err := mgr.UploadLocal(ctx, "user-1")
	require.ErrorIs(t, err, adapter.ErrRemoteUnavailable)
	require.Len(t, results, 1, "remaining records are not attempted")
}

func TestUploadLocal_Idempotent(t *testing.T) {
	mgr, local, _, _ := newTestEntityManager(t, models.SyncTypeCategories)
	ctx := context.Background()

	// No dirty records means no remote traffic at all.
	local.EXPECT().GetDirty(ctx, models.SyncTypeCategories, "user-1").Return(nil, nil).Times(2)

	for i := 0; i < 2; i++ {
		results, err := mgr.UploadLocal(ctx, "user-1")
		require.NoError(t, err)
		assert.Empty(t, results)
	}
}

func TestDownloadRemote_InsertsNewDocuments(t *testing.T) {
	mgr, local, remote, prefs := newTestEntityManager(t, models.SyncTypeCategories)
	ctx := context.Background()

	doc := models.Document{
		LocalID:   "cat-1",
		RemoteID:  "r-cat-1",
		UserID:    "user-1",
		Fields:    []byte(`{"name":"food"}`),
		CreatedAt: 100,
		UpdatedAt: 100,
	}

	prefs.EXPECT().GetInt64(ctx, "last_sync_categories_user-1").Return(int64(0), nil)
	remote.EXPECT().QueryUpdatedAfter(ctx, "categories", "user-1", int64(0)).
		Return([]models.Document{doc}, nil)
	local.EXPECT().GetByRemoteID(ctx, "r-cat-1").
		Return(models.Record{}, store.ErrRecordNotFound)
	local.EXPECT().Insert(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, rec models.Record) error {
			assert.Equal(t, models.SyncTypeCategories, rec.Kind)
			assert.Equal(t, "cat-1", rec.LocalID)
			assert.True(t, rec.IsSynced)
			assert.False(t, rec.NeedsSync)
			assert.Equal(t, int64(5000), rec.LastSyncedAt)
			return nil
		})
	prefs.EXPECT().SetInt64(ctx, "last_sync_categories_user-1", int64(5000)).Return(nil)

	require.NoError(t, mgr.DownloadRemote(ctx, "user-1"))
}

func TestDownloadRemote_ParentlessDocumentsReconciledFirst(t *testing.T) {
	mgr, local, remote, prefs := newTestEntityManager(t, models.SyncTypePersons)
	ctx := context.Background()

	parent := models.Document{LocalID: "per-1", RemoteID: "r-per-1", UserID: "user-1", UpdatedAt: 100}
	child := models.Document{
		LocalID: "per-2", RemoteID: "r-per-2", UserID: "user-1", UpdatedAt: 90,
		ParentKind: "persons", ParentRemoteID: "r-per-1",
	}

	prefs.EXPECT().GetInt64(ctx, "last_sync_persons_user-1").Return(int64(50), nil)
	// The remote hands the child back first; reconciliation must not care.
	remote.EXPECT().QueryUpdatedAfter(ctx, "persons", "user-1", int64(50)).
		Return([]models.Document{child, parent}, nil)

	parentLookup := local.EXPECT().GetByRemoteID(ctx, "r-per-1").
		Return(models.Record{}, store.ErrRecordNotFound)
	parentInsert := local.EXPECT().Insert(ctx, gomock.Any()).Return(nil)

	childLookup := local.EXPECT().GetByRemoteID(ctx, "r-per-2").
		Return(models.Record{}, store.ErrRecordNotFound)
	resolveParent := local.EXPECT().GetByRemoteID(ctx, "r-per-1").
		Return(models.Record{Kind: models.SyncTypePersons, LocalID: "per-1", RemoteID: "r-per-1"}, nil)
	childInsert := local.EXPECT().Insert(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, rec models.Record) error {
			assert.Equal(t, "per-1", rec.ParentLocalID)
			return nil
		})

	gomock.InOrder(parentLookup, parentInsert, childLookup, resolveParent, childInsert)

	prefs.EXPECT().SetInt64(ctx, "last_sync_persons_user-1", int64(5000)).Return(nil)

	require.NoError(t, mgr.DownloadRemote(ctx, "user-1"))
}

func TestDownloadRemote_RemoteWinsOnNewerTimestamp(t *testing.T) {
	mgr, local, remote, prefs := newTestEntityManager(t, models.SyncTypeCategories)
	ctx := context.Background()

	existing := models.Record{
		Kind: models.SyncTypeCategories, UserID: "user-1",
		LocalID: "cat-1", RemoteID: "r-cat-1",
		Fields: []byte(`{"name":"old"}`), UpdatedAt: 100, NeedsSync: true,
	}
	doc := models.Document{
		LocalID: "cat-1", RemoteID: "r-cat-1", UserID: "user-1",
		Fields: []byte(`{"name":"new"}`), Deleted: true, UpdatedAt: 200,
	}

	prefs.EXPECT().GetInt64(ctx, "last_sync_categories_user-1").Return(int64(0), nil)
	remote.EXPECT().QueryUpdatedAfter(ctx, "categories", "user-1", int64(0)).
		Return([]models.Document{doc}, nil)
	local.EXPECT().GetByRemoteID(ctx, "r-cat-1").Return(existing, nil)
	local.EXPECT().ApplyRemote(ctx, gomock.Any(), int64(5000)).
		DoAndReturn(func(_ context.Context, rec models.Record, _ int64) error {
			assert.Equal(t, "cat-1", rec.LocalID, "local id is never rewritten")
			assert.JSONEq(t, `{"name":"new"}`, string(rec.Fields))
			assert.True(t, rec.IsDeleted)
			assert.Equal(t, int64(200), rec.UpdatedAt)
			return nil
		})
	prefs.EXPECT().SetInt64(ctx, "last_sync_categories_user-1", int64(5000)).Return(nil)

	require.NoError(t, mgr.DownloadRemote(ctx, "user-1"))
}

func TestDownloadRemote_LocalWins(t *testing.T) {
	t.Run("dirty row keeps its pending upload", func(t *testing.T) {
		mgr, local, remote, prefs := newTestEntityManager(t, models.SyncTypeCategories)
		ctx := context.Background()

		existing := models.Record{
			Kind: models.SyncTypeCategories, LocalID: "cat-1", RemoteID: "r-cat-1",
			UpdatedAt: 300, NeedsSync: true,
		}
		doc := models.Document{RemoteID: "r-cat-1", UserID: "user-1", UpdatedAt: 200}

		prefs.EXPECT().GetInt64(ctx, "last_sync_categories_user-1").Return(int64(0), nil)
		remote.EXPECT().QueryUpdatedAfter(ctx, "categories", "user-1", int64(0)).
			Return([]models.Document{doc}, nil)
		local.EXPECT().GetByRemoteID(ctx, "r-cat-1").Return(existing, nil)
		// No ApplyRemote, no MarkSynced: the row must stay dirty.
		prefs.EXPECT().SetInt64(ctx, "last_sync_categories_user-1", int64(5000)).Return(nil)

		require.NoError(t, mgr.DownloadRemote(ctx, "user-1"))
	})

	t.Run("equal timestamps prefer the local version", func(t *testing.T) {
		mgr, local, remote, prefs := newTestEntityManager(t, models.SyncTypeCategories)
		ctx := context.Background()

		existing := models.Record{
			Kind: models.SyncTypeCategories, LocalID: "cat-1", RemoteID: "r-cat-1",
			UpdatedAt: 200, NeedsSync: false,
		}
		doc := models.Document{RemoteID: "r-cat-1", UserID: "user-1", UpdatedAt: 200}

		prefs.EXPECT().GetInt64(ctx, "last_sync_categories_user-1").Return(int64(0), nil)
		remote.EXPECT().QueryUpdatedAfter(ctx, "categories", "user-1", int64(0)).
			Return([]models.Document{doc}, nil)
		local.EXPECT().GetByRemoteID(ctx, "r-cat-1").Return(existing, nil)
		local.EXPECT().MarkSynced(ctx, "cat-1", "r-cat-1", int64(5000)).Return(nil)
		prefs.EXPECT().SetInt64(ctx, "last_sync_categories_user-1", int64(5000)).Return(nil)

		require.NoError(t, mgr.DownloadRemote(ctx, "user-1"))
	})
}

func TestDownloadRemote_OrphanChildDeferredBehindWatermark(t *testing.T) {
	mgr, local, remote, prefs := newTestEntityManager(t, models.SyncTypeExpenses)
	ctx := context.Background()

	orphan := models.Document{
		LocalID: "exp-1", RemoteID: "r-exp-1", UserID: "user-1", UpdatedAt: 100,
		ParentKind: "categories", ParentRemoteID: "r-cat-404",
	}

	prefs.EXPECT().GetInt64(ctx, "last_sync_expenses_user-1").Return(int64(0), nil)
	remote.EXPECT().QueryUpdatedAfter(ctx, "expenses", "user-1", int64(0)).
		Return([]models.Document{orphan}, nil)
	local.EXPECT().GetByRemoteID(ctx, "r-exp-1").
		Return(models.Record{}, store.ErrRecordNotFound)
	local.EXPECT().GetByRemoteID(ctx, "r-cat-404").
		Return(models.Record{}, store.ErrRecordNotFound)
	// The pass succeeds, but the watermark stops short of the deferred
	// document so a later strictly-greater query returns it again.
	prefs.EXPECT().SetInt64(ctx, "last_sync_expenses_user-1", int64(99)).Return(nil)

	require.NoError(t, mgr.DownloadRemote(ctx, "user-1"))
}

func TestDownloadRemote_DeferredChildMaterializesOnSecondPass(t *testing.T) {
	mgr, local, remote, prefs := newTestEntityManager(t, models.SyncTypeExpenses)
	ctx := context.Background()

	orphan := models.Document{
		LocalID: "exp-1", RemoteID: "r-exp-1", UserID: "user-1",
		Fields: []byte(`{"title":"seeds"}`), UpdatedAt: 100,
		ParentKind: "categories", ParentRemoteID: "r-cat-1",
	}

	// First pass: parent absent, child deferred, watermark held back.
	prefs.EXPECT().GetInt64(ctx, "last_sync_expenses_user-1").Return(int64(0), nil)
	remote.EXPECT().QueryUpdatedAfter(ctx, "expenses", "user-1", int64(0)).
		Return([]models.Document{orphan}, nil)
	local.EXPECT().GetByRemoteID(ctx, "r-exp-1").
		Return(models.Record{}, store.ErrRecordNotFound)
	local.EXPECT().GetByRemoteID(ctx, "r-cat-1").
		Return(models.Record{}, store.ErrRecordNotFound)
	prefs.EXPECT().SetInt64(ctx, "last_sync_expenses_user-1", int64(99)).Return(nil)

	require.NoError(t, mgr.DownloadRemote(ctx, "user-1"))

	// Second pass: the held-back watermark surfaces the same document,
	// the category has synced in between, and the child lands.
	prefs.EXPECT().GetInt64(ctx, "last_sync_expenses_user-1").Return(int64(99), nil)
	remote.EXPECT().QueryUpdatedAfter(ctx, "expenses", "user-1", int64(99)).
		Return([]models.Document{orphan}, nil)
	local.EXPECT().GetByRemoteID(ctx, "r-exp-1").
		Return(models.Record{}, store.ErrRecordNotFound)
	local.EXPECT().GetByRemoteID(ctx, "r-cat-1").
		Return(models.Record{Kind: models.SyncTypeCategories, LocalID: "cat-1", RemoteID: "r-cat-1"}, nil)
	local.EXPECT().Insert(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, rec models.Record) error {
			assert.Equal(t, "exp-1", rec.LocalID)
			assert.Equal(t, "cat-1", rec.ParentLocalID)
			assert.Equal(t, models.SyncTypeCategories, rec.ParentKind)
			return nil
		})
	prefs.EXPECT().SetInt64(ctx, "last_sync_expenses_user-1", int64(5000)).Return(nil)

	require.NoError(t, mgr.DownloadRemote(ctx, "user-1"))
}

func TestDownloadRemote_QueryFailureKeepsWatermark(t *testing.T) {
	mgr, _, remote, prefs := newTestEntityManager(t, models.SyncTypeCategories)
	ctx := context.Background()

	prefs.EXPECT().GetInt64(ctx, "last_sync_categories_user-1").Return(int64(700), nil)
	remote.EXPECT().QueryUpdatedAfter(ctx, "categories", "user-1", int64(700)).
		Return(nil, fmt.Errorf("query: %w", adapter.ErrRemoteUnavailable))

	err := mgr.DownloadRemote(ctx, "user-1")
	require.ErrorIs(t, err, adapter.ErrRemoteUnavailable)
}
