package adapter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taqi-m/unique-plant-sync/internal/logger"
	"github.com/taqi-m/unique-plant-sync/models"
)

func newTestStore(t *testing.T) (DocumentStore, *DevServer) {
	t.Helper()

	dev := NewDevServer(logger.Nop())
	srv := httptest.NewServer(dev.Routes())
	t.Cleanup(srv.Close)

	store := NewHTTPDocumentStore(HTTPClientConfig{
		BaseURL: srv.URL,
		Timeout: 2 * time.Second,
	})
	return store, dev
}

func TestHTTPDocumentStore_UpsertAndQuery(t *testing.T) {
	store, dev := newTestStore(t)
	ctx := context.Background()

	doc := models.Document{
		LocalID:   "cat-1",
		RemoteID:  "r-cat-1",
		UserID:    "user-1",
		Fields:    []byte(`{"name":"food"}`),
		CreatedAt: 100,
		UpdatedAt: 100,
	}

	require.NoError(t, store.UpsertDocument(ctx, "categories", "r-cat-1", doc))

	stored, ok := dev.Document("categories", "r-cat-1")
	require.True(t, ok)
	assert.Equal(t, "user-1", stored.UserID)

	t.Run("strictly-greater watermark filter", func(t *testing.T) {
		docs, err := store.QueryUpdatedAfter(ctx, "categories", "user-1", 99)
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, "r-cat-1", docs[0].RemoteID)

		docs, err = store.QueryUpdatedAfter(ctx, "categories", "user-1", 100)
		require.NoError(t, err)
		assert.Empty(t, docs)
	})

	t.Run("other user's documents are invisible", func(t *testing.T) {
		docs, err := store.QueryUpdatedAfter(ctx, "categories", "someone-else", 0)
		require.NoError(t, err)
		assert.Empty(t, docs)
	})

	t.Run("upsert replaces the stored document", func(t *testing.T) {
		doc.Fields = []byte(`{"name":"groceries"}`)
		doc.UpdatedAt = 200
		require.NoError(t, store.UpsertDocument(ctx, "categories", "r-cat-1", doc))

		assert.Equal(t, 1, dev.UpsertCount("categories"))
		stored, _ := dev.Document("categories", "r-cat-1")
		assert.Equal(t, int64(200), stored.UpdatedAt)
	})
}

func TestHTTPDocumentStore_QueryOrdersByUpdatedAt(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	for _, doc := range []models.Document{
		{LocalID: "b", RemoteID: "r-b", UserID: "user-1", UpdatedAt: 300},
		{LocalID: "a", RemoteID: "r-a", UserID: "user-1", UpdatedAt: 100},
		{LocalID: "c", RemoteID: "r-c", UserID: "user-1", UpdatedAt: 200},
	} {
		require.NoError(t, store.UpsertDocument(ctx, "persons", doc.RemoteID, doc))
	}

	docs, err := store.QueryUpdatedAfter(ctx, "persons", "user-1", 0)
	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, []string{"r-a", "r-c", "r-b"}, []string{docs[0].RemoteID, docs[1].RemoteID, docs[2].RemoteID})
}

func TestHTTPDocumentStore_IDMismatchConflict(t *testing.T) {
	store, _ := newTestStore(t)

	doc := models.Document{LocalID: "x", RemoteID: "r-other", UserID: "user-1"}
	err := store.UpsertDocument(context.Background(), "categories", "r-x", doc)
	require.ErrorIs(t, err, ErrConflict)
}

func TestHTTPDocumentStore_Ping(t *testing.T) {
	store, _ := newTestStore(t)
	require.NoError(t, store.Ping(context.Background()))
}

func TestHTTPDocumentStore_RemoteUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	store := NewHTTPDocumentStore(HTTPClientConfig{BaseURL: url, Timeout: time.Second})

	err := store.Ping(context.Background())
	require.ErrorIs(t, err, ErrRemoteUnavailable)

	err = store.UpsertDocument(context.Background(), "categories", "r-1", models.Document{})
	require.ErrorIs(t, err, ErrRemoteUnavailable)

	_, err = store.QueryUpdatedAfter(context.Background(), "categories", "user-1", 0)
	require.ErrorIs(t, err, ErrRemoteUnavailable)
}

func TestHTTPDocumentStore_StatusMapping(t *testing.T) {
	var status atomic.Int64

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(int(status.Load()))
	}))
	defer srv.Close()

	store := NewHTTPDocumentStore(HTTPClientConfig{BaseURL: srv.URL, Timeout: time.Second})

	cases := []struct {
		code int
		want error
	}{
		{http.StatusBadRequest, ErrBadRequest},
		{http.StatusUnauthorized, ErrUnauthorized},
		{http.StatusForbidden, ErrForbidden},
		{http.StatusNotFound, ErrNotFound},
		{http.StatusConflict, ErrConflict},
		{http.StatusInternalServerError, ErrInternalServerError},
		{http.StatusBadGateway, ErrBadGateway},
	}

	for _, tc := range cases {
		status.Store(int64(tc.code))
		err := store.Ping(context.Background())
		assert.ErrorIs(t, err, tc.want, "status %d", tc.code)
	}
}

func TestHTTPDocumentStore_BearerToken(t *testing.T) {
	var gotAuth atomic.Value

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth.Store(r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte("[]"))
	}))
	defer srv.Close()

	store := NewHTTPDocumentStore(HTTPClientConfig{BaseURL: srv.URL, Timeout: time.Second})
	store.SetToken("  secret-token  ")
	assert.Equal(t, "secret-token", store.Token())

	_, err := store.QueryUpdatedAfter(context.Background(), "categories", "user-1", 0)
	require.NoError(t, err)
	assert.Equal(t, "Bearer secret-token", gotAuth.Load())
}
