package adapter

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/taqi-m/unique-plant-sync/models"
)

type HTTPClientConfig struct {
	BaseURL string
	Timeout time.Duration
	Token   string
}

type httpDocumentStore struct {
	client *resty.Client

	mu    sync.RWMutex
	token string
}

// NewHTTPDocumentStore builds a [DocumentStore] over the remote store's
// REST surface:
//
//	PUT /api/collections/{collection}/documents/{id}
//	GET /api/collections/{collection}/documents?user_id=&updated_after=
//	GET /health
func NewHTTPDocumentStore(cfg HTTPClientConfig) DocumentStore {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:8080"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	cli := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout)

	return &httpDocumentStore{client: cli, token: strings.TrimSpace(cfg.Token)}
}

func (h *httpDocumentStore) SetToken(token string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.token = strings.TrimSpace(token)
}

func (h *httpDocumentStore) Token() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.token
}

func (h *httpDocumentStore) UpsertDocument(ctx context.Context, collection, id string, doc models.Document) error {
	resp, err := h.authedRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(doc).
		Put(fmt.Sprintf("/api/collections/%s/documents/%s", collection, id))
	if err != nil {
		return fmt.Errorf("upsert document %s/%s: %w: %w", collection, id, ErrRemoteUnavailable, err)
	}

	if err = mapHTTPError(resp); err != nil {
		return fmt.Errorf("upsert document %s/%s: %w", collection, id, err)
	}

	return nil
}

func (h *httpDocumentStore) QueryUpdatedAfter(ctx context.Context, collection, userID string, updatedAfter int64) ([]models.Document, error) {
	var docs []models.Document

	resp, err := h.authedRequest(ctx).
		SetQueryParam("user_id", userID).
		SetQueryParam("updated_after", strconv.FormatInt(updatedAfter, 10)).
		SetResult(&docs).
		Get(fmt.Sprintf("/api/collections/%s/documents", collection))
	if err != nil {
		return nil, fmt.Errorf("query collection %s: %w: %w", collection, ErrRemoteUnavailable, err)
	}

	if err = mapHTTPError(resp); err != nil {
		return nil, fmt.Errorf("query collection %s: %w", collection, err)
	}

	return docs, nil
}

func (h *httpDocumentStore) Ping(ctx context.Context) error {
	resp, err := h.client.R().
		SetContext(ctx).
		Get("/health")
	if err != nil {
		return fmt.Errorf("health probe: %w: %w", ErrRemoteUnavailable, err)
	}

	return mapHTTPError(resp)
}

func (h *httpDocumentStore) authedRequest(ctx context.Context) *resty.Request {
	req := h.client.R().SetContext(ctx)
	if token := h.Token(); token != "" {
		req.SetAuthToken(token)
	}
	return req
}
