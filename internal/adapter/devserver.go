package adapter

import (
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/taqi-m/unique-plant-sync/internal/logger"
	"github.com/taqi-m/unique-plant-sync/models"
)

// DevServer is an in-memory document store exposed over the same REST
// surface the production store serves. It backs local development
// (cmd/devserver) and the adapter's integration tests; it is not meant
// to persist anything.
type DevServer struct {
	logger *logger.Logger

	mu          sync.RWMutex
	collections map[string]map[string]models.Document
}

func NewDevServer(log *logger.Logger) *DevServer {
	return &DevServer{
		logger:      log,
		collections: make(map[string]map[string]models.Document),
	}
}

// Routes builds the chi router for the dev store.
func (s *DevServer) Routes() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(s.withLogging)

	router.Get("/health", s.health)
	router.Route("/api/collections/{collection}/documents", func(r chi.Router) {
		r.Get("/", s.queryDocuments)
		r.Put("/{id}", s.upsertDocument)
	})

	return router
}

// Document returns a stored document by collection and id. Test helper.
func (s *DevServer) Document(collection, id string) (models.Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.collections[collection][id]
	return doc, ok
}

// UpsertCount returns the number of documents stored in a collection.
func (s *DevServer) UpsertCount(collection string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.collections[collection])
}

func (s *DevServer) health(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (s *DevServer) upsertDocument(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")
	id := chi.URLParam(r, "id")

	var doc models.Document
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		http.Error(w, "invalid document payload", http.StatusBadRequest)
		return
	}
	if doc.RemoteID == "" {
		doc.RemoteID = id
	}
	if doc.RemoteID != id {
		http.Error(w, "document id mismatch", http.StatusConflict)
		return
	}

	s.mu.Lock()
	if s.collections[collection] == nil {
		s.collections[collection] = make(map[string]models.Document)
	}
	s.collections[collection][id] = doc
	s.mu.Unlock()

	w.WriteHeader(http.StatusOK)
}

func (s *DevServer) queryDocuments(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")
	userID := r.URL.Query().Get("user_id")

	updatedAfter := int64(0)
	if raw := r.URL.Query().Get("updated_after"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			http.Error(w, "invalid updated_after", http.StatusBadRequest)
			return
		}
		updatedAfter = parsed
	}

	s.mu.RLock()
	docs := make([]models.Document, 0, len(s.collections[collection]))
	for _, doc := range s.collections[collection] {
		if userID != "" && doc.UserID != userID {
			continue
		}
		if doc.UpdatedAt <= updatedAfter {
			continue
		}
		docs = append(docs, doc)
	}
	s.mu.RUnlock()

	sort.Slice(docs, func(i, j int) bool { return docs[i].UpdatedAt < docs[j].UpdatedAt })

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(docs); err != nil {
		s.logger.Err(err).Str("func", "DevServer.queryDocuments").Msg("failed to encode documents")
	}
}

func (s *DevServer) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := s.logger.WithContext(r.Context())
		next.ServeHTTP(w, r.WithContext(ctx))

		s.logger.Debug().
			Str("uri", r.RequestURI).
			Str("method", r.Method).
			Send()
	})
}
