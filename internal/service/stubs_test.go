package service

import (
	"context"
	"sync"

	"github.com/taqi-m/unique-plant-sync/models"
)

// fakePrefs is an in-memory PreferenceRepository. Missing keys return the
// zero value, mirroring the SQLite-backed implementation.
type fakePrefs struct {
	mu      sync.Mutex
	bools   map[string]bool
	ints    map[string]int64
	strings map[string]string
}

func newFakePrefs() *fakePrefs {
	return &fakePrefs{
		bools:   make(map[string]bool),
		ints:    make(map[string]int64),
		strings: make(map[string]string),
	}
}

func (f *fakePrefs) GetBool(_ context.Context, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bools[key], nil
}

func (f *fakePrefs) SetBool(_ context.Context, key string, value bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bools[key] = value
	return nil
}

func (f *fakePrefs) GetInt64(_ context.Context, key string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ints[key], nil
}

func (f *fakePrefs) SetInt64(_ context.Context, key string, value int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ints[key] = value
	return nil
}

func (f *fakePrefs) GetString(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.strings[key], nil
}

func (f *fakePrefs) SetString(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.strings[key] = value
	return nil
}

func (f *fakePrefs) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.bools, key)
	delete(f.ints, key)
	delete(f.strings, key)
	return nil
}

// stubUsers always resolves the same user id.
type stubUsers struct {
	userID string
}

func (s *stubUsers) CurrentUserID(context.Context) string { return s.userID }

// stubNetmon reports a fixed reachability state and serves a test-fed
// transition channel.
type stubNetmon struct {
	mu      sync.Mutex
	online  bool
	changes chan bool
}

func newStubNetmon(online bool) *stubNetmon {
	return &stubNetmon{online: online, changes: make(chan bool, 8)}
}

func (s *stubNetmon) IsOnline() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.online
}

func (s *stubNetmon) setOnline(v bool) {
	s.mu.Lock()
	s.online = v
	s.mu.Unlock()
}

func (s *stubNetmon) StateChanges() <-chan bool { return s.changes }

func (s *stubNetmon) Run(context.Context) {}

// stubManager records the order in which types were synced and can fail
// a scripted number of times.
type stubManager struct {
	kind models.SyncType

	mu        sync.Mutex
	order     *[]models.SyncType
	uploadErr error
	failures  int
}

func (s *stubManager) Kind() models.SyncType { return s.kind }

func (s *stubManager) UploadLocal(context.Context, string) ([]models.RecordSyncResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.order != nil {
		*s.order = append(*s.order, s.kind)
	}
	if s.uploadErr != nil && s.failures != 0 {
		if s.failures > 0 {
			s.failures--
		}
		return nil, s.uploadErr
	}
	return nil, nil
}

func (s *stubManager) DownloadRemote(context.Context, string) error { return nil }
