package service

import (
	"fmt"

	"github.com/taqi-m/unique-plant-sync/models"
)

// Preference-store keys. Initialization flags and watermarks always carry
// the user id suffix so they survive account switching; the retry counter
// is device-wide.
const (
	retryCountKey   = "sync_retry_count"
	sessionTokenKey = "session_token"
)

func initFlagKey(t models.SyncType, userID string) string {
	return fmt.Sprintf("sync_initialized_%s_%s", t, userID)
}

func watermarkKey(t models.SyncType, userID string) string {
	return fmt.Sprintf("last_sync_%s_%s", t, userID)
}
