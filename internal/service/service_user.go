package service

import (
	"context"

	"github.com/taqi-m/unique-plant-sync/internal/adapter"
	"github.com/taqi-m/unique-plant-sync/internal/logger"
	"github.com/taqi-m/unique-plant-sync/internal/store"
	"github.com/taqi-m/unique-plant-sync/internal/utils"
)

// sessionUserProvider resolves the current user from the session token
// kept in the preference store by the sign-in flow. An absent or broken
// token simply means nobody is signed in.
type sessionUserProvider struct {
	prefs  store.PreferenceRepository
	logger *logger.Logger
}

func NewSessionUserProvider(prefs store.PreferenceRepository, log *logger.Logger) UserProvider {
	return &sessionUserProvider{prefs: prefs, logger: log}
}

func (p *sessionUserProvider) CurrentUserID(ctx context.Context) string {
	token, err := p.prefs.GetString(ctx, sessionTokenKey)
	if err != nil {
		p.logger.Err(err).
			Str("func", "sessionUserProvider.CurrentUserID").
			Msg("failed to read session token")
		return ""
	}
	if token == "" {
		return ""
	}

	userID, err := utils.UserIDFromToken(token)
	if err != nil {
		p.logger.Warn().Err(err).
			Str("func", "sessionUserProvider.CurrentUserID").
			Msg("stored session token is not usable")
		return ""
	}

	return userID
}

// StoreSession persists the session token and installs it on the remote
// adapter, so both the user provider and outbound requests see the same
// session. An empty token signs the user out.
func StoreSession(ctx context.Context, prefs store.PreferenceRepository, remote adapter.DocumentStore, token string) error {
	if err := prefs.SetString(ctx, sessionTokenKey, token); err != nil {
		return err
	}
	remote.SetToken(token)
	return nil
}

// RestoreSession installs the previously stored session token on the
// remote adapter and returns the user id embedded in it. An empty return
// means no usable session is stored.
func RestoreSession(ctx context.Context, prefs store.PreferenceRepository, remote adapter.DocumentStore, log *logger.Logger) string {
	token, err := prefs.GetString(ctx, sessionTokenKey)
	if err != nil {
		log.Err(err).
			Str("func", "RestoreSession").
			Msg("failed to read session token")
		return ""
	}
	if token == "" {
		return ""
	}

	userID, err := utils.UserIDFromToken(token)
	if err != nil {
		log.Warn().Err(err).
			Str("func", "RestoreSession").
			Msg("stored session token is not usable")
		return ""
	}

	remote.SetToken(token)
	return userID
}
