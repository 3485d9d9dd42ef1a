package service

import (
	"context"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/taqi-m/unique-plant-sync/internal/logger"
	"github.com/taqi-m/unique-plant-sync/internal/mock"
)

func signedToken(t *testing.T, subject string) string {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject: subject,
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func TestCurrentUserID_FromStoredToken(t *testing.T) {
	prefs := newFakePrefs()
	ctx := context.Background()

	require.NoError(t, prefs.SetString(ctx, "session_token", signedToken(t, "user-42")))

	provider := NewSessionUserProvider(prefs, logger.Nop())
	assert.Equal(t, "user-42", provider.CurrentUserID(ctx))
}

func TestCurrentUserID_NoSession(t *testing.T) {
	provider := NewSessionUserProvider(newFakePrefs(), logger.Nop())
	assert.Empty(t, provider.CurrentUserID(context.Background()))
}

func TestCurrentUserID_MalformedToken(t *testing.T) {
	prefs := newFakePrefs()
	ctx := context.Background()

	require.NoError(t, prefs.SetString(ctx, "session_token", "not-a-jwt"))

	provider := NewSessionUserProvider(prefs, logger.Nop())
	assert.Empty(t, provider.CurrentUserID(ctx))
}

func TestStoreSession(t *testing.T) {
	ctrl := gomock.NewController(t)
	remote := mock.NewMockDocumentStore(ctrl)
	prefs := newFakePrefs()
	ctx := context.Background()

	token := signedToken(t, "user-7")
	remote.EXPECT().SetToken(token)

	require.NoError(t, StoreSession(ctx, prefs, remote, token))

	stored, err := prefs.GetString(ctx, "session_token")
	require.NoError(t, err)
	assert.Equal(t, token, stored)
}

func TestRestoreSession(t *testing.T) {
	t.Run("usable session", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		remote := mock.NewMockDocumentStore(ctrl)
		prefs := newFakePrefs()
		ctx := context.Background()

		token := signedToken(t, "user-7")
		require.NoError(t, prefs.SetString(ctx, "session_token", token))

		remote.EXPECT().SetToken(token)

		userID := RestoreSession(ctx, prefs, remote, logger.Nop())
		assert.Equal(t, "user-7", userID)
	})

	t.Run("no stored session", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		remote := mock.NewMockDocumentStore(ctrl)

		userID := RestoreSession(context.Background(), newFakePrefs(), remote, logger.Nop())
		assert.Empty(t, userID)
	})

	t.Run("broken token leaves the adapter untouched", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		remote := mock.NewMockDocumentStore(ctrl)
		prefs := newFakePrefs()
		ctx := context.Background()

		require.NoError(t, prefs.SetString(ctx, "session_token", "garbage"))

		userID := RestoreSession(ctx, prefs, remote, logger.Nop())
		assert.Empty(t, userID)
	})
}
