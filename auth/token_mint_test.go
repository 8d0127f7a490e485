package auth_test

import (
	"context"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/linkcase/linkcase/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenMint_Issue(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	user := seedUser(t, store, "minty@example.com")

	mint := auth.NewTokenMint(store)

	token, err := mint.Issue(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, token)

	assert.NotEmpty(t, token.AccessToken)
	assert.NotEmpty(t, token.RefreshToken)
	assert.NotEqual(t, token.AccessToken, token.RefreshToken)
	assert.Equal(t, user.ID, token.UserID)
	assert.False(t, token.Created.IsZero())
}

func TestTokenMint_SignsWithRotatedSecret(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	user := seedUser(t, store, "signed@example.com")

	mint := auth.NewTokenMint(store)

	token, err := mint.Issue(ctx, user.ID)
	require.NoError(t, err)

	secret, err := store.SecretKeys().GetByUser(ctx, user.ID)
	require.NoError(t, err)

	claims := &auth.TokenClaims{}
	parsed, err := jwt.ParseWithClaims(token.AccessToken, claims, func(*jwt.Token) (any, error) {
		return []byte(secret.Key), nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)

	assert.Equal(t, auth.TokenTypeAccess, claims.TokenType)

	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, user.ID, id)
}

func TestTokenMint_ReissueReplacesThePair(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	user := seedUser(t, store, "replay@example.com")

	mint := auth.NewTokenMint(store)

	first, err := mint.Issue(ctx, user.ID)
	require.NoError(t, err)
	firstSecret, err := store.SecretKeys().GetByUser(ctx, user.ID)
	require.NoError(t, err)

	second, err := mint.Issue(ctx, user.ID)
	require.NoError(t, err)
	secondSecret, err := store.SecretKeys().GetByUser(ctx, user.ID)
	require.NoError(t, err)

	assert.NotEqual(t, first.AccessToken, second.AccessToken)
	assert.NotEqual(t, firstSecret.Key, secondSecret.Key)

	// the first pair no longer exists in the store
	_, err = store.Tokens().GetByAccessToken(ctx, first.AccessToken)
	assert.True(t, auth.IsNotFound(err))

	// the replacement does
	current, err := store.Tokens().GetByAccessToken(ctx, second.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, current.UserID)
}

func TestTokenMint_CancelledContext(t *testing.T) {
	store := newMemoryStore()
	user := seedUser(t, store, "cancel@example.com")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	mint := auth.NewTokenMint(store)

	_, err := mint.Issue(ctx, user.ID)
	assert.Error(t, err)
}
