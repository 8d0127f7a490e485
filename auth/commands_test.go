package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/linkcase/linkcase/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func signUp(t *testing.T, store *memoryStore, email, password string) *auth.Token {
	t.Helper()

	var token *auth.Token
	handler := auth.NewSignUpHandler(store, auth.NewTokenMint(store))
	err := handler.Execute(context.Background(), auth.SignUpMessage{
		Username:        "newcomer",
		FirstName:       "New",
		LastName:        "Comer",
		Email:           email,
		Password:        password,
		ConfirmPassword: password,
		OnResponse:      func(tk *auth.Token) { token = tk },
	})
	require.NoError(t, err)
	require.NotNil(t, token)
	return token
}

func TestSignUp(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()

	token := signUp(t, store, "fresh@example.com", "long enough password")

	assert.NotEmpty(t, token.AccessToken)
	assert.NotEmpty(t, token.RefreshToken)

	user, err := store.Users().GetByEmail(ctx, "fresh@example.com")
	require.NoError(t, err)
	assert.True(t, user.IsActive)
	assert.NotEqual(t, "long enough password", user.HashedPassword)

	ok, err := auth.VerifyPassword("long enough password", user.HashedPassword)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSignUpMessage_Validate(t *testing.T) {
	valid := auth.SignUpMessage{
		Username:        "validname",
		FirstName:       "Valid",
		LastName:        "Name",
		Email:           "valid@example.com",
		Password:        "0123456789",
		ConfirmPassword: "0123456789",
	}

	assert.NoError(t, valid.Validate())

	cases := []struct {
		name   string
		mutate func(m *auth.SignUpMessage)
	}{
		{"username too short", func(m *auth.SignUpMessage) { m.Username = "abcd" }},
		{"username starts with digit", func(m *auth.SignUpMessage) { m.Username = "1abcde" }},
		{"first name with digits", func(m *auth.SignUpMessage) { m.FirstName = "Ada99" }},
		{"bad email", func(m *auth.SignUpMessage) { m.Email = "not-an-email" }},
		{"password too short", func(m *auth.SignUpMessage) {
			m.Password = "short"
			m.ConfirmPassword = "short"
		}},
		{"passwords differ", func(m *auth.SignUpMessage) { m.ConfirmPassword = "9876543210" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			msg := valid
			tc.mutate(&msg)
			assert.Error(t, msg.Validate())
		})
	}
}

func TestSignIn(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()

	first := signUp(t, store, "session@example.com", "long enough password")

	var second *auth.Token
	handler := auth.NewSignInHandler(store, auth.NewTokenMint(store))
	err := handler.Execute(ctx, auth.SignInMessage{
		Email:      "session@example.com",
		Password:   "long enough password",
		OnResponse: func(tk *auth.Token) { second = tk },
	})
	require.NoError(t, err)
	require.NotNil(t, second)

	// signing in replaced the pair issued at sign-up
	assert.NotEqual(t, first.AccessToken, second.AccessToken)
	_, err = store.Tokens().GetByAccessToken(ctx, first.AccessToken)
	assert.True(t, auth.IsNotFound(err))
}

func TestSignIn_WrongPassword(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()

	existing := signUp(t, store, "victim@example.com", "long enough password")

	handler := auth.NewSignInHandler(store, auth.NewTokenMint(store))
	err := handler.Execute(ctx, auth.SignInMessage{
		Email:    "victim@example.com",
		Password: "guessing a password",
	})
	assert.ErrorIs(t, err, auth.ErrIncorrectCredentials)

	// a failed attempt leaves the current session untouched
	_, err = store.Tokens().GetByAccessToken(ctx, existing.AccessToken)
	assert.NoError(t, err)
}

func TestSignIn_UnknownEmail(t *testing.T) {
	store := newMemoryStore()

	handler := auth.NewSignInHandler(store, auth.NewTokenMint(store))
	err := handler.Execute(context.Background(), auth.SignInMessage{
		Email:    "nobody@example.com",
		Password: "whatever it may be",
	})
	// same rejection as a wrong password: existence is not revealed
	assert.ErrorIs(t, err, auth.ErrIncorrectCredentials)
}

func TestSignIn_InactiveUser(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()

	signUp(t, store, "locked@example.com", "long enough password")
	user, err := store.Users().GetByEmail(ctx, "locked@example.com")
	require.NoError(t, err)
	require.NoError(t, store.Users().SetActive(ctx, user.ID, false))

	handler := auth.NewSignInHandler(store, auth.NewTokenMint(store))
	err = handler.Execute(ctx, auth.SignInMessage{
		Email:    "locked@example.com",
		Password: "long enough password",
	})
	assert.ErrorIs(t, err, auth.ErrInactiveUser)
}

func TestSignOut(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()

	token := signUp(t, store, "leaving@example.com", "long enough password")

	handler := auth.NewSignOutHandler(store)
	require.NoError(t, handler.Execute(ctx, auth.SignOutMessage{UserID: token.UserID}))

	// the row is gone, so the backend now sees an unknown token, not an
	// expired one
	backend := auth.NewBackend(store, testConfig{})
	out := backend.Authenticate(ctx, "Bearer "+token.AccessToken)
	assert.True(t, out.Rejected())
	assert.ErrorIs(t, out.Reason, auth.ErrInvalidToken)
}

func TestRefresh(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()

	first := signUp(t, store, "rolling@example.com", "long enough password")

	var next *auth.Token
	handler := auth.NewRefreshHandler(store, auth.NewTokenMint(store), testConfig{})
	err := handler.Execute(ctx, auth.RefreshMessage{
		RefreshToken: first.RefreshToken,
		OnResponse:   func(tk *auth.Token) { next = tk },
	})
	require.NoError(t, err)
	require.NotNil(t, next)

	assert.NotEqual(t, first.RefreshToken, next.RefreshToken)

	// the consumed refresh token cannot be replayed
	err = handler.Execute(ctx, auth.RefreshMessage{RefreshToken: first.RefreshToken})
	assert.ErrorIs(t, err, auth.ErrInvalidRefreshToken)
}

func TestRefresh_Expired(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()

	token := signUp(t, store, "sleepy@example.com", "long enough password")

	lifetime := 24 * time.Hour
	handler := auth.NewRefreshHandler(store, auth.NewTokenMint(store), testConfig{refreshLifetime: lifetime}).
		WithClock(func() time.Time { return time.Now().Add(lifetime + time.Hour) })

	err := handler.Execute(ctx, auth.RefreshMessage{RefreshToken: token.RefreshToken})
	assert.ErrorIs(t, err, auth.ErrRefreshTokenExpired)
}

func TestRefresh_UnknownToken(t *testing.T) {
	store := newMemoryStore()

	handler := auth.NewRefreshHandler(store, auth.NewTokenMint(store), testConfig{})
	err := handler.Execute(context.Background(), auth.RefreshMessage{
		RefreshToken: "never issued",
	})
	assert.ErrorIs(t, err, auth.ErrInvalidRefreshToken)
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()

	token := signUp(t, store, "rotate@example.com", "long enough password")

	handler := auth.NewChangePasswordHandler(store)
	err := handler.Execute(ctx, auth.ChangePasswordMessage{
		UserID:          token.UserID,
		OldPassword:     "long enough password",
		NewPassword:     "a different password",
		ConfirmPassword: "a different password",
	})
	require.NoError(t, err)

	user, err := store.Users().GetByID(ctx, token.UserID)
	require.NoError(t, err)

	ok, err := auth.VerifyPassword("a different password", user.HashedPassword)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestChangePassword_WrongOldPassword(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()

	token := signUp(t, store, "stubborn@example.com", "long enough password")

	handler := auth.NewChangePasswordHandler(store)
	err := handler.Execute(ctx, auth.ChangePasswordMessage{
		UserID:          token.UserID,
		OldPassword:     "not the old password",
		NewPassword:     "a different password",
		ConfirmPassword: "a different password",
	})
	assert.ErrorIs(t, err, auth.ErrIncorrectOldPassword)
}

func TestChangePassword_SameAsOld(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()

	token := signUp(t, store, "repeat@example.com", "long enough password")

	handler := auth.NewChangePasswordHandler(store)
	err := handler.Execute(ctx, auth.ChangePasswordMessage{
		UserID:          token.UserID,
		OldPassword:     "long enough password",
		NewPassword:     "long enough password",
		ConfirmPassword: "long enough password",
	})
	assert.Error(t, err)
}

func TestRequestPasswordReset(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()

	signUp(t, store, "forgot@example.com", "long enough password")
	user, err := store.Users().GetByEmail(ctx, "forgot@example.com")
	require.NoError(t, err)
	secret, err := store.SecretKeys().GetByUser(ctx, user.ID)
	require.NoError(t, err)

	notifier := &MockNotifier{}
	notifier.On("EnqueueResetPassword", "forgot@example.com", secret.Key).Once()

	handler := auth.NewRequestPasswordResetHandler(store, notifier)
	require.NoError(t, handler.Execute(ctx, auth.RequestPasswordResetMessage{
		Email: "forgot@example.com",
	}))

	notifier.AssertExpectations(t)
}

func TestRequestPasswordReset_UnknownEmail(t *testing.T) {
	store := newMemoryStore()

	notifier := &MockNotifier{}
	handler := auth.NewRequestPasswordResetHandler(store, notifier)

	err := handler.Execute(context.Background(), auth.RequestPasswordResetMessage{
		Email: "stranger@example.com",
	})
	assert.ErrorIs(t, err, auth.ErrNoSuchEmail)
	notifier.AssertNotCalled(t, "EnqueueResetPassword", mock.Anything, mock.Anything)
}

func TestResetPassword(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()

	signUp(t, store, "amnesiac@example.com", "long enough password")
	user, err := store.Users().GetByEmail(ctx, "amnesiac@example.com")
	require.NoError(t, err)
	secret, err := store.SecretKeys().GetByUser(ctx, user.ID)
	require.NoError(t, err)

	handler := auth.NewResetPasswordHandler(store)
	require.NoError(t, handler.Execute(ctx, auth.ResetPasswordMessage{
		SecretKey:       secret.Key,
		NewPassword:     "a recovered password",
		ConfirmPassword: "a recovered password",
	}))

	updated, err := store.Users().GetByID(ctx, user.ID)
	require.NoError(t, err)

	ok, err := auth.VerifyPassword("a recovered password", updated.HashedPassword)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestResetPassword_UnknownSecret(t *testing.T) {
	store := newMemoryStore()

	handler := auth.NewResetPasswordHandler(store)
	err := handler.Execute(context.Background(), auth.ResetPasswordMessage{
		SecretKey:       "deadbeef",
		NewPassword:     "a recovered password",
		ConfirmPassword: "a recovered password",
	})
	assert.ErrorIs(t, err, auth.ErrNoSuchSecretKey)
}
