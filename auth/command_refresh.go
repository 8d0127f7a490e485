package auth

import (
	"context"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	goerrors "github.com/goliatone/go-errors"
)

type RefreshMessage struct {
	RefreshToken string `json:"refresh_token"`
	OnResponse   func(*Token)
}

func (m RefreshMessage) Type() string { return "auth.refresh" }

// Validate will run validation rules
func (m RefreshMessage) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.RefreshToken, validation.Required),
	)
}

type RefreshHandler struct {
	repo     RepositoryManager
	minter   TokenMinter
	lifetime time.Duration
	nowFunc  func() time.Time
}

func NewRefreshHandler(repo RepositoryManager, minter TokenMinter, cfg Config) *RefreshHandler {
	return &RefreshHandler{
		repo:     repo,
		minter:   minter,
		lifetime: cfg.GetRefreshTokenLifetime(),
		nowFunc:  time.Now,
	}
}

// WithClock overrides the wall clock used for the refresh expiry check.
func (h *RefreshHandler) WithClock(now func() time.Time) *RefreshHandler {
	if now != nil {
		h.nowFunc = now
	}
	return h
}

// Execute exchanges a refresh token for a fresh pair. Issuing the new pair
// rotates the secret and overwrites the stored row, which also invalidates
// the refresh token that was just used.
func (h *RefreshHandler) Execute(ctx context.Context, msg RefreshMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(ctx.Err(), goerrors.CategoryOperation, "context cancelled during token refresh")
	default:
	}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	if err := msg.Validate(); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid refresh payload").
			WithCode(goerrors.CodeBadRequest).
			WithMetadata(map[string]any{"fields": FormatValidationErrorToMap(err)})
	}

	record, err := h.repo.Tokens().GetByRefreshToken(ctx, msg.RefreshToken)
	if err != nil {
		return err
	}

	if record.Created.Add(h.lifetime).Before(h.nowFunc()) {
		return ErrRefreshTokenExpired
	}

	token, err := h.minter.Issue(ctx, record.UserID)
	if err != nil {
		return err
	}

	if msg.OnResponse != nil {
		msg.OnResponse(token)
	}

	return nil
}
