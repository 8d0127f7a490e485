package auth

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

type SignOutMessage struct {
	UserID int64 `json:"user_id"`
}

func (m SignOutMessage) Type() string { return "auth.sign_out" }

type SignOutHandler struct {
	repo RepositoryManager
}

func NewSignOutHandler(repo RepositoryManager) *SignOutHandler {
	return &SignOutHandler{repo: repo}
}

// Execute deletes the caller's token row. The next request carrying the
// just-deleted access token fails as a store miss, not as expired.
func (h *SignOutHandler) Execute(ctx context.Context, msg SignOutMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(ctx.Err(), goerrors.CategoryOperation, "context cancelled during sign out")
	default:
	}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	record, err := h.repo.Tokens().GetByUser(ctx, msg.UserID)
	if err != nil {
		return err
	}

	return h.repo.Tokens().Delete(ctx, record)
}
