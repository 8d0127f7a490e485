package auth

import (
	"context"
	"database/sql"
	"errors"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// Tokens persists the single active token pair per user.
//
// GetByAccessToken reports a plain store miss and lets the backend decide;
// GetByRefreshToken fails with ErrInvalidRefreshToken directly because every
// caller treats an unknown refresh token as a bad credential.
type Tokens interface {
	Upsert(ctx context.Context, userID int64, access, refresh string) (*Token, error)
	UpsertTx(ctx context.Context, tx bun.IDB, userID int64, access, refresh string) (*Token, error)
	GetByUser(ctx context.Context, userID int64) (*Token, error)
	GetByAccessToken(ctx context.Context, access string) (*Token, error)
	GetByRefreshToken(ctx context.Context, refresh string) (*Token, error)
	Delete(ctx context.Context, record *Token) error
}

type tokens struct {
	db *bun.DB
}

var _ Tokens = (*tokens)(nil)

func NewTokensRepository(db *bun.DB) Tokens {
	return &tokens{db: db}
}

func (r *tokens) Upsert(ctx context.Context, userID int64, access, refresh string) (*Token, error) {
	return r.UpsertTx(ctx, r.db, userID, access, refresh)
}

// UpsertTx replaces the whole row for userID. Overwriting access_token and
// refresh_token is what invalidates the previously issued pair: validity is
// store-driven, not signature-driven.
func (r *tokens) UpsertTx(ctx context.Context, tx bun.IDB, userID int64, access, refresh string) (*Token, error) {
	record := &Token{
		AccessToken:  access,
		RefreshToken: refresh,
		Created:      time.Now(),
		UserID:       userID,
	}

	_, err := tx.NewInsert().Model(record).
		On("CONFLICT (user_id) DO UPDATE").
		Set("access_token = EXCLUDED.access_token").
		Set("refresh_token = EXCLUDED.refresh_token").
		Set("created = EXCLUDED.created").
		Exec(ctx)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to upsert token pair").
			WithMetadata(map[string]any{"user_id": userID})
	}

	return record, nil
}

func (r *tokens) GetByUser(ctx context.Context, userID int64) (*Token, error) {
	record := &Token{}
	err := r.db.NewSelect().Model(record).
		Where("?TableAlias.user_id = ?", userID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, goerrors.New("token not found", goerrors.CategoryNotFound).
				WithCode(goerrors.CodeNotFound).
				WithTextCode("TOKEN_NOT_FOUND").
				WithMetadata(map[string]any{"user_id": userID})
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve token pair")
	}
	return record, nil
}

func (r *tokens) GetByAccessToken(ctx context.Context, access string) (*Token, error) {
	record := &Token{}
	err := r.db.NewSelect().Model(record).
		Relation("User").
		Where("?TableAlias.access_token = ?", access).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, goerrors.New("token not found", goerrors.CategoryNotFound).
				WithCode(goerrors.CodeNotFound).
				WithTextCode("TOKEN_NOT_FOUND")
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve token pair")
	}
	return record, nil
}

func (r *tokens) GetByRefreshToken(ctx context.Context, refresh string) (*Token, error) {
	record := &Token{}
	err := r.db.NewSelect().Model(record).
		Where("?TableAlias.refresh_token = ?", refresh).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve token pair")
	}
	return record, nil
}

func (r *tokens) Delete(ctx context.Context, record *Token) error {
	_, err := r.db.NewDelete().Model((*Token)(nil)).
		Where("id = ?", record.ID).
		Exec(ctx)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to delete token pair").
			WithMetadata(map[string]any{"user_id": record.UserID})
	}
	return nil
}
