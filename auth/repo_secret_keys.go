package auth

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// secretKeyBytes is the entropy of a signing secret before hex encoding.
const secretKeyBytes = 32

// SecretKeys stores the per-user signing secret. Rotation has no direct
// external API; it is driven by token issuance.
type SecretKeys interface {
	Rotate(ctx context.Context, userID int64) (*SecretKey, error)
	RotateTx(ctx context.Context, tx bun.IDB, userID int64) (*SecretKey, error)
	GetByUser(ctx context.Context, userID int64) (*SecretKey, error)
	GetByKey(ctx context.Context, key string) (*SecretKey, error)
}

type secretKeys struct {
	db *bun.DB
}

var _ SecretKeys = (*secretKeys)(nil)

func NewSecretKeysRepository(db *bun.DB) SecretKeys {
	return &secretKeys{db: db}
}

func (r *secretKeys) Rotate(ctx context.Context, userID int64) (*SecretKey, error) {
	return r.RotateTx(ctx, r.db, userID)
}

// RotateTx upserts keyed by user_id so two concurrent issuances for the same
// user cannot create duplicate rows; the last writer wins.
func (r *secretKeys) RotateTx(ctx context.Context, tx bun.IDB, userID int64) (*SecretKey, error) {
	key, err := generateSecretKey()
	if err != nil {
		return nil, err
	}

	record := &SecretKey{
		Key:     key,
		Created: time.Now(),
		UserID:  userID,
	}

	_, err = tx.NewInsert().Model(record).
		On("CONFLICT (user_id) DO UPDATE").
		Set("key = EXCLUDED.key").
		Set("created = EXCLUDED.created").
		Exec(ctx)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to rotate secret key").
			WithMetadata(map[string]any{"user_id": userID})
	}

	return record, nil
}

func (r *secretKeys) GetByUser(ctx context.Context, userID int64) (*SecretKey, error) {
	record := &SecretKey{}
	err := r.db.NewSelect().Model(record).
		Where("?TableAlias.user_id = ?", userID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, wrapSecretKeyLookupErr(err, map[string]any{"user_id": userID})
	}
	return record, nil
}

func (r *secretKeys) GetByKey(ctx context.Context, key string) (*SecretKey, error) {
	record := &SecretKey{}
	err := r.db.NewSelect().Model(record).
		Where("?TableAlias.key = ?", key).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, wrapSecretKeyLookupErr(err, nil)
	}
	return record, nil
}

func generateSecretKey() (string, error) {
	buf := make([]byte, secretKeyBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to generate secret key")
	}
	return hex.EncodeToString(buf), nil
}

func wrapSecretKeyLookupErr(err error, meta map[string]any) error {
	if errors.Is(err, sql.ErrNoRows) {
		return goerrors.New("secret key not found", goerrors.CategoryNotFound).
			WithCode(goerrors.CodeNotFound).
			WithTextCode("SECRET_KEY_NOT_FOUND").
			WithMetadata(meta)
	}
	return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve secret key").
		WithMetadata(meta)
}
