package auth

import (
	"context"

	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// TokenMint issues access/refresh pairs. Every issuance rotates the user's
// signing secret first, which makes any previously issued, still-unexpired
// pair unverifiable: a single-session-per-user policy, not a bug.
type TokenMint struct {
	repo   RepositoryManager
	logger Logger
}

var _ TokenMinter = (*TokenMint)(nil)

// NewTokenMint returns a new TokenMint
func NewTokenMint(repo RepositoryManager) *TokenMint {
	return &TokenMint{
		repo:   repo,
		logger: defLogger{},
	}
}

func (m *TokenMint) WithLogger(logger Logger) *TokenMint {
	m.logger = logger
	return m
}

// Issue rotates the secret, signs a fresh pair with it and upserts the single
// token row for the user, all in one transaction so concurrent issuances
// resolve to last-writer-wins.
func (m *TokenMint) Issue(ctx context.Context, userID int64) (*Token, error) {
	var record *Token

	err := m.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		secret, err := m.repo.SecretKeys().RotateTx(ctx, tx, userID)
		if err != nil {
			return err
		}

		access, err := m.sign(newTokenClaims(userID, TokenTypeAccess), secret.Key)
		if err != nil {
			return err
		}

		refresh, err := m.sign(newTokenClaims(userID, TokenTypeRefresh), secret.Key)
		if err != nil {
			return err
		}

		record, err = m.repo.Tokens().UpsertTx(ctx, tx, userID, access, refresh)
		return err
	})

	if err != nil {
		m.logger.Error("token issuance failed", "user_id", userID, "error", err)
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return nil, richErr
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "token issuance transaction failed")
	}

	return record, nil
}

func (m *TokenMint) sign(claims *TokenClaims, secret string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to sign JWT")
	}

	return signed, nil
}
