package auth

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// CreateSchema creates the auth tables. Child rows cascade-delete with the
// owning user; the user_id uniqueness constraints are what make the
// upsert-by-user paths atomic.
func CreateSchema(ctx context.Context, db *bun.DB) error {
	if _, err := db.NewCreateTable().
		Model((*User)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create users table")
	}

	for _, model := range []any{(*SecretKey)(nil), (*Token)(nil)} {
		_, err := db.NewCreateTable().
			Model(model).
			IfNotExists().
			ForeignKey(`("user_id") REFERENCES "users" ("id") ON DELETE CASCADE`).
			Exec(ctx)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create auth schema")
		}
	}

	return nil
}
