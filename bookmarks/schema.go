package bookmarks

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// RegisterModels wires the many-to-many join model into the bun instance.
// Call it before any query that traverses link/collection relations.
func RegisterModels(db *bun.DB) {
	db.RegisterModel((*LinkCollection)(nil))
}

// CreateSchema creates the bookmark tables. The auth schema must exist first
// because links and collections reference users.
func CreateSchema(ctx context.Context, db *bun.DB) error {
	RegisterModels(db)

	owned := []any{
		(*Link)(nil),
		(*Collection)(nil),
	}

	for _, model := range owned {
		_, err := db.NewCreateTable().
			Model(model).
			IfNotExists().
			ForeignKey(`("user_id") REFERENCES "users" ("id") ON DELETE CASCADE`).
			Exec(ctx)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create bookmark tables")
		}
	}

	_, err := db.NewCreateTable().
		Model((*LinkCollection)(nil)).
		IfNotExists().
		ForeignKey(`("link_id") REFERENCES "links" ("id") ON DELETE CASCADE`).
		ForeignKey(`("collection_id") REFERENCES "collections" ("id") ON DELETE CASCADE`).
		Exec(ctx)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create bookmark tables")
	}

	return nil
}
