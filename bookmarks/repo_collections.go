package bookmarks

import (
	"context"
	"database/sql"
	"errors"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// Collections persists link collections with the same repository-level
// ownership checks as Links.
type Collections interface {
	Create(ctx context.Context, collection *Collection) (*Collection, error)
	GetByID(ctx context.Context, userID, id int64) (*Collection, error)
	ListByUser(ctx context.Context, userID int64) ([]*Collection, error)
	Update(ctx context.Context, userID int64, collection *Collection) (*Collection, error)
	Delete(ctx context.Context, userID, id int64) error
}

type collections struct {
	db *bun.DB
}

var _ Collections = (*collections)(nil)

func NewCollectionsRepository(db *bun.DB) Collections {
	return &collections{db: db}
}

func (r *collections) Create(ctx context.Context, collection *Collection) (*Collection, error) {
	_, err := r.db.NewInsert().Model(collection).Exec(ctx)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryConflict, "could not create collection").
			WithCode(goerrors.CodeConflict).
			WithMetadata(map[string]any{"user_id": collection.UserID, "name": collection.Name})
	}
	return collection, nil
}

func (r *collections) GetByID(ctx context.Context, userID, id int64) (*Collection, error) {
	collection := &Collection{}
	err := r.db.NewSelect().Model(collection).
		Relation("Links").
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, newNotFound("collection")
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve collection")
	}

	if collection.UserID != userID {
		return nil, ErrNotOwner
	}

	return collection, nil
}

func (r *collections) ListByUser(ctx context.Context, userID int64) ([]*Collection, error) {
	var records []*Collection
	err := r.db.NewSelect().Model(&records).
		Where("?TableAlias.user_id = ?", userID).
		OrderExpr("?TableAlias.created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to list collections").
			WithMetadata(map[string]any{"user_id": userID})
	}
	return records, nil
}

func (r *collections) Update(ctx context.Context, userID int64, collection *Collection) (*Collection, error) {
	current, err := r.GetByID(ctx, userID, collection.ID)
	if err != nil {
		return nil, err
	}

	current.Name = collection.Name
	current.Description = collection.Description
	current.UpdatedAt = time.Now()

	_, err = r.db.NewUpdate().Model(current).
		Column("name", "description", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to update collection").
			WithMetadata(map[string]any{"collection_id": collection.ID})
	}

	return current, nil
}

// Delete removes the collection and its memberships. The links themselves
// survive.
func (r *collections) Delete(ctx context.Context, userID, id int64) error {
	if _, err := r.GetByID(ctx, userID, id); err != nil {
		return err
	}

	_, err := r.db.NewDelete().Model((*LinkCollection)(nil)).
		Where("collection_id = ?", id).
		Exec(ctx)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to clear collection memberships").
			WithMetadata(map[string]any{"collection_id": id})
	}

	_, err = r.db.NewDelete().Model((*Collection)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to delete collection").
			WithMetadata(map[string]any{"collection_id": id})
	}

	return nil
}
