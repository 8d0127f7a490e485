package bookmarks

import (
	"context"
	"database/sql"
	"errors"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// Links persists saved bookmarks. Every accessor that touches an existing row
// takes the calling user's id and enforces ownership at the repository level.
type Links interface {
	Create(ctx context.Context, link *Link) (*Link, error)
	GetByID(ctx context.Context, userID, id int64) (*Link, error)
	ListByUser(ctx context.Context, userID int64, filter LinkFilter) ([]*Link, error)
	Update(ctx context.Context, userID int64, link *Link) (*Link, error)
	Delete(ctx context.Context, userID, id int64) error
	AddToCollection(ctx context.Context, userID, linkID, collectionID int64) error
	RemoveFromCollection(ctx context.Context, userID, linkID, collectionID int64) error
}

// LinkFilter narrows ListByUser. Zero values mean "no constraint".
type LinkFilter struct {
	Type         LinkType
	CollectionID int64
	Limit        int
	Offset       int
}

type links struct {
	db *bun.DB
}

var _ Links = (*links)(nil)

func NewLinksRepository(db *bun.DB) Links {
	return &links{db: db}
}

func (r *links) Create(ctx context.Context, link *Link) (*Link, error) {
	if !link.Type.Valid() {
		return nil, ErrInvalidLinkType
	}

	_, err := r.db.NewInsert().Model(link).Exec(ctx)
	if err != nil {
		// the unique url constraint is the usual culprit
		return nil, goerrors.Wrap(err, goerrors.CategoryConflict, "could not create link").
			WithCode(goerrors.CodeConflict).
			WithMetadata(map[string]any{"user_id": link.UserID, "url": link.URL})
	}

	return link, nil
}

func (r *links) GetByID(ctx context.Context, userID, id int64) (*Link, error) {
	link := &Link{}
	err := r.db.NewSelect().Model(link).
		Relation("Collections").
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, newNotFound("link")
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve link")
	}

	if link.UserID != userID {
		return nil, ErrNotOwner
	}

	return link, nil
}

func (r *links) ListByUser(ctx context.Context, userID int64, filter LinkFilter) ([]*Link, error) {
	var records []*Link

	q := r.db.NewSelect().Model(&records).
		Where("?TableAlias.user_id = ?", userID).
		OrderExpr("?TableAlias.created_at DESC")

	if filter.Type != "" {
		if !filter.Type.Valid() {
			return nil, ErrInvalidLinkType
		}
		q = q.Where("?TableAlias.type = ?", filter.Type)
	}

	if filter.CollectionID != 0 {
		q = q.Join("JOIN link_collections AS lc ON lc.link_id = ?TableAlias.id").
			Where("lc.collection_id = ?", filter.CollectionID)
	}

	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}

	if err := q.Scan(ctx); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to list links").
			WithMetadata(map[string]any{"user_id": userID})
	}

	return records, nil
}

func (r *links) Update(ctx context.Context, userID int64, link *Link) (*Link, error) {
	if !link.Type.Valid() {
		return nil, ErrInvalidLinkType
	}

	current, err := r.GetByID(ctx, userID, link.ID)
	if err != nil {
		return nil, err
	}

	current.Title = link.Title
	current.Description = link.Description
	current.URL = link.URL
	current.Image = link.Image
	current.Type = link.Type
	current.UpdatedAt = time.Now()

	_, err = r.db.NewUpdate().Model(current).
		Column("title", "description", "url", "image", "type", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to update link").
			WithMetadata(map[string]any{"link_id": link.ID})
	}

	return current, nil
}

func (r *links) Delete(ctx context.Context, userID, id int64) error {
	if _, err := r.GetByID(ctx, userID, id); err != nil {
		return err
	}

	_, err := r.db.NewDelete().Model((*Link)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to delete link").
			WithMetadata(map[string]any{"link_id": id})
	}

	return nil
}

// AddToCollection attaches a link to a collection. Both records must belong
// to the caller. Re-adding an existing membership is a no-op.
func (r *links) AddToCollection(ctx context.Context, userID, linkID, collectionID int64) error {
	if err := r.checkPair(ctx, userID, linkID, collectionID); err != nil {
		return err
	}

	_, err := r.db.NewInsert().Model(&LinkCollection{
		LinkID:       linkID,
		CollectionID: collectionID,
	}).
		On("CONFLICT DO NOTHING").
		Exec(ctx)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to add link to collection").
			WithMetadata(map[string]any{"link_id": linkID, "collection_id": collectionID})
	}

	return nil
}

func (r *links) RemoveFromCollection(ctx context.Context, userID, linkID, collectionID int64) error {
	if err := r.checkPair(ctx, userID, linkID, collectionID); err != nil {
		return err
	}

	_, err := r.db.NewDelete().Model((*LinkCollection)(nil)).
		Where("link_id = ?", linkID).
		Where("collection_id = ?", collectionID).
		Exec(ctx)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to remove link from collection").
			WithMetadata(map[string]any{"link_id": linkID, "collection_id": collectionID})
	}

	return nil
}

func (r *links) checkPair(ctx context.Context, userID, linkID, collectionID int64) error {
	link := &Link{}
	err := r.db.NewSelect().Model(link).
		Column("user_id").
		Where("?TableAlias.id = ?", linkID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return newNotFound("link")
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve link")
	}
	if link.UserID != userID {
		return ErrNotOwner
	}

	collection := &Collection{}
	err = r.db.NewSelect().Model(collection).
		Column("user_id").
		Where("?TableAlias.id = ?", collectionID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return newNotFound("collection")
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve collection")
	}
	if collection.UserID != userID {
		return ErrNotOwner
	}

	return nil
}
