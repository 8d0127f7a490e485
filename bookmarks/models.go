// Package bookmarks holds the link and collection domain: typed bookmarks
// owned by a user, optionally grouped into collections.
package bookmarks

import (
	"time"

	"github.com/uptrace/bun"
)

// LinkType classifies a saved link.
type LinkType string

const (
	LinkTypeWebsite LinkType = "website"
	LinkTypeBook    LinkType = "book"
	LinkTypeArticle LinkType = "article"
	LinkTypeMusic   LinkType = "music"
	LinkTypeVideo   LinkType = "video"
)

// LinkTypes lists every accepted value, in display order.
func LinkTypes() []LinkType {
	return []LinkType{
		LinkTypeWebsite,
		LinkTypeBook,
		LinkTypeArticle,
		LinkTypeMusic,
		LinkTypeVideo,
	}
}

// Valid reports whether t is one of the accepted link types.
func (t LinkType) Valid() bool {
	switch t {
	case LinkTypeWebsite, LinkTypeBook, LinkTypeArticle, LinkTypeMusic, LinkTypeVideo:
		return true
	}
	return false
}

// Link is a saved bookmark. URLs are unique per installation; saving the same
// address twice fails as a conflict.
type Link struct {
	bun.BaseModel `bun:"table:links,alias:l"`

	ID          int64     `bun:"id,pk,autoincrement" json:"id"`
	Title       string    `bun:"title,notnull" json:"title"`
	Description string    `bun:"description" json:"description,omitempty"`
	URL         string    `bun:"url,notnull,unique" json:"url"`
	Image       string    `bun:"image" json:"image,omitempty"`
	Type        LinkType  `bun:"type,notnull" json:"type"`
	UserID      int64     `bun:"user_id,notnull" json:"user_id"`
	CreatedAt   time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt   time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`

	Collections []*Collection `bun:"m2m:link_collections,join:Link=Collection" json:"collections,omitempty"`
}

// Collection groups links under a unique name.
type Collection struct {
	bun.BaseModel `bun:"table:collections,alias:c"`

	ID          int64     `bun:"id,pk,autoincrement" json:"id"`
	Name        string    `bun:"name,notnull,unique" json:"name"`
	Description string    `bun:"description" json:"description,omitempty"`
	UserID      int64     `bun:"user_id,notnull" json:"user_id"`
	CreatedAt   time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt   time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`

	Links []*Link `bun:"m2m:link_collections,join:Collection=Link" json:"links,omitempty"`
}

// LinkCollection is the join row between links and collections.
type LinkCollection struct {
	bun.BaseModel `bun:"table:link_collections,alias:lc"`

	LinkID       int64       `bun:"link_id,pk" json:"link_id"`
	Link         *Link       `bun:"rel:belongs-to,join:link_id=id" json:"-"`
	CollectionID int64       `bun:"collection_id,pk" json:"collection_id"`
	Collection   *Collection `bun:"rel:belongs-to,join:collection_id=id" json:"-"`
}
