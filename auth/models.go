package auth

import (
	"time"

	"github.com/uptrace/bun"
)

// User is the account model. The password is stored as a `salt$hex` composite
// produced by HashPassword, never in clear text.
type User struct {
	bun.BaseModel  `bun:"table:users,alias:usr"`
	ID             int64     `bun:"id,pk,autoincrement" json:"id,omitempty"`
	Username       string    `bun:"username,notnull,unique" json:"username,omitempty"`
	FirstName      string    `bun:"first_name" json:"first_name,omitempty"`
	LastName       string    `bun:"last_name" json:"last_name,omitempty"`
	Email          string    `bun:"email,notnull,unique" json:"email,omitempty"`
	HashedPassword string    `bun:"hashed_password,notnull" json:"-"`
	IsActive       bool      `bun:"is_active,notnull,default:true" json:"is_active"`
	IsStaff        bool      `bun:"is_staff,notnull,default:false" json:"is_staff,omitempty"`
	CreatedAt      time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at,omitempty"`
}

// SecretKey holds the per-user signing secret. At most one row per user;
// Rotate replaces key and created in place, no history is kept.
type SecretKey struct {
	bun.BaseModel `bun:"table:secret_keys,alias:sk"`
	ID            int64     `bun:"id,pk,autoincrement" json:"id,omitempty"`
	Key           string    `bun:"key,notnull,unique" json:"-"`
	Created       time.Time `bun:"created,nullzero,notnull,default:current_timestamp" json:"created,omitempty"`
	UserID        int64     `bun:"user_id,notnull,unique" json:"user_id,omitempty"`
	User          *User     `bun:"rel:belongs-to,join:user_id=id" json:"user,omitempty"`
}

// Token is the issued credential pair. At most one row per user; issuing a
// new pair overwrites the old one, which stops resolving on lookup. Expiry is
// computed from Created plus the configured lifetime, there is no expires_at
// column.
type Token struct {
	bun.BaseModel `bun:"table:tokens,alias:tkn"`
	ID            int64     `bun:"id,pk,autoincrement" json:"id,omitempty"`
	AccessToken   string    `bun:"access_token,notnull,unique" json:"access_token,omitempty"`
	RefreshToken  string    `bun:"refresh_token,notnull,unique" json:"refresh_token,omitempty"`
	Created       time.Time `bun:"created,nullzero,notnull,default:current_timestamp" json:"created,omitempty"`
	UserID        int64     `bun:"user_id,notnull,unique" json:"user_id,omitempty"`
	User          *User     `bun:"rel:belongs-to,join:user_id=id" json:"user,omitempty"`
}

// FullName joins the optional name fields for display.
func (u *User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	default:
		return u.FirstName + " " + u.LastName
	}
}
