package auth

import (
	"context"
	"database/sql"
	"errors"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// Users is the account repository. Email and username are unique; deleting a
// user cascades into the secret_keys and tokens rows.
type Users interface {
	Create(ctx context.Context, user *User) (*User, error)
	CreateTx(ctx context.Context, tx bun.IDB, user *User) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	Update(ctx context.Context, user *User) (*User, error)
	ChangePassword(ctx context.Context, id int64, hashedPassword string) error
	ChangePasswordTx(ctx context.Context, tx bun.IDB, id int64, hashedPassword string) error
	SetActive(ctx context.Context, id int64, active bool) error
	Delete(ctx context.Context, id int64) error
}

type users struct {
	db *bun.DB
}

var _ Users = (*users)(nil)

func NewUsersRepository(db *bun.DB) Users {
	return &users{db: db}
}

func (r *users) Create(ctx context.Context, user *User) (*User, error) {
	return r.CreateTx(ctx, r.db, user)
}

func (r *users) CreateTx(ctx context.Context, tx bun.IDB, user *User) (*User, error) {
	if _, err := tx.NewInsert().Model(user).Exec(ctx); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryConflict, "could not create user").
			WithMetadata(map[string]any{"email": user.Email, "username": user.Username})
	}
	return user, nil
}

func (r *users) GetByID(ctx context.Context, id int64) (*User, error) {
	record := &User{}
	err := r.db.NewSelect().Model(record).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, wrapUserLookupErr(err, map[string]any{"id": id})
	}
	return record, nil
}

func (r *users) GetByEmail(ctx context.Context, email string) (*User, error) {
	record := &User{}
	err := r.db.NewSelect().Model(record).
		Where("?TableAlias.email = ?", email).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, wrapUserLookupErr(err, map[string]any{"email": email})
	}
	return record, nil
}

func (r *users) GetByUsername(ctx context.Context, username string) (*User, error) {
	record := &User{}
	err := r.db.NewSelect().Model(record).
		Where("?TableAlias.username = ?", username).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, wrapUserLookupErr(err, map[string]any{"username": username})
	}
	return record, nil
}

func (r *users) Update(ctx context.Context, user *User) (*User, error) {
	res, err := r.db.NewUpdate().Model(user).
		Column("username", "first_name", "last_name", "email").
		WherePK().
		Exec(ctx)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to update user")
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return nil, newUserNotFound(map[string]any{"id": user.ID})
	}
	return user, nil
}

func (r *users) ChangePassword(ctx context.Context, id int64, hashedPassword string) error {
	return r.ChangePasswordTx(ctx, r.db, id, hashedPassword)
}

func (r *users) ChangePasswordTx(ctx context.Context, tx bun.IDB, id int64, hashedPassword string) error {
	res, err := tx.NewUpdate().Model((*User)(nil)).
		Set("hashed_password = ?", hashedPassword).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to change password")
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return newUserNotFound(map[string]any{"id": id})
	}
	return nil
}

func (r *users) SetActive(ctx context.Context, id int64, active bool) error {
	res, err := r.db.NewUpdate().Model((*User)(nil)).
		Set("is_active = ?", active).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to update user status")
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return newUserNotFound(map[string]any{"id": id})
	}
	return nil
}

func (r *users) Delete(ctx context.Context, id int64) error {
	_, err := r.db.NewDelete().Model((*User)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to delete user")
	}
	return nil
}

func newUserNotFound(meta map[string]any) error {
	return goerrors.New("user not found", goerrors.CategoryNotFound).
		WithCode(goerrors.CodeNotFound).
		WithTextCode("USER_NOT_FOUND").
		WithMetadata(meta)
}

func wrapUserLookupErr(err error, meta map[string]any) error {
	if errors.Is(err, sql.ErrNoRows) {
		return newUserNotFound(meta)
	}
	return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user").
		WithMetadata(meta)
}

// IsNotFound reports whether err is a repository miss.
func IsNotFound(err error) bool {
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		return false
	}
	return rich.Category == goerrors.CategoryNotFound
}
