package bookmarks

import (
	goerrors "github.com/goliatone/go-errors"
)

var (
	// ErrNotOwner rejects operations on a record owned by someone else.
	ErrNotOwner = goerrors.New("record belongs to another user", goerrors.CategoryAuthz).
			WithCode(goerrors.CodeForbidden).
			WithTextCode("NOT_OWNER")

	// ErrInvalidLinkType rejects a link type outside the accepted set.
	ErrInvalidLinkType = goerrors.New("invalid link type", goerrors.CategoryValidation).
				WithCode(goerrors.CodeBadRequest).
				WithTextCode("INVALID_LINK_TYPE")
)

// IsNotFound reports whether err is a not-found lookup failure.
func IsNotFound(err error) bool {
	var rich *goerrors.Error
	if goerrors.As(err, &rich) {
		return rich.Category == goerrors.CategoryNotFound
	}
	return false
}

func newNotFound(what string) *goerrors.Error {
	return goerrors.New(what+" not found", goerrors.CategoryNotFound).
		WithCode(goerrors.CodeNotFound)
}
