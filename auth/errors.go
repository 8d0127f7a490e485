package auth

import (
	goerrors "github.com/goliatone/go-errors"
)

// Credential errors. The web layer maps these to 401 responses; the distinct
// messages let clients tell "re-authenticate" apart from "retry".
var (
	// ErrNoCredentials is a bearer header with the scheme keyword but no token.
	ErrNoCredentials = goerrors.New("invalid token header: no credentials provided", goerrors.CategoryAuth).
				WithCode(goerrors.CodeUnauthorized).
				WithTextCode("NO_CREDENTIALS")

	// ErrTokenWithSpaces is a bearer header with more than one token part.
	ErrTokenWithSpaces = goerrors.New("invalid token header: token string should not contain spaces", goerrors.CategoryAuth).
				WithCode(goerrors.CodeUnauthorized).
				WithTextCode("TOKEN_WITH_SPACES")

	// ErrInvalidTokenChars is a bearer token with non-decodable bytes.
	ErrInvalidTokenChars = goerrors.New("invalid token header: token string should not contain invalid characters", goerrors.CategoryAuth).
				WithCode(goerrors.CodeUnauthorized).
				WithTextCode("TOKEN_INVALID_CHARS")

	// ErrInvalidToken is an access token with no matching store row.
	ErrInvalidToken = goerrors.New("invalid token", goerrors.CategoryAuth).
			WithCode(goerrors.CodeUnauthorized).
			WithTextCode("TOKEN_INVALID")

	// ErrTokenExpired is an access token past the configured lifetime.
	ErrTokenExpired = goerrors.New("token expired", goerrors.CategoryAuth).
			WithCode(goerrors.CodeUnauthorized).
			WithTextCode("TOKEN_EXPIRED")

	// ErrUserInactive rejects credentials of a deactivated account.
	ErrUserInactive = goerrors.New("user inactive or deleted", goerrors.CategoryAuth).
			WithCode(goerrors.CodeUnauthorized).
			WithTextCode("USER_INACTIVE")

	// ErrInvalidRefreshToken is a refresh token with no matching store row.
	ErrInvalidRefreshToken = goerrors.New("invalid refresh token", goerrors.CategoryAuth).
				WithCode(goerrors.CodeUnauthorized).
				WithTextCode("REFRESH_TOKEN_INVALID")

	// ErrRefreshTokenExpired is a refresh token past the refresh lifetime.
	ErrRefreshTokenExpired = goerrors.New("refresh token expired", goerrors.CategoryAuth).
				WithCode(goerrors.CodeUnauthorized).
				WithTextCode("REFRESH_TOKEN_EXPIRED")
)

// Session flow errors.
var (
	// ErrIncorrectCredentials covers unknown email and failed password check
	// alike, so sign-in does not leak which of the two was wrong.
	ErrIncorrectCredentials = goerrors.New("incorrect email or password", goerrors.CategoryAuth).
				WithCode(goerrors.CodeUnauthorized).
				WithTextCode("INCORRECT_CREDENTIALS")

	ErrInactiveUser = goerrors.New("inactive user", goerrors.CategoryAuth).
			WithCode(goerrors.CodeUnauthorized).
			WithTextCode("INACTIVE_USER")

	ErrIncorrectOldPassword = goerrors.New("incorrect old password", goerrors.CategoryValidation).
				WithCode(goerrors.CodeBadRequest).
				WithTextCode("INCORRECT_OLD_PASSWORD")

	ErrNoSuchEmail = goerrors.New("no user with such email", goerrors.CategoryAuth).
			WithCode(goerrors.CodeUnauthorized).
			WithTextCode("NO_SUCH_EMAIL")

	ErrNoSuchSecretKey = goerrors.New("no user with such secret key", goerrors.CategoryAuth).
				WithCode(goerrors.CodeUnauthorized).
				WithTextCode("NO_SUCH_SECRET_KEY")
)

// ErrMalformedHash means a stored password is not a `salt$hex` composite.
// That is corrupt data, not a recoverable condition.
var ErrMalformedHash = goerrors.New("malformed password hash: missing salt separator", goerrors.CategoryInternal).
	WithCode(goerrors.CodeInternal).
	WithTextCode("MALFORMED_HASH")

// IsAuthError reports whether err carries the auth category, meaning the
// caller presented bad credentials rather than hit a server fault.
func IsAuthError(err error) bool {
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		return false
	}
	return rich.Category == goerrors.CategoryAuth
}
