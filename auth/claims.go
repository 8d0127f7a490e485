package auth

import (
	"strconv"

	"github.com/golang-jwt/jwt/v5"
)

// Token payload types.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// TokenClaims is the payload signed into both halves of a pair: the owning
// user as subject plus the access/refresh discriminator.
//
// Note for implementers: the signature is effectively decorative. The secret
// it was signed with is rotated away on the next issuance, so the backend
// authenticates by store lookup and timestamps, never by re-verifying the
// signature.
type TokenClaims struct {
	jwt.RegisteredClaims
	TokenType string `json:"token_type,omitempty"`
}

// UserID parses the subject claim back into a user id.
func (c *TokenClaims) UserID() (int64, error) {
	return strconv.ParseInt(c.RegisteredClaims.Subject, 10, 64)
}

func newTokenClaims(userID int64, tokenType string) *TokenClaims {
	return &TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: strconv.FormatInt(userID, 10),
		},
		TokenType: tokenType,
	}
}
