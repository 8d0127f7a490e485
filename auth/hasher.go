package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"math/big"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"golang.org/x/crypto/pbkdf2"
)

const (
	// DefaultSaltLength is the salt size used when hashing new passwords.
	DefaultSaltLength = 12

	hashIterations = 100_000
	hashKeyLength  = 32
	hashSeparator  = "$"

	saltAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// CreateSalt returns a cryptographically random alphabetic string.
func CreateSalt(length int) (string, error) {
	if length <= 0 {
		length = DefaultSaltLength
	}

	var b strings.Builder
	b.Grow(length)

	max := big.NewInt(int64(len(saltAlphabet)))
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to generate salt")
		}
		b.WriteByte(saltAlphabet[n.Int64()])
	}

	return b.String(), nil
}

// HashPassword derives a `salt$hex` composite from the password. When no salt
// is given a fresh one is generated. The digest is PBKDF2-SHA256 with a fixed
// iteration count, so the hex part is always 64 characters.
func HashPassword(password string, salt ...string) (string, error) {
	if password == "" {
		return "", goerrors.New("password must not be empty", goerrors.CategoryValidation).
			WithCode(goerrors.CodeBadRequest)
	}

	var s string
	if len(salt) > 0 && salt[0] != "" {
		s = salt[0]
	} else {
		var err error
		if s, err = CreateSalt(DefaultSaltLength); err != nil {
			return "", err
		}
	}

	digest := pbkdf2.Key([]byte(password), []byte(s), hashIterations, hashKeyLength, sha256.New)

	return s + hashSeparator + hex.EncodeToString(digest), nil
}

// VerifyPassword recomputes the digest with the stored salt and compares in
// constant time. A stored value without the separator is corrupt data and
// surfaces as ErrMalformedHash.
func VerifyPassword(password, stored string) (bool, error) {
	salt, expected, found := strings.Cut(stored, hashSeparator)
	if !found || salt == "" {
		return false, ErrMalformedHash
	}

	computed, err := HashPassword(password, salt)
	if err != nil {
		return false, err
	}

	_, computedHex, _ := strings.Cut(computed, hashSeparator)

	return subtle.ConstantTimeCompare([]byte(computedHex), []byte(expected)) == 1, nil
}
