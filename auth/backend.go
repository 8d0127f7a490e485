package auth

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"
)

// OutcomeState is the terminal state of authenticating one request.
type OutcomeState int

const (
	// StateAnonymous means no bearer credentials were presented. Not an
	// error: downstream authorization decides what anonymous may do.
	StateAnonymous OutcomeState = iota
	// StateAuthenticated resolves a principal and its credential.
	StateAuthenticated
	// StateRejected carries the reason the credential was refused.
	StateRejected
)

// Outcome is the result of Backend.Authenticate.
type Outcome struct {
	State      OutcomeState
	User       *User
	Credential *Token
	Reason     error
}

func (o Outcome) Anonymous() bool     { return o.State == StateAnonymous }
func (o Outcome) Authenticated() bool { return o.State == StateAuthenticated }
func (o Outcome) Rejected() bool      { return o.State == StateRejected }

// Backend validates inbound bearer tokens against the token store and the
// expiry policy. It never verifies the JWT signature: the per-user signing
// secret is rotated on every issuance and unrecoverable afterwards, so
// authentication is token-string equality plus the stored created timestamp.
type Backend struct {
	repo     RepositoryManager
	scheme   string
	lifetime time.Duration
	logger   Logger
	nowFunc  func() time.Time
}

// NewBackend returns a new Backend configured with the bearer scheme keyword
// and the access token lifetime.
func NewBackend(repo RepositoryManager, cfg Config) *Backend {
	scheme := cfg.GetAuthScheme()
	if scheme == "" {
		scheme = "Bearer"
	}

	return &Backend{
		repo:     repo,
		scheme:   scheme,
		lifetime: cfg.GetAccessTokenLifetime(),
		logger:   defLogger{},
		nowFunc:  time.Now,
	}
}

func (b *Backend) WithLogger(logger Logger) *Backend {
	b.logger = logger
	return b
}

// WithClock overrides the wall clock used for expiry checks.
func (b *Backend) WithClock(now func() time.Time) *Backend {
	if now != nil {
		b.nowFunc = now
	}
	return b
}

// Authenticate runs the per-request state machine over the raw Authorization
// header value.
//
//	no header / different scheme      -> Anonymous
//	scheme but no token               -> Rejected "no credentials provided"
//	more than one token part          -> Rejected "should not contain spaces"
//	non-decodable bytes               -> Rejected "invalid characters"
//	no matching store row             -> Rejected "invalid token"
//	created + lifetime < now          -> Rejected "token expired"
//	owning user inactive              -> Rejected "user inactive or deleted"
//	otherwise                         -> Authenticated(user, token record)
func (b *Backend) Authenticate(ctx context.Context, header string) Outcome {
	parts := strings.Fields(header)

	if len(parts) == 0 || !strings.EqualFold(parts[0], b.scheme) {
		return Outcome{State: StateAnonymous}
	}

	if len(parts) == 1 {
		return b.reject(ErrNoCredentials)
	}

	if len(parts) > 2 {
		return b.reject(ErrTokenWithSpaces)
	}

	access := parts[1]
	if !utf8.ValidString(access) {
		return b.reject(ErrInvalidTokenChars)
	}

	return b.authenticateCredentials(ctx, access)
}

func (b *Backend) authenticateCredentials(ctx context.Context, access string) Outcome {
	record, err := b.repo.Tokens().GetByAccessToken(ctx, access)
	if err != nil {
		if IsNotFound(err) {
			return b.reject(ErrInvalidToken)
		}
		b.logger.Error("token lookup failed", "error", err)
		return b.reject(err)
	}

	if record.Created.Add(b.lifetime).Before(b.nowFunc()) {
		return b.reject(ErrTokenExpired)
	}

	user := record.User
	if user == nil {
		user, err = b.repo.Users().GetByID(ctx, record.UserID)
		if err != nil {
			if IsNotFound(err) {
				return b.reject(ErrUserInactive)
			}
			b.logger.Error("principal lookup failed", "error", err)
			return b.reject(err)
		}
	}

	if !user.IsActive {
		return b.reject(ErrUserInactive)
	}

	return Outcome{
		State:      StateAuthenticated,
		User:       user,
		Credential: record,
	}
}

// Scheme returns the configured bearer scheme keyword.
func (b *Backend) Scheme() string {
	return b.scheme
}

func (b *Backend) reject(reason error) Outcome {
	return Outcome{State: StateRejected, Reason: reason}
}
