package auth

import (
	"context"
	"fmt"
	"time"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Error(format string, args ...any)
}

// Config holds auth options
type Config interface {
	GetAuthScheme() string
	GetAccessTokenLifetime() time.Duration
	GetRefreshTokenLifetime() time.Duration
}

// TokenMinter mints and persists a new access/refresh pair for a user,
// rotating the user's signing secret in the process.
type TokenMinter interface {
	Issue(ctx context.Context, userID int64) (*Token, error)
}

// Notifier is the one-way hand-off to the notification queue. Delivery is
// asynchronous and at-least-once; failures never reach the caller.
type Notifier interface {
	EnqueueResetPassword(email, secretKey string)
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] AUTH "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] AUTH "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] AUTH "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
