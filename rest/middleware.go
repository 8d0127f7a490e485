package rest

import (
	"github.com/gofiber/fiber/v2"
	"github.com/linkcase/linkcase/auth"
)

const principalKey = "linkcase:principal"

// Session resolves the Authorization header on every request and parks the
// outcome in locals. It never aborts: anonymous requests pass through so
// public routes keep working, and RequireAuth decides per route.
func Session(backend *auth.Backend) fiber.Handler {
	return func(c *fiber.Ctx) error {
		outcome := backend.Authenticate(c.UserContext(), c.Get(fiber.HeaderAuthorization))
		c.Locals(principalKey, outcome)
		return c.Next()
	}
}

// RequireAuth aborts with 401 unless the session middleware resolved an
// authenticated principal. Anonymous and rejected requests both end here;
// rejected ones carry the backend's reason in the response body.
func RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		outcome, ok := c.Locals(principalKey).(auth.Outcome)
		if !ok || outcome.Anonymous() {
			return renderError(c, auth.ErrNoCredentials)
		}

		if outcome.Rejected() {
			return renderError(c, outcome.Reason)
		}

		return c.Next()
	}
}

// Principal returns the authenticated user for the request. Handlers behind
// RequireAuth can rely on the second return being true.
func Principal(c *fiber.Ctx) (*auth.User, bool) {
	outcome, ok := c.Locals(principalKey).(auth.Outcome)
	if !ok || !outcome.Authenticated() {
		return nil, false
	}
	return outcome.User, true
}
