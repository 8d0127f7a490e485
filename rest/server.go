// Package rest assembles the HTTP surface: a fiber app with the session
// middleware, the auth lifecycle routes and the bookmark routes.
package rest

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/linkcase/linkcase/auth"
)

// App bundles everything the server needs to register routes.
type App struct {
	Backend   *auth.Backend
	Auth      *AuthController
	Profile   *ProfileController
	Bookmarks *BookmarksController
}

// NewServer builds the fiber app with all routes mounted under /api/v1.
func NewServer(app App) *fiber.App {
	srv := fiber.New(fiber.Config{
		AppName:               "linkcase",
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				return c.Status(fe.Code).JSON(errorBody{
					Error: errorDetail{Message: fe.Message},
				})
			}
			return renderError(c, err)
		},
	})

	srv.Use(recover.New())
	srv.Use(logger.New())
	srv.Use(Session(app.Backend))

	v1 := srv.Group("/api/v1")

	RegisterAuthRoutes(v1.Group("/auth"), app.Auth)
	RegisterProfileRoutes(v1, app.Profile)
	RegisterBookmarkRoutes(v1, app.Bookmarks)

	srv.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	return srv
}
