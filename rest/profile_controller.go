package rest

import (
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/linkcase/linkcase/auth"
)

var (
	usernamePattern = regexp.MustCompile(`^[A-Za-z]\w*$`)
	namePattern     = regexp.MustCompile(`^[A-Za-z]*$`)
)

// ProfileController exposes the authenticated user's own account.
type ProfileController struct {
	Logger Logger
	Repo   auth.RepositoryManager
}

func NewProfileController(repo auth.RepositoryManager) *ProfileController {
	return &ProfileController{
		Logger: defLogger{},
		Repo:   repo,
	}
}

// RegisterProfileRoutes mounts the profile endpoints. All of them sit behind
// RequireAuth.
func RegisterProfileRoutes(app fiber.Router, controller *ProfileController) {
	app.Get("/profile", RequireAuth(), controller.ProfileGet)
	app.Put("/profile", RequireAuth(), controller.ProfilePut)
	app.Delete("/profile", RequireAuth(), controller.ProfileDelete)
}

func (p *ProfileController) ProfileGet(c *fiber.Ctx) error {
	user, ok := Principal(c)
	if !ok {
		return renderError(c, auth.ErrNoCredentials)
	}
	return c.JSON(user)
}

type profileUpdate struct {
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

func (m profileUpdate) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Username,
			validation.Required,
			validation.Length(5, 30),
			validation.Match(usernamePattern),
		),
		validation.Field(&m.FirstName, validation.Length(0, 30), validation.Match(namePattern)),
		validation.Field(&m.LastName, validation.Length(0, 30), validation.Match(namePattern)),
		validation.Field(&m.Email, validation.Required, validation.Length(6, 100), is.Email),
	)
}

func (p *ProfileController) ProfilePut(c *fiber.Ctx) error {
	user, ok := Principal(c)
	if !ok {
		return renderError(c, auth.ErrNoCredentials)
	}

	payload := profileUpdate{}
	if err := c.BodyParser(&payload); err != nil {
		return renderError(c, badRequest("malformed profile payload"))
	}

	if err := payload.Validate(); err != nil {
		return renderError(c, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid profile payload").
			WithCode(goerrors.CodeBadRequest).
			WithMetadata(map[string]any{"fields": auth.FormatValidationErrorToMap(err)}))
	}

	user.Username = payload.Username
	user.FirstName = payload.FirstName
	user.LastName = payload.LastName
	user.Email = payload.Email

	updated, err := p.Repo.Users().Update(c.UserContext(), user)
	if err != nil {
		return renderError(c, err)
	}

	return c.JSON(updated)
}

// ProfileDelete removes the account. The cascade takes the secret key, token
// pair and bookmarks with it.
func (p *ProfileController) ProfileDelete(c *fiber.Ctx) error {
	user, ok := Principal(c)
	if !ok {
		return renderError(c, auth.ErrNoCredentials)
	}

	if err := p.Repo.Users().Delete(c.UserContext(), user.ID); err != nil {
		return renderError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
