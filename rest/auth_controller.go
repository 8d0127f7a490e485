package rest

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-print"
	"github.com/linkcase/linkcase/auth"
)

// AuthController owns the session lifecycle endpoints.
type AuthController struct {
	Debug  bool
	Logger Logger

	SignUp               *auth.SignUpHandler
	SignIn               *auth.SignInHandler
	SignOut              *auth.SignOutHandler
	Refresh              *auth.RefreshHandler
	ChangePassword       *auth.ChangePasswordHandler
	RequestPasswordReset *auth.RequestPasswordResetHandler
	ResetPassword        *auth.ResetPasswordHandler
}

type AuthControllerOption func(*AuthController) *AuthController

func NewAuthController(repo auth.RepositoryManager, minter auth.TokenMinter, cfg auth.Config, notifier auth.Notifier, opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger:               defLogger{},
		SignUp:               auth.NewSignUpHandler(repo, minter),
		SignIn:               auth.NewSignInHandler(repo, minter),
		SignOut:              auth.NewSignOutHandler(repo),
		Refresh:              auth.NewRefreshHandler(repo, minter, cfg),
		ChangePassword:       auth.NewChangePasswordHandler(repo),
		RequestPasswordReset: auth.NewRequestPasswordResetHandler(repo, notifier),
		ResetPassword:        auth.NewResetPasswordHandler(repo),
	}

	for _, opt := range opts {
		c = opt(c)
	}

	return c
}

func WithAuthLogger(logger Logger) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Logger = logger
		return c
	}
}

func WithAuthDebug(debug bool) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Debug = debug
		return c
	}
}

// RegisterAuthRoutes mounts the session lifecycle under the given router,
// normally the /api/v1/auth group.
func RegisterAuthRoutes(app fiber.Router, controller *AuthController) {
	app.Post("/sign-up", controller.SignUpPost)
	app.Post("/sign-in", controller.SignInPost)
	app.Post("/sign-out", RequireAuth(), controller.SignOutPost)
	app.Post("/refresh", controller.RefreshPost)

	app.Put("/password", RequireAuth(), controller.ChangePasswordPut)
	app.Post("/password/forgot", controller.PasswordForgotPost)
	app.Put("/password/reset/:secret", controller.PasswordResetPut)
}

type tokenResponse struct {
	AccessToken  string     `json:"access_token"`
	RefreshToken string     `json:"refresh_token"`
	User         *auth.User `json:"user,omitempty"`
}

func newTokenResponse(token *auth.Token) tokenResponse {
	return tokenResponse{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		User:         token.User,
	}
}

func (a *AuthController) SignUpPost(c *fiber.Ctx) error {
	msg := auth.SignUpMessage{}
	if err := c.BodyParser(&msg); err != nil {
		return renderError(c, badRequest("malformed sign up payload"))
	}

	if a.Debug {
		a.Logger.Debug("sign up request: %s", print.MaybePrettyJSON(msg))
	}

	var token *auth.Token
	msg.OnResponse = func(tk *auth.Token) { token = tk }

	if err := a.SignUp.Execute(c.UserContext(), msg); err != nil {
		return renderError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(newTokenResponse(token))
}

func (a *AuthController) SignInPost(c *fiber.Ctx) error {
	msg := auth.SignInMessage{}
	if err := c.BodyParser(&msg); err != nil {
		return renderError(c, badRequest("malformed sign in payload"))
	}

	var token *auth.Token
	msg.OnResponse = func(tk *auth.Token) { token = tk }

	if err := a.SignIn.Execute(c.UserContext(), msg); err != nil {
		return renderError(c, err)
	}

	return c.JSON(newTokenResponse(token))
}

func (a *AuthController) SignOutPost(c *fiber.Ctx) error {
	user, ok := Principal(c)
	if !ok {
		return renderError(c, auth.ErrNoCredentials)
	}

	if err := a.SignOut.Execute(c.UserContext(), auth.SignOutMessage{UserID: user.ID}); err != nil {
		return renderError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (a *AuthController) RefreshPost(c *fiber.Ctx) error {
	msg := auth.RefreshMessage{}
	if err := c.BodyParser(&msg); err != nil {
		return renderError(c, badRequest("malformed refresh payload"))
	}

	var token *auth.Token
	msg.OnResponse = func(tk *auth.Token) { token = tk }

	if err := a.Refresh.Execute(c.UserContext(), msg); err != nil {
		return renderError(c, err)
	}

	return c.JSON(newTokenResponse(token))
}

func (a *AuthController) ChangePasswordPut(c *fiber.Ctx) error {
	user, ok := Principal(c)
	if !ok {
		return renderError(c, auth.ErrNoCredentials)
	}

	msg := auth.ChangePasswordMessage{}
	if err := c.BodyParser(&msg); err != nil {
		return renderError(c, badRequest("malformed password change payload"))
	}
	msg.UserID = user.ID

	if err := a.ChangePassword.Execute(c.UserContext(), msg); err != nil {
		return renderError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (a *AuthController) PasswordForgotPost(c *fiber.Ctx) error {
	msg := auth.RequestPasswordResetMessage{}
	if err := c.BodyParser(&msg); err != nil {
		return renderError(c, badRequest("malformed payload"))
	}

	err := a.RequestPasswordReset.Execute(c.UserContext(), msg)
	if err != nil && !errors.Is(err, auth.ErrNoSuchEmail) {
		return renderError(c, err)
	}

	// 202 either way: the response must not reveal whether the address has
	// an account.
	return c.SendStatus(fiber.StatusAccepted)
}

func (a *AuthController) PasswordResetPut(c *fiber.Ctx) error {
	msg := auth.ResetPasswordMessage{}
	if err := c.BodyParser(&msg); err != nil {
		return renderError(c, badRequest("malformed payload"))
	}
	msg.SecretKey = c.Params("secret")

	if err := a.ResetPassword.Execute(c.UserContext(), msg); err != nil {
		return renderError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
