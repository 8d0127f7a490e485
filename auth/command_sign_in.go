package auth

import (
	"context"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
)

type SignInMessage struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	OnResponse func(*Token)
}

func (m SignInMessage) Type() string { return "auth.sign_in" }

// Validate will run validation rules
func (m SignInMessage) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Email, validation.Required, is.Email),
		validation.Field(&m.Password, validation.Required),
	)
}

type SignInHandler struct {
	repo   RepositoryManager
	minter TokenMinter
	logger Logger
}

func NewSignInHandler(repo RepositoryManager, minter TokenMinter) *SignInHandler {
	return &SignInHandler{repo: repo, minter: minter, logger: defLogger{}}
}

func (h *SignInHandler) WithLogger(logger Logger) *SignInHandler {
	h.logger = logger
	return h
}

func (h *SignInHandler) Execute(ctx context.Context, msg SignInMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(ctx.Err(), goerrors.CategoryOperation, "context cancelled during sign in")
	default:
		return h.execute(ctx, msg)
	}
}

func (h *SignInHandler) execute(ctx context.Context, msg SignInMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	if err := msg.Validate(); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid sign in payload").
			WithCode(goerrors.CodeBadRequest).
			WithMetadata(map[string]any{"fields": FormatValidationErrorToMap(err)})
	}

	// Unknown email and failed verification collapse into one error so the
	// response does not reveal whether the account exists.
	user, err := h.repo.Users().GetByEmail(ctx, msg.Email)
	if err != nil {
		if IsNotFound(err) {
			return ErrIncorrectCredentials
		}
		return err
	}

	ok, err := VerifyPassword(msg.Password, user.HashedPassword)
	if err != nil {
		h.logger.Error("password verification failed", "user_id", user.ID, "error", err)
		return err
	}
	if !ok {
		return ErrIncorrectCredentials
	}

	if !user.IsActive {
		return ErrInactiveUser
	}

	token, err := h.minter.Issue(ctx, user.ID)
	if err != nil {
		return err
	}

	if msg.OnResponse != nil {
		token.User = user
		msg.OnResponse(token)
	}

	return nil
}
