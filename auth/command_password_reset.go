package auth

import (
	"context"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
)

// RequestPasswordResetMessage asks for a reset link to be mailed out. The
// capability secret sent in the link is the user's current signing secret,
// which exists once the user has signed in at least once.
type RequestPasswordResetMessage struct {
	Email string `json:"email"`
}

func (m RequestPasswordResetMessage) Type() string { return "auth.password_reset_request" }

// Validate will run validation rules
func (m RequestPasswordResetMessage) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Email, validation.Required, is.Email),
	)
}

type RequestPasswordResetHandler struct {
	repo     RepositoryManager
	notifier Notifier
	logger   Logger
}

func NewRequestPasswordResetHandler(repo RepositoryManager, notifier Notifier) *RequestPasswordResetHandler {
	return &RequestPasswordResetHandler{
		repo:     repo,
		notifier: notifier,
		logger:   defLogger{},
	}
}

func (h *RequestPasswordResetHandler) WithLogger(logger Logger) *RequestPasswordResetHandler {
	h.logger = logger
	return h
}

// Execute hands the notification to the queue and returns. Delivery is
// fire-and-forget; a dispatch failure never fails the request.
func (h *RequestPasswordResetHandler) Execute(ctx context.Context, msg RequestPasswordResetMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(ctx.Err(), goerrors.CategoryOperation, "context cancelled during password reset request")
	default:
	}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	if err := msg.Validate(); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid password reset payload").
			WithCode(goerrors.CodeBadRequest).
			WithMetadata(map[string]any{"fields": FormatValidationErrorToMap(err)})
	}

	user, err := h.repo.Users().GetByEmail(ctx, msg.Email)
	if err != nil {
		if IsNotFound(err) {
			return ErrNoSuchEmail
		}
		return err
	}

	secret, err := h.repo.SecretKeys().GetByUser(ctx, user.ID)
	if err != nil {
		if IsNotFound(err) {
			return ErrNoSuchEmail
		}
		return err
	}

	h.notifier.EnqueueResetPassword(user.Email, secret.Key)
	h.logger.Info("password reset notification queued", "user_id", user.ID)

	return nil
}

// ResetPasswordMessage finalizes an unauthenticated reset: the capability
// secret from the mailed link maps back to the owning user.
type ResetPasswordMessage struct {
	SecretKey       string `json:"-"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

func (m ResetPasswordMessage) Type() string { return "auth.password_reset" }

// Validate will run validation rules
func (m ResetPasswordMessage) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.NewPassword, validation.Required, validation.Length(10, 50)),
		validation.Field(&m.ConfirmPassword,
			validation.Required,
			validation.By(ValidateStringEquals(m.NewPassword)),
		),
	)
}

type ResetPasswordHandler struct {
	repo RepositoryManager
}

func NewResetPasswordHandler(repo RepositoryManager) *ResetPasswordHandler {
	return &ResetPasswordHandler{repo: repo}
}

// Execute persists the new hash for the user owning the capability secret.
// The secret itself is not invalidated here; the next token issuance rotates
// it away, which is the only thing that makes it single-use.
func (h *ResetPasswordHandler) Execute(ctx context.Context, msg ResetPasswordMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(ctx.Err(), goerrors.CategoryOperation, "context cancelled during password reset")
	default:
	}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	secret, err := h.repo.SecretKeys().GetByKey(ctx, msg.SecretKey)
	if err != nil {
		if IsNotFound(err) {
			return ErrNoSuchSecretKey
		}
		return err
	}

	if err := msg.Validate(); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid password reset payload").
			WithCode(goerrors.CodeBadRequest).
			WithMetadata(map[string]any{"fields": FormatValidationErrorToMap(err)})
	}

	hash, err := HashPassword(msg.NewPassword)
	if err != nil {
		return err
	}

	return h.repo.Users().ChangePassword(ctx, secret.UserID, hash)
}
