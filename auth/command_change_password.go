package auth

import (
	"context"
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	goerrors "github.com/goliatone/go-errors"
)

type ChangePasswordMessage struct {
	UserID          int64  `json:"-"`
	OldPassword     string `json:"old_password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

func (m ChangePasswordMessage) Type() string { return "auth.change_password" }

// Validate will run validation rules
func (m ChangePasswordMessage) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.OldPassword, validation.Required),
		validation.Field(&m.NewPassword,
			validation.Required,
			validation.Length(10, 50),
			validation.By(validateNotEqual(m.OldPassword, "the new password cannot be similar to the old one")),
		),
		validation.Field(&m.ConfirmPassword,
			validation.Required,
			validation.By(ValidateStringEquals(m.NewPassword)),
		),
	)
}

type ChangePasswordHandler struct {
	repo RepositoryManager
}

func NewChangePasswordHandler(repo RepositoryManager) *ChangePasswordHandler {
	return &ChangePasswordHandler{repo: repo}
}

// Execute verifies the old password for the authenticated owner and persists
// the new hash. The active token pair is left in place.
func (h *ChangePasswordHandler) Execute(ctx context.Context, msg ChangePasswordMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(ctx.Err(), goerrors.CategoryOperation, "context cancelled during password change")
	default:
	}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	user, err := h.repo.Users().GetByID(ctx, msg.UserID)
	if err != nil {
		return err
	}

	ok, err := VerifyPassword(msg.OldPassword, user.HashedPassword)
	if err != nil {
		return err
	}
	if !ok {
		return ErrIncorrectOldPassword
	}

	if err := msg.Validate(); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid password change payload").
			WithCode(goerrors.CodeBadRequest).
			WithMetadata(map[string]any{"fields": FormatValidationErrorToMap(err)})
	}

	hash, err := HashPassword(msg.NewPassword)
	if err != nil {
		return err
	}

	return h.repo.Users().ChangePassword(ctx, user.ID, hash)
}

func validateNotEqual(other, message string) validation.RuleFunc {
	return func(value any) error {
		s, _ := value.(string)
		if s == other {
			return errors.New(message)
		}
		return nil
	}
}
