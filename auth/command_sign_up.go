package auth

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
)

var usernameRx = regexp.MustCompile(`^[A-Za-z]\w*$`)
var nameRx = regexp.MustCompile(`^[A-Za-z]+$`)

type SignUpMessage struct {
	Username        string `json:"username"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	OnResponse      func(*Token)
}

func (m SignUpMessage) Type() string { return "auth.sign_up" }

// Validate will run validation rules
func (m SignUpMessage) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Username,
			validation.Required,
			validation.Length(5, 30),
			validation.Match(usernameRx).Error("must start with a letter and contain only letters, digits and underscore"),
		),
		validation.Field(&m.FirstName,
			validation.Length(0, 30),
			validation.Match(nameRx).Error("can only contain letters"),
		),
		validation.Field(&m.LastName,
			validation.Length(0, 30),
			validation.Match(nameRx).Error("can only contain letters"),
		),
		validation.Field(&m.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&m.Password, validation.Required, validation.Length(10, 50)),
		validation.Field(&m.ConfirmPassword,
			validation.Required,
			validation.By(ValidateStringEquals(m.Password)),
		),
	)
}

type SignUpHandler struct {
	repo   RepositoryManager
	minter TokenMinter
}

func NewSignUpHandler(repo RepositoryManager, minter TokenMinter) *SignUpHandler {
	return &SignUpHandler{repo: repo, minter: minter}
}

func (h *SignUpHandler) Execute(ctx context.Context, msg SignUpMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(ctx.Err(), goerrors.CategoryOperation, "context cancelled during sign up")
	default:
		return h.execute(ctx, msg)
	}
}

func (h *SignUpHandler) execute(ctx context.Context, msg SignUpMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	if err := msg.Validate(); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid sign up payload").
			WithCode(goerrors.CodeBadRequest).
			WithMetadata(map[string]any{"fields": FormatValidationErrorToMap(err)})
	}

	hash, err := HashPassword(msg.Password)
	if err != nil {
		return err
	}

	user := &User{
		Username:       strings.TrimSpace(msg.Username),
		FirstName:      strings.TrimSpace(msg.FirstName),
		LastName:       strings.TrimSpace(msg.LastName),
		Email:          strings.TrimSpace(msg.Email),
		HashedPassword: hash,
		IsActive:       true,
	}

	if user, err = h.repo.Users().Create(ctx, user); err != nil {
		return err
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

// ValidateStringEquals will check that both values match
func ValidateStringEquals(str string) validation.RuleFunc {
	return func(value any) error {
		s, _ := value.(string)
		if s != str {
			return errors.New("values must match")
		}
		return nil
	}
}
