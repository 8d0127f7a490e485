package rest

import (
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
)

// errorBody is the JSON envelope every failed request gets.
type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Message  string         `json:"message"`
	TextCode string         `json:"text_code,omitempty"`
	Fields   map[string]any `json:"fields,omitempty"`
}

func statusFor(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryAuth:
		return fiber.StatusUnauthorized
	case goerrors.CategoryAuthz:
		return fiber.StatusForbidden
	case goerrors.CategoryNotFound:
		return fiber.StatusNotFound
	case goerrors.CategoryValidation, goerrors.CategoryBadInput:
		return fiber.StatusBadRequest
	case goerrors.CategoryConflict:
		return fiber.StatusConflict
	case goerrors.CategoryRateLimit:
		return fiber.StatusTooManyRequests
	default:
		return fiber.StatusInternalServerError
	}
}

// renderError maps a rich error's category to an HTTP status and renders the
// envelope. Anything that is not a rich error becomes an opaque 500 so
// internal details never reach the client.
func renderError(c *fiber.Ctx, err error) error {
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		return c.Status(fiber.StatusInternalServerError).JSON(errorBody{
			Error: errorDetail{Message: "internal server error"},
		})
	}

	status := statusFor(rich.Category)

	detail := errorDetail{
		Message:  rich.Message,
		TextCode: rich.TextCode,
	}
	if status != fiber.StatusInternalServerError {
		switch fields := rich.Metadata["fields"].(type) {
		case map[string]any:
			detail.Fields = fields
		case map[string]string:
			detail.Fields = make(map[string]any, len(fields))
			for k, v := range fields {
				detail.Fields[k] = v
			}
		}
	} else {
		detail.Message = "internal server error"
		detail.TextCode = ""
	}

	return c.Status(status).JSON(errorBody{Error: detail})
}

func badRequest(message string) *goerrors.Error {
	return goerrors.New(message, goerrors.CategoryBadInput).
		WithCode(goerrors.CodeBadRequest)
}
