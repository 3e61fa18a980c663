package apperrors

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// Kind classifies an application error for HTTP status mapping.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindUnauthenticated
	KindForbidden
	KindNotFound
)

// Error is a typed application error carried from services and handlers up
// to the fiber error handler.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Validation marks malformed input.
func Validation(message string) error {
	return &Error{Kind: KindValidation, Message: message}
}

// Conflict marks duplicate records or duplicate applications.
func Conflict(message string) error {
	return &Error{Kind: KindConflict, Message: message}
}

// Unauthenticated marks a missing, invalid, or expired credential.
func Unauthenticated(message string) error {
	return &Error{Kind: KindUnauthenticated, Message: message}
}

// Forbidden marks insufficient role, a disabled account, or an illegal
// elevation attempt.
func Forbidden(message string) error {
	return &Error{Kind: KindForbidden, Message: message}
}

// NotFound marks an unknown id.
func NotFound(message string) error {
	return &Error{Kind: KindNotFound, Message: message}
}

// StatusCode maps an error kind to its HTTP status.
func StatusCode(k Kind) int {
	switch k {
	case KindValidation:
		return fiber.StatusBadRequest
	case KindConflict:
		return fiber.StatusConflict
	case KindUnauthenticated:
		return fiber.StatusUnauthorized
	case KindForbidden:
		return fiber.StatusForbidden
	case KindNotFound:
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

// Handler is the fiber error handler for the whole app. It translates typed
// application errors and fiber errors into a JSON envelope.
func Handler(c *fiber.Ctx, err error) error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return c.Status(StatusCode(appErr.Kind)).JSON(fiber.Map{
			"success": false,
			"error":   appErr.Message,
		})
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(fiber.Map{
			"success": false,
			"error":   fiberErr.Message,
		})
	}

	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"success": false,
		"error":   "internal server error",
	})
}
