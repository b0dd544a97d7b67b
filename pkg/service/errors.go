package service

import (
	"errors"
	"fmt"
)

var (
	// ErrParseFailure means free-text time or duration input could not be read.
	// Nothing was mutated; the caller should ask for the input again.
	ErrParseFailure = errors.New("could not parse input")

	// ErrNotFound means the referenced entity does not exist
	ErrNotFound = errors.New("entity not found")

	// ErrDeliveryFailure means a notification or snapshot did not reach its endpoint
	ErrDeliveryFailure = errors.New("delivery failed")

	// ErrInvalidInput covers well-formed requests with unusable values
	ErrInvalidInput = errors.New("invalid input")

	// ErrForbidden means the caller's role lacks the capability
	ErrForbidden = errors.New("forbidden")
)

// UserError carries a sentence meant for the person who issued a command.
// It unwraps to one of the sentinel errors above so transports can map it.
type UserError struct {
	Kind    error
	Message string
}

// NewUserError creates a UserError of kind with a formatted message
func NewUserError(kind error, format string, args ...interface{}) *UserError {
	return &UserError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func (e *UserError) Error() string {
	return e.Message
}

func (e *UserError) Unwrap() error {
	return e.Kind
}

// UserMessage returns the sentence to show a user for err
func UserMessage(err error) string {
	var ue *UserError
	if errors.As(err, &ue) {
		return ue.Message
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return "Not found."
	case errors.Is(err, ErrForbidden):
		return "⛔ You do not have permission to do that."
	case errors.Is(err, ErrParseFailure):
		return "❓ Could not read that input, please try again."
	case errors.Is(err, ErrDeliveryFailure):
		return "📡 Delivery failed: " + err.Error()
	case errors.Is(err, ErrInvalidInput):
		return "❌ " + err.Error()
	}
	return "⚠️ Something went wrong."
}
