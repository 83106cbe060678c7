package state

import (
	"errors"

	"github.com/sakif/contact-book/internal/apperror"
)

// User-facing messages stored in a container's Error field.
const (
	MsgRegisterFailed     = "Registration failed. Please try again."
	MsgLoginFailed        = "Login failed. Please try again."
	MsgLogoutFailed       = "Logout failed. Please try again."
	MsgFetchFailed        = "Failed to fetch contacts"
	MsgAddFailed          = "Failed to add contact"
	MsgUpdateFailed       = "Failed to update contact"
	MsgContactNotFound    = "Contact not found"
	MsgDeleteFailed       = "Failed to delete contact"
	MsgInvalidCredentials = "Invalid email or password"
)

// ErrNotConfirmed is returned by the Confirm* helpers when the user declines.
var ErrNotConfirmed = errors.New("state: operation not confirmed")

// failure converts err into the error an operation returns. The kind
// (not found, conflict, invalid credentials) is kept; anything else is a
// persistence failure. message becomes the AppError message.
func failure(err error, message string) *apperror.AppError {
	for _, kind := range []error{apperror.ErrInvalidCredentials, apperror.ErrNotFound, apperror.ErrConflict} {
		if errors.Is(err, kind) {
			return &apperror.AppError{Err: kind, Message: message, Cause: err}
		}
	}
	return apperror.PersistenceUnavailable(message, err)
}
