// Package apperr defines the sentinel errors shared across services.
package apperr

import (
	"errors"
	"fmt"
)

// ErrValidation is the parent of every user-input rejection. Its children
// carry the notice text shown to the user.
var ErrValidation = errors.New("validation failed")

var (
	ErrMissingName     = notice("Please enter an event name")
	ErrMissingDate     = notice("Please pick a date")
	ErrMissingText     = notice("Write something first")
	ErrMissingPlaylist = notice("Enter a playlist ID or URL")
	ErrUnknownAuthor   = notice("Unknown author")
)

type validationError struct {
	msg string
}

func notice(msg string) error {
	return &validationError{msg: msg}
}

func (e *validationError) Error() string { return e.msg }

func (e *validationError) Unwrap() error { return ErrValidation }

// Notice returns the user-facing text of a validation error, or "" when err
// is not a validation error.
func Notice(err error) string {
	var ve *validationError
	if errors.As(err, &ve) {
		return ve.msg
	}
	if errors.Is(err, ErrValidation) {
		return fmt.Sprint(err)
	}
	return ""
}
