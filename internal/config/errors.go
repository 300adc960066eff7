package config

import (
	"errors"
	"fmt"
)

// UserError is a problem with the user's setup, reported with a hint.
type UserError struct {
	Message string
	Hint    string
	Err     error
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *UserError) Unwrap() error { return e.Err }

// NewUserError builds a UserError.
func NewUserError(message, hint string, err error) *UserError {
	return &UserError{Message: message, Hint: hint, Err: err}
}

// AsUserError unwraps err into a *UserError if it contains one.
func AsUserError(err error) (*UserError, bool) {
	var ue *UserError
	if errors.As(err, &ue) {
		return ue, true
	}
	return nil, false
}
