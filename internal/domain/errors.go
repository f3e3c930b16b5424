package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned across a service boundary either wraps one
// of these or is treated as unexpected.
var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
	ErrConflict     = errors.New("conflict")
	ErrValidation   = errors.New("validation failed")
)

// KindError attaches a client-facing message to an error kind.
type KindError struct {
	Kind    error
	Message string
}

func (e *KindError) Error() string {
	return e.Message
}

func (e *KindError) Unwrap() error {
	return e.Kind
}

// NewError returns an error of the given kind carrying msg.
func NewError(kind error, msg string) error {
	return &KindError{Kind: kind, Message: msg}
}

// Validationf builds an ErrValidation error.
func Validationf(format string, args ...any) error {
	return NewError(ErrValidation, fmt.Sprintf(format, args...))
}

// Entity errors
var (
	ErrUserNotFound    = NewError(ErrNotFound, "user not found")
	ErrProjectNotFound = NewError(ErrNotFound, "project not found")
	ErrTaskNotFound    = NewError(ErrNotFound, "task not found")
	ErrNoteNotFound    = NewError(ErrNotFound, "note not found")
	ErrTokenNotFound   = NewError(ErrNotFound, "invalid token")
)

// Account errors
var (
	ErrUserExists          = NewError(ErrConflict, "the user is already registered")
	ErrEmailInUse          = NewError(ErrConflict, "this email is already in use")
	ErrAccountNotConfirmed = NewError(ErrUnauthorized, "the account was not confirmed, we have sent an email to confirm it")
	ErrAlreadyConfirmed    = NewError(ErrForbidden, "user is already confirmed")
	ErrIncorrectPassword   = NewError(ErrUnauthorized, "incorrect password")
)

// Team errors
var (
	ErrAlreadyMember   = NewError(ErrConflict, "user already registered in the project")
	ErrNotMember       = NewError(ErrConflict, "user not found in the project")
	ErrManagerAsMember = NewError(ErrConflict, "the project manager cannot be added to the team")
)
