package service

import "errors"

// Category errors. Every *Error unwraps to one of these, so callers branch
// with errors.Is and show Error() to the user.
var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrNotFound        = errors.New("not found")
	ErrInvalidInput    = errors.New("invalid input")
	ErrInvalidState    = errors.New("invalid state")
)

// Error is a user-facing failure of a known kind.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }
func (e *Error) Unwrap() error { return e.Kind }

func notFound(msg string) error     { return &Error{Kind: ErrNotFound, Message: msg} }
func invalidInput(msg string) error { return &Error{Kind: ErrInvalidInput, Message: msg} }
func invalidState(msg string) error { return &Error{Kind: ErrInvalidState, Message: msg} }

var (
	ErrNoIdentity           = &Error{Kind: ErrUnauthenticated, Message: "authentication required"}
	ErrInvalidCredentials   = &Error{Kind: ErrUnauthenticated, Message: "invalid email or password"}
	ErrUserNotFound         = &Error{Kind: ErrNotFound, Message: "user not found"}
	ErrDailyLogNotFound     = &Error{Kind: ErrNotFound, Message: "daily log not found"}
	ErrNoPendingCirculation = &Error{Kind: ErrNotFound, Message: "no pending circulation for this user"}
	ErrLogNotEditable       = &Error{Kind: ErrInvalidState, Message: "this log cannot be edited"}
	ErrEmptyRoute           = &Error{Kind: ErrInvalidInput, Message: "no members configured for this circulation route"}
)
