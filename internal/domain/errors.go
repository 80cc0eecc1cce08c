package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrSessionNotFound is returned when a quiz session id is unknown.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrSessionNotActive is returned for actions on a session that is not running.
	ErrSessionNotActive = errors.New("quiz session is not active")
	// ErrSessionStarted is returned when start is called twice on the same session.
	ErrSessionStarted = errors.New("quiz session already started")
	// ErrAlreadyAnswered is returned when the current question is locked.
	ErrAlreadyAnswered = errors.New("question already answered")
	// ErrOptionOutOfRange indicates a selected index outside the question's options.
	ErrOptionOutOfRange = errors.New("option index out of range")
	// ErrNoQuestions is returned when a session would start with an empty sequence.
	ErrNoQuestions = errors.New("no questions available")
	// ErrAlreadyCompleted is returned when an identity already passed the quiz.
	ErrAlreadyCompleted = errors.New("this student has already completed the quiz")
	// ErrInvalidCredentials is returned by the admin login.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrUnauthorized is returned when an admin token is missing or invalid.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrKeyNotFound is returned by key-value stores when a key is absent.
	ErrKeyNotFound = errors.New("key not found")
	// ErrIndexOutOfRange is returned by the admin editors for an unknown position.
	ErrIndexOutOfRange = errors.New("index out of range")
	// ErrPoleExists is returned when adding a pole that is already listed.
	ErrPoleExists = errors.New("pole already exists")
)

// ValidationError reports a missing or malformed input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// Invalid builds a ValidationError.
func Invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// DecodeError is returned when a stored value cannot be decoded into its typed shape.
type DecodeError struct {
	Key string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %q: %v", e.Key, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
