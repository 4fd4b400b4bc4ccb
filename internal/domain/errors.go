package domain

import "errors"

var (
	// ErrQuizNotFound indicates the quiz content could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrUserNotFound is returned by user stores when no row matches.
	ErrUserNotFound = errors.New("user not found")
	// ErrConflict is returned when an email or nickname is already taken.
	ErrConflict = errors.New("email or nickname already in use")
	// ErrMalformedSubmission marks a stored submission with a missing or negative field.
	ErrMalformedSubmission = errors.New("malformed submission record")

	ErrMissingFields      = errors.New("all fields are required")
	ErrEmailDomain        = errors.New("email domain is not allowed")
	ErrSecretWord         = errors.New("secret word does not match")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNotVerified        = errors.New("email verification required")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrInvalidAnswers     = errors.New("invalid answer format")
	ErrRateLimited        = errors.New("submitting too fast, try again shortly")
)
