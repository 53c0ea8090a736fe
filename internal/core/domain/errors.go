package domain

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrUsernameExists     = errors.New("username already exists")
	ErrEmailExists        = errors.New("email already exists")
	// ErrUserExists is returned when a uniqueness constraint fired but the
	// offending field could not be determined.
	ErrUserExists = errors.New("email or username already exists")

	ErrInvalidToken  = errors.New("invalid token")
	ErrMissingSecret = errors.New("token signing secret is not configured")
)

// Duplicate field names reported by DuplicateField.
const (
	FieldUsername = "username"
	FieldEmail    = "email"
	FieldUnknown  = "unknown"
)

// DuplicateField reports which unique field a registration collided on.
func DuplicateField(err error) (string, bool) {
	switch {
	case errors.Is(err, ErrUsernameExists):
		return FieldUsername, true
	case errors.Is(err, ErrEmailExists):
		return FieldEmail, true
	case errors.Is(err, ErrUserExists):
		return FieldUnknown, true
	}
	return "", false
}

// Outcome classifies the result of an auth workflow call.
type Outcome string

const (
	OutcomeSuccess            Outcome = "success"
	OutcomeInvalidCredentials Outcome = "invalid_credentials"
	OutcomeUserNotFound       Outcome = "user_not_found"
	OutcomeDuplicateField     Outcome = "duplicate_field"
	OutcomeInternalFailure    Outcome = "internal_failure"
)

// OutcomeOf maps an error returned by the auth workflow to its Outcome.
// Any error outside the domain taxonomy is an internal failure.
func OutcomeOf(err error) Outcome {
	if err == nil {
		return OutcomeSuccess
	}
	if _, ok := DuplicateField(err); ok {
		return OutcomeDuplicateField
	}
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return OutcomeInvalidCredentials
	case errors.Is(err, ErrUserNotFound):
		return OutcomeUserNotFound
	}
	return OutcomeInternalFailure
}
