package service

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound: the party id does not resolve. Surfaced to the actor,
	// never fatal.
	ErrNotFound = errors.New("party not found")

	// ErrForbidden: the actor is neither the creator nor a guild admin.
	ErrForbidden = errors.New("only the party creator or an admin can do that")

	// ErrConfirmationExpired: the delete confirmation token is unknown or
	// past its window.
	ErrConfirmationExpired = errors.New("confirmation expired")
)

// ValidationError rejects malformed edit/create input before storage is
// touched.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
