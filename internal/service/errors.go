package service

import (
	"errors"
	"fmt"

	"github.com/mmynk/munera/internal/storage"
)

var (
	// ErrValidation wraps every input validation failure.
	ErrValidation = errors.New("validation failed")

	// ErrNoLinkedPerson means the logged-in user has no Person record. It is
	// an identity invariant violation, not a user error.
	ErrNoLinkedPerson = errors.New("logged-in user has no linked person")

	// ErrUserNotFound means a username taken from a session does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrForbidden is returned when a user modifies a record they do not own.
	ErrForbidden = errors.New("not allowed to modify this record")

	// ErrCategoryInUse and ErrPersonInUse accompany storage.ErrIntegrity
	// when a delete is blocked by expenses.
	ErrCategoryInUse = errors.New("category is still used by expenses")
	ErrPersonInUse   = errors.New("person is still referenced by expenses")
)

// ConflictMessage is shown to users when an optimistic-lock check fails.
const ConflictMessage = "somebody else updated this record, please reload and try again"

// inUse tags an integrity failure with the reason shown to users.
func inUse(err, reason error) error {
	if errors.Is(err, storage.ErrIntegrity) {
		return fmt.Errorf("%w: %w", reason, err)
	}
	return err
}

func invalid(field, format string, args ...any) error {
	return fmt.Errorf("%w: %s %s", ErrValidation, field, fmt.Sprintf(format, args...))
}
