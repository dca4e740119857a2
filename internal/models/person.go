package models

import "strings"

// Person is an identity within the splitting system.
// People are created by a user (OwnerID) and may optionally be linked to a
// User account through Username.
type Person struct {
	// ID is the unique identifier for the person (UUID format).
	ID string `json:"id"`

	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email,omitempty"`

	// Username links the person to a User account. Empty when the person
	// has no account.
	Username string `json:"username,omitempty"`

	// OwnerID is the ID of the user who created the person.
	OwnerID string `json:"owner_id"`

	// Version is the optimistic locking counter.
	Version int64 `json:"version"`
}

// FullName returns "First Last", trimmed.
func (p *Person) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}
