package models

// Category labels expenses. Categories are scoped to the user that owns them.
// A category referenced by an expense cannot be deleted.
type Category struct {
	// ID is the unique identifier for the category (UUID format).
	ID string `json:"id"`

	Name        string `json:"name"`
	Description string `json:"description,omitempty"`

	// OwnerID is the ID of the user who owns the category.
	OwnerID string `json:"owner_id"`

	// Version is the optimistic locking counter.
	Version int64 `json:"version"`
}
