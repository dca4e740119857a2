package models

// Event groups expenses around an occasion and lists the people taking part.
type Event struct {
	// ID is the unique identifier for the event (UUID format).
	ID string `json:"id"`

	Name        string `json:"name"`
	Description string `json:"description,omitempty"`

	// ParticipantIDs are Person IDs (many-to-many).
	ParticipantIDs []string `json:"participant_ids"`

	// OwnerID is the ID of the user who created the event.
	OwnerID string `json:"owner_id"`

	// Version is the optimistic locking counter.
	Version int64 `json:"version"`
}
