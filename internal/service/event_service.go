package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/mmynk/munera/internal/models"
	"github.com/mmynk/munera/internal/storage"
)

// EventService manages events and their participants.
type EventService struct {
	store  storage.Store
	logger *slog.Logger
}

// NewEventService creates a new EventService with the given storage backend.
func NewEventService(store storage.Store, logger *slog.Logger) *EventService {
	return &EventService{store: store, logger: logger}
}

// Get retrieves an event by ID.
func (s *EventService) Get(ctx context.Context, id string) (*models.Event, error) {
	return s.store.GetEvent(ctx, id)
}

// List lists the owner's events.
func (s *EventService) List(ctx context.Context, ownerID string) ([]*models.Event, error) {
	return s.store.ListEvents(ctx, ownerID)
}

// Create stores a new event owned by owner.
func (s *EventService) Create(ctx context.Context, owner *models.User, event *models.Event) error {
	if err := validateEvent(event); err != nil {
		return err
	}
	event.OwnerID = owner.ID
	event.Version = 0
	if err := s.store.CreateEvent(ctx, event); err != nil {
		s.logger.Error("CreateEvent failed", "error", err)
		return err
	}
	s.logger.Info("Event created", "event_id", event.ID, "participants_count", len(event.ParticipantIDs))
	return nil
}

// Update writes event and replaces its participants.
func (s *EventService) Update(ctx context.Context, user *models.User, event *models.Event) error {
	if err := validateEvent(event); err != nil {
		return err
	}
	existing, err := s.store.GetEvent(ctx, event.ID)
	if err != nil {
		return err
	}
	if !canModify(user, existing.OwnerID) {
		return ErrForbidden
	}
	event.OwnerID = existing.OwnerID
	if err := s.store.UpdateEvent(ctx, event); err != nil {
		s.logger.Warn("UpdateEvent failed", "event_id", event.ID, "error", err)
		return err
	}
	s.logger.Info("Event updated", "event_id", event.ID)
	return nil
}

// Delete removes an event; its expenses stay with the event link cleared.
func (s *EventService) Delete(ctx context.Context, user *models.User, id string) error {
	existing, err := s.store.GetEvent(ctx, id)
	if err != nil {
		return err
	}
	if !canModify(user, existing.OwnerID) {
		return ErrForbidden
	}
	if err := s.store.DeleteEvent(ctx, id); err != nil {
		s.logger.Warn("DeleteEvent failed", "event_id", id, "error", err)
		return err
	}
	s.logger.Info("Event deleted", "event_id", id)
	return nil
}

func validateEvent(e *models.Event) error {
	e.Name = strings.TrimSpace(e.Name)
	if e.Name == "" {
		return invalid("name", "is required")
	}
	return nil
}
