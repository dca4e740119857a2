package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/mmynk/munera/internal/models"
	"github.com/mmynk/munera/internal/storage"
)

// CreateEvent persists a new event with its participants.
func (s *Store) CreateEvent(ctx context.Context, event *models.Event) error {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}

	return s.InTx(ctx, func(st storage.Store) error {
		tx := st.(*Store)
		_, err := tx.q.ExecContext(ctx,
			`INSERT INTO events (id, name, description, owner_id, version) VALUES (?, ?, ?, ?, ?)`,
			event.ID, event.Name, event.Description, event.OwnerID, event.Version,
		)
		if err != nil {
			return fmt.Errorf("failed to insert event: %w", classify(err))
		}
		return tx.insertParticipants(ctx, event.ID, event.ParticipantIDs)
	})
}

// GetEvent retrieves an event by ID, including its participants.
func (s *Store) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	event := &models.Event{}
	var description sql.NullString
	err := s.q.QueryRowContext(ctx,
		`SELECT id, name, description, owner_id, version FROM events WHERE id = ?`, id,
	).Scan(&event.ID, &event.Name, &description, &event.OwnerID, &event.Version)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("event %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	event.Description = description.String

	participants, err := s.participants(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	event.ParticipantIDs = participants[id]
	return event, nil
}

// ListEvents lists events ordered by name, or all events when ownerID is
// empty.
func (s *Store) ListEvents(ctx context.Context, ownerID string) ([]*models.Event, error) {
	query := `SELECT id, name, description, owner_id, version FROM events`
	var args []any
	if ownerID != "" {
		query += ` WHERE owner_id = ?`
		args = append(args, ownerID)
	}

	rows, err := s.q.QueryContext(ctx, query+` ORDER BY name, id`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var (
		events []*models.Event
		ids    []string
	)
	for rows.Next() {
		event := &models.Event{}
		var description sql.NullString
		if err := rows.Scan(&event.ID, &event.Name, &description, &event.OwnerID, &event.Version); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		event.Description = description.String
		events = append(events, event)
		ids = append(ids, event.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating events: %w", err)
	}
	rows.Close()

	participants, err := s.participants(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, event := range events {
		event.ParticipantIDs = participants[event.ID]
	}
	return events, nil
}

// UpdateEvent writes an event under optimistic locking and replaces its
// participants.
func (s *Store) UpdateEvent(ctx context.Context, event *models.Event) error {
	err := s.InTx(ctx, func(st storage.Store) error {
		tx := st.(*Store)
		res, err := tx.q.ExecContext(ctx,
			`UPDATE events SET name = ?, description = ?, owner_id = ?, version = version + 1
			 WHERE id = ? AND version = ?`,
			event.Name, event.Description, event.OwnerID, event.ID, event.Version,
		)
		if err != nil {
			return fmt.Errorf("failed to update event: %w", classify(err))
		}
		if err := tx.checkUpdated(ctx, res, "events", event.ID); err != nil {
			return err
		}

		if _, err := tx.q.ExecContext(ctx, `DELETE FROM event_participants WHERE event_id = ?`, event.ID); err != nil {
			return fmt.Errorf("failed to clear event participants: %w", err)
		}
		return tx.insertParticipants(ctx, event.ID, event.ParticipantIDs)
	})
	if err != nil {
		return err
	}
	event.Version++
	return nil
}

// DeleteEvent removes an event. Participants are removed with it and
// expenses keep their data with the event link cleared.
func (s *Store) DeleteEvent(ctx context.Context, id string) error {
	res, err := s.q.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", classify(err))
	}
	return checkDeleted(res, "events", id)
}

func (s *Store) insertParticipants(ctx context.Context, eventID string, personIDs []string) error {
	seen := make(map[string]bool, len(personIDs))
	for _, personID := range personIDs {
		if seen[personID] {
			continue
		}
		seen[personID] = true
		_, err := s.q.ExecContext(ctx,
			`INSERT INTO event_participants (event_id, person_id) VALUES (?, ?)`,
			eventID, personID,
		)
		if err != nil {
			return fmt.Errorf("failed to insert event participant: %w", classify(err))
		}
	}
	return nil
}

// participants loads participant IDs for the given events, keyed by event ID.
func (s *Store) participants(ctx context.Context, eventIDs []string) (map[string][]string, error) {
	result := make(map[string][]string, len(eventIDs))
	if len(eventIDs) == 0 {
		return result, nil
	}

	args := make([]any, len(eventIDs))
	for i, id := range eventIDs {
		args[i] = id
	}
	rows, err := s.q.QueryContext(ctx,
		`SELECT event_id, person_id FROM event_participants
		 WHERE event_id IN (`+placeholders(len(eventIDs))+`) ORDER BY person_id`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get event participants: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var eventID, personID string
		if err := rows.Scan(&eventID, &personID); err != nil {
			return nil, fmt.Errorf("failed to scan event participant: %w", err)
		}
		result[eventID] = append(result[eventID], personID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating event participants: %w", err)
	}
	return result, nil
}
