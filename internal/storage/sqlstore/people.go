package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/mmynk/munera/internal/models"
	"github.com/mmynk/munera/internal/storage"
)

const personColumns = `id, first_name, last_name, email, username, owner_id, version`

var personSortColumns = map[string]string{
	"first_name": "first_name",
	"last_name":  "last_name",
	"email":      "email",
}

// CreatePerson inserts a new person.
func (s *Store) CreatePerson(ctx context.Context, person *models.Person) error {
	if person.ID == "" {
		person.ID = uuid.New().String()
	}

	_, err := s.q.ExecContext(ctx,
		`INSERT INTO people (`+personColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		person.ID,
		person.FirstName,
		person.LastName,
		person.Email,
		nullString(person.Username),
		person.OwnerID,
		person.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to create person: %w", classify(err))
	}
	return nil
}

// GetPerson retrieves a person by ID.
func (s *Store) GetPerson(ctx context.Context, id string) (*models.Person, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+personColumns+` FROM people WHERE id = ?`, id)
	person, err := scanPerson(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("person %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get person: %w", err)
	}
	return person, nil
}

// GetPersonByUsername retrieves the person linked to a user account.
func (s *Store) GetPersonByUsername(ctx context.Context, username string) (*models.Person, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+personColumns+` FROM people WHERE username = ?`, username)
	person, err := scanPerson(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("person for user %q: %w", username, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get person by username: %w", err)
	}
	return person, nil
}

// ListPeople lists people matching the filter, by name by default.
func (s *Store) ListPeople(ctx context.Context, filter storage.PersonFilter) ([]*models.Person, error) {
	var (
		where []string
		args  []any
	)
	if filter.OwnerID != "" {
		where = append(where, "owner_id = ?")
		args = append(args, filter.OwnerID)
	}
	if filter.NameContains != "" {
		p := likePattern(filter.NameContains)
		where = append(where, "("+s.likeExpr("first_name")+" OR "+s.likeExpr("last_name")+" OR "+s.likeExpr("email")+")")
		args = append(args, p, p, p)
	}

	query := `SELECT ` + personColumns + ` FROM people`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	order, err := orderBy(filter.Sort, personSortColumns, "first_name, last_name, id")
	if err != nil {
		return nil, err
	}
	page, args := limit(filter.Page, args)

	rows, err := s.q.QueryContext(ctx, query+order+page, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list people: %w", err)
	}
	defer rows.Close()

	var people []*models.Person
	for rows.Next() {
		person, err := scanPerson(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan person: %w", err)
		}
		people = append(people, person)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating people: %w", err)
	}
	return people, nil
}

// UpdatePerson writes a person under optimistic locking.
func (s *Store) UpdatePerson(ctx context.Context, person *models.Person) error {
	res, err := s.q.ExecContext(ctx,
		`UPDATE people
		 SET first_name = ?, last_name = ?, email = ?, username = ?, owner_id = ?, version = version + 1
		 WHERE id = ? AND version = ?`,
		person.FirstName,
		person.LastName,
		person.Email,
		nullString(person.Username),
		person.OwnerID,
		person.ID,
		person.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to update person: %w", classify(err))
	}
	if err := s.checkUpdated(ctx, res, "people", person.ID); err != nil {
		return err
	}
	person.Version++
	return nil
}

// DeletePerson removes a person. Fails with storage.ErrIntegrity while
// expenses reference the person.
func (s *Store) DeletePerson(ctx context.Context, id string) error {
	res, err := s.q.ExecContext(ctx, `DELETE FROM people WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete person: %w", classify(err))
	}
	return checkDeleted(res, "people", id)
}

func scanPerson(row scanner) (*models.Person, error) {
	person := &models.Person{}
	var username sql.NullString
	if err := row.Scan(
		&person.ID,
		&person.FirstName,
		&person.LastName,
		&person.Email,
		&username,
		&person.OwnerID,
		&person.Version,
	); err != nil {
		return nil, err
	}
	person.Username = username.String
	return person, nil
}
