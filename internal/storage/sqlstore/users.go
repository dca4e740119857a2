package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/mmynk/munera/internal/models"
	"github.com/mmynk/munera/internal/storage"
)

const userColumns = `id, username, password_hash, first_name, last_name, email, roles,
	monthly_income, version, created_at, updated_at`

// CreateUser inserts a new user into the database.
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	now := s.now().Unix()
	if user.CreatedAt == 0 {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	_, err := s.q.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Username,
		user.PasswordHash,
		user.FirstName,
		user.LastName,
		user.Email,
		user.Roles.String(),
		user.MonthlyIncome,
		user.Version,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", classify(err))
	}
	return nil
}

// GetUser retrieves a user by ID.
func (s *Store) GetUser(ctx context.Context, id string) (*models.User, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	user, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// GetUserByUsername retrieves a user by username.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username)
	user, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user %q: %w", username, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}
	return user, nil
}

// ListUsers lists users ordered by username.
func (s *Store) ListUsers(ctx context.Context, page storage.Page) ([]*models.User, error) {
	query, args := limit(page, nil)
	rows, err := s.q.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY username`+query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}
	return users, nil
}

// CountUsers returns the number of users.
func (s *Store) CountUsers(ctx context.Context) (int, error) {
	var n int
	if err := s.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return n, nil
}

// UpdateUser writes every mutable user column under optimistic locking.
func (s *Store) UpdateUser(ctx context.Context, user *models.User) error {
	updatedAt := s.now().Unix()
	res, err := s.q.ExecContext(ctx,
		`UPDATE users
		 SET username = ?, password_hash = ?, first_name = ?, last_name = ?, email = ?,
		     roles = ?, monthly_income = ?, updated_at = ?, version = version + 1
		 WHERE id = ? AND version = ?`,
		user.Username,
		user.PasswordHash,
		user.FirstName,
		user.LastName,
		user.Email,
		user.Roles.String(),
		user.MonthlyIncome,
		updatedAt,
		user.ID,
		user.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", classify(err))
	}
	if err := s.checkUpdated(ctx, res, "users", user.ID); err != nil {
		return err
	}
	user.Version++
	user.UpdatedAt = updatedAt
	return nil
}

// DeleteUser removes a user.
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	res, err := s.q.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", classify(err))
	}
	return checkDeleted(res, "users", id)
}

func scanUser(row scanner) (*models.User, error) {
	user := &models.User{}
	var roles string
	if err := row.Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&user.FirstName,
		&user.LastName,
		&user.Email,
		&roles,
		&user.MonthlyIncome,
		&user.Version,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}

	set, err := models.ParseRoles(roles)
	if err != nil {
		return nil, fmt.Errorf("user %s has invalid roles: %w", user.ID, err)
	}
	user.Roles = set
	return user, nil
}
