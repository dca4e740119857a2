package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/mmynk/munera/internal/models"
	"github.com/mmynk/munera/internal/storage"
)

// CreateCategory inserts a new category.
func (s *Store) CreateCategory(ctx context.Context, category *models.Category) error {
	if category.ID == "" {
		category.ID = uuid.New().String()
	}

	_, err := s.q.ExecContext(ctx,
		`INSERT INTO categories (id, name, description, owner_id, version) VALUES (?, ?, ?, ?, ?)`,
		category.ID, category.Name, category.Description, category.OwnerID, category.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to create category: %w", classify(err))
	}
	return nil
}

// GetCategory retrieves a category by ID.
func (s *Store) GetCategory(ctx context.Context, id string) (*models.Category, error) {
	category := &models.Category{}
	err := s.q.QueryRowContext(ctx,
		`SELECT id, name, description, owner_id, version FROM categories WHERE id = ?`, id,
	).Scan(&category.ID, &category.Name, &category.Description, &category.OwnerID, &category.Version)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("category %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return category, nil
}

// ListCategories lists categories ordered by name.
func (s *Store) ListCategories(ctx context.Context, ownerID string) ([]*models.Category, error) {
	query := `SELECT id, name, description, owner_id, version FROM categories`
	var args []any
	if ownerID != "" {
		query += ` WHERE owner_id = ?`
		args = append(args, ownerID)
	}

	rows, err := s.q.QueryContext(ctx, query+` ORDER BY name, id`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var categories []*models.Category
	for rows.Next() {
		c := &models.Category{}
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.OwnerID, &c.Version); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}
	return categories, nil
}

// CountCategories returns the number of categories across all owners.
func (s *Store) CountCategories(ctx context.Context) (int, error) {
	var n int
	if err := s.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count categories: %w", err)
	}
	return n, nil
}

// UpdateCategory writes a category under optimistic locking.
func (s *Store) UpdateCategory(ctx context.Context, category *models.Category) error {
	res, err := s.q.ExecContext(ctx,
		`UPDATE categories SET name = ?, description = ?, owner_id = ?, version = version + 1
		 WHERE id = ? AND version = ?`,
		category.Name, category.Description, category.OwnerID, category.ID, category.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to update category: %w", classify(err))
	}
	if err := s.checkUpdated(ctx, res, "categories", category.ID); err != nil {
		return err
	}
	category.Version++
	return nil
}

// DeleteCategory removes a category. Fails with storage.ErrIntegrity while
// expenses reference it.
func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	res, err := s.q.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", classify(err))
	}
	return checkDeleted(res, "categories", id)
}
