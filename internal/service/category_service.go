package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/mmynk/munera/internal/models"
	"github.com/mmynk/munera/internal/storage"
)

// CategoryService manages expense categories.
type CategoryService struct {
	store  storage.Store
	logger *slog.Logger
}

// NewCategoryService creates a new CategoryService with the given storage backend.
func NewCategoryService(store storage.Store, logger *slog.Logger) *CategoryService {
	return &CategoryService{store: store, logger: logger}
}

// Get retrieves a category by ID.
func (s *CategoryService) Get(ctx context.Context, id string) (*models.Category, error) {
	return s.store.GetCategory(ctx, id)
}

// List lists the owner's categories.
func (s *CategoryService) List(ctx context.Context, ownerID string) ([]*models.Category, error) {
	return s.store.ListCategories(ctx, ownerID)
}

// Create stores a new category owned by owner.
func (s *CategoryService) Create(ctx context.Context, owner *models.User, category *models.Category) error {
	if err := validateCategory(category); err != nil {
		return err
	}
	category.OwnerID = owner.ID
	category.Version = 0
	if err := s.store.CreateCategory(ctx, category); err != nil {
		s.logger.Error("CreateCategory failed", "error", err)
		return err
	}
	s.logger.Info("Category created", "category_id", category.ID, "name", category.Name)
	return nil
}

// Update writes category under optimistic locking.
func (s *CategoryService) Update(ctx context.Context, user *models.User, category *models.Category) error {
	if err := validateCategory(category); err != nil {
		return err
	}
	existing, err := s.store.GetCategory(ctx, category.ID)
	if err != nil {
		return err
	}
	if !canModify(user, existing.OwnerID) {
		return ErrForbidden
	}
	category.OwnerID = existing.OwnerID
	if err := s.store.UpdateCategory(ctx, category); err != nil {
		s.logger.Warn("UpdateCategory failed", "category_id", category.ID, "error", err)
		return err
	}
	s.logger.Info("Category updated", "category_id", category.ID)
	return nil
}

// Delete removes a category. Fails with storage.ErrIntegrity while
// expenses use it.
func (s *CategoryService) Delete(ctx context.Context, user *models.User, id string) error {
	existing, err := s.store.GetCategory(ctx, id)
	if err != nil {
		return err
	}
	if !canModify(user, existing.OwnerID) {
		return ErrForbidden
	}
	if err := s.store.DeleteCategory(ctx, id); err != nil {
		s.logger.Warn("DeleteCategory failed", "category_id", id, "error", err)
		return inUse(err, ErrCategoryInUse)
	}
	s.logger.Info("Category deleted", "category_id", id)
	return nil
}

func validateCategory(c *models.Category) error {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return invalid("name", "is required")
	}
	return nil
}
