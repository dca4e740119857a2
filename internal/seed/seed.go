// Package seed prepares a fresh database: the bootstrap admin account,
// the starter categories and a Person for every user.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mmynk/munera/internal/auth"
	"github.com/mmynk/munera/internal/models"
	"github.com/mmynk/munera/internal/service"
	"github.com/mmynk/munera/internal/storage"
)

// Admin holds the bootstrap administrator credentials.
type Admin struct {
	Username  string
	Password  string
	FirstName string
	LastName  string
	Email     string
	Roles     models.RoleSet
}

// StarterCategories are created once, when no category exists.
var StarterCategories = []models.Category{
	{Name: "Food", Description: "All expenses related to food"},
	{Name: "Travel", Description: "Expenses related to traveling, including transport and accommodation"},
	{Name: "Electronics", Description: "All expenses related to electronic devices and gadgets"},
	{Name: "Events", Description: "Expenses related to attending or organizing events"},
	{Name: "Clothing", Description: "Expenses related to clothes and accessories"},
	{Name: "Bills", Description: "Recurring expenses like utilities, internet, and other bills"},
	{Name: "Rent", Description: "Expenses related to rental payments for housing or office space"},
}

// Seeder runs the startup initialization steps.
type Seeder struct {
	store  storage.Store
	svc    *service.Services
	logger *slog.Logger
}

// New creates a Seeder.
func New(store storage.Store, svc *service.Services, logger *slog.Logger) *Seeder {
	return &Seeder{store: store, svc: svc, logger: logger}
}

// Run seeds the admin, then categories, then back-fills people. Each step
// is a no-op when its data already exists.
func (s *Seeder) Run(ctx context.Context, admin Admin) error {
	if err := s.Admin(ctx, admin); err != nil {
		return fmt.Errorf("failed to seed admin: %w", err)
	}
	if err := s.Categories(ctx, admin.Username); err != nil {
		return fmt.Errorf("failed to seed categories: %w", err)
	}
	if err := s.People(ctx); err != nil {
		return fmt.Errorf("failed to back-fill people: %w", err)
	}
	return nil
}

// Admin creates the admin user and its Person when there are no users.
func (s *Seeder) Admin(ctx context.Context, admin Admin) error {
	n, err := s.store.CountUsers(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	if admin.Username == "" || admin.Password == "" {
		s.logger.Warn("No users and no admin credentials configured, skipping admin seed")
		return nil
	}

	hash, err := auth.HashPassword(admin.Password)
	if err != nil {
		return err
	}
	roles := admin.Roles
	if roles == 0 {
		roles = models.NewRoleSet(models.RoleAdmin, models.RoleUser)
	}
	user := &models.User{
		Username:     admin.Username,
		PasswordHash: hash,
		FirstName:    admin.FirstName,
		LastName:     admin.LastName,
		Email:        admin.Email,
		Roles:        roles,
	}
	if err := s.svc.Users.SaveUserAndConnectedPerson(ctx, user, ""); err != nil {
		return err
	}
	s.logger.Info("Admin user seeded", "username", user.Username, "roles", user.Roles.String())
	return nil
}

// Categories creates the starter categories when there are none. They are
// owned by the admin user, or by the first user when the admin is absent.
func (s *Seeder) Categories(ctx context.Context, adminUsername string) error {
	n, err := s.store.CountCategories(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	owner, err := s.owner(ctx, adminUsername)
	if err != nil {
		return err
	}
	if owner == nil {
		return nil
	}

	return s.store.InTx(ctx, func(tx storage.Store) error {
		for _, c := range StarterCategories {
			category := c
			category.OwnerID = owner.ID
			if err := tx.CreateCategory(ctx, &category); err != nil {
				return err
			}
		}
		s.logger.Info("Starter categories seeded", "count", len(StarterCategories), "owner_id", owner.ID)
		return nil
	})
}

// People creates a Person for every user that has none.
func (s *Seeder) People(ctx context.Context) error {
	users, err := s.store.ListUsers(ctx, storage.Page{})
	if err != nil {
		return err
	}
	for _, u := range users {
		if _, err := s.svc.Users.EnsurePerson(ctx, u); err != nil {
			return fmt.Errorf("user %s: %w", u.Username, err)
		}
	}
	return nil
}

func (s *Seeder) owner(ctx context.Context, adminUsername string) (*models.User, error) {
	if adminUsername != "" {
		u, err := s.store.GetUserByUsername(ctx, adminUsername)
		if err == nil {
			return u, nil
		}
		if !errors.Is(err, storage.ErrNotFound) {
			return nil, err
		}
	}
	users, err := s.store.ListUsers(ctx, storage.Page{Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, nil
	}
	return users[0], nil
}
