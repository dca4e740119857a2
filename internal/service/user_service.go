package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mmynk/munera/internal/auth"
	"github.com/mmynk/munera/internal/models"
	"github.com/mmynk/munera/internal/storage"
)

// ProfileUpdate carries the self-service settings a user may change. Nil
// fields are left untouched.
type ProfileUpdate struct {
	FirstName     *string
	LastName      *string
	Email         *string
	Password      *string
	MonthlyIncome *decimal.NullDecimal
}

// UserService manages accounts and keeps each account's Person in sync.
type UserService struct {
	store  storage.Store
	logger *slog.Logger
}

// NewUserService creates a new UserService with the given storage backend.
func NewUserService(store storage.Store, logger *slog.Logger) *UserService {
	return &UserService{store: store, logger: logger}
}

// Get retrieves a user by ID.
func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	return s.store.GetUser(ctx, id)
}

// List lists users by username.
func (s *UserService) List(ctx context.Context, page storage.Page) ([]*models.User, error) {
	return s.store.ListUsers(ctx, page)
}

// LoggedInUser resolves a session username. An unknown username is an
// identity invariant violation.
func (s *UserService) LoggedInUser(ctx context.Context, username string) (*models.User, error) {
	user, err := s.store.GetUserByUsername(ctx, username)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, username)
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// SaveUserAndConnectedPerson creates or updates the user with
// user.Username and creates or updates its Person so that names and email
// match. A non-empty password replaces the stored hash. Both writes share
// one transaction.
//
// On update, user.Version must match the stored version.
func (s *UserService) SaveUserAndConnectedPerson(ctx context.Context, user *models.User, password string) error {
	if err := validateUser(user); err != nil {
		return err
	}
	// Writes go to a copy so a rolled back transaction leaves user untouched.
	saved := *user
	if password != "" {
		if len(password) < auth.MinPasswordLength {
			return invalid("password", "must be at least %d characters", auth.MinPasswordLength)
		}
		hash, err := auth.HashPassword(password)
		if err != nil {
			return err
		}
		saved.PasswordHash = hash
	}

	err := s.store.InTx(ctx, func(tx storage.Store) error {
		existing, err := tx.GetUserByUsername(ctx, saved.Username)
		switch {
		case errors.Is(err, storage.ErrNotFound):
			if saved.PasswordHash == "" {
				return invalid("password", "is required for a new user")
			}
			if saved.Roles == 0 {
				saved.Roles = models.NewRoleSet(models.RoleUser)
			}
			saved.ID = ""
			if err := tx.CreateUser(ctx, &saved); err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			saved.ID = existing.ID
			saved.CreatedAt = existing.CreatedAt
			if saved.PasswordHash == "" {
				saved.PasswordHash = existing.PasswordHash
			}
			if err := tx.UpdateUser(ctx, &saved); err != nil {
				return err
			}
		}
		return syncPerson(ctx, tx, &saved)
	})
	if err != nil {
		s.logger.Warn("SaveUserAndConnectedPerson failed", "username", saved.Username, "error", err)
		return err
	}
	*user = saved
	s.logger.Info("User saved", "user_id", user.ID, "username", user.Username)
	return nil
}

// UpdateProfile applies a self-service settings change for username.
func (s *UserService) UpdateProfile(ctx context.Context, username string, version int64, update ProfileUpdate) (*models.User, error) {
	user, err := s.LoggedInUser(ctx, username)
	if err != nil {
		return nil, err
	}
	user.Version = version
	if update.FirstName != nil {
		user.FirstName = *update.FirstName
	}
	if update.LastName != nil {
		user.LastName = *update.LastName
	}
	if update.Email != nil {
		user.Email = *update.Email
	}
	if update.MonthlyIncome != nil {
		user.MonthlyIncome = *update.MonthlyIncome
	}
	password := ""
	if update.Password != nil {
		password = *update.Password
		if password == "" {
			return nil, invalid("password", "must not be empty")
		}
	}

	if err := s.SaveUserAndConnectedPerson(ctx, user, password); err != nil {
		return nil, err
	}
	return user, nil
}

// Delete removes a user and its linked Person in one transaction.
func (s *UserService) Delete(ctx context.Context, id string) error {
	err := s.store.InTx(ctx, func(tx storage.Store) error {
		user, err := tx.GetUser(ctx, id)
		if err != nil {
			return err
		}
		person, err := tx.GetPersonByUsername(ctx, user.Username)
		switch {
		case errors.Is(err, storage.ErrNotFound):
		case err != nil:
			return err
		default:
			if err := tx.DeletePerson(ctx, person.ID); err != nil {
				return err
			}
		}
		return tx.DeleteUser(ctx, id)
	})
	if err != nil {
		s.logger.Warn("DeleteUser failed", "user_id", id, "error", err)
		return inUse(err, ErrPersonInUse)
	}
	s.logger.Info("User deleted", "user_id", id)
	return nil
}

// EnsurePerson creates the Person for user if it has none.
func (s *UserService) EnsurePerson(ctx context.Context, user *models.User) (created bool, err error) {
	_, err = s.store.GetPersonByUsername(ctx, user.Username)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return false, err
	}
	if err := syncPerson(ctx, s.store, user); err != nil {
		return false, err
	}
	s.logger.Info("Person created for user", "username", user.Username)
	return true, nil
}

// syncPerson creates or updates the Person linked to user.
func syncPerson(ctx context.Context, st storage.Store, user *models.User) error {
	firstName := user.FirstName
	if firstName == "" {
		firstName = user.Username
	}

	person, err := st.GetPersonByUsername(ctx, user.Username)
	if errors.Is(err, storage.ErrNotFound) {
		return st.CreatePerson(ctx, &models.Person{
			FirstName: firstName,
			LastName:  user.LastName,
			Email:     user.Email,
			Username:  user.Username,
			OwnerID:   user.ID,
		})
	}
	if err != nil {
		return err
	}

	if person.FirstName == firstName && person.LastName == user.LastName && person.Email == user.Email {
		return nil
	}
	person.FirstName = firstName
	person.LastName = user.LastName
	person.Email = user.Email
	return st.UpdatePerson(ctx, person)
}

func validateUser(u *models.User) error {
	u.Username = strings.TrimSpace(u.Username)
	u.FirstName = strings.TrimSpace(u.FirstName)
	u.LastName = strings.TrimSpace(u.LastName)
	u.Email = strings.TrimSpace(u.Email)
	if u.Username == "" {
		return invalid("username", "is required")
	}
	if strings.ContainsAny(u.Username, " \t\n") {
		return invalid("username", "must not contain whitespace")
	}
	if u.MonthlyIncome.Valid && u.MonthlyIncome.Decimal.IsNegative() {
		return invalid("monthly_income", "must be >= 0")
	}
	return validateEmail(u.Email)
}
