// Package service implements the business operations of Munera on top of
// storage.Store: CRUD with owner stamping, payment-date bookkeeping,
// user/person synchronization, balances and dashboards.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/mmynk/munera/internal/models"
	"github.com/mmynk/munera/internal/storage"
)

// Services bundles every service over one store.
type Services struct {
	Users      *UserService
	People     *PersonService
	Categories *CategoryService
	Expenses   *ExpenseService
	Events     *EventService

	store  storage.Store
	logger *slog.Logger
}

// New wires all services to store.
func New(store storage.Store, logger *slog.Logger) *Services {
	people := NewPersonService(store, logger)
	return &Services{
		Users:      NewUserService(store, logger),
		People:     people,
		Categories: NewCategoryService(store, logger),
		Expenses:   NewExpenseService(store, people, logger),
		Events:     NewEventService(store, logger),
		store:      store,
		logger:     logger,
	}
}

// InTx runs fn with services bound to one transaction.
func (s *Services) InTx(ctx context.Context, fn func(*Services) error) error {
	return s.store.InTx(ctx, func(tx storage.Store) error {
		bound := New(tx, s.logger)
		bound.Expenses.now = s.Expenses.now
		return fn(bound)
	})
}

// canModify reports whether user may change a record owned by ownerID.
func canModify(user *models.User, ownerID string) bool {
	return user != nil && (user.ID == ownerID || user.IsAdmin())
}

// canUsePerson reports whether user may reference person in an expense:
// the owner, the linked user or an admin.
func canUsePerson(user *models.User, person *models.Person) bool {
	return canModify(user, person.OwnerID) || (person.Username != "" && person.Username == user.Username)
}

// today truncates t to a UTC calendar day.
func today(now func() time.Time) time.Time {
	y, m, d := now().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
