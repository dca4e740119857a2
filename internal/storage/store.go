// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/munera/internal/models"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when an update carries a stale version.
	ErrConflict = errors.New("version conflict")

	// ErrIntegrity is returned when a write would break a foreign key,
	// typically deleting a row that expenses still reference.
	ErrIntegrity = errors.New("integrity constraint violation")

	// ErrDuplicate is returned when a unique constraint is violated.
	ErrDuplicate = errors.New("duplicate record")

	// ErrInvalidFilter is returned for unknown sort fields and similar
	// malformed list requests.
	ErrInvalidFilter = errors.New("invalid filter")
)

// Page limits a list query. A zero Limit means no limit.
type Page struct {
	Limit  int
	Offset int
}

// Sort orders a list query by one column.
type Sort struct {
	Field string
	Desc  bool
}

// ExpenseFilter selects expenses. Zero-valued fields are ignored.
type ExpenseFilter struct {
	OwnerID string

	// PersonID matches expenses where the person is payer or beneficiary.
	PersonID      string
	PayerID       string
	BeneficiaryID string
	CategoryID    string
	EventID       string

	// Paid restricts to paid (true) or unpaid (false) expenses.
	Paid *bool

	// Year restricts to expenses dated in that calendar year.
	Year int

	// NameContains is a case-insensitive substring match on the name.
	NameContains string

	Sort []Sort
	Page Page
}

// PersonFilter selects people. Zero-valued fields are ignored.
type PersonFilter struct {
	OwnerID string

	// NameContains matches first name, last name or email, case-insensitive.
	NameContains string

	Sort []Sort
	Page Page
}

// UserStore persists login accounts.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	ListUsers(ctx context.Context, page Page) ([]*models.User, error)
	CountUsers(ctx context.Context) (int, error)
	// UpdateUser writes the user if user.Version matches the stored version
	// and increments user.Version on success.
	UpdateUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, id string) error
}

// PersonStore persists people.
type PersonStore interface {
	CreatePerson(ctx context.Context, person *models.Person) error
	GetPerson(ctx context.Context, id string) (*models.Person, error)
	GetPersonByUsername(ctx context.Context, username string) (*models.Person, error)
	ListPeople(ctx context.Context, filter PersonFilter) ([]*models.Person, error)
	UpdatePerson(ctx context.Context, person *models.Person) error
	DeletePerson(ctx context.Context, id string) error
}

// CategoryStore persists categories.
type CategoryStore interface {
	CreateCategory(ctx context.Context, category *models.Category) error
	GetCategory(ctx context.Context, id string) (*models.Category, error)
	// ListCategories lists the owner's categories, or all categories when
	// ownerID is empty.
	ListCategories(ctx context.Context, ownerID string) ([]*models.Category, error)
	CountCategories(ctx context.Context) (int, error)
	UpdateCategory(ctx context.Context, category *models.Category) error
	DeleteCategory(ctx context.Context, id string) error
}

// ExpenseStore persists expenses.
type ExpenseStore interface {
	CreateExpense(ctx context.Context, expense *models.Expense) error
	GetExpense(ctx context.Context, id string) (*models.Expense, error)
	ListExpenses(ctx context.Context, filter ExpenseFilter) ([]*models.Expense, error)
	// ListExpenseYears returns the distinct years of the owner's expenses,
	// most recent first.
	ListExpenseYears(ctx context.Context, ownerID string) ([]int, error)
	UpdateExpense(ctx context.Context, expense *models.Expense) error
	DeleteExpense(ctx context.Context, id string) error
}

// EventStore persists events and their participants.
type EventStore interface {
	CreateEvent(ctx context.Context, event *models.Event) error
	GetEvent(ctx context.Context, id string) (*models.Event, error)
	ListEvents(ctx context.Context, ownerID string) ([]*models.Event, error)
	UpdateEvent(ctx context.Context, event *models.Event) error
	DeleteEvent(ctx context.Context, id string) error
}

// Store defines the interface for all storage operations.
// This abstraction allows swapping storage backends (SQLite, MySQL)
// without changing the service layer.
type Store interface {
	UserStore
	PersonStore
	CategoryStore
	ExpenseStore
	EventStore

	// InTx runs fn inside a transaction. The Store passed to fn is bound to
	// the transaction; fn's error rolls it back. Nested calls reuse the
	// outer transaction.
	InTx(ctx context.Context, fn func(Store) error) error

	// Close releases any resources held by the store.
	Close() error
}
