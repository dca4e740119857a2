package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mmynk/munera/internal/calculator"
	"github.com/mmynk/munera/internal/models"
	"github.com/mmynk/munera/internal/storage"
)

// PersonBalance is a person with their balance and badge.
type PersonBalance struct {
	Person  *models.Person     `json:"person"`
	Balance calculator.Balance `json:"balance"`
	Badge   calculator.Badge   `json:"badge"`
}

// PersonService manages people and their balances.
type PersonService struct {
	store  storage.Store
	logger *slog.Logger
}

// NewPersonService creates a new PersonService with the given storage backend.
func NewPersonService(store storage.Store, logger *slog.Logger) *PersonService {
	return &PersonService{store: store, logger: logger}
}

// Get retrieves a person by ID.
func (s *PersonService) Get(ctx context.Context, id string) (*models.Person, error) {
	return s.store.GetPerson(ctx, id)
}

// List lists people matching filter.
func (s *PersonService) List(ctx context.Context, filter storage.PersonFilter) ([]*models.Person, error) {
	return s.store.ListPeople(ctx, filter)
}

// Create stores a new person owned by owner.
func (s *PersonService) Create(ctx context.Context, owner *models.User, person *models.Person) error {
	if err := validatePerson(person); err != nil {
		return err
	}
	person.OwnerID = owner.ID
	person.Version = 0
	if err := s.store.CreatePerson(ctx, person); err != nil {
		s.logger.Error("CreatePerson failed", "error", err)
		return err
	}
	s.logger.Info("Person created", "person_id", person.ID, "owner_id", owner.ID)
	return nil
}

// Update writes person. person.Version must match the stored version.
func (s *PersonService) Update(ctx context.Context, user *models.User, person *models.Person) error {
	if err := validatePerson(person); err != nil {
		return err
	}
	existing, err := s.store.GetPerson(ctx, person.ID)
	if err != nil {
		return err
	}
	if !canModify(user, existing.OwnerID) {
		return ErrForbidden
	}
	person.OwnerID = existing.OwnerID
	person.Username = existing.Username
	if err := s.store.UpdatePerson(ctx, person); err != nil {
		s.logger.Warn("UpdatePerson failed", "person_id", person.ID, "error", err)
		return err
	}
	s.logger.Info("Person updated", "person_id", person.ID, "version", person.Version)
	return nil
}

// Delete removes a person. Fails with storage.ErrIntegrity while expenses
// reference the person.
func (s *PersonService) Delete(ctx context.Context, user *models.User, id string) error {
	existing, err := s.store.GetPerson(ctx, id)
	if err != nil {
		return err
	}
	if !canModify(user, existing.OwnerID) {
		return ErrForbidden
	}
	if err := s.store.DeletePerson(ctx, id); err != nil {
		s.logger.Warn("DeletePerson failed", "person_id", id, "error", err)
		return inUse(err, ErrPersonInUse)
	}
	s.logger.Info("Person deleted", "person_id", id)
	return nil
}

// LoggedInPerson returns the Person linked to username.
func (s *PersonService) LoggedInPerson(ctx context.Context, username string) (*models.Person, error) {
	person, err := s.store.GetPersonByUsername(ctx, username)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNoLinkedPerson, username)
	}
	if err != nil {
		return nil, err
	}
	return person, nil
}

// unpaidExpenses loads every unpaid expense the person is party to.
func (s *PersonService) unpaidExpenses(ctx context.Context, personID string) ([]*models.Expense, error) {
	unpaid := false
	return s.store.ListExpenses(ctx, storage.ExpenseFilter{PersonID: personID, Paid: &unpaid})
}

// CalculateDebt sums what others owe the person.
func (s *PersonService) CalculateDebt(ctx context.Context, personID string) (decimal.Decimal, error) {
	expenses, err := s.unpaidExpenses(ctx, personID)
	if err != nil {
		return decimal.Zero, err
	}
	return calculator.Debt(personID, expenses), nil
}

// CalculateCredit sums what the person owes others.
func (s *PersonService) CalculateCredit(ctx context.Context, personID string) (decimal.Decimal, error) {
	expenses, err := s.unpaidExpenses(ctx, personID)
	if err != nil {
		return decimal.Zero, err
	}
	return calculator.Credit(personID, expenses), nil
}

// CalculateNetBalance returns debt minus credit for the person.
func (s *PersonService) CalculateNetBalance(ctx context.Context, personID string) (decimal.Decimal, error) {
	b, err := s.Balance(ctx, personID)
	if err != nil {
		return decimal.Zero, err
	}
	return b.Net, nil
}

// Balance computes debt, credit and net for one person from a single read.
func (s *PersonService) Balance(ctx context.Context, personID string) (calculator.Balance, error) {
	if _, err := s.store.GetPerson(ctx, personID); err != nil {
		return calculator.Balance{}, err
	}
	expenses, err := s.unpaidExpenses(ctx, personID)
	if err != nil {
		return calculator.Balance{}, err
	}
	return calculator.BalanceFor(personID, expenses), nil
}

// Balances returns every listed person with balance and badge, skipping
// excludeID.
func (s *PersonService) Balances(ctx context.Context, filter storage.PersonFilter, excludeID string) ([]PersonBalance, error) {
	people, err := s.store.ListPeople(ctx, filter)
	if err != nil {
		return nil, err
	}

	out := make([]PersonBalance, 0, len(people))
	for _, p := range people {
		if p.ID == excludeID {
			continue
		}
		expenses, err := s.unpaidExpenses(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		b := calculator.BalanceFor(p.ID, expenses)
		out = append(out, PersonBalance{Person: p, Balance: b, Badge: calculator.PersonBadge(b.Net)})
	}
	return out, nil
}

func validatePerson(p *models.Person) error {
	p.FirstName = strings.TrimSpace(p.FirstName)
	p.LastName = strings.TrimSpace(p.LastName)
	p.Email = strings.TrimSpace(p.Email)
	if p.FirstName == "" {
		return invalid("first_name", "is required")
	}
	return validateEmail(p.Email)
}

func validateEmail(email string) error {
	if email == "" {
		return nil
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return invalid("email", "is not a valid address")
	}
	return nil
}
