package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/mmynk/munera/internal/calculator"
	"github.com/mmynk/munera/internal/models"
	"github.com/mmynk/munera/internal/storage"
)

// LabelledExpense is an expense with its classification and badge for one
// viewer.
type LabelledExpense struct {
	*models.Expense
	Type  models.ExpenseType `json:"type"`
	Badge calculator.Badge   `json:"badge"`
}

// Dashboard is the yearly summary shown to a viewer.
type Dashboard struct {
	Year     int                         `json:"year"`
	Years    []int                       `json:"years"`
	Monthly  []calculator.CategorySeries `json:"monthly"`
	Totals   []calculator.CategoryTotal  `json:"totals"`
	Balances []PersonBalance             `json:"balances"`
}

// ExpenseService manages expenses.
type ExpenseService struct {
	store  storage.Store
	people *PersonService
	logger *slog.Logger
	now    func() time.Time
}

// NewExpenseService creates a new ExpenseService with the given storage backend.
func NewExpenseService(store storage.Store, people *PersonService, logger *slog.Logger) *ExpenseService {
	return &ExpenseService{store: store, people: people, logger: logger, now: time.Now}
}

// SetClock replaces the clock used to stamp payment dates.
func (s *ExpenseService) SetClock(now func() time.Time) {
	s.now = now
}

// Get retrieves an expense by ID.
func (s *ExpenseService) Get(ctx context.Context, id string) (*models.Expense, error) {
	return s.store.GetExpense(ctx, id)
}

// GetVisible retrieves an expense that user owns, or any expense for an
// admin.
func (s *ExpenseService) GetVisible(ctx context.Context, user *models.User, id string) (*models.Expense, error) {
	expense, err := s.store.GetExpense(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canModify(user, expense.OwnerID) {
		return nil, ErrForbidden
	}
	return expense, nil
}

// List lists expenses matching filter.
func (s *ExpenseService) List(ctx context.Context, filter storage.ExpenseFilter) ([]*models.Expense, error) {
	return s.store.ListExpenses(ctx, filter)
}

// FindByPerson lists expenses where the person is payer or beneficiary.
func (s *ExpenseService) FindByPerson(ctx context.Context, personID string) ([]*models.Expense, error) {
	return s.store.ListExpenses(ctx, storage.ExpenseFilter{PersonID: personID})
}

// Years lists the years in which the owner recorded expenses.
func (s *ExpenseService) Years(ctx context.Context, ownerID string) ([]int, error) {
	return s.store.ListExpenseYears(ctx, ownerID)
}

// Create stores a new expense owned by owner.
func (s *ExpenseService) Create(ctx context.Context, owner *models.User, expense *models.Expense) error {
	if err := validateExpense(expense); err != nil {
		return err
	}
	if err := s.checkReferences(ctx, owner, expense); err != nil {
		return err
	}
	expense.OwnerID = owner.ID
	expense.Version = 0
	s.stampPaymentDate(expense)

	if err := s.store.CreateExpense(ctx, expense); err != nil {
		s.logger.Error("CreateExpense failed", "error", err)
		return err
	}
	s.logger.Info("Expense created",
		"expense_id", expense.ID,
		"owner_id", owner.ID,
		"paid", expense.Paid,
	)
	return nil
}

// Update writes expense under optimistic locking. The payment date is set
// to today when the expense becomes paid and cleared when it is unpaid.
func (s *ExpenseService) Update(ctx context.Context, user *models.User, expense *models.Expense) error {
	if err := validateExpense(expense); err != nil {
		return err
	}
	existing, err := s.store.GetExpense(ctx, expense.ID)
	if err != nil {
		return err
	}
	if !canModify(user, existing.OwnerID) {
		return ErrForbidden
	}
	if err := s.checkReferences(ctx, user, expense); err != nil {
		return err
	}
	expense.OwnerID = existing.OwnerID
	expense.CreatedAt = existing.CreatedAt
	if expense.Paid && existing.Paid && expense.PaymentDate == nil {
		expense.PaymentDate = existing.PaymentDate
	}
	s.stampPaymentDate(expense)

	if err := s.store.UpdateExpense(ctx, expense); err != nil {
		s.logger.Warn("UpdateExpense failed", "expense_id", expense.ID, "error", err)
		return err
	}
	s.logger.Info("Expense updated", "expense_id", expense.ID, "version", expense.Version)
	return nil
}

// Delete removes an expense.
func (s *ExpenseService) Delete(ctx context.Context, user *models.User, id string) error {
	existing, err := s.store.GetExpense(ctx, id)
	if err != nil {
		return err
	}
	if !canModify(user, existing.OwnerID) {
		return ErrForbidden
	}
	if err := s.store.DeleteExpense(ctx, id); err != nil {
		s.logger.Warn("DeleteExpense failed", "expense_id", id, "error", err)
		return err
	}
	s.logger.Info("Expense deleted", "expense_id", id)
	return nil
}

// Classify labels expense for the viewer's linked Person. A viewer without
// a linked Person is an error.
func (s *ExpenseService) Classify(ctx context.Context, viewer *models.User, expense *models.Expense) (models.ExpenseType, error) {
	person, err := s.people.LoggedInPerson(ctx, viewer.Username)
	if err != nil {
		return "", err
	}
	return calculator.Classify(expense, person.ID), nil
}

// Label classifies and badges each expense for the viewer.
func (s *ExpenseService) Label(ctx context.Context, viewer *models.User, expenses []*models.Expense) ([]LabelledExpense, error) {
	person, err := s.people.LoggedInPerson(ctx, viewer.Username)
	if err != nil {
		return nil, err
	}
	out := make([]LabelledExpense, len(expenses))
	for i, e := range expenses {
		t := calculator.Classify(e, person.ID)
		out[i] = LabelledExpense{Expense: e, Type: t, Badge: calculator.ExpenseBadge(t, e.Paid)}
	}
	return out, nil
}

// Dashboard builds the viewer's summary for year.
func (s *ExpenseService) Dashboard(ctx context.Context, viewer *models.User, year int) (*Dashboard, error) {
	person, err := s.people.LoggedInPerson(ctx, viewer.Username)
	if err != nil {
		return nil, err
	}

	involved, err := s.store.ListExpenses(ctx, storage.ExpenseFilter{PersonID: person.ID, Year: year})
	if err != nil {
		return nil, err
	}
	selected := calculator.DashboardExpenses(person.ID, year, involved)

	names := make(map[string]string)
	for _, e := range selected {
		if _, ok := names[e.CategoryID]; ok {
			continue
		}
		c, err := s.store.GetCategory(ctx, e.CategoryID)
		if err != nil {
			return nil, err
		}
		names[c.ID] = c.Name
	}

	years, err := s.store.ListExpenseYears(ctx, viewer.ID)
	if err != nil {
		return nil, err
	}
	balances, err := s.people.Balances(ctx, storage.PersonFilter{OwnerID: viewer.ID}, person.ID)
	if err != nil {
		return nil, err
	}

	return &Dashboard{
		Year:     year,
		Years:    years,
		Monthly:  calculator.MonthlyByCategory(selected, names),
		Totals:   calculator.TotalsByCategory(selected, names),
		Balances: balances,
	}, nil
}

// checkReferences rejects categories, events and people the user may not
// use. Unknown and foreign records get the same validation error.
func (s *ExpenseService) checkReferences(ctx context.Context, user *models.User, e *models.Expense) error {
	category, err := s.store.GetCategory(ctx, e.CategoryID)
	if err := unknownRef(err, "category_id", "category"); err != nil {
		return err
	}
	if !canModify(user, category.OwnerID) {
		return invalid("category_id", "refers to an unknown category")
	}

	if e.EventID != "" {
		event, err := s.store.GetEvent(ctx, e.EventID)
		if err := unknownRef(err, "event_id", "event"); err != nil {
			return err
		}
		if !canModify(user, event.OwnerID) {
			return invalid("event_id", "refers to an unknown event")
		}
	}

	refs := []struct{ field, id string }{
		{"payer_id", e.PayerID},
		{"beneficiary_id", e.BeneficiaryID},
	}
	for _, ref := range refs {
		person, err := s.store.GetPerson(ctx, ref.id)
		if err := unknownRef(err, ref.field, "person"); err != nil {
			return err
		}
		if !canUsePerson(user, person) {
			return invalid(ref.field, "refers to an unknown person")
		}
	}
	return nil
}

func unknownRef(err error, field, kind string) error {
	if errors.Is(err, storage.ErrNotFound) {
		return invalid(field, "refers to an unknown %s", kind)
	}
	return err
}

func (s *ExpenseService) stampPaymentDate(e *models.Expense) {
	if !e.Paid {
		e.PaymentDate = nil
		return
	}
	if e.PaymentDate == nil {
		d := today(s.now)
		e.PaymentDate = &d
	}
}

func validateExpense(e *models.Expense) error {
	e.Name = strings.TrimSpace(e.Name)
	if e.Name == "" {
		return invalid("name", "is required")
	}
	if e.CategoryID == "" {
		return invalid("category_id", "is required")
	}
	if e.PayerID == "" {
		return invalid("payer_id", "is required")
	}
	if e.BeneficiaryID == "" {
		return invalid("beneficiary_id", "is required")
	}
	if e.Date.IsZero() {
		return invalid("date", "is required")
	}
	if e.Cost.Valid && e.Cost.Decimal.IsNegative() {
		return invalid("cost", "must be >= 0")
	}

	if !e.Periodic {
		e.PeriodUnit = ""
		e.PeriodInterval = 0
		return nil
	}
	unit, err := models.ParsePeriodUnit(string(e.PeriodUnit))
	if err != nil || unit == "" {
		return invalid("period_unit", "must be one of DAY, WEEK, MONTH, YEAR")
	}
	e.PeriodUnit = unit
	if e.PeriodInterval < 1 {
		return invalid("period_interval", "must be >= 1")
	}
	return nil
}
