// Package facade combines services into the coarse operations used by the
// API layers, such as settling every debt of a person at once.
package facade

import (
	"context"
	"log/slog"

	"github.com/mmynk/munera/internal/models"
	"github.com/mmynk/munera/internal/service"
	"github.com/mmynk/munera/internal/storage"
)

// ExpenseFacade groups expense operations.
type ExpenseFacade struct {
	svc    *service.Services
	logger *slog.Logger
}

// NewExpenseFacade creates an ExpenseFacade.
func NewExpenseFacade(svc *service.Services, logger *slog.Logger) *ExpenseFacade {
	return &ExpenseFacade{svc: svc, logger: logger}
}

// SetExpensePaid marks one expense paid, stamping today's payment date.
// Only the owner or an admin may do so, even when the expense is already
// paid.
func (f *ExpenseFacade) SetExpensePaid(ctx context.Context, user *models.User, expenseID string) (*models.Expense, error) {
	expense, err := f.svc.Expenses.GetVisible(ctx, user, expenseID)
	if err != nil {
		return nil, err
	}
	if expense.Paid {
		return expense, nil
	}
	expense.Paid = true
	if err := f.svc.Expenses.Update(ctx, user, expense); err != nil {
		return nil, err
	}
	f.logger.Info("Expense marked paid", "expense_id", expense.ID)
	return expense, nil
}

// LabelledExpenses lists expenses labelled for the viewer.
func (f *ExpenseFacade) LabelledExpenses(ctx context.Context, viewer *models.User, filter storage.ExpenseFilter) ([]service.LabelledExpense, error) {
	expenses, err := f.svc.Expenses.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return f.svc.Expenses.Label(ctx, viewer, expenses)
}

// PersonFacade groups person operations.
type PersonFacade struct {
	svc    *service.Services
	logger *slog.Logger
}

// NewPersonFacade creates a PersonFacade.
func NewPersonFacade(svc *service.Services, logger *slog.Logger) *PersonFacade {
	return &PersonFacade{svc: svc, logger: logger}
}

// LoggedInPerson returns the Person of the session user.
func (f *PersonFacade) LoggedInPerson(ctx context.Context, username string) (*models.Person, error) {
	return f.svc.People.LoggedInPerson(ctx, username)
}

// FindExpensesByPerson lists expenses where the person is payer or
// beneficiary, each once.
func (f *PersonFacade) FindExpensesByPerson(ctx context.Context, personID string) ([]*models.Expense, error) {
	return f.svc.Expenses.FindByPerson(ctx, personID)
}

// SetDebtPaid marks paid every unpaid expense the person paid for, which
// clears what others owe the person. Returns the number of expenses changed.
func (f *PersonFacade) SetDebtPaid(ctx context.Context, user *models.User, personID string) (int, error) {
	return f.settle(ctx, user, storage.ExpenseFilter{PayerID: personID}, "debt")
}

// SetCreditPaid marks paid every unpaid expense paid on the person's
// behalf. Returns the number of expenses changed.
func (f *PersonFacade) SetCreditPaid(ctx context.Context, user *models.User, personID string) (int, error) {
	return f.settle(ctx, user, storage.ExpenseFilter{BeneficiaryID: personID}, "credit")
}

// settle marks every matching unpaid expense the user may modify as paid,
// in one transaction.
func (f *PersonFacade) settle(ctx context.Context, user *models.User, filter storage.ExpenseFilter, kind string) (int, error) {
	personID := filter.PayerID + filter.BeneficiaryID
	if _, err := f.svc.People.Get(ctx, personID); err != nil {
		return 0, err
	}

	unpaid := false
	filter.Paid = &unpaid
	if !user.IsAdmin() {
		filter.OwnerID = user.ID
	}

	count := 0
	err := f.svc.InTx(ctx, func(tx *service.Services) error {
		expenses, err := tx.Expenses.List(ctx, filter)
		if err != nil {
			return err
		}
		for _, e := range expenses {
			e.Paid = true
			if err := tx.Expenses.Update(ctx, user, e); err != nil {
				return err
			}
		}
		count = len(expenses)
		return nil
	})
	if err != nil {
		f.logger.Warn("Settle failed", "person_id", personID, "kind", kind, "error", err)
		return 0, err
	}
	f.logger.Info("Person settled", "person_id", personID, "kind", kind, "expenses", count)
	return count, nil
}
