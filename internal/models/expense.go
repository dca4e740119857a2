package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the wire and storage format of expense dates.
const DateLayout = "2006-01-02"

// ExpenseType classifies an expense relative to a viewing person.
type ExpenseType string

const (
	// ExpenseCredit: the viewer paid for someone else.
	ExpenseCredit ExpenseType = "CREDIT"
	// ExpenseDebit: someone else paid for the viewer.
	ExpenseDebit ExpenseType = "DEBIT"
	// ExpenseNone: a self-expense, or the viewer is not a party to it.
	ExpenseNone ExpenseType = "NONE"
)

// PeriodUnit is the recurrence unit of a periodic expense.
type PeriodUnit string

const (
	PeriodDay   PeriodUnit = "DAY"
	PeriodWeek  PeriodUnit = "WEEK"
	PeriodMonth PeriodUnit = "MONTH"
	PeriodYear  PeriodUnit = "YEAR"
)

// ParsePeriodUnit parses a unit name case-insensitively.
func ParsePeriodUnit(s string) (PeriodUnit, error) {
	switch u := PeriodUnit(strings.ToUpper(strings.TrimSpace(s))); u {
	case PeriodDay, PeriodWeek, PeriodMonth, PeriodYear:
		return u, nil
	case "":
		return "", nil
	default:
		return "", fmt.Errorf("unknown period unit %q", s)
	}
}

// Expense is a cost fronted by Payer on behalf of Beneficiary.
//
// Periodic expenses are informational only: nothing generates new
// occurrences.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string `json:"id"`

	Name        string `json:"name"`
	Description string `json:"description,omitempty"`

	// Cost is the amount. A null cost contributes nothing to balances.
	Cost decimal.NullDecimal `json:"cost"`

	// CategoryID is required.
	CategoryID string `json:"category_id"`

	// PayerID is the Person who fronted the money.
	PayerID string `json:"payer_id"`

	// BeneficiaryID is the Person who owes for the expense.
	BeneficiaryID string `json:"beneficiary_id"`

	// EventID optionally groups the expense under an Event.
	EventID string `json:"event_id,omitempty"`

	// Date is the day the expense was incurred.
	Date time.Time `json:"date"`

	// PaymentDate is set when the expense is marked paid and cleared
	// otherwise.
	PaymentDate *time.Time `json:"payment_date,omitempty"`

	Periodic       bool       `json:"periodic"`
	PeriodUnit     PeriodUnit `json:"period_unit,omitempty"`
	PeriodInterval int        `json:"period_interval,omitempty"`

	// Paid is a hard gate: unpaid expenses count toward balances, paid ones
	// do not. Partial payments are not modelled.
	Paid bool `json:"paid"`

	// OwnerID is the ID of the user who recorded the expense.
	OwnerID string `json:"owner_id"`

	// Version is the optimistic locking counter.
	Version int64 `json:"version"`

	// CreatedAt is the Unix timestamp when the expense was recorded.
	CreatedAt int64 `json:"created_at"`
}

// IsSelfExpense reports whether payer and beneficiary are the same person.
func (e *Expense) IsSelfExpense() bool {
	return e.PayerID == e.BeneficiaryID
}

// CostOrZero returns the cost, treating a null cost as zero.
func (e *Expense) CostOrZero() decimal.Decimal {
	if !e.Cost.Valid {
		return decimal.Zero
	}
	return e.Cost.Decimal
}
