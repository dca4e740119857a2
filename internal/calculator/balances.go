// Package calculator holds the arithmetic of Munera: person balances, expense
// classification relative to a viewer, badges, and dashboard aggregates.
// Everything here is pure and works on in-memory slices.
package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/munera/internal/models"
)

// Balance is the balance information for one person.
type Balance struct {
	PersonID string          `json:"person_id"`
	Debt     decimal.Decimal `json:"debt"`   // owed to the person
	Credit   decimal.Decimal `json:"credit"` // owed by the person
	Net      decimal.Decimal `json:"net"`    // Debt - Credit; positive = others owe the person
}

// Debt sums the cost of unpaid expenses the person paid for someone else.
//
// Self-expenses are excluded and a null cost contributes zero.
func Debt(personID string, expenses []*models.Expense) decimal.Decimal {
	total := decimal.Zero
	for _, e := range expenses {
		if e.PayerID != personID || e.BeneficiaryID == personID || e.Paid {
			continue
		}
		total = total.Add(e.CostOrZero())
	}
	return total
}

// Credit sums the cost of unpaid expenses someone else paid for the person.
func Credit(personID string, expenses []*models.Expense) decimal.Decimal {
	total := decimal.Zero
	for _, e := range expenses {
		if e.BeneficiaryID != personID || e.PayerID == personID || e.Paid {
			continue
		}
		total = total.Add(e.CostOrZero())
	}
	return total
}

// NetBalance returns Debt - Credit.
func NetBalance(personID string, expenses []*models.Expense) decimal.Decimal {
	return Debt(personID, expenses).Sub(Credit(personID, expenses))
}

// BalanceFor computes all three amounts for one person.
func BalanceFor(personID string, expenses []*models.Expense) Balance {
	debt := Debt(personID, expenses)
	credit := Credit(personID, expenses)
	return Balance{
		PersonID: personID,
		Debt:     debt,
		Credit:   credit,
		Net:      debt.Sub(credit),
	}
}
