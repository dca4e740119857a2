package calculator

import "github.com/mmynk/munera/internal/models"

// Classify labels an expense for the person viewing it.
//
//   - CREDIT: the viewer paid and the beneficiary is someone else
//   - DEBIT: the viewer benefited and the payer is someone else
//   - NONE: the viewer is both payer and beneficiary, or neither
//
// The label depends on the viewer, so it must be recomputed per read.
func Classify(e *models.Expense, viewerID string) models.ExpenseType {
	payer := e.PayerID == viewerID
	beneficiary := e.BeneficiaryID == viewerID
	switch {
	case payer && !beneficiary:
		return models.ExpenseCredit
	case beneficiary && !payer:
		return models.ExpenseDebit
	default:
		return models.ExpenseNone
	}
}
