package calculator

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/mmynk/munera/internal/models"
)

// DashboardExpenses selects the expenses that count toward a viewer's yearly
// dashboard, preserving input order:
//   - self-expenses, paid or not
//   - expenses where the viewer is the beneficiary
//   - unpaid expenses where the viewer is the payer
func DashboardExpenses(viewerID string, year int, expenses []*models.Expense) []*models.Expense {
	var out []*models.Expense
	seen := make(map[string]bool, len(expenses))
	for _, e := range expenses {
		if e.Date.Year() != year || seen[e.ID] {
			continue
		}
		payer := e.PayerID == viewerID
		beneficiary := e.BeneficiaryID == viewerID
		if beneficiary || (payer && !e.Paid) {
			seen[e.ID] = true
			out = append(out, e)
		}
	}
	return out
}

// CategorySeries is a category's total per calendar month (index 0 = January).
type CategorySeries struct {
	CategoryID string              `json:"category_id"`
	Category   string              `json:"category"`
	Months     [12]decimal.Decimal `json:"months"`
}

// CategoryTotal is a category's total over a set of expenses.
type CategoryTotal struct {
	CategoryID string          `json:"category_id"`
	Category   string          `json:"category"`
	Total      decimal.Decimal `json:"total"`
}

// MonthlyByCategory builds one series per category ID, sorted by category
// name then ID. categoryNames maps category IDs to display names; unknown
// IDs fall back to the ID itself.
func MonthlyByCategory(expenses []*models.Expense, categoryNames map[string]string) []CategorySeries {
	byID := make(map[string]*CategorySeries)
	for _, e := range expenses {
		series, ok := byID[e.CategoryID]
		if !ok {
			series = &CategorySeries{CategoryID: e.CategoryID, Category: categoryName(e.CategoryID, categoryNames)}
			for i := range series.Months {
				series.Months[i] = decimal.Zero
			}
			byID[e.CategoryID] = series
		}
		m := int(e.Date.Month()) - 1
		series.Months[m] = series.Months[m].Add(e.CostOrZero())
	}

	out := make([]CategorySeries, 0, len(byID))
	for _, s := range byID {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		return byCategory(out[i].Category, out[i].CategoryID, out[j].Category, out[j].CategoryID)
	})
	return out
}

// TotalsByCategory sums costs per category ID, sorted by category name
// then ID.
func TotalsByCategory(expenses []*models.Expense, categoryNames map[string]string) []CategoryTotal {
	totals := make(map[string]decimal.Decimal)
	for _, e := range expenses {
		totals[e.CategoryID] = totals[e.CategoryID].Add(e.CostOrZero())
	}

	out := make([]CategoryTotal, 0, len(totals))
	for id, total := range totals {
		out = append(out, CategoryTotal{CategoryID: id, Category: categoryName(id, categoryNames), Total: total})
	}
	sort.Slice(out, func(i, j int) bool {
		return byCategory(out[i].Category, out[i].CategoryID, out[j].Category, out[j].CategoryID)
	})
	return out
}

func byCategory(nameA, idA, nameB, idB string) bool {
	if nameA != nameB {
		return nameA < nameB
	}
	return idA < idB
}

func categoryName(id string, names map[string]string) string {
	if name, ok := names[id]; ok {
		return name
	}
	return id
}
