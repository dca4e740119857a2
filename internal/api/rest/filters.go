package rest

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/mmynk/munera/internal/query"
	"github.com/mmynk/munera/internal/storage"
)

// expenseFilter builds an owner-scoped filter from the list parameters.
// Query fields: name (or a bare term), category, payer, beneficiary,
// person, event, paid, year. A field with several values uses the first.
func expenseFilter(r *http.Request, ownerID string, paged bool) (storage.ExpenseFilter, error) {
	params := r.URL.Query()
	filter := storage.ExpenseFilter{OwnerID: ownerID}

	q, err := query.Parse(params.Get("query"))
	if err != nil {
		return filter, badRequest("%v", err)
	}
	for _, field := range q.Fields() {
		f, _ := q.Filter(field)
		v := f.Value()
		switch field {
		case query.GlobalFilter, "name":
			filter.NameContains = v
		case "category":
			filter.CategoryID = v
		case "payer":
			filter.PayerID = v
		case "beneficiary":
			filter.BeneficiaryID = v
		case "person":
			filter.PersonID = v
		case "event":
			filter.EventID = v
		case "paid":
			paid, err := strconv.ParseBool(v)
			if err != nil {
				return filter, badRequest("paid must be true or false")
			}
			filter.Paid = &paid
		case "year":
			year, err := strconv.Atoi(v)
			if err != nil || year < 1 {
				return filter, badRequest("year must be a positive number")
			}
			filter.Year = year
		default:
			return filter, badRequest("unknown query field %q", field)
		}
	}

	if filter.Sort, err = query.ParseSort(params.Get("sort")); err != nil {
		return filter, badRequest("%v", err)
	}
	if paged {
		if filter.Page, err = query.ParsePage(params.Get("page"), params.Get("size")); err != nil {
			return filter, badRequest("%v", err)
		}
	}
	return filter, nil
}

// personFilter builds an owner-scoped filter. Query fields: name (or a bare
// term) matching first name, last name or email.
func personFilter(r *http.Request, ownerID string) (storage.PersonFilter, error) {
	params := r.URL.Query()
	filter := storage.PersonFilter{OwnerID: ownerID}

	q, err := query.Parse(params.Get("query"))
	if err != nil {
		return filter, badRequest("%v", err)
	}
	for _, field := range q.Fields() {
		f, _ := q.Filter(field)
		switch field {
		case query.GlobalFilter, "name":
			filter.NameContains = strings.TrimSpace(f.Value())
		default:
			return filter, badRequest("unknown query field %q", field)
		}
	}

	if filter.Sort, err = query.ParseSort(params.Get("sort")); err != nil {
		return filter, badRequest("%v", err)
	}
	if filter.Page, err = query.ParsePage(params.Get("page"), params.Get("size")); err != nil {
		return filter, badRequest("%v", err)
	}
	return filter, nil
}
