package rest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mmynk/munera/internal/export"
	"github.com/mmynk/munera/internal/models"
)

func (a *API) listExpenses(w http.ResponseWriter, r *http.Request) {
	user, err := a.currentUser(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	filter, err := expenseFilter(r, user.ID, true)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	labelled, err := a.expenses.LabelledExpenses(r.Context(), user, filter)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newExpenseResponses(labelled))
}

func (a *API) getExpense(w http.ResponseWriter, r *http.Request) {
	user, expense, err := a.loadExpense(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.writeExpense(w, r, http.StatusOK, user, expense)
}

func (a *API) createExpense(w http.ResponseWriter, r *http.Request) {
	user, err := a.currentUser(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	var req expenseRequest
	if err := decodeJSON(r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	expense, err := req.toModel()
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if err := a.svc.Expenses.Create(r.Context(), user, expense); err != nil {
		a.fail(w, r, err)
		return
	}
	a.writeExpense(w, r, http.StatusCreated, user, expense)
}

func (a *API) patchExpense(w http.ResponseWriter, r *http.Request) {
	user, expense, err := a.loadExpense(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	var patch expensePatch
	if err := decodeJSON(r, &patch); err != nil {
		a.fail(w, r, err)
		return
	}
	if err := patch.apply(expense); err != nil {
		a.fail(w, r, err)
		return
	}
	if err := a.svc.Expenses.Update(r.Context(), user, expense); err != nil {
		a.fail(w, r, err)
		return
	}
	a.writeExpense(w, r, http.StatusOK, user, expense)
}

func (a *API) deleteExpense(w http.ResponseWriter, r *http.Request) {
	user, err := a.currentUser(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if err := a.svc.Expenses.Delete(r.Context(), user, pathID(r)); err != nil {
		a.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) markExpensePaid(w http.ResponseWriter, r *http.Request) {
	user, err := a.currentUser(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	expense, err := a.expenses.SetExpensePaid(r.Context(), user, pathID(r))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.writeExpense(w, r, http.StatusOK, user, expense)
}

func (a *API) exportCSV(w http.ResponseWriter, r *http.Request) {
	a.export(w, r, "csv", export.CSVContentType, export.WriteCSV)
}

func (a *API) exportXLSX(w http.ResponseWriter, r *http.Request) {
	a.export(w, r, "xlsx", export.XLSXContentType, export.WriteXLSX)
}

type exportFunc func(w io.Writer, expenses []*models.Expense, categoryNames map[string]string) error

// export renders the filtered, unpaged expense list. The file is built in
// memory so that a failure can still produce a JSON error.
func (a *API) export(w http.ResponseWriter, r *http.Request, ext, contentType string, write exportFunc) {
	user, err := a.currentUser(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	filter, err := expenseFilter(r, user.ID, false)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	expenses, err := a.svc.Expenses.List(r.Context(), filter)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	names, err := a.categoryNames(r.Context(), user)
	if err != nil {
		a.fail(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := write(&buf, expenses, names); err != nil {
		a.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"expenses_%s.%s\"",
		time.Now().Format("20060102"), ext))
	_, _ = buf.WriteTo(w)
}

// categoryNames maps the IDs of the categories visible to user to their names.
func (a *API) categoryNames(ctx context.Context, user *models.User) (map[string]string, error) {
	ownerID := user.ID
	if user.IsAdmin() {
		ownerID = ""
	}
	categories, err := a.svc.Categories.List(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}
	return names, nil
}

// loadExpense resolves the session user and the expense named in the path.
func (a *API) loadExpense(r *http.Request) (*models.User, *models.Expense, error) {
	user, err := a.currentUser(r)
	if err != nil {
		return nil, nil, err
	}
	expense, err := a.svc.Expenses.GetVisible(r.Context(), user, pathID(r))
	if err != nil {
		return nil, nil, err
	}
	return user, expense, nil
}

func (a *API) writeExpense(w http.ResponseWriter, r *http.Request, status int, user *models.User, expense *models.Expense) {
	labelled, err := a.svc.Expenses.Label(r.Context(), user, []*models.Expense{expense})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, status, newExpenseResponse(labelled[0]))
}
