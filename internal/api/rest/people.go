package rest

import (
	"context"
	"net/http"

	"github.com/mmynk/munera/internal/calculator"
	"github.com/mmynk/munera/internal/middleware"
	"github.com/mmynk/munera/internal/models"
	"github.com/mmynk/munera/internal/service"
)

// listPeople returns the user's people with their balances.
func (a *API) listPeople(w http.ResponseWriter, r *http.Request) {
	user, err := a.currentUser(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	filter, err := personFilter(r, user.ID)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	balances, err := a.svc.People.Balances(r.Context(), filter, "")
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, balances)
}

func (a *API) getPerson(w http.ResponseWriter, r *http.Request) {
	_, person, err := a.loadPerson(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.writePerson(w, r, http.StatusOK, person)
}

// getMe returns the Person linked to the session user.
func (a *API) getMe(w http.ResponseWriter, r *http.Request) {
	person, err := a.people.LoggedInPerson(r.Context(), middleware.GetUsername(r.Context()))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.writePerson(w, r, http.StatusOK, person)
}

func (a *API) createPerson(w http.ResponseWriter, r *http.Request) {
	user, err := a.currentUser(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	var person models.Person
	if err := decodeJSON(r, &person); err != nil {
		a.fail(w, r, err)
		return
	}
	// Links to accounts are managed through users only.
	person.Username = ""
	if err := a.svc.People.Create(r.Context(), user, &person); err != nil {
		a.fail(w, r, err)
		return
	}
	a.writePerson(w, r, http.StatusCreated, &person)
}

func (a *API) patchPerson(w http.ResponseWriter, r *http.Request) {
	user, person, err := a.loadPerson(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	var patch personPatch
	if err := decodeJSON(r, &patch); err != nil {
		a.fail(w, r, err)
		return
	}
	if err := patch.apply(person); err != nil {
		a.fail(w, r, err)
		return
	}
	if err := a.svc.People.Update(r.Context(), user, person); err != nil {
		a.fail(w, r, err)
		return
	}
	a.writePerson(w, r, http.StatusOK, person)
}

func (a *API) deletePerson(w http.ResponseWriter, r *http.Request) {
	user, err := a.currentUser(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if err := a.svc.People.Delete(r.Context(), user, pathID(r)); err != nil {
		a.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// listPersonExpenses lists the expenses the person paid or benefited from,
// labelled for the session user.
func (a *API) listPersonExpenses(w http.ResponseWriter, r *http.Request) {
	user, person, err := a.loadPerson(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	expenses, err := a.people.FindExpensesByPerson(r.Context(), person.ID)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	labelled, err := a.svc.Expenses.Label(r.Context(), user, expenses)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newExpenseResponses(labelled))
}

type settleResponse struct {
	Updated int `json:"updated"`
}

func (a *API) settleDebt(w http.ResponseWriter, r *http.Request) {
	a.settle(w, r, a.people.SetDebtPaid)
}

func (a *API) settleCredit(w http.ResponseWriter, r *http.Request) {
	a.settle(w, r, a.people.SetCreditPaid)
}

func (a *API) settle(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, user *models.User, personID string) (int, error)) {
	user, person, err := a.loadPerson(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	n, err := fn(r.Context(), user, person.ID)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, settleResponse{Updated: n})
}

func (a *API) loadPerson(r *http.Request) (*models.User, *models.Person, error) {
	user, err := a.currentUser(r)
	if err != nil {
		return nil, nil, err
	}
	person, err := a.svc.People.Get(r.Context(), pathID(r))
	if err != nil {
		return nil, nil, err
	}
	if !canRead(user, person.OwnerID) {
		return nil, nil, service.ErrForbidden
	}
	return user, person, nil
}

func (a *API) writePerson(w http.ResponseWriter, r *http.Request, status int, person *models.Person) {
	balance, err := a.svc.People.Balance(r.Context(), person.ID)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, status, service.PersonBalance{
		Person:  person,
		Balance: balance,
		Badge:   calculator.PersonBadge(balance.Net),
	})
}
