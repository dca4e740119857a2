package rest

import (
	"net/http"

	"github.com/mmynk/munera/internal/query"
)

func (a *API) listUsers(w http.ResponseWriter, r *http.Request) {
	page, err := query.ParsePage(r.URL.Query().Get("page"), r.URL.Query().Get("size"))
	if err != nil {
		a.fail(w, r, badRequest("%v", err))
		return
	}
	users, err := a.svc.Users.List(r.Context(), page)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (a *API) getUser(w http.ResponseWriter, r *http.Request) {
	user, err := a.svc.Users.Get(r.Context(), pathID(r))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// saveUser creates the user, or updates the one with the same username,
// together with its linked Person.
func (a *API) saveUser(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if err := decodeJSON(r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	user, err := req.toModel()
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if err := a.svc.Users.SaveUserAndConnectedPerson(r.Context(), user, req.Password); err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (a *API) deleteUser(w http.ResponseWriter, r *http.Request) {
	if err := a.svc.Users.Delete(r.Context(), pathID(r)); err != nil {
		a.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
