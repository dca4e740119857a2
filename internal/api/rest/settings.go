package rest

import (
	"net/http"

	"github.com/mmynk/munera/internal/middleware"
)

func (a *API) getSettings(w http.ResponseWriter, r *http.Request) {
	user, err := a.currentUser(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// patchSettings lets the session user edit their own profile. Names and
// email are mirrored to the linked Person.
func (a *API) patchSettings(w http.ResponseWriter, r *http.Request) {
	var patch settingsPatch
	if err := decodeJSON(r, &patch); err != nil {
		a.fail(w, r, err)
		return
	}
	update, version, err := patch.toUpdate()
	if err != nil {
		a.fail(w, r, err)
		return
	}
	user, err := a.svc.Users.UpdateProfile(r.Context(), middleware.GetUsername(r.Context()), version, update)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
