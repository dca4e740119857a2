package rest

import (
	"net/http"

	"github.com/mmynk/munera/internal/models"
	"github.com/mmynk/munera/internal/service"
)

func (a *API) listEvents(w http.ResponseWriter, r *http.Request) {
	user, err := a.currentUser(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	events, err := a.svc.Events.List(r.Context(), user.ID)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

func (a *API) getEvent(w http.ResponseWriter, r *http.Request) {
	_, event, err := a.loadEvent(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

func (a *API) createEvent(w http.ResponseWriter, r *http.Request) {
	user, err := a.currentUser(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	var event models.Event
	if err := decodeJSON(r, &event); err != nil {
		a.fail(w, r, err)
		return
	}
	if err := a.svc.Events.Create(r.Context(), user, &event); err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, event)
}

func (a *API) patchEvent(w http.ResponseWriter, r *http.Request) {
	user, event, err := a.loadEvent(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	var patch eventPatch
	if err := decodeJSON(r, &patch); err != nil {
		a.fail(w, r, err)
		return
	}
	if err := patch.apply(event); err != nil {
		a.fail(w, r, err)
		return
	}
	if err := a.svc.Events.Update(r.Context(), user, event); err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

func (a *API) deleteEvent(w http.ResponseWriter, r *http.Request) {
	user, err := a.currentUser(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if err := a.svc.Events.Delete(r.Context(), user, pathID(r)); err != nil {
		a.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) loadEvent(r *http.Request) (*models.User, *models.Event, error) {
	user, err := a.currentUser(r)
	if err != nil {
		return nil, nil, err
	}
	event, err := a.svc.Events.Get(r.Context(), pathID(r))
	if err != nil {
		return nil, nil, err
	}
	if !canRead(user, event.OwnerID) {
		return nil, nil, service.ErrForbidden
	}
	return user, event, nil
}
