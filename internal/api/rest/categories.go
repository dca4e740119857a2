package rest

import (
	"net/http"

	"github.com/mmynk/munera/internal/models"
	"github.com/mmynk/munera/internal/service"
)

func (a *API) listCategories(w http.ResponseWriter, r *http.Request) {
	user, err := a.currentUser(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	categories, err := a.svc.Categories.List(r.Context(), user.ID)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

func (a *API) getCategory(w http.ResponseWriter, r *http.Request) {
	_, category, err := a.loadCategory(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, category)
}

func (a *API) createCategory(w http.ResponseWriter, r *http.Request) {
	user, err := a.currentUser(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	var category models.Category
	if err := decodeJSON(r, &category); err != nil {
		a.fail(w, r, err)
		return
	}
	if err := a.svc.Categories.Create(r.Context(), user, &category); err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, category)
}

func (a *API) patchCategory(w http.ResponseWriter, r *http.Request) {
	user, category, err := a.loadCategory(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	var patch categoryPatch
	if err := decodeJSON(r, &patch); err != nil {
		a.fail(w, r, err)
		return
	}
	if err := patch.apply(category); err != nil {
		a.fail(w, r, err)
		return
	}
	if err := a.svc.Categories.Update(r.Context(), user, category); err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, category)
}

func (a *API) deleteCategory(w http.ResponseWriter, r *http.Request) {
	user, err := a.currentUser(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if err := a.svc.Categories.Delete(r.Context(), user, pathID(r)); err != nil {
		a.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) loadCategory(r *http.Request) (*models.User, *models.Category, error) {
	user, err := a.currentUser(r)
	if err != nil {
		return nil, nil, err
	}
	category, err := a.svc.Categories.Get(r.Context(), pathID(r))
	if err != nil {
		return nil, nil, err
	}
	if !canRead(user, category.OwnerID) {
		return nil, nil, service.ErrForbidden
	}
	return user, category, nil
}
