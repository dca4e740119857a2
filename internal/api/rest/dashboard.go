package rest

import (
	"net/http"
	"strconv"
	"time"
)

// dashboard returns the session user's summary for ?year=, defaulting to
// the current year.
func (a *API) dashboard(w http.ResponseWriter, r *http.Request) {
	user, err := a.currentUser(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	year := time.Now().Year()
	if s := r.URL.Query().Get("year"); s != "" {
		if year, err = strconv.Atoi(s); err != nil || year < 1 {
			a.fail(w, r, badRequest("year must be a positive number"))
			return
		}
	}
	d, err := a.svc.Expenses.Dashboard(r.Context(), user, year)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}
