// Package rest exposes Munera's resources as JSON over HTTP: expenses,
// categories, people, events, users, settings, the dashboard and exports.
//
// Every route except POST /login requires a bearer token. Lists accept the
// query, sort, page and size parameters parsed by package query.
package rest

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mmynk/munera/internal/auth"
	"github.com/mmynk/munera/internal/facade"
	"github.com/mmynk/munera/internal/middleware"
	"github.com/mmynk/munera/internal/models"
	"github.com/mmynk/munera/internal/service"
)

// API holds the dependencies of the REST handlers.
type API struct {
	svc           *service.Services
	expenses      *facade.ExpenseFacade
	people        *facade.PersonFacade
	authenticator auth.Authenticator
	jwt           *auth.JWTManager
	logger        *slog.Logger
}

// New creates the REST API over svc.
func New(svc *service.Services, authenticator auth.Authenticator, jwt *auth.JWTManager, logger *slog.Logger) *API {
	return &API{
		svc:           svc,
		expenses:      facade.NewExpenseFacade(svc, logger),
		people:        facade.NewPersonFacade(svc, logger),
		authenticator: authenticator,
		jwt:           jwt,
		logger:        logger,
	}
}

// Register mounts the routes on r.
func (a *API) Register(r *mux.Router) {
	r.HandleFunc("/login", a.login).Methods(http.MethodPost)

	api := r.NewRoute().Subrouter()
	api.Use(middleware.Authenticate(a.jwt))

	api.HandleFunc("/expenses", a.listExpenses).Methods(http.MethodGet)
	api.HandleFunc("/expenses", a.createExpense).Methods(http.MethodPost)
	api.HandleFunc("/expenses/export.csv", a.exportCSV).Methods(http.MethodGet)
	api.HandleFunc("/expenses/export.xlsx", a.exportXLSX).Methods(http.MethodGet)
	api.HandleFunc("/expenses/{id}", a.getExpense).Methods(http.MethodGet)
	api.HandleFunc("/expenses/{id}", a.patchExpense).Methods(http.MethodPatch)
	api.HandleFunc("/expenses/{id}", a.deleteExpense).Methods(http.MethodDelete)
	api.HandleFunc("/expenses/{id}/paid", a.markExpensePaid).Methods(http.MethodPost)

	api.HandleFunc("/categories", a.listCategories).Methods(http.MethodGet)
	api.HandleFunc("/categories", a.createCategory).Methods(http.MethodPost)
	api.HandleFunc("/categories/{id}", a.getCategory).Methods(http.MethodGet)
	api.HandleFunc("/categories/{id}", a.patchCategory).Methods(http.MethodPatch)
	api.HandleFunc("/categories/{id}", a.deleteCategory).Methods(http.MethodDelete)

	api.HandleFunc("/people", a.listPeople).Methods(http.MethodGet)
	api.HandleFunc("/people", a.createPerson).Methods(http.MethodPost)
	api.HandleFunc("/people/me", a.getMe).Methods(http.MethodGet)
	api.HandleFunc("/people/{id}", a.getPerson).Methods(http.MethodGet)
	api.HandleFunc("/people/{id}", a.patchPerson).Methods(http.MethodPatch)
	api.HandleFunc("/people/{id}", a.deletePerson).Methods(http.MethodDelete)
	api.HandleFunc("/people/{id}/expenses", a.listPersonExpenses).Methods(http.MethodGet)
	api.HandleFunc("/people/{id}/settle-debt", a.settleDebt).Methods(http.MethodPost)
	api.HandleFunc("/people/{id}/settle-credit", a.settleCredit).Methods(http.MethodPost)

	api.HandleFunc("/events", a.listEvents).Methods(http.MethodGet)
	api.HandleFunc("/events", a.createEvent).Methods(http.MethodPost)
	api.HandleFunc("/events/{id}", a.getEvent).Methods(http.MethodGet)
	api.HandleFunc("/events/{id}", a.patchEvent).Methods(http.MethodPatch)
	api.HandleFunc("/events/{id}", a.deleteEvent).Methods(http.MethodDelete)

	api.HandleFunc("/settings", a.getSettings).Methods(http.MethodGet)
	api.HandleFunc("/settings", a.patchSettings).Methods(http.MethodPatch)

	api.HandleFunc("/dashboard", a.dashboard).Methods(http.MethodGet)

	admin := api.PathPrefix("/users").Subrouter()
	admin.Use(middleware.HasRole(models.RoleAdmin))
	admin.HandleFunc("", a.listUsers).Methods(http.MethodGet)
	admin.HandleFunc("", a.saveUser).Methods(http.MethodPost)
	admin.HandleFunc("/{id}", a.getUser).Methods(http.MethodGet)
	admin.HandleFunc("/{id}", a.deleteUser).Methods(http.MethodDelete)
}

// currentUser loads the session user. A token for a deleted user is an
// identity invariant violation.
func (a *API) currentUser(r *http.Request) (*models.User, error) {
	return a.svc.Users.LoggedInUser(r.Context(), middleware.GetUsername(r.Context()))
}

func pathID(r *http.Request) string {
	return mux.Vars(r)["id"]
}

// canRead reports whether user may see a record owned by ownerID.
func canRead(user *models.User, ownerID string) bool {
	return user.ID == ownerID || user.IsAdmin()
}
