package rpc

import (
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/munera/internal/middleware"
	"github.com/mmynk/munera/internal/models"
)

const (
	// AuthServiceName is the fully-qualified name of the AuthService service.
	AuthServiceName = "munera.v1.AuthService"
	// LedgerServiceName is the fully-qualified name of the LedgerService service.
	LedgerServiceName = "munera.v1.LedgerService"
)

// Procedure paths. Each is the service path followed by the method name.
const (
	AuthServiceLoginProcedure            = "/munera.v1.AuthService/Login"
	AuthServiceGetCurrentUserProcedure   = "/munera.v1.AuthService/GetCurrentUser"
	AuthServiceListUsersProcedure        = "/munera.v1.AuthService/ListUsers"
	LedgerServiceGetNetBalanceProcedure  = "/munera.v1.LedgerService/GetNetBalance"
	LedgerServiceListBalancesProcedure   = "/munera.v1.LedgerService/ListBalances"
	LedgerServiceClassifyProcedure       = "/munera.v1.LedgerService/ClassifyExpense"
	LedgerServiceSetExpensePaidProcedure = "/munera.v1.LedgerService/SetExpensePaid"
	LedgerServiceSetDebtPaidProcedure    = "/munera.v1.LedgerService/SetDebtPaid"
	LedgerServiceSetCreditPaidProcedure  = "/munera.v1.LedgerService/SetCreditPaid"
	LedgerServiceGetDashboardProcedure   = "/munera.v1.LedgerService/GetDashboard"
)

func withCodec(opts []connect.HandlerOption) []connect.HandlerOption {
	return append([]connect.HandlerOption{connect.WithCodec(jsonCodec{})}, opts...)
}

// NewAuthServiceHandler builds an HTTP handler for AuthService. It returns
// the path on which to mount the handler and the handler itself. Login and
// GetCurrentUser expect the caller to install OptionalAuth; ListUsers
// additionally requires the admin role.
func NewAuthServiceHandler(svc *AuthService, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = withCodec(opts)
	adminOpts := append(opts[:len(opts):len(opts)], connect.WithInterceptors(middleware.RequireRole(models.RoleAdmin)))

	login := connect.NewUnaryHandler(AuthServiceLoginProcedure, svc.Login, opts...)
	currentUser := connect.NewUnaryHandler(AuthServiceGetCurrentUserProcedure, svc.GetCurrentUser, opts...)
	listUsers := connect.NewUnaryHandler(AuthServiceListUsersProcedure, svc.ListUsers, adminOpts...)

	return "/" + AuthServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case AuthServiceLoginProcedure:
			login.ServeHTTP(w, r)
		case AuthServiceGetCurrentUserProcedure:
			currentUser.ServeHTTP(w, r)
		case AuthServiceListUsersProcedure:
			listUsers.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

// NewLedgerServiceHandler builds an HTTP handler for LedgerService. Every
// procedure expects the caller to install RequireAuth.
func NewLedgerServiceHandler(svc *LedgerService, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = withCodec(opts)

	handlers := map[string]http.Handler{
		LedgerServiceGetNetBalanceProcedure:  connect.NewUnaryHandler(LedgerServiceGetNetBalanceProcedure, svc.GetNetBalance, opts...),
		LedgerServiceListBalancesProcedure:   connect.NewUnaryHandler(LedgerServiceListBalancesProcedure, svc.ListBalances, opts...),
		LedgerServiceClassifyProcedure:       connect.NewUnaryHandler(LedgerServiceClassifyProcedure, svc.ClassifyExpense, opts...),
		LedgerServiceSetExpensePaidProcedure: connect.NewUnaryHandler(LedgerServiceSetExpensePaidProcedure, svc.SetExpensePaid, opts...),
		LedgerServiceSetDebtPaidProcedure:    connect.NewUnaryHandler(LedgerServiceSetDebtPaidProcedure, svc.SetDebtPaid, opts...),
		LedgerServiceSetCreditPaidProcedure:  connect.NewUnaryHandler(LedgerServiceSetCreditPaidProcedure, svc.SetCreditPaid, opts...),
		LedgerServiceGetDashboardProcedure:   connect.NewUnaryHandler(LedgerServiceGetDashboardProcedure, svc.GetDashboard, opts...),
	}

	return "/" + LedgerServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, ok := handlers[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		h.ServeHTTP(w, r)
	})
}
