package rpc

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/munera/internal/calculator"
	"github.com/mmynk/munera/internal/models"
	"github.com/mmynk/munera/internal/service"
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

type GetCurrentUserRequest struct{}

type GetCurrentUserResponse struct {
	User   *models.User   `json:"user"`
	Person *models.Person `json:"person"`
}

type ListUsersRequest struct {
	Page int `json:"page"`
	Size int `json:"size"`
}

type ListUsersResponse struct {
	Users []*models.User `json:"users"`
}

type GetNetBalanceRequest struct {
	// PersonID defaults to the caller's own Person.
	PersonID string `json:"person_id"`
}

type GetNetBalanceResponse struct {
	PersonID string           `json:"person_id"`
	Debt     decimal.Decimal  `json:"debt"`
	Credit   decimal.Decimal  `json:"credit"`
	Net      decimal.Decimal  `json:"net"`
	Badge    calculator.Badge `json:"badge"`
}

type ListBalancesRequest struct {
	// NameContains filters people by first name, last name or email.
	NameContains string `json:"name_contains"`
}

type ListBalancesResponse struct {
	Balances []service.PersonBalance `json:"balances"`
}

type ClassifyExpenseRequest struct {
	ExpenseID string `json:"expense_id"`
}

type ClassifyExpenseResponse struct {
	ExpenseID string             `json:"expense_id"`
	Type      models.ExpenseType `json:"type"`
	Badge     calculator.Badge   `json:"badge"`
}

type SetExpensePaidRequest struct {
	ExpenseID string `json:"expense_id"`
}

type SetExpensePaidResponse struct {
	ExpenseID   string `json:"expense_id"`
	PaymentDate string `json:"payment_date"`
	Version     int64  `json:"version"`
}

type SettleRequest struct {
	PersonID string `json:"person_id"`
}

type SettleResponse struct {
	Updated int `json:"updated"`
}

type GetDashboardRequest struct {
	// Year defaults to the current year.
	Year int `json:"year"`
}

type GetDashboardResponse struct {
	Dashboard *service.Dashboard `json:"dashboard"`
}
