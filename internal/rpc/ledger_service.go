package rpc

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/munera/internal/calculator"
	"github.com/mmynk/munera/internal/facade"
	"github.com/mmynk/munera/internal/middleware"
	"github.com/mmynk/munera/internal/models"
	"github.com/mmynk/munera/internal/service"
	"github.com/mmynk/munera/internal/storage"
)

var (
	errMissingExpenseID = errors.New("expense_id is required")
	errMissingPersonID  = errors.New("person_id is required")
)

// LedgerService implements the LedgerService RPC interface: balances,
// classification, payments and dashboards for the caller.
type LedgerService struct {
	svc      *service.Services
	expenses *facade.ExpenseFacade
	people   *facade.PersonFacade
	logger   *slog.Logger
	now      func() time.Time
}

// NewLedgerService creates a new ledger service.
func NewLedgerService(svc *service.Services, logger *slog.Logger) *LedgerService {
	return &LedgerService{
		svc:      svc,
		expenses: facade.NewExpenseFacade(svc, logger),
		people:   facade.NewPersonFacade(svc, logger),
		logger:   logger,
		now:      time.Now,
	}
}

// caller resolves the authenticated user.
func (s *LedgerService) caller(ctx context.Context) (*models.User, error) {
	user, err := s.svc.Users.LoggedInUser(ctx, middleware.GetUsername(ctx))
	if err != nil {
		return nil, toConnectError(s.logger, err)
	}
	return user, nil
}

// visiblePerson loads a person the user may see.
func (s *LedgerService) visiblePerson(ctx context.Context, user *models.User, personID string) (*models.Person, error) {
	person, err := s.svc.People.Get(ctx, personID)
	if err != nil {
		return nil, err
	}
	if person.OwnerID != user.ID && person.Username != user.Username && !user.IsAdmin() {
		return nil, service.ErrForbidden
	}
	return person, nil
}

// GetNetBalance returns debt, credit and net balance of a person, or of
// the caller's own Person when no ID is given.
func (s *LedgerService) GetNetBalance(ctx context.Context, req *connect.Request[GetNetBalanceRequest]) (*connect.Response[GetNetBalanceResponse], error) {
	user, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}

	var person *models.Person
	if req.Msg.PersonID == "" {
		person, err = s.people.LoggedInPerson(ctx, user.Username)
	} else {
		person, err = s.visiblePerson(ctx, user, req.Msg.PersonID)
	}
	if err != nil {
		return nil, toConnectError(s.logger, err)
	}

	b, err := s.svc.People.Balance(ctx, person.ID)
	if err != nil {
		return nil, toConnectError(s.logger, err)
	}
	return connect.NewResponse(&GetNetBalanceResponse{
		PersonID: person.ID,
		Debt:     b.Debt,
		Credit:   b.Credit,
		Net:      b.Net,
		Badge:    calculator.PersonBadge(b.Net),
	}), nil
}

// ListBalances returns every person of the caller, except the caller's own
// Person, with balance and badge.
func (s *LedgerService) ListBalances(ctx context.Context, req *connect.Request[ListBalancesRequest]) (*connect.Response[ListBalancesResponse], error) {
	user, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	me, err := s.people.LoggedInPerson(ctx, user.Username)
	if err != nil {
		return nil, toConnectError(s.logger, err)
	}

	balances, err := s.svc.People.Balances(ctx, storage.PersonFilter{
		OwnerID:      user.ID,
		NameContains: req.Msg.NameContains,
	}, me.ID)
	if err != nil {
		return nil, toConnectError(s.logger, err)
	}
	return connect.NewResponse(&ListBalancesResponse{Balances: balances}), nil
}

// ClassifyExpense labels an expense for the caller.
func (s *LedgerService) ClassifyExpense(ctx context.Context, req *connect.Request[ClassifyExpenseRequest]) (*connect.Response[ClassifyExpenseResponse], error) {
	if req.Msg.ExpenseID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errMissingExpenseID)
	}
	user, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}

	expense, err := s.svc.Expenses.GetVisible(ctx, user, req.Msg.ExpenseID)
	if err != nil {
		return nil, toConnectError(s.logger, err)
	}
	t, err := s.svc.Expenses.Classify(ctx, user, expense)
	if err != nil {
		return nil, toConnectError(s.logger, err)
	}
	return connect.NewResponse(&ClassifyExpenseResponse{
		ExpenseID: expense.ID,
		Type:      t,
		Badge:     calculator.ExpenseBadge(t, expense.Paid),
	}), nil
}

// SetExpensePaid marks one expense paid.
func (s *LedgerService) SetExpensePaid(ctx context.Context, req *connect.Request[SetExpensePaidRequest]) (*connect.Response[SetExpensePaidResponse], error) {
	if req.Msg.ExpenseID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errMissingExpenseID)
	}
	user, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}

	expense, err := s.expenses.SetExpensePaid(ctx, user, req.Msg.ExpenseID)
	if err != nil {
		return nil, toConnectError(s.logger, err)
	}
	resp := &SetExpensePaidResponse{ExpenseID: expense.ID, Version: expense.Version}
	if expense.PaymentDate != nil {
		resp.PaymentDate = expense.PaymentDate.Format(models.DateLayout)
	}
	return connect.NewResponse(resp), nil
}

// SetDebtPaid marks paid every unpaid expense the person paid for.
func (s *LedgerService) SetDebtPaid(ctx context.Context, req *connect.Request[SettleRequest]) (*connect.Response[SettleResponse], error) {
	return s.settle(ctx, req.Msg.PersonID, s.people.SetDebtPaid)
}

// SetCreditPaid marks paid every unpaid expense paid on the person's behalf.
func (s *LedgerService) SetCreditPaid(ctx context.Context, req *connect.Request[SettleRequest]) (*connect.Response[SettleResponse], error) {
	return s.settle(ctx, req.Msg.PersonID, s.people.SetCreditPaid)
}

func (s *LedgerService) settle(ctx context.Context, personID string, fn func(context.Context, *models.User, string) (int, error)) (*connect.Response[SettleResponse], error) {
	if personID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errMissingPersonID)
	}
	user, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := s.visiblePerson(ctx, user, personID); err != nil {
		return nil, toConnectError(s.logger, err)
	}

	n, err := fn(ctx, user, personID)
	if err != nil {
		return nil, toConnectError(s.logger, err)
	}
	return connect.NewResponse(&SettleResponse{Updated: n}), nil
}

// GetDashboard returns the caller's summary for a year.
func (s *LedgerService) GetDashboard(ctx context.Context, req *connect.Request[GetDashboardRequest]) (*connect.Response[GetDashboardResponse], error) {
	user, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	year := req.Msg.Year
	if year == 0 {
		year = s.now().Year()
	}
	if year < 0 {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("year must be positive"))
	}

	d, err := s.svc.Expenses.Dashboard(ctx, user, year)
	if err != nil {
		return nil, toConnectError(s.logger, err)
	}
	return connect.NewResponse(&GetDashboardResponse{Dashboard: d}), nil
}
