package rpc

import (
	"context"

	"connectrpc.com/connect"
)

func clientOptions(opts []connect.ClientOption) []connect.ClientOption {
	return append([]connect.ClientOption{connect.WithCodec(jsonCodec{})}, opts...)
}

// AuthServiceClient is a client for the munera.v1.AuthService service.
type AuthServiceClient struct {
	login          *connect.Client[LoginRequest, LoginResponse]
	getCurrentUser *connect.Client[GetCurrentUserRequest, GetCurrentUserResponse]
	listUsers      *connect.Client[ListUsersRequest, ListUsersResponse]
}

// NewAuthServiceClient constructs a client for AuthService. baseURL is the
// server root, e.g. http://localhost:8080.
func NewAuthServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *AuthServiceClient {
	opts = clientOptions(opts)
	return &AuthServiceClient{
		login:          connect.NewClient[LoginRequest, LoginResponse](httpClient, baseURL+AuthServiceLoginProcedure, opts...),
		getCurrentUser: connect.NewClient[GetCurrentUserRequest, GetCurrentUserResponse](httpClient, baseURL+AuthServiceGetCurrentUserProcedure, opts...),
		listUsers:      connect.NewClient[ListUsersRequest, ListUsersResponse](httpClient, baseURL+AuthServiceListUsersProcedure, opts...),
	}
}

// Login calls munera.v1.AuthService.Login.
func (c *AuthServiceClient) Login(ctx context.Context, req *connect.Request[LoginRequest]) (*connect.Response[LoginResponse], error) {
	return c.login.CallUnary(ctx, req)
}

// GetCurrentUser calls munera.v1.AuthService.GetCurrentUser.
func (c *AuthServiceClient) GetCurrentUser(ctx context.Context, req *connect.Request[GetCurrentUserRequest]) (*connect.Response[GetCurrentUserResponse], error) {
	return c.getCurrentUser.CallUnary(ctx, req)
}

// ListUsers calls munera.v1.AuthService.ListUsers.
func (c *AuthServiceClient) ListUsers(ctx context.Context, req *connect.Request[ListUsersRequest]) (*connect.Response[ListUsersResponse], error) {
	return c.listUsers.CallUnary(ctx, req)
}

// LedgerServiceClient is a client for the munera.v1.LedgerService service.
type LedgerServiceClient struct {
	getNetBalance  *connect.Client[GetNetBalanceRequest, GetNetBalanceResponse]
	listBalances   *connect.Client[ListBalancesRequest, ListBalancesResponse]
	classify       *connect.Client[ClassifyExpenseRequest, ClassifyExpenseResponse]
	setExpensePaid *connect.Client[SetExpensePaidRequest, SetExpensePaidResponse]
	setDebtPaid    *connect.Client[SettleRequest, SettleResponse]
	setCreditPaid  *connect.Client[SettleRequest, SettleResponse]
	getDashboard   *connect.Client[GetDashboardRequest, GetDashboardResponse]
}

// NewLedgerServiceClient constructs a client for LedgerService.
func NewLedgerServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *LedgerServiceClient {
	opts = clientOptions(opts)
	return &LedgerServiceClient{
		getNetBalance:  connect.NewClient[GetNetBalanceRequest, GetNetBalanceResponse](httpClient, baseURL+LedgerServiceGetNetBalanceProcedure, opts...),
		listBalances:   connect.NewClient[ListBalancesRequest, ListBalancesResponse](httpClient, baseURL+LedgerServiceListBalancesProcedure, opts...),
		classify:       connect.NewClient[ClassifyExpenseRequest, ClassifyExpenseResponse](httpClient, baseURL+LedgerServiceClassifyProcedure, opts...),
		setExpensePaid: connect.NewClient[SetExpensePaidRequest, SetExpensePaidResponse](httpClient, baseURL+LedgerServiceSetExpensePaidProcedure, opts...),
		setDebtPaid:    connect.NewClient[SettleRequest, SettleResponse](httpClient, baseURL+LedgerServiceSetDebtPaidProcedure, opts...),
		setCreditPaid:  connect.NewClient[SettleRequest, SettleResponse](httpClient, baseURL+LedgerServiceSetCreditPaidProcedure, opts...),
		getDashboard:   connect.NewClient[GetDashboardRequest, GetDashboardResponse](httpClient, baseURL+LedgerServiceGetDashboardProcedure, opts...),
	}
}

func (c *LedgerServiceClient) GetNetBalance(ctx context.Context, req *connect.Request[GetNetBalanceRequest]) (*connect.Response[GetNetBalanceResponse], error) {
	return c.getNetBalance.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) ListBalances(ctx context.Context, req *connect.Request[ListBalancesRequest]) (*connect.Response[ListBalancesResponse], error) {
	return c.listBalances.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) ClassifyExpense(ctx context.Context, req *connect.Request[ClassifyExpenseRequest]) (*connect.Response[ClassifyExpenseResponse], error) {
	return c.classify.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) SetExpensePaid(ctx context.Context, req *connect.Request[SetExpensePaidRequest]) (*connect.Response[SetExpensePaidResponse], error) {
	return c.setExpensePaid.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) SetDebtPaid(ctx context.Context, req *connect.Request[SettleRequest]) (*connect.Response[SettleResponse], error) {
	return c.setDebtPaid.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) SetCreditPaid(ctx context.Context, req *connect.Request[SettleRequest]) (*connect.Response[SettleResponse], error) {
	return c.setCreditPaid.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) GetDashboard(ctx context.Context, req *connect.Request[GetDashboardRequest]) (*connect.Response[GetDashboardResponse], error) {
	return c.getDashboard.CallUnary(ctx, req)
}
