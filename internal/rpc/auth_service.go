package rpc

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/munera/internal/auth"
	"github.com/mmynk/munera/internal/middleware"
	"github.com/mmynk/munera/internal/query"
	"github.com/mmynk/munera/internal/service"
)

// AuthService implements the AuthService RPC interface.
type AuthService struct {
	authenticator auth.Authenticator
	jwtManager    *auth.JWTManager
	svc           *service.Services
	logger        *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(authenticator auth.Authenticator, jwtManager *auth.JWTManager, svc *service.Services, logger *slog.Logger) *AuthService {
	return &AuthService{
		authenticator: authenticator,
		jwtManager:    jwtManager,
		svc:           svc,
		logger:        logger,
	}
}

// Login authenticates a user and returns a JWT token.
func (s *AuthService) Login(ctx context.Context, req *connect.Request[LoginRequest]) (*connect.Response[LoginResponse], error) {
	s.logger.Info("Login request", "username", req.Msg.Username)

	if req.Msg.Username == "" || req.Msg.Password == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, auth.ErrInvalidCredentials)
	}

	user, err := s.authenticator.Authenticate(ctx, req.Msg.Username, req.Msg.Password)
	if err != nil {
		s.logger.Warn("Login failed", "username", req.Msg.Username, "error", err)
		return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrInvalidCredentials)
	}

	token, err := s.jwtManager.Generate(user)
	if err != nil {
		s.logger.Error("Failed to generate token", "user_id", user.ID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	s.logger.Info("User logged in successfully", "user_id", user.ID, "username", user.Username)
	return connect.NewResponse(&LoginResponse{User: user, Token: token}), nil
}

// GetCurrentUser returns the authenticated user and their linked Person.
func (s *AuthService) GetCurrentUser(ctx context.Context, req *connect.Request[GetCurrentUserRequest]) (*connect.Response[GetCurrentUserResponse], error) {
	username := middleware.GetUsername(ctx)
	if username == "" {
		return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}

	user, err := s.svc.Users.LoggedInUser(ctx, username)
	if err != nil {
		return nil, toConnectError(s.logger, err)
	}
	person, err := s.svc.People.LoggedInPerson(ctx, username)
	if err != nil {
		return nil, toConnectError(s.logger, err)
	}

	return connect.NewResponse(&GetCurrentUserResponse{User: user, Person: person}), nil
}

// ListUsers lists accounts. Admin only.
func (s *AuthService) ListUsers(ctx context.Context, req *connect.Request[ListUsersRequest]) (*connect.Response[ListUsersResponse], error) {
	size := req.Msg.Size
	if size <= 0 {
		size = query.DefaultPageSize
	}
	page, err := query.Page(req.Msg.Page, size)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	users, err := s.svc.Users.List(ctx, page)
	if err != nil {
		return nil, toConnectError(s.logger, err)
	}
	return connect.NewResponse(&ListUsersResponse{Users: users}), nil
}
