package rpc

import (
	"errors"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/munera/internal/auth"
	"github.com/mmynk/munera/internal/service"
	"github.com/mmynk/munera/internal/storage"
)

// toConnectError maps service and storage errors to Connect codes. Internal
// errors are logged with their cause, which is not sent to clients.
func toConnectError(logger *slog.Logger, err error) error {
	var connectErr *connect.Error
	switch {
	case errors.As(err, &connectErr):
		return err
	case errors.Is(err, service.ErrValidation), errors.Is(err, storage.ErrInvalidFilter):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, auth.ErrInvalidCredentials):
		return connect.NewError(connect.CodeUnauthenticated, auth.ErrInvalidCredentials)
	case errors.Is(err, service.ErrForbidden):
		return connect.NewError(connect.CodePermissionDenied, err)
	case errors.Is(err, storage.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, storage.ErrConflict):
		return connect.NewError(connect.CodeAborted, errors.New(service.ConflictMessage))
	case errors.Is(err, service.ErrCategoryInUse):
		return connect.NewError(connect.CodeFailedPrecondition, service.ErrCategoryInUse)
	case errors.Is(err, service.ErrPersonInUse):
		return connect.NewError(connect.CodeFailedPrecondition, service.ErrPersonInUse)
	case errors.Is(err, storage.ErrIntegrity):
		return connect.NewError(connect.CodeFailedPrecondition, storage.ErrIntegrity)
	case errors.Is(err, storage.ErrDuplicate):
		return connect.NewError(connect.CodeAlreadyExists, storage.ErrDuplicate)
	default:
		logger.Error("Internal error", "error", err)
		return connect.NewError(connect.CodeInternal, errors.New("internal error"))
	}
}
