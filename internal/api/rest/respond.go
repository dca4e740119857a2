package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/mmynk/munera/internal/auth"
	"github.com/mmynk/munera/internal/middleware"
	"github.com/mmynk/munera/internal/service"
	"github.com/mmynk/munera/internal/storage"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// errBadRequest marks malformed requests detected by the handlers.
var errBadRequest = errors.New("bad request")

func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errBadRequest, fmt.Sprintf(format, args...))
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "failed to encode JSON response", http.StatusInternalServerError)
	}
}

// decodeJSON reads a single JSON object into dst, rejecting unknown fields.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return badRequest("invalid JSON body: %v", err)
	}
	return nil
}

// statusFor maps an error to its HTTP status and user-facing message.
// Internal errors hide their details.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, service.ErrValidation),
		errors.Is(err, storage.ErrInvalidFilter):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrMissingToken):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden, err.Error()
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, storage.ErrConflict):
		return http.StatusConflict, service.ConflictMessage
	case errors.Is(err, service.ErrCategoryInUse):
		return http.StatusConflict, service.ErrCategoryInUse.Error()
	case errors.Is(err, service.ErrPersonInUse):
		return http.StatusConflict, service.ErrPersonInUse.Error()
	case errors.Is(err, storage.ErrIntegrity):
		return http.StatusConflict, "record is still referenced"
	case errors.Is(err, storage.ErrDuplicate):
		return http.StatusConflict, "record already exists"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

// fail writes err as a JSON error response. Server errors are logged with
// their cause; identity invariant violations land here too.
func (a *API) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError {
		a.logger.Error("Request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"user", middleware.GetUsername(r.Context()),
			"error", err,
		)
	}
	middleware.WriteError(w, msg, status)
}
