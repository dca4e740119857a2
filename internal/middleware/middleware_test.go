package middleware

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/mmynk/munera/internal/auth"
	"github.com/mmynk/munera/internal/models"
)

func newToken(t *testing.T, jm *auth.JWTManager, roles models.RoleSet) string {
	t.Helper()
	user := models.NewUser("alice", "", roles)
	token, err := jm.Generate(user)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	return token
}

func TestAuthenticate(t *testing.T) {
	jm := auth.NewJWTManager("test-secret", time.Hour)
	token := newToken(t, jm, models.NewRoleSet(models.RoleUser))

	var gotUser string
	var gotRoles models.RoleSet
	h := Authenticate(jm)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = GetUsername(r.Context())
		gotRoles = GetRoles(r.Context())
	}))

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"valid token", "Bearer " + token, http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + token, http.StatusUnauthorized},
		{"garbage token", "Bearer not-a-jwt", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotUser = ""
			req := httptest.NewRequest(http.MethodGet, "/expenses", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d", rec.Code, tt.want)
			}
			if tt.want == http.StatusOK {
				if gotUser != "alice" || !gotRoles.Has(models.RoleUser) {
					t.Errorf("context identity = %q %v", gotUser, gotRoles)
				}
			} else if !strings.Contains(rec.Body.String(), `"status":"error"`) {
				t.Errorf("body = %s", rec.Body.String())
			}
		})
	}
}

func TestHasRole(t *testing.T) {
	jm := auth.NewJWTManager("test-secret", time.Hour)
	h := Authenticate(jm)(HasRole(models.RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})))

	for _, tc := range []struct {
		roles models.RoleSet
		want  int
	}{
		{models.NewRoleSet(models.RoleUser), http.StatusForbidden},
		{models.NewRoleSet(models.RoleAdmin, models.RoleUser), http.StatusNoContent},
	} {
		req := httptest.NewRequest(http.MethodGet, "/users", nil)
		req.Header.Set("Authorization", "Bearer "+newToken(t, jm, tc.roles))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != tc.want {
			t.Errorf("roles %v: status = %d, want %d", tc.roles, rec.Code, tc.want)
		}
	}
}

func TestRequireAuthInterceptor(t *testing.T) {
	jm := auth.NewJWTManager("test-secret", time.Hour)
	token := newToken(t, jm, models.NewRoleSet(models.RoleUser))

	var seen string
	next := connect.UnaryFunc(func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		seen = GetUsername(ctx)
		return connect.NewResponse(&struct{}{}), nil
	})
	call := RequireAuth(jm)(next)

	req := connect.NewRequest(&struct{}{})
	if _, err := call(context.Background(), req); connect.CodeOf(err) != connect.CodeUnauthenticated {
		t.Fatalf("no header: code = %v, want unauthenticated", connect.CodeOf(err))
	}

	req.Header().Set("Authorization", "Bearer "+token)
	if _, err := call(context.Background(), req); err != nil {
		t.Fatalf("valid token: %v", err)
	}
	if seen != "alice" {
		t.Errorf("username in context = %q", seen)
	}

	// The admin check sees the roles stored by RequireAuth.
	admin := RequireAuth(jm)(RequireRole(models.RoleAdmin)(next))
	if _, err := admin(context.Background(), req); connect.CodeOf(err) != connect.CodePermissionDenied {
		t.Errorf("admin-only: code = %v, want permission denied", connect.CodeOf(err))
	}
}

func TestOptionalAuthInterceptor(t *testing.T) {
	jm := auth.NewJWTManager("test-secret", time.Hour)

	var seen string
	call := OptionalAuth(jm)(func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		seen = GetUsername(ctx)
		return nil, nil
	})

	req := connect.NewRequest(&struct{}{})
	req.Header().Set("Authorization", "Bearer broken")
	if _, err := call(context.Background(), req); err != nil {
		t.Fatalf("invalid token should pass through: %v", err)
	}
	if seen != "" {
		t.Errorf("username = %q, want empty", seen)
	}
}

func TestLoggingInterceptor(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	call := LoggingInterceptor(logger)(func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		return nil, connect.NewError(connect.CodeNotFound, errors.New("no such expense"))
	})
	if _, err := call(context.Background(), connect.NewRequest(&struct{}{})); err == nil {
		t.Fatal("expected error")
	}
	out := buf.String()
	if !strings.Contains(out, "level=WARN") || !strings.Contains(out, "not_found") {
		t.Errorf("log = %q", out)
	}
}

func TestLoggingMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	h := Logging(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPatch, "/expenses/e1", nil))

	out := buf.String()
	for _, want := range []string{"level=WARN", "status=409", "path=/expenses/e1"} {
		if !strings.Contains(out, want) {
			t.Errorf("log %q missing %q", out, want)
		}
	}
}

func TestMetrics(t *testing.T) {
	m := NewMetrics()
	r := mux.NewRouter()
	r.Use(m.Middleware)
	r.HandleFunc("/expenses/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, id := range []string{"a", "b"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/expenses/"+id, nil))
	}

	got := testutil.ToFloat64(m.requests.WithLabelValues("/expenses/{id}", http.MethodGet, "404"))
	if got != 2 {
		t.Errorf("request counter = %v, want 2", got)
	}

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rec.Body.String(), "munera_http_requests_total") {
		t.Error("exposition is missing munera_http_requests_total")
	}
}
