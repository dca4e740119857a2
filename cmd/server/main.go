package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"connectrpc.com/connect"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/spf13/pflag"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/munera/internal/api/rest"
	"github.com/mmynk/munera/internal/auth"
	"github.com/mmynk/munera/internal/config"
	"github.com/mmynk/munera/internal/middleware"
	"github.com/mmynk/munera/internal/rpc"
	"github.com/mmynk/munera/internal/seed"
	"github.com/mmynk/munera/internal/service"
	"github.com/mmynk/munera/internal/storage/sqlstore"
	"github.com/mmynk/munera/pkg/logging"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := pflag.StringP("config", "c", "", "path to a YAML config file (default $MUNERA_CONFIG)")
	addr := pflag.String("addr", "", "listen address, overrides server.addr")
	pflag.Parse()

	logging.Setup()
	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if pflag.CommandLine.Changed("addr") {
		cfg.Server.Addr = *addr
	}
	logger := logging.Configure(cfg.Log.Level, cfg.Log.Format)

	store, err := sqlstore.New(sqlstore.Dialect(cfg.Database.Driver), cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()
	logger.Info("Storage initialized", "driver", cfg.Database.Driver)

	svc := service.New(store, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	admin := seed.Admin{
		Username:  cfg.Admin.Username,
		Password:  cfg.Admin.Password,
		FirstName: cfg.Admin.FirstName,
		LastName:  cfg.Admin.LastName,
		Email:     cfg.Admin.Email,
		Roles:     cfg.Admin.RoleSet,
	}
	if err := seed.New(store, svc, logger).Run(ctx, admin); err != nil {
		return err
	}

	jwtManager := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	authenticator := auth.NewPasswordAuthenticator(store)
	metrics := middleware.NewMetrics()

	router := mux.NewRouter()
	router.Use(metrics.Middleware)
	router.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	// Connect services
	authPath, authHandler := rpc.NewAuthServiceHandler(
		rpc.NewAuthService(authenticator, jwtManager, svc, logger),
		connect.WithInterceptors(middleware.OptionalAuth(jwtManager), middleware.LoggingInterceptor(logger)),
	)
	router.PathPrefix(authPath).Handler(authHandler)

	ledgerPath, ledgerHandler := rpc.NewLedgerServiceHandler(
		rpc.NewLedgerService(svc, logger),
		connect.WithInterceptors(middleware.RequireAuth(jwtManager), middleware.LoggingInterceptor(logger)),
	)
	router.PathPrefix(ledgerPath).Handler(ledgerHandler)

	rest.New(svc, authenticator, jwtManager, logger).Register(router)

	cors := handlers.CORS(
		handlers.AllowedOrigins(cfg.Server.CORSOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization", "Connect-Protocol-Version", "Connect-Timeout-Ms"}),
		handlers.ExposedHeaders([]string{"Connect-Protocol-Version", "Connect-Timeout-Ms", "Content-Disposition"}),
	)
	recovery := handlers.RecoveryHandler(
		handlers.RecoveryLogger(slog.NewLogLogger(logger.Handler(), slog.LevelError)),
		handlers.PrintRecoveryStack(cfg.Environment == config.Development),
	)
	handler := middleware.Logging(logger)(recovery(cors(router)))

	// h2c serves HTTP/2 without TLS for Connect clients
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      h2c.NewHandler(handler, &http2.Server{}),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server starting", "address", cfg.Server.Addr, "environment", cfg.Environment)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down", "timeout", cfg.Server.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return nil
}
