// Package config loads Munera's configuration.
//
// Values are resolved in order, later sources winning:
//   - built-in defaults (Default)
//   - the YAML file named by --config or MUNERA_CONFIG, when given
//   - environment variables (MUNERA_*), after loading a .env file if present
//
// With no file and no environment the server runs against a local SQLite
// database in development mode.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/mmynk/munera/internal/models"
)

// Environment represents the deployment environment.
type Environment string

const (
	Development Environment = "development"
	Production  Environment = "production"
)

// DevJWTSecret is the signing secret used when none is configured. It is
// rejected in production.
const DevJWTSecret = "munera-development-secret"

// Config is the complete server configuration.
type Config struct {
	Environment Environment    `yaml:"environment"`
	Server      ServerConfig   `yaml:"server"`
	Database    DatabaseConfig `yaml:"database"`
	Auth        AuthConfig     `yaml:"auth"`
	Admin       AdminConfig    `yaml:"admin"`
	Log         LogConfig      `yaml:"log"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string `yaml:"addr"`

	// CORSOrigins lists allowed browser origins. "*" allows any.
	CORSOrigins []string `yaml:"cors_origins"`

	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// DatabaseConfig selects the storage backend.
type DatabaseConfig struct {
	// Driver is "sqlite" or "mysql".
	Driver string `yaml:"driver"`

	// DSN is a file path for sqlite and a go-sql-driver DSN for mysql.
	DSN string `yaml:"dsn"`
}

// AuthConfig configures session tokens.
type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

// AdminConfig holds the credentials of the administrator created on first
// boot when the database has no users.
type AdminConfig struct {
	Username  string `yaml:"username"`
	Password  string `yaml:"password"`
	FirstName string `yaml:"first_name"`
	LastName  string `yaml:"last_name"`
	Email     string `yaml:"email"`

	// Roles is a comma-separated role list, e.g. "ROLE_ADMIN,ROLE_USER".
	Roles string `yaml:"roles"`

	// RoleSet is Roles parsed by Validate.
	RoleSet models.RoleSet `yaml:"-"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `yaml:"level"`

	// Format is "text" (colored, for terminals) or "json".
	Format string `yaml:"format"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Environment: Development,
		Server: ServerConfig{
			Addr:            ":8080",
			CORSOrigins:     []string{"*"},
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			DSN:    "./data/munera.db",
		},
		Auth: AuthConfig{
			JWTSecret: DevJWTSecret,
			TokenTTL:  24 * time.Hour,
		},
		Admin: AdminConfig{
			Username:  "admin",
			Password:  "admin",
			FirstName: "Admin",
			Roles:     "ROLE_ADMIN,ROLE_USER",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load builds the configuration from defaults, the optional YAML file at
// path (or MUNERA_CONFIG when path is empty), a .env file in the working
// directory and the environment. The result is validated.
func Load(path string) (*Config, error) {
	if err := LoadEnvFile(".env"); err != nil {
		return nil, err
	}

	cfg := Default()
	if path == "" {
		path = os.Getenv("MUNERA_CONFIG")
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadEnvFile exports the variables of a dotenv file without overriding
// variables already set. A missing file is not an error.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// applyEnv overrides fields from MUNERA_* variables. LOG_LEVEL is also
// honored for the log level.
func (c *Config) applyEnv() error {
	str := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}
	dur := func(key string, dst *time.Duration) error {
		v, ok := os.LookupEnv(key)
		if !ok || v == "" {
			return nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
		*dst = d
		return nil
	}

	var env string
	str("MUNERA_ENV", &env)
	if env != "" {
		c.Environment = Environment(env)
	}
	str("MUNERA_ADDR", &c.Server.Addr)
	if v := os.Getenv("MUNERA_CORS_ORIGINS"); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		c.Server.CORSOrigins = origins
	}
	str("MUNERA_DB_DRIVER", &c.Database.Driver)
	str("MUNERA_DB_DSN", &c.Database.DSN)
	str("MUNERA_JWT_SECRET", &c.Auth.JWTSecret)
	if err := dur("MUNERA_TOKEN_TTL", &c.Auth.TokenTTL); err != nil {
		return err
	}
	str("MUNERA_ADMIN_USERNAME", &c.Admin.Username)
	str("MUNERA_ADMIN_PASSWORD", &c.Admin.Password)
	str("MUNERA_ADMIN_FIRST_NAME", &c.Admin.FirstName)
	str("MUNERA_ADMIN_LAST_NAME", &c.Admin.LastName)
	str("MUNERA_ADMIN_EMAIL", &c.Admin.Email)
	str("MUNERA_ADMIN_ROLES", &c.Admin.Roles)
	str("LOG_LEVEL", &c.Log.Level)
	str("MUNERA_LOG_LEVEL", &c.Log.Level)
	str("MUNERA_LOG_FORMAT", &c.Log.Format)
	return nil
}

// Validate checks the configuration and parses admin roles.
func (c *Config) Validate() error {
	var errs []error

	switch c.Environment {
	case Development, Production:
	default:
		errs = append(errs, fmt.Errorf("environment must be development or production, got %q", c.Environment))
	}

	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}

	switch c.Database.Driver {
	case "sqlite", "mysql":
	default:
		errs = append(errs, fmt.Errorf("database.driver must be sqlite or mysql, got %q", c.Database.Driver))
	}
	if c.Database.DSN == "" {
		errs = append(errs, errors.New("database.dsn is required"))
	}

	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("auth.jwt_secret is required"))
	} else if c.Environment == Production && c.Auth.JWTSecret == DevJWTSecret {
		errs = append(errs, errors.New("auth.jwt_secret must be set in production"))
	}
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, errors.New("auth.token_ttl must be positive"))
	}

	roles, err := models.ParseRoles(c.Admin.Roles)
	if err != nil {
		errs = append(errs, fmt.Errorf("admin.roles: %w", err))
	}
	c.Admin.RoleSet = roles

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level must be debug, info, warn or error, got %q", c.Log.Level))
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format must be text or json, got %q", c.Log.Format))
	}

	return errors.Join(errs...)
}
