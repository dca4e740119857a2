// Package sqlstore provides a database/sql implementation of the
// storage.Store interface for SQLite (default) and MySQL.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/mmynk/munera/internal/storage"
)

// Ensure Store implements storage.Store
var _ storage.Store = (*Store)(nil)

// Dialect names a supported database.
type Dialect string

const (
	DialectSQLite Dialect = "sqlite"
	DialectMySQL  Dialect = "mysql"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// Store implements storage.Store on a relational database.
type Store struct {
	db      *sql.DB // nil inside a transaction
	q       querier
	dialect Dialect
	now     func() time.Time
}

// New opens a store for the given dialect and runs migrations.
//
// For SQLite the dsn is a file path; parent directories are created and
// foreign keys are enabled on every connection. For MySQL the dsn is a
// go-sql-driver DSN.
func New(dialect Dialect, dsn string) (*Store, error) {
	var (
		db  *sql.DB
		err error
	)
	switch dialect {
	case DialectSQLite, "":
		dialect = DialectSQLite
		db, err = openSQLite(dsn)
	case DialectMySQL:
		db, err = openMySQL(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", dialect)
	}
	if err != nil {
		return nil, err
	}

	if err := runMigrations(db, dialect); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Store{db: db, q: db, dialect: dialect, now: time.Now}, nil
}

func openSQLite(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	dsn := "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

func openMySQL(dsn string) (*sql.DB, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("invalid mysql dsn: %w", err)
	}
	// Dates are stored as text; keep them as strings on the wire.
	cfg.ParseTime = false

	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create mysql connector: %w", err)
	}
	db := sql.OpenDB(connector)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// InTx runs fn in a transaction. Calls on a transaction-bound store run fn
// directly in the enclosing transaction.
func (s *Store) InTx(ctx context.Context, fn func(storage.Store) error) error {
	if s.db == nil {
		return fn(s)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&Store{q: tx, dialect: s.dialect, now: s.now}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// classify maps driver constraint errors onto storage sentinels.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var se *sqlite.Error
	if errors.As(err, &se) {
		switch se.Code() {
		case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
			return fmt.Errorf("%w: %v", storage.ErrIntegrity, err)
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return fmt.Errorf("%w: %v", storage.ErrDuplicate, err)
		}
		if se.Code()&0xff == sqlite3.SQLITE_CONSTRAINT {
			msg := se.Error()
			switch {
			case strings.Contains(msg, "FOREIGN KEY"):
				return fmt.Errorf("%w: %v", storage.ErrIntegrity, err)
			case strings.Contains(msg, "UNIQUE"):
				return fmt.Errorf("%w: %v", storage.ErrDuplicate, err)
			}
		}
		return err
	}

	var me *mysql.MySQLError
	if errors.As(err, &me) {
		switch me.Number {
		case 1451, 1452: // row is referenced / parent row missing
			return fmt.Errorf("%w: %v", storage.ErrIntegrity, err)
		case 1062:
			return fmt.Errorf("%w: %v", storage.ErrDuplicate, err)
		}
	}
	return err
}

// checkUpdated turns a zero-row versioned update into ErrNotFound or
// ErrConflict.
func (s *Store) checkUpdated(ctx context.Context, res sql.Result, table, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n > 0 {
		return nil
	}

	var one int
	err = s.q.QueryRowContext(ctx, "SELECT 1 FROM "+table+" WHERE id = ?", id).Scan(&one)
	if err == sql.ErrNoRows {
		return fmt.Errorf("%s %s: %w", table, id, storage.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to check %s: %w", table, err)
	}
	return fmt.Errorf("%s %s: %w", table, id, storage.ErrConflict)
}

// checkDeleted turns a zero-row delete into ErrNotFound.
func checkDeleted(res sql.Result, table, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", table, id, storage.ErrNotFound)
	}
	return nil
}

// orderBy renders an ORDER BY clause from sorts, using columns to map
// public field names to SQL expressions.
func orderBy(sorts []storage.Sort, columns map[string]string, fallback string) (string, error) {
	if len(sorts) == 0 {
		return " ORDER BY " + fallback, nil
	}
	parts := make([]string, 0, len(sorts))
	for _, srt := range sorts {
		col, ok := columns[srt.Field]
		if !ok {
			return "", fmt.Errorf("%w: unknown sort field %q", storage.ErrInvalidFilter, srt.Field)
		}
		dir := "ASC"
		if srt.Desc {
			dir = "DESC"
		}
		parts = append(parts, col+" "+dir)
	}
	return " ORDER BY " + strings.Join(parts, ", ") + ", id ASC", nil
}

// limit renders LIMIT/OFFSET for a page.
func limit(page storage.Page, args []any) (string, []any) {
	if page.Limit <= 0 {
		return "", args
	}
	return " LIMIT ? OFFSET ?", append(args, page.Limit, page.Offset)
}

// likePattern builds a lower-cased substring pattern for LIKE.
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(s)) + "%"
}

// nullString maps "" to SQL NULL.
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// placeholders returns "?, ?, ..." with n entries.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// likeExpr renders a case-insensitive LIKE on col using likePattern's
// backslash escapes. MySQL escapes with backslash by default.
func (s *Store) likeExpr(col string) string {
	if s.dialect == DialectSQLite {
		return "LOWER(" + col + `) LIKE ? ESCAPE '\'`
	}
	return "LOWER(" + col + ") LIKE ?"
}
