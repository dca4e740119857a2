package sqlstore

import (
	"database/sql"
	"fmt"
)

// sqliteSchema sets up the database schema. Statements run in order on
// startup; tables referenced by foreign keys come first.
var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		first_name TEXT NOT NULL DEFAULT '',
		last_name TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		roles TEXT NOT NULL,
		monthly_income TEXT,
		version INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS people (
		id TEXT PRIMARY KEY,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		username TEXT UNIQUE,
		owner_id TEXT NOT NULL,
		version INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS categories (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		owner_id TEXT NOT NULL,
		version INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS events (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		owner_id TEXT NOT NULL,
		version INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS event_participants (
		event_id TEXT NOT NULL,
		person_id TEXT NOT NULL,
		PRIMARY KEY (event_id, person_id),
		FOREIGN KEY (event_id) REFERENCES events(id) ON DELETE CASCADE,
		FOREIGN KEY (person_id) REFERENCES people(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS expenses (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		cost TEXT,
		category_id TEXT NOT NULL,
		payer_id TEXT NOT NULL,
		beneficiary_id TEXT NOT NULL,
		event_id TEXT,
		date TEXT NOT NULL,
		payment_date TEXT,
		periodic INTEGER NOT NULL DEFAULT 0,
		period_unit TEXT NOT NULL DEFAULT '',
		period_interval INTEGER NOT NULL DEFAULT 0,
		paid INTEGER NOT NULL DEFAULT 0,
		owner_id TEXT NOT NULL,
		version INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL,
		FOREIGN KEY (category_id) REFERENCES categories(id),
		FOREIGN KEY (payer_id) REFERENCES people(id),
		FOREIGN KEY (beneficiary_id) REFERENCES people(id),
		FOREIGN KEY (event_id) REFERENCES events(id) ON DELETE SET NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_people_owner_id ON people(owner_id)`,
	`CREATE INDEX IF NOT EXISTS idx_categories_owner_id ON categories(owner_id)`,
	`CREATE INDEX IF NOT EXISTS idx_events_owner_id ON events(owner_id)`,
	`CREATE INDEX IF NOT EXISTS idx_expenses_owner_date ON expenses(owner_id, date)`,
	`CREATE INDEX IF NOT EXISTS idx_expenses_payer_id ON expenses(payer_id)`,
	`CREATE INDEX IF NOT EXISTS idx_expenses_beneficiary_id ON expenses(beneficiary_id)`,
	`CREATE INDEX IF NOT EXISTS idx_expenses_category_id ON expenses(category_id)`,
}

// mysqlSchema mirrors sqliteSchema for MySQL/MariaDB (InnoDB for foreign
// keys, sized VARCHAR keys for indexes).
var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id VARCHAR(36) PRIMARY KEY,
		username VARCHAR(191) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		first_name VARCHAR(255) NOT NULL DEFAULT '',
		last_name VARCHAR(255) NOT NULL DEFAULT '',
		email VARCHAR(255) NOT NULL DEFAULT '',
		roles VARCHAR(255) NOT NULL,
		monthly_income DECIMAL(19,2),
		version BIGINT NOT NULL DEFAULT 0,
		created_at BIGINT NOT NULL,
		updated_at BIGINT NOT NULL
	) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS people (
		id VARCHAR(36) PRIMARY KEY,
		first_name VARCHAR(255) NOT NULL,
		last_name VARCHAR(255) NOT NULL DEFAULT '',
		email VARCHAR(255) NOT NULL DEFAULT '',
		username VARCHAR(191) UNIQUE,
		owner_id VARCHAR(36) NOT NULL,
		version BIGINT NOT NULL DEFAULT 0,
		INDEX idx_people_owner_id (owner_id)
	) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS categories (
		id VARCHAR(36) PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		description TEXT,
		owner_id VARCHAR(36) NOT NULL,
		version BIGINT NOT NULL DEFAULT 0,
		INDEX idx_categories_owner_id (owner_id)
	) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS events (
		id VARCHAR(36) PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		description TEXT,
		owner_id VARCHAR(36) NOT NULL,
		version BIGINT NOT NULL DEFAULT 0,
		INDEX idx_events_owner_id (owner_id)
	) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS event_participants (
		event_id VARCHAR(36) NOT NULL,
		person_id VARCHAR(36) NOT NULL,
		PRIMARY KEY (event_id, person_id),
		FOREIGN KEY (event_id) REFERENCES events(id) ON DELETE CASCADE,
		FOREIGN KEY (person_id) REFERENCES people(id) ON DELETE CASCADE
	) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS expenses (
		id VARCHAR(36) PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		description TEXT,
		cost DECIMAL(19,2),
		category_id VARCHAR(36) NOT NULL,
		payer_id VARCHAR(36) NOT NULL,
		beneficiary_id VARCHAR(36) NOT NULL,
		event_id VARCHAR(36),
		date CHAR(10) NOT NULL,
		payment_date CHAR(10),
		periodic BOOLEAN NOT NULL DEFAULT FALSE,
		period_unit VARCHAR(8) NOT NULL DEFAULT '',
		period_interval INT NOT NULL DEFAULT 0,
		paid BOOLEAN NOT NULL DEFAULT FALSE,
		owner_id VARCHAR(36) NOT NULL,
		version BIGINT NOT NULL DEFAULT 0,
		created_at BIGINT NOT NULL,
		INDEX idx_expenses_owner_date (owner_id, date),
		FOREIGN KEY (category_id) REFERENCES categories(id),
		FOREIGN KEY (payer_id) REFERENCES people(id),
		FOREIGN KEY (beneficiary_id) REFERENCES people(id),
		FOREIGN KEY (event_id) REFERENCES events(id) ON DELETE SET NULL
	) ENGINE=InnoDB`,
}

// runMigrations executes the schema setup for the dialect.
func runMigrations(db *sql.DB, dialect Dialect) error {
	schema := sqliteSchema
	if dialect == DialectMySQL {
		schema = mysqlSchema
	}
	for i, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

// costExpr is the SQL expression used to order by cost. SQLite stores
// decimals as text.
func (s *Store) costExpr() string {
	if s.dialect == DialectSQLite {
		return "CAST(cost AS REAL)"
	}
	return "cost"
}
