// Package mysql implements the repository ports on MySQL through
// database/sql and go-sql-driver/mysql. Uniqueness is enforced by UNIQUE
// keys; an order and its items are written in one transaction.
package mysql

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"strings"
	"time"

	gomysql "github.com/go-sql-driver/mysql"
)

//go:embed schema.sql
var schemaSQL string

// HealthCheckName identifies the MySQL store in readiness reports.
const HealthCheckName = "storage"

// Config holds connection pool settings.
type Config struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Open connects to MySQL and verifies the connection. Time values are always
// parsed and stored in UTC regardless of the DSN.
func Open(ctx context.Context, cfg Config) (*sql.DB, error) {
	dsn, err := gomysql.ParseDSN(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parsing mysql dsn: %w", err)
	}
	dsn.ParseTime = true
	dsn.Loc = time.UTC

	connector, err := gomysql.NewConnector(dsn)
	if err != nil {
		return nil, fmt.Errorf("creating mysql connector: %w", err)
	}

	db := sql.OpenDB(connector)
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging mysql: %w", err)
	}
	return db, nil
}

// Migrate creates any missing tables. Statements are idempotent.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range strings.Split(schemaSQL, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("applying schema: %w", err)
		}
	}
	return nil
}

// Checker reports MySQL reachability to the readiness endpoint.
type Checker struct {
	db *sql.DB
}

// NewChecker creates a Checker for db.
func NewChecker(db *sql.DB) *Checker {
	return &Checker{db: db}
}

// Name implements ports.HealthChecker.
func (c *Checker) Name() string {
	return HealthCheckName
}

// HealthCheck implements ports.HealthChecker.
func (c *Checker) HealthCheck(ctx context.Context) error {
	if err := c.db.PingContext(ctx); err != nil {
		return fmt.Errorf("pinging mysql: %w", err)
	}
	return nil
}

// timestamp returns now in UTC at the column precision so that values handed
// back to callers match what a later read returns.
func timestamp(now func() time.Time) time.Time {
	return now().UTC().Truncate(time.Microsecond)
}
