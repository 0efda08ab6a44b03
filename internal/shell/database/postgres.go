// Package database checks connectivity to the stack's Postgres service.
package database

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/Liquid4All/on-prem-stack/internal/core/stack"
)

var (
	ErrConnectionFailed = errors.New("database connection failed")
	ErrSchemaMissing    = errors.New("schema does not exist")
)

// DSN builds a lib/pq connection URL for db reachable at host.
// The published port is plain TCP, so TLS is disabled.
func DSN(db stack.DatabaseSection, host string) string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(db.User, db.Password),
		Host:     net.JoinHostPort(host, strconv.Itoa(db.Port)),
		Path:     "/" + db.Name,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

// Report is the outcome of a database check.
type Report struct {
	ServerVersion string
	Schema        string
	Tables        []string
}

// Checker runs read-only queries against the stack database.
type Checker struct {
	db *sqlx.DB
}

// Open connects to dsn and verifies the connection.
func Open(ctx context.Context, dsn string) (*Checker, error) {
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}
	return &Checker{db: db}, nil
}

// Close releases the connection pool.
func (c *Checker) Close() error {
	return c.db.Close()
}

// Check reports the server version and the tables of schema.
// It returns ErrSchemaMissing when schema has not been created yet.
func (c *Checker) Check(ctx context.Context, schema string) (*Report, error) {
	report := &Report{Schema: schema}

	if err := c.db.GetContext(ctx, &report.ServerVersion, "SHOW server_version"); err != nil {
		return nil, fmt.Errorf("query server version: %w", err)
	}

	var exists bool
	if err := c.db.GetContext(ctx, &exists,
		"SELECT EXISTS (SELECT 1 FROM information_schema.schemata WHERE schema_name = $1)", schema); err != nil {
		return nil, fmt.Errorf("query schema: %w", err)
	}
	if !exists {
		return report, fmt.Errorf("%q: %w", schema, ErrSchemaMissing)
	}

	if err := c.db.SelectContext(ctx, &report.Tables,
		"SELECT table_name FROM information_schema.tables WHERE table_schema = $1 ORDER BY table_name", schema); err != nil {
		return nil, fmt.Errorf("query tables: %w", err)
	}
	return report, nil
}
