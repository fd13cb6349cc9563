// Package store defines persistence for extracted exhibitor records.
package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/JakeFAU/exhibitor-scraper/internal/exhibitor"
)

// Supported drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	DefaultTable = "participants"
)

// ErrUnknownDriver is returned for a store.driver value with no backend.
var ErrUnknownDriver = errors.New("unknown store driver")

var validTableName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Store appends exhibitor records. Each Insert is committed on its own.
type Store interface {
	Insert(ctx context.Context, rec exhibitor.Record) (int64, error)
	Close() error
}

// Config selects and configures a backend.
type Config struct {
	Driver string
	Path   string
	DSN    string
	Table  string
}

// TableName returns the configured table or the default, validated as a bare identifier.
func TableName(table string) (string, error) {
	if table == "" {
		table = DefaultTable
	}
	if !validTableName.MatchString(table) {
		return "", fmt.Errorf("invalid table name %q", table)
	}
	return table, nil
}

// CheckDriver reports ErrUnknownDriver for unsupported drivers.
func CheckDriver(driver string) error {
	switch driver {
	case DriverSQLite, DriverPostgres:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}
