// Package postgres stores exhibitor records in a Postgres table.
package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JakeFAU/exhibitor-scraper/internal/exhibitor"
	"github.com/JakeFAU/exhibitor-scraper/internal/store"
)

type pool interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	QueryRow(context.Context, string, ...any) pgx.Row
	Close()
}

// Store is a store.Store backed by a pgx connection pool.
type Store struct {
	pool  pool
	table string
}

var _ store.Store = (*Store)(nil)

// Open connects to dsn and ensures the exhibitor table exists.
func Open(ctx context.Context, dsn, table string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("store.dsn is required")
	}
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	// Rows are written one at a time by a single run.
	cfg.MaxConns = 1
	p, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	s, err := NewWithPool(ctx, p, table)
	if err != nil {
		p.Close()
		return nil, err
	}
	return s, nil
}

// NewWithPool builds a Store from an existing pool (primarily for testing) and
// creates the table if needed.
func NewWithPool(ctx context.Context, p pool, table string) (*Store, error) {
	if p == nil {
		return nil, fmt.Errorf("pool is required")
	}
	table, err := store.TableName(table)
	if err != nil {
		return nil, err
	}
	s := &Store{pool: p, table: table}
	if _, err := p.Exec(ctx, s.schema()); err != nil {
		return nil, fmt.Errorf("create table: %w", err)
	}
	return s, nil
}

func (s *Store) schema() string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id BIGSERIAL PRIMARY KEY,
	name TEXT,
	description TEXT,
	country TEXT,
	website TEXT,
	email TEXT,
	phone TEXT
)`, s.table)
}

// Insert appends rec and returns the assigned id.
func (s *Store) Insert(ctx context.Context, rec exhibitor.Record) (int64, error) {
	if s == nil || s.pool == nil {
		return 0, fmt.Errorf("postgres store is not configured")
	}
	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		s.table, strings.Join(exhibitor.Columns, ", "))
	var id int64
	if err := s.pool.QueryRow(ctx, query, rec.Values()...).Scan(&id); err != nil {
		return 0, fmt.Errorf("insert exhibitor: %w", err)
	}
	return id, nil
}

// Close releases the pool.
func (s *Store) Close() error {
	if s == nil || s.pool == nil {
		return nil
	}
	s.pool.Close()
	return nil
}
