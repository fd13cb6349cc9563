// Package sqlite stores exhibitor records in a local SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/JakeFAU/exhibitor-scraper/internal/exhibitor"
	"github.com/JakeFAU/exhibitor-scraper/internal/store"
)

// Store is a store.Store backed by a single SQLite file.
type Store struct {
	db    *sql.DB
	table string
}

var _ store.Store = (*Store)(nil)

// Open opens or creates the database at path and ensures the exhibitor table exists.
func Open(ctx context.Context, path, table string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("store.path is required")
	}
	table, err := store.TableName(table)
	if err != nil {
		return nil, err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?mode=rwc")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// One writer; every insert commits on its own.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &Store{db: db, table: table}
	if err := s.createTable(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}
	return s, nil
}

func (s *Store) createTable(ctx context.Context) error {
	schema := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS %s (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT,
		description TEXT,
		country TEXT,
		website TEXT,
		email TEXT,
		phone TEXT
	)`, s.table)
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Insert appends rec and returns the assigned id.
func (s *Store) Insert(ctx context.Context, rec exhibitor.Record) (int64, error) {
	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (?, ?, ?, ?, ?, ?)`,
		s.table, strings.Join(exhibitor.Columns, ", "))
	res, err := s.db.ExecContext(ctx, query, rec.Values()...)
	if err != nil {
		return 0, fmt.Errorf("insert exhibitor: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

// Count returns the number of stored rows.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s`, s.table)).Scan(&n); err != nil {
		return 0, fmt.Errorf("count exhibitors: %w", err)
	}
	return n, nil
}

// Records returns all stored rows ordered by id.
func (s *Store) Records(ctx context.Context) ([]exhibitor.Record, error) {
	query := fmt.Sprintf(`SELECT id, %s FROM %s ORDER BY id`, strings.Join(exhibitor.Columns, ", "), s.table)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query exhibitors: %w", err)
	}
	defer rows.Close()

	var out []exhibitor.Record
	for rows.Next() {
		var (
			rec    exhibitor.Record
			fields [6]sql.NullString
		)
		if err := rows.Scan(&rec.ID, &fields[0], &fields[1], &fields[2], &fields[3], &fields[4], &fields[5]); err != nil {
			return nil, fmt.Errorf("scan exhibitor: %w", err)
		}
		rec.Name = fromNull(fields[0])
		rec.Description = fromNull(fields[1])
		rec.Country = fromNull(fields[2])
		rec.Website = fromNull(fields[3])
		rec.Email = fromNull(fields[4])
		rec.Phone = fromNull(fields[5])
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate exhibitors: %w", err)
	}
	return out, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func fromNull(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}
