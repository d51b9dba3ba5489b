// Package sqlite implements the SQLite table sink using database/sql and the
// pure-Go modernc.org/sqlite driver. The target table is dropped, recreated
// and filled inside one transaction.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"tabetl/internal/dataset"
	"tabetl/internal/ddl"
	"tabetl/internal/logging"
	"tabetl/internal/storage"
)

func init() {
	storage.Register("sqlite", func(ctx context.Context, d storage.Descriptor) (storage.Sink, error) {
		return Open(ctx, d.DSN, d.Table)
	})
}

// Sink is a SQLite-backed storage.Sink.
type Sink struct {
	db    *sql.DB
	table string
	name  string
}

// Open connects to dsn and verifies the connection. DSN is passed directly
// to database/sql, for example:
//
//	"file:etl.db?_pragma=busy_timeout(5000)"
//	"etl.db"
func Open(ctx context.Context, dsn, table string) (*Sink, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("sqlite: DSN must not be empty")
	}
	if strings.TrimSpace(table) == "" {
		return nil, fmt.Errorf("sqlite: table must not be empty")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: ping: %w", err)
	}

	d := storage.Descriptor{Kind: "sqlite", DSN: dsn, Table: table}
	return &Sink{db: db, table: table, name: d.String()}, nil
}

// Write replaces the table with the contents of ds.
func (s *Sink) Write(ctx context.Context, ds *dataset.Dataset) error {
	def, rows, err := storage.TableRows(s.table, ds)
	if err != nil {
		return fmt.Errorf("sqlite: %w", err)
	}
	create, err := ddl.BuildCreateTableSQL(def)
	if err != nil {
		return fmt.Errorf("sqlite: %w", err)
	}
	insert := ddl.InsertSQL(def, func(int) string { return "?" })

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, ddl.DropTableSQL(s.table)); err != nil {
		return fmt.Errorf("sqlite: drop: %w", err)
	}
	if _, err := tx.ExecContext(ctx, create); err != nil {
		return fmt.Errorf("sqlite: create: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		return fmt.Errorf("sqlite: prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, row := range rows {
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			return fmt.Errorf("sqlite: insert row %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit: %w", err)
	}

	logging.FromContext(ctx).Info("table replaced", "sink", s.name, "rows", len(rows))
	return nil
}

// Close closes the database handle.
func (s *Sink) Close() error { return s.db.Close() }
