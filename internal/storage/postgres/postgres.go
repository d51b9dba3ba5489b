// Package postgres implements the Postgres table sink using pgx v5. The
// target table is dropped, recreated and bulk-loaded with COPY inside one
// transaction.
package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"tabetl/internal/dataset"
	"tabetl/internal/ddl"
	"tabetl/internal/logging"
	"tabetl/internal/storage"
)

func init() {
	storage.Register("postgres", func(ctx context.Context, d storage.Descriptor) (storage.Sink, error) {
		return Open(ctx, d.DSN, d.Table)
	})
}

// execer is the subset of pgx.Tx the load uses.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	CopyFrom(ctx context.Context, table pgx.Identifier, columns []string, src pgx.CopyFromSource) (int64, error)
}

// Sink is a Postgres-backed storage.Sink.
type Sink struct {
	conn  *pgx.Conn
	table string
	name  string
}

// Open connects to dsn.
func Open(ctx context.Context, dsn, table string) (*Sink, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("postgres: DSN must not be empty")
	}
	if strings.TrimSpace(table) == "" {
		return nil, fmt.Errorf("postgres: table must not be empty")
	}
	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: connect: %w", err)
	}
	d := storage.Descriptor{Kind: "postgres", DSN: dsn, Table: table}
	return &Sink{conn: conn, table: table, name: d.String()}, nil
}

// Write replaces the table with the contents of ds.
func (s *Sink) Write(ctx context.Context, ds *dataset.Dataset) error {
	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("postgres: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	n, err := replaceTable(ctx, tx, s.table, ds)
	if err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("postgres: commit: %w", err)
	}
	logging.FromContext(ctx).Info("table replaced", "sink", s.name, "rows", n)
	return nil
}

// replaceTable drops and recreates table, then copies the rows of ds in.
func replaceTable(ctx context.Context, tx execer, table string, ds *dataset.Dataset) (int64, error) {
	def, rows, err := storage.TableRows(table, ds)
	if err != nil {
		return 0, fmt.Errorf("postgres: %w", err)
	}
	create, err := ddl.BuildCreateTableSQL(def)
	if err != nil {
		return 0, fmt.Errorf("postgres: %w", err)
	}
	if _, err := tx.Exec(ctx, ddl.DropTableSQL(table)); err != nil {
		return 0, fmt.Errorf("postgres: drop: %w", err)
	}
	if _, err := tx.Exec(ctx, create); err != nil {
		return 0, fmt.Errorf("postgres: create: %w", err)
	}
	n, err := tx.CopyFrom(ctx, identifier(table), ds.Columns(), pgx.CopyFromRows(rows))
	if err != nil {
		return n, fmt.Errorf("postgres: copy: %w", err)
	}
	return n, nil
}

// identifier splits a dotted table name into a pgx.Identifier.
func identifier(table string) pgx.Identifier {
	parts := strings.Split(table, ".")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return pgx.Identifier(parts)
}

// Close closes the connection.
func (s *Sink) Close() error { return s.conn.Close(context.Background()) }
