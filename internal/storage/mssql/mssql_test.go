package mssql

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tabetl/internal/dataset"
	"tabetl/internal/ddl"
	"tabetl/internal/storage"
)

func TestCreateTableSQL(t *testing.T) {
	t.Parallel()

	got := createTableSQL(ddl.TextTable("dbo.carts", []string{"id", "first name", "odd]col"}))
	want := "CREATE TABLE [dbo].[carts] (\n" +
		"  [id] NVARCHAR(MAX) NULL,\n" +
		"  [first name] NVARCHAR(MAX) NULL,\n" +
		"  [odd]]col] NVARCHAR(MAX) NULL\n" +
		")"
	assert.Equal(t, want, got)
}

func TestDropTableSQL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		table string
		want  string
	}{
		{"carts", "IF OBJECT_ID(N'[carts]', N'U') IS NOT NULL DROP TABLE [carts]"},
		{"dbo.carts", "IF OBJECT_ID(N'[dbo].[carts]', N'U') IS NOT NULL DROP TABLE [dbo].[carts]"},
		{"o'brien", "IF OBJECT_ID(N'[o''brien]', N'U') IS NOT NULL DROP TABLE [o'brien]"},
	}
	for _, tt := range tests {
		t.Run(tt.table, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, dropTableSQL(tt.table))
		})
	}
}

func TestOpen_Validation(t *testing.T) {
	t.Parallel()

	_, err := Open(context.Background(), "", "t")
	require.Error(t, err)
	_, err = Open(context.Background(), "sqlserver://localhost?database=etl", " ")
	require.Error(t, err)

	_, err = Open(context.Background(), "sqlserver://localhost?encrypt=banana", "t")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mssql: dsn")
}

func TestFactory_Registered(t *testing.T) {
	t.Parallel()

	err := storage.Load(context.Background(),
		dataset.MustFromRows([]string{"id"}, [][]any{{1}}),
		storage.Descriptor{Kind: "mssql", Table: "t"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DSN must not be empty")
	assert.NotErrorIs(t, err, storage.ErrUnknownKind)
}

// TestSink_Integration runs against a real server when TABETL_MSSQL_DSN is
// set.
func TestSink_Integration(t *testing.T) {
	dsn := os.Getenv("TABETL_MSSQL_DSN")
	if dsn == "" {
		t.Skip("TABETL_MSSQL_DSN not set")
	}
	ctx := context.Background()
	d := storage.Descriptor{Kind: "mssql", DSN: dsn, Table: "tabetl_it"}

	require.NoError(t, storage.Load(ctx, dataset.MustFromRows([]string{"id", "name"}, [][]any{{1, "a"}, {2, nil}, {3, "c"}}), d))
	require.NoError(t, storage.Load(ctx, dataset.MustFromRows([]string{"id", "name"}, [][]any{{9, "z"}, {8, nil}}), d))

	db, err := sql.Open("sqlserver", dsn)
	require.NoError(t, err)
	defer db.Close()

	var n, nulls int
	require.NoError(t, db.QueryRowContext(ctx,
		`SELECT COUNT(*), SUM(CASE WHEN [name] IS NULL THEN 1 ELSE 0 END) FROM [tabetl_it]`).Scan(&n, &nulls))
	assert.Equal(t, 2, n)
	assert.Equal(t, 1, nulls)

	require.NoError(t, storage.Load(ctx, dataset.MustFromRows([]string{"id"}, nil), d))
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM [tabetl_it]`).Scan(&n))
	assert.Equal(t, 0, n)
}
