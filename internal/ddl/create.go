// Package ddl renders the few SQL statements the table sinks need from a
// small, dialect-neutral table model. Identifiers are always double-quoted,
// which both SQLite and Postgres accept.
package ddl

import (
	"fmt"
	"strings"
)

// BuildCreateTableSQL renders:
//
//	CREATE TABLE "schema"."table" (
//	  "col1" TYPE [NOT NULL],
//	  "col2" TYPE
//	)
func BuildCreateTableSQL(t TableDef) (string, error) {
	fqn := strings.TrimSpace(t.FQN)
	if fqn == "" {
		return "", fmt.Errorf("ddl: table FQN must not be empty")
	}
	if len(t.Columns) == 0 {
		return "", fmt.Errorf("ddl: at least one column is required")
	}

	cols := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		if c.Name == "" {
			return "", fmt.Errorf("ddl: column with empty name in table %s", fqn)
		}
		typ := strings.TrimSpace(c.SQLType)
		if typ == "" {
			return "", fmt.Errorf("ddl: column %s missing SQLType", c.Name)
		}
		col := QuoteIdent(c.Name) + " " + typ
		if !c.Nullable {
			col += " NOT NULL"
		}
		cols = append(cols, col)
	}

	return fmt.Sprintf("CREATE TABLE %s (\n  %s\n)", QuoteFQN(fqn), strings.Join(cols, ",\n  ")), nil
}

// DropTableSQL renders DROP TABLE IF EXISTS for table.
func DropTableSQL(table string) string {
	return "DROP TABLE IF EXISTS " + QuoteFQN(table)
}

// InsertSQL renders a single-row INSERT with positional placeholders produced
// by placeholder(i) for the 1-based column index i.
func InsertSQL(t TableDef, placeholder func(i int) string) string {
	names := make([]string, len(t.Columns))
	params := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = QuoteIdent(c.Name)
		params[i] = placeholder(i + 1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		QuoteFQN(t.FQN), strings.Join(names, ", "), strings.Join(params, ", "))
}

// QuoteIdent double-quotes id, doubling embedded quotes.
func QuoteIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}

// QuoteFQN quotes each dot-separated segment of name.
func QuoteFQN(name string) string {
	parts := strings.Split(strings.TrimSpace(name), ".")
	for i, p := range parts {
		parts[i] = QuoteIdent(strings.TrimSpace(p))
	}
	return strings.Join(parts, ".")
}
