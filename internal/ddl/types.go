package ddl

// ColumnDef describes a single column in a table definition.
//
// Fields:
//   - Name: column name (unquoted; quoting happens at render time)
//   - SQLType: target SQL type (e.g., TEXT)
//   - Nullable: whether NULL is allowed
type ColumnDef struct {
	Name     string
	SQLType  string
	Nullable bool
}

// TableDef holds the table name and an ordered list of columns. A dotted
// name ("schema.table") is quoted segment by segment.
type TableDef struct {
	FQN     string
	Columns []ColumnDef
}

// TextTable defines table with one nullable TEXT column per name, which is
// how loaded datasets are stored.
func TextTable(table string, columns []string) TableDef {
	t := TableDef{FQN: table, Columns: make([]ColumnDef, len(columns))}
	for i, c := range columns {
		t.Columns[i] = ColumnDef{Name: c, SQLType: "TEXT", Nullable: true}
	}
	return t
}
