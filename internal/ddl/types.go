package ddl

// ColumnDef describes one column of a table the migration creates or
// extends.
//
// Fields:
//   - Name: column name, emitted verbatim (callers pass plain identifiers)
//   - SQLType: Postgres type (BIGINT, UUID, TEXT, ...)
//   - Nullable: whether NULL is allowed
//   - PrimaryKey: whether the column is part of the primary key
//   - Default: raw default expression (e.g. true, now())
type ColumnDef struct {
	Name       string
	SQLType    string
	Nullable   bool
	PrimaryKey bool
	Default    string
}

// TableDef holds a table name and its ordered columns. IfNotExists makes the
// rendered statement safe to execute more than once, which every migration
// batch relies on.
type TableDef struct {
	FQN         string
	Columns     []ColumnDef
	IfNotExists bool
}
