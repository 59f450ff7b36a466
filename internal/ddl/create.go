// Package ddl renders the small amount of DDL the migration batches carry:
// identifier mapping tables and the bookkeeping columns added to destination
// tables.
//
// Rendering is deterministic and does not quote identifiers; callers only
// pass fixed, lower-case names.
package ddl

import (
	"fmt"
	"strings"
)

// BuildCreateTableSQL renders a CREATE TABLE statement from t.
//
// Rules:
//
//   - t.FQN must be non-empty and at least one column is required.
//
//   - Each column renders as
//
//     <Name> <SQLType> [NOT NULL] [DEFAULT <Default>]
//
//   - Columns flagged PrimaryKey are collected into a trailing
//     PRIMARY KEY (<cols>) clause, in column order.
//
//   - IfNotExists adds IF NOT EXISTS after CREATE TABLE.
func BuildCreateTableSQL(t TableDef) (string, error) {
	fqn := strings.TrimSpace(t.FQN)
	if fqn == "" {
		return "", fmt.Errorf("ddl: table FQN must not be empty")
	}
	if len(t.Columns) == 0 {
		return "", fmt.Errorf("ddl: at least one column is required")
	}

	cols := make([]string, 0, len(t.Columns)+1)
	var pks []string
	for _, c := range t.Columns {
		def, err := columnSQL(fqn, c)
		if err != nil {
			return "", err
		}
		cols = append(cols, def)
		if c.PrimaryKey {
			pks = append(pks, strings.TrimSpace(c.Name))
		}
	}
	if len(pks) > 0 {
		cols = append(cols, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(pks, ", ")))
	}

	head := "CREATE TABLE "
	if t.IfNotExists {
		head += "IF NOT EXISTS "
	}
	return fmt.Sprintf("%s%s (\n  %s\n);", head, fqn, strings.Join(cols, ",\n  ")), nil
}

// BuildAddColumnSQL renders an idempotent ALTER TABLE ... ADD COLUMN IF NOT
// EXISTS statement. PrimaryKey is ignored.
func BuildAddColumnSQL(table string, c ColumnDef) (string, error) {
	table = strings.TrimSpace(table)
	if table == "" {
		return "", fmt.Errorf("ddl: table FQN must not be empty")
	}
	def, err := columnSQL(table, c)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("ALTER TABLE %s ADD COLUMN IF NOT EXISTS %s;", table, def), nil
}

func columnSQL(table string, c ColumnDef) (string, error) {
	name := strings.TrimSpace(c.Name)
	if name == "" {
		return "", fmt.Errorf("ddl: column with empty name in table %s", table)
	}
	typ := strings.TrimSpace(c.SQLType)
	if typ == "" {
		return "", fmt.Errorf("ddl: column %s missing SQLType", name)
	}

	var sb strings.Builder
	sb.WriteString(name)
	sb.WriteByte(' ')
	sb.WriteString(typ)
	if !c.Nullable {
		sb.WriteString(" NOT NULL")
	}
	if def := strings.TrimSpace(c.Default); def != "" {
		sb.WriteString(" DEFAULT ")
		sb.WriteString(def)
	}
	return sb.String(), nil
}
