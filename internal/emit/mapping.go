package emit

import (
	"fmt"
	"strings"

	"posmigrate/internal/ddl"
)

// Mapping tables. Each maps a legacy id to the destination UUID.
const (
	ClientMapping  = "migration_client_mapping"
	ProductMapping = "migration_product_mapping"
	SaleMapping    = "migration_sale_mapping"
	// VendorMapping is maintained outside this tool.
	VendorMapping = "migration_vendor_mapping"
)

// StockUnitRows names the ProductMapping rows of kind product. No batch
// writes them; they come from the stock import.
var StockUnitRows = fmt.Sprintf("%s (kind = '%s')", ProductMapping, KindProduct)

// ProductKind tells apart the two legacy id spaces sharing ProductMapping.
type ProductKind string

const (
	// KindArticle is a catalog item from `articles`.
	KindArticle ProductKind = "article"
	// KindProduct is a physical stock unit.
	KindProduct ProductKind = "product"
)

// mappingDef returns the table definition of a mapping table. The product
// mapping is keyed by (old_id, kind).
func mappingDef(name string) ddl.TableDef {
	cols := []ddl.ColumnDef{{Name: "old_id", SQLType: "BIGINT", PrimaryKey: true}}
	if name == ProductMapping {
		cols = append(cols, ddl.ColumnDef{Name: "kind", SQLType: "TEXT", PrimaryKey: true})
	}
	cols = append(cols, ddl.ColumnDef{Name: "new_id", SQLType: "UUID"})
	return ddl.TableDef{FQN: Ident(name), Columns: cols, IfNotExists: true}
}

// Lookup renders a correlated sub-select resolving oldID through mapping.
// kind is only used with ProductMapping.
func Lookup(mapping string, oldID int64, kind ProductKind) string {
	q := fmt.Sprintf("SELECT new_id FROM %s WHERE old_id = %d", Ident(mapping), oldID)
	if kind != "" {
		q += " AND kind = " + Literal(string(kind))
	}
	return "(" + q + ")"
}

// Coalesce renders COALESCE over exprs.
func Coalesce(exprs ...string) string {
	return "COALESCE(" + strings.Join(exprs, ", ") + ")"
}

// AnyRow renders a sub-select of an arbitrary id of table, used as the last
// resort for lookups with a fallback.
func AnyRow(table string) string {
	return fmt.Sprintf("(SELECT id FROM %s LIMIT 1)", Ident(table))
}

// mappingFill renders the statement recording the mapping rows of one batch.
// Rows are read back from the destination table so that a row skipped by ON
// CONFLICT is never mapped to an id that does not exist.
func mappingFill(mapping, table string, kind ProductKind, oldIDs []int64) string {
	ids := make([]string, len(oldIDs))
	for i, id := range oldIDs {
		ids[i] = Int(id)
	}
	cols, sel := "old_id, new_id", "old_mysql_id, id"
	if kind != "" {
		cols, sel = "old_id, kind, new_id", "old_mysql_id, "+Literal(string(kind))+", id"
	}
	return fmt.Sprintf("INSERT INTO %s (%s)\nSELECT %s FROM %s\nWHERE old_mysql_id IN (%s)\nON CONFLICT DO NOTHING;\n",
		Ident(mapping), cols, sel, Ident(table), strings.Join(ids, ", "))
}
