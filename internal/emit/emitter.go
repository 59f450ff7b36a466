// Package emit turns reconciled legacy records into ordered, idempotent SQL
// batches for the destination schema.
//
// Every batch is self-contained. It creates the mapping tables it fills,
// inserts its rows with ON CONFLICT DO NOTHING and records their mapping rows
// the same way. Surrogate ids are derived from the legacy ids (see IDs), so
// replaying a batch changes nothing.
package emit

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"posmigrate/internal/ddl"
)

// Destination tables.
const (
	TableClients    = "clients"
	TableProducts   = "products"
	TableSales      = "sales"
	TableSaleItems  = "sale_items"
	TablePayments   = "payments"
	TableVendors    = "vendors"
	TableCategories = "categories"
)

// Options configures an Emitter. Zero fields take the DefaultOptions value.
type Options struct {
	// Namespace seeds surrogate ids.
	Namespace uuid.UUID
	// TaxDivisor turns a tax-inclusive amount into its net part (1.20).
	TaxDivisor float64
	// TaxRate is written on products and sale items (0.20).
	TaxRate float64
	// FallbackCategory is the slug used when a product's category is unknown.
	FallbackCategory string
	// BatchSizes overrides DefaultBatchSizes per stage name.
	BatchSizes map[string]int
}

// DefaultOptions returns the settings of the original French VAT setup.
func DefaultOptions() Options {
	return Options{
		Namespace:        DefaultNamespace,
		TaxDivisor:       1.20,
		TaxRate:          0.20,
		FallbackCategory: "coupe",
	}
}

// Emitter renders batches. It holds no state between calls.
type Emitter struct {
	opts Options
	ids  IDs
}

// New returns an Emitter for opts.
func New(opts Options) *Emitter {
	def := DefaultOptions()
	if opts.TaxDivisor <= 0 {
		opts.TaxDivisor = def.TaxDivisor
	}
	if opts.TaxRate <= 0 {
		opts.TaxRate = def.TaxRate
	}
	if strings.TrimSpace(opts.FallbackCategory) == "" {
		opts.FallbackCategory = def.FallbackCategory
	}
	return &Emitter{opts: opts, ids: NewIDs(opts.Namespace)}
}

// IDs returns the surrogate id generator in use.
func (e *Emitter) IDs() IDs { return e.ids }

func (e *Emitter) batchSize(s Stage) int {
	if n, ok := e.opts.BatchSizes[s.Name]; ok && n > 0 {
		return n
	}
	return DefaultBatchSizes[s.Name]
}

// stageDef describes how one stage renders its batches.
type stageDef[T any] struct {
	stage    Stage
	requires []string
	provides []string
	// prelude statements open every batch; they must be idempotent.
	prelude []string
	body    func(chunk []T) string
	// expects reports the outside prerequisites of a chunk; may be nil.
	expects func(chunk []T) []string
	footer  string
}

// render chunks items and assembles the batches of one stage. A stage with
// no records still yields one batch when it provides mapping tables, so later
// stages can rely on them.
func render[T any](e *Emitter, def stageDef[T], items []T) []Batch {
	chunks := Chunk(items, e.batchSize(def.stage))
	if len(chunks) == 0 {
		if len(def.provides) == 0 {
			return nil
		}
		chunks = [][]T{nil}
	}

	out := make([]Batch, 0, len(chunks))
	offset := 0
	for i, chunk := range chunks {
		var sb strings.Builder
		fmt.Fprintf(&sb, "-- %s batch %d/%d\n", def.stage.Name, i+1, len(chunks))
		if len(chunk) > 0 {
			fmt.Fprintf(&sb, "-- records %d to %d\n", offset+1, offset+len(chunk))
		}
		sb.WriteByte('\n')
		for _, stmt := range def.prelude {
			sb.WriteString(stmt)
			sb.WriteString("\n\n")
		}
		if len(chunk) > 0 {
			sb.WriteString(def.body(chunk))
		}
		if i == len(chunks)-1 && def.footer != "" {
			sb.WriteString("\n")
			sb.WriteString(def.footer)
		}
		offset += len(chunk)

		var expects []string
		if def.expects != nil && len(chunk) > 0 {
			expects = def.expects(chunk)
		}
		sql := sb.String()
		out = append(out, Batch{
			Name:     FileName(def.stage, i+1),
			Stage:    def.stage.Name,
			Seq:      def.stage.Seq,
			Index:    i + 1,
			Count:    len(chunks),
			Records:  len(chunk),
			Requires: def.requires,
			Provides: def.provides,
			Expects:  expects,
			Checksum: Checksum(sql),
			SQL:      sql,
		})
	}
	return out
}

// prelude renders the bookkeeping column of table (when table is set) and
// the mapping tables in provides.
func prelude(table string, provides ...string) ([]string, error) {
	var out []string
	if table != "" {
		stmt, err := ddl.BuildAddColumnSQL(Ident(table), ddl.ColumnDef{Name: "old_mysql_id", SQLType: "BIGINT", Nullable: true})
		if err != nil {
			return nil, err
		}
		out = append(out, stmt)
	}
	for _, m := range provides {
		stmt, err := ddl.BuildCreateTableSQL(mappingDef(m))
		if err != nil {
			return nil, err
		}
		out = append(out, stmt)
	}
	return out, nil
}

func insertValues(table string, cols []string, rows []string) string {
	return fmt.Sprintf("INSERT INTO %s (%s)\nVALUES\n%s\nON CONFLICT DO NOTHING;\n",
		Ident(table), strings.Join(cols, ", "), strings.Join(rows, ",\n"))
}

func countFooter(label, table string, mappings ...string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "SELECT %s AS info, COUNT(*) AS total FROM %s;\n", Literal(label), Ident(table))
	for _, m := range mappings {
		fmt.Fprintf(&sb, "SELECT %s AS info, COUNT(*) AS total FROM %s;\n", Literal(m), Ident(m))
	}
	return sb.String()
}
