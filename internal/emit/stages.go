package emit

import (
	"fmt"
	"strings"

	"posmigrate/internal/legacy"
	"posmigrate/internal/reconcile"
)

// DefaultTicketDate is the date part of ticket numbers whose date is missing.
const DefaultTicketDate = "20180101"

// Customers renders stage 01: clients plus ClientMapping.
func (e *Emitter) Customers(cs []legacy.Customer) ([]Batch, error) {
	pre, err := prelude(TableClients, ClientMapping)
	if err != nil {
		return nil, err
	}
	cols := []string{"id", "first_name", "last_name", "phone", "phone2", "email", "address", "city",
		"postal_code", "birth_date", "notes", "loyalty_points", "total_spent", "visit_count",
		"created_at", "updated_at", "old_mysql_id"}

	return render(e, stageDef[legacy.Customer]{
		stage:    StageClients,
		provides: []string{ClientMapping},
		prelude:  pre,
		body: func(chunk []legacy.Customer) string {
			rows := make([]string, len(chunk))
			ids := make([]int64, len(chunk))
			for i, c := range chunk {
				ids[i] = c.OldID
				rows[i] = "(" + strings.Join([]string{
					e.ids.Literal(EntityClient, c.OldID),
					Literal(c.FirstName), Literal(c.LastName),
					Literal(c.Phone), Literal(c.Phone2), Literal(c.Email),
					Literal(c.Address), Literal(c.City), Literal(c.PostalCode),
					Date(c.BirthDate), Literal(c.Notes),
					"0", "0", "0",
					Timestamp(c.CreatedAt), Timestamp(c.UpdatedAt),
					Int(c.OldID),
				}, ", ") + ")"
			}
			return insertValues(TableClients, cols, rows) + "\n" +
				mappingFill(ClientMapping, TableClients, "", ids)
		},
		footer: countFooter(TableClients, TableClients, ClientMapping),
	}, cs), nil
}

// Products renders stage 02: catalog articles as services plus their
// ProductMapping rows of kind article.
func (e *Emitter) Products(as []legacy.Article) ([]Batch, error) {
	pre, err := prelude(TableProducts, ProductMapping)
	if err != nil {
		return nil, err
	}
	cols := []string{"id", "code", "name", "type", "category_id", "price_ht", "tva_rate", "is_active", "old_mysql_id"}

	return render(e, stageDef[legacy.Article]{
		stage:    StageProducts,
		provides: []string{ProductMapping},
		prelude:  pre,
		body: func(chunk []legacy.Article) string {
			rows := make([]string, len(chunk))
			ids := make([]int64, len(chunk))
			for i, a := range chunk {
				ids[i] = a.OldID
				net, _ := reconcile.Split(a.PriceTTC, e.opts.TaxDivisor)
				rows[i] = "(" + strings.Join([]string{
					e.ids.Literal(EntityArticle, a.OldID),
					Literal(a.Code), Literal(a.Name), Literal("service"),
					e.category(a.Category),
					Money(net), Rate(e.opts.TaxRate), Bool(a.Active),
					Int(a.OldID),
				}, ", ") + ")"
			}
			return insertValues(TableProducts, cols, rows) + "\n" +
				mappingFill(ProductMapping, TableProducts, KindArticle, ids)
		},
		footer: countFooter(TableProducts, TableProducts, ProductMapping),
	}, as), nil
}

// category resolves a legacy category label by slug, falling back to the
// configured default category.
func (e *Emitter) category(label string) string {
	fallback := categoryBySlug(e.opts.FallbackCategory)
	slug := Slug(label)
	if slug == "" || slug == e.opts.FallbackCategory {
		return fallback
	}
	return Coalesce(categoryBySlug(slug), fallback)
}

func categoryBySlug(slug string) string {
	return fmt.Sprintf("(SELECT id FROM %s WHERE slug = %s LIMIT 1)", Ident(TableCategories), Literal(slug))
}

// vendor resolves a legacy employee id through the externally maintained
// VendorMapping, falling back to any vendor.
func vendor(employeeID int64) string {
	return Coalesce(Lookup(VendorMapping, employeeID, ""), AnyRow(TableVendors))
}

// TicketNumber formats the destination ticket number T-YYYYMMDD-NNNN.
func TicketNumber(t legacy.Ticket) string {
	day := DefaultTicketDate
	if d, ok := legacy.ParseDateTime(t.Date); ok {
		d, _, _ = strings.Cut(d, " ")
		day = strings.ReplaceAll(d, "-", "")
	}
	return fmt.Sprintf("T-%s-%04d", day, t.Number)
}

// Sales renders stage 03: one sale per ticket, totals taken from aggs, plus
// SaleMapping.
func (e *Emitter) Sales(ts []legacy.Ticket, aggs map[int64]reconcile.SaleAggregate) ([]Batch, error) {
	pre, err := prelude(TableSales, SaleMapping)
	if err != nil {
		return nil, err
	}
	cols := []string{"id", "ticket_number", "vendor_id", "client_id", "subtotal_ht", "total_tva",
		"subtotal_ttc", "total", "status", "created_at", "old_mysql_id"}

	return render(e, stageDef[legacy.Ticket]{
		stage:    StageSales,
		requires: []string{ClientMapping, VendorMapping},
		provides: []string{SaleMapping},
		prelude:  pre,
		body: func(chunk []legacy.Ticket) string {
			rows := make([]string, len(chunk))
			ids := make([]int64, len(chunk))
			for i, t := range chunk {
				ids[i] = t.OldID
				agg := reconcile.SaleFor(aggs, t.OldID)
				total := reconcile.Round2(agg.Total)
				net, tax := reconcile.Split(agg.Total, e.opts.TaxDivisor)

				client := Null
				if t.ClientID != nil && *t.ClientID != 0 {
					client = Lookup(ClientMapping, *t.ClientID, "")
				}
				var created *string
				if d, ok := legacy.ParseDateTime(t.Date); ok {
					created = &d
				}
				rows[i] = "(" + strings.Join([]string{
					e.ids.Literal(EntitySale, t.OldID),
					Literal(TicketNumber(t)),
					vendor(agg.SellerID), client,
					Money(net), Money(tax), Money(total), Money(total),
					Literal("completed"), Timestamp(created),
					Int(t.OldID),
				}, ", ") + ")"
			}
			return insertValues(TableSales, cols, rows) + "\n" +
				mappingFill(SaleMapping, TableSales, "", ids)
		},
		footer: countFooter(TableSales, TableSales, SaleMapping),
	}, ts), nil
}

// SaleItems renders stage 04. The product is the stock unit when the line
// names one, otherwise the catalog article |article_id|.
func (e *Emitter) SaleItems(ls []legacy.TicketLine) ([]Batch, error) {
	cols := []string{"id", "sale_id", "product_id", "product_name", "price_ht", "tva_rate", "quantity",
		"subtotal_ht", "tva", "subtotal_ttc", "vendor_id"}

	return render(e, stageDef[legacy.TicketLine]{
		stage:    StageSaleItems,
		requires: []string{SaleMapping, ProductMapping, VendorMapping},
		body: func(chunk []legacy.TicketLine) string {
			rows := make([]string, len(chunk))
			for i, l := range chunk {
				net, tax := reconcile.Split(l.Price, e.opts.TaxDivisor)
				qty := l.SaleQuantity()
				q := float64(qty)

				product, name := e.lineProduct(l)
				rows[i] = "(" + strings.Join([]string{
					e.ids.Literal(EntitySaleItem, l.OldID),
					Lookup(SaleMapping, l.TicketID, ""),
					product, name,
					Money(net), Rate(e.opts.TaxRate), Int(qty),
					Money(reconcile.Round2(net * q)),
					Money(reconcile.Round2(tax * q)),
					Money(reconcile.Round2(l.Price * q)),
					vendor(l.EmployeeID),
				}, ", ") + ")"
			}
			return insertValues(TableSaleItems, cols, rows)
		},
		expects: func(chunk []legacy.TicketLine) []string {
			for _, l := range chunk {
				if _, ok := l.StockUnit(); ok {
					return []string{StockUnitRows}
				}
			}
			return nil
		},
		footer: countFooter(TableSaleItems, TableSaleItems),
	}, ls), nil
}

func (e *Emitter) lineProduct(l legacy.TicketLine) (id, name string) {
	ref, kind, label := l.CatalogID(), KindArticle, "Service"
	if unit, ok := l.StockUnit(); ok {
		ref, kind, label = unit, KindProduct, "Produit"
	}
	lookup := Lookup(ProductMapping, ref, kind)
	id = Coalesce(lookup, AnyRow(TableProducts))
	name = Coalesce(fmt.Sprintf("(SELECT name FROM %s WHERE id = %s)", Ident(TableProducts), lookup), Literal(label))
	return id, name
}

// Payments renders stage 05.
func (e *Emitter) Payments(ps []legacy.Payment) ([]Batch, error) {
	cols := []string{"id", "sale_id", "method", "amount"}

	return render(e, stageDef[legacy.Payment]{
		stage:    StagePayments,
		requires: []string{SaleMapping},
		body: func(chunk []legacy.Payment) string {
			rows := make([]string, len(chunk))
			for i, p := range chunk {
				rows[i] = "(" + strings.Join([]string{
					e.ids.Literal(EntityPayment, p.OldID),
					Lookup(SaleMapping, p.TicketID, ""),
					Literal(string(p.Method)),
					Money(reconcile.Round2(p.Amount)),
				}, ", ") + ")"
			}
			return insertValues(TablePayments, cols, rows)
		},
		footer: countFooter(TablePayments, TablePayments),
	}, ps), nil
}

type barcodeRow struct {
	productID int64
	barcode   string
}

// Barcodes renders stage 06: an UPDATE backfilling products.barcode for the
// stock units of an assignment, joined through ProductMapping (kind product).
func (e *Emitter) Barcodes(a reconcile.Assignment) ([]Batch, error) {
	owners := a.Owners()
	rows := make([]barcodeRow, len(owners))
	for i, id := range owners {
		rows[i] = barcodeRow{productID: id, barcode: a.Values[id]}
	}

	pre := []string{fmt.Sprintf("ALTER TABLE %s ADD COLUMN IF NOT EXISTS barcode TEXT;", Ident(TableProducts))}
	return render(e, stageDef[barcodeRow]{
		stage:    StageBarcodes,
		requires: []string{ProductMapping},
		prelude:  pre,
		body: func(chunk []barcodeRow) string {
			vals := make([]string, len(chunk))
			for i, r := range chunk {
				vals[i] = fmt.Sprintf("    (%d::bigint, %s)", r.productID, Literal(r.barcode))
			}
			var sb strings.Builder
			fmt.Fprintf(&sb, "UPDATE %s p\nSET barcode = sub.barcode\nFROM (\n", Ident(TableProducts))
			sb.WriteString("  SELECT m.new_id, b.barcode\n  FROM (VALUES\n")
			sb.WriteString(strings.Join(vals, ",\n"))
			sb.WriteString("\n  ) AS b(old_id, barcode)\n")
			fmt.Fprintf(&sb, "  JOIN %s m ON m.old_id = b.old_id AND m.kind = %s\n", Ident(ProductMapping), Literal(string(KindProduct)))
			sb.WriteString(") AS sub\nWHERE p.id = sub.new_id;\n")
			return sb.String()
		},
		expects: func([]barcodeRow) []string { return []string{StockUnitRows} },
		footer:  fmt.Sprintf("SELECT 'barcodes' AS info, COUNT(*) AS total FROM %s WHERE barcode IS NOT NULL;\n", Ident(TableProducts)),
	}, rows), nil
}
