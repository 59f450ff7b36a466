package legacy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type skipCall struct{ table, reason, key string }

type recordingSkips struct{ calls []skipCall }

func (r *recordingSkips) Skip(table, reason, key, _ string) {
	r.calls = append(r.calls, skipCall{table, reason, key})
}

const dump = "INSERT INTO `client` VALUES\n" +
	"(12, 3, 'O''Neil', 'Paul', '3 rue de l\\'Eglise', 'Lyon', '69001', '0601020304', '', 'paul@example.com', '29/02', 'fidèle, très', '2019-01-02 10:00:00', '0000-00-00 00:00:00', 1, 1, 42),\n" +
	"(13, 4, 'Short', 'Row'),\n" +
	"(x14, 5, 'Bad', 'Id', '', '', '', '', '', '', '', '', NULL, NULL, 1, 1, 43);\n" +
	"INSERT INTO `articles` VALUES\n" +
	"(7, 101, 'Coupe homme', 25.00, 'Coupe', 0, 0, 1, 1),\n" +
	"(8, 102, 'Barbe', NULL, 'Barbe', 0, 0, 2, 0);\n" +
	"INSERT INTO `ticket` VALUES\n" +
	"(100, '2019-03-02 00:00:00', '10:15', 5, 12, 1, NULL),\n" +
	"(101, '2019-03-02 00:00:00', '10:40', 6, NULL, 1, NULL);\n" +
	"INSERT INTO `ligne_ticket` VALUES\n" +
	"(1000, 100, 3, -7, NULL, NULL, 25.00, 25.00, NULL, 0, NULL, 2, 0),\n" +
	"(1001, 100, 4, 7, 55, NULL, NULL, NULL, NULL, 0, NULL, NULL, 0);\n" +
	"INSERT INTO `paiement_ticket` VALUES\n" +
	"(500, 100, 2, 50.00, 0, 1),\n" +
	"(501, 100, 9, NULL, 0, 1);\n" +
	"INSERT INTO `produit_code_barre` VALUES\n" +
	"(1, 55, 3, '3760001'),\n" +
	"(2, 56, NULL, NULL);\n" +
	"INSERT INTO `stock` VALUES\n" +
	"(1, 55, 3, 4, 1, '3760002', 0),\n" +
	"(2, 57, NULL, 0, NULL, '', 0);\n"

func TestDecodeCustomers(t *testing.T) {
	t.Parallel()

	skips := &recordingSkips{}
	got, stats := Decode(dump, Customers, skips)

	require.Len(t, got, 1)
	c := got[0]
	assert.Equal(t, int64(12), c.OldID)
	assert.Equal(t, "O'Neil", c.LastName)
	assert.Equal(t, "Paul", c.FirstName)
	assert.Equal(t, "3 rue de l'Eglise", c.Address)
	assert.Equal(t, "fidèle, très", c.Notes)
	require.NotNil(t, c.BirthDate)
	assert.Equal(t, "2000-02-29", c.BirthDate.String())
	require.NotNil(t, c.CreatedAt)
	assert.Equal(t, "2019-01-02 10:00:00", *c.CreatedAt)
	assert.Nil(t, c.UpdatedAt)

	assert.Equal(t, TableStats{Table: "client", Blocks: 1, Tuples: 3, Decoded: 1, Short: 1, Invalid: 1}, stats)
	assert.False(t, stats.Missing())
	assert.Equal(t, 2, stats.Skipped())
	assert.Equal(t, []skipCall{
		{"client", ReasonShortTuple, "13"},
		{"client", ReasonInvalidField, "x14"},
	}, skips.calls)
}

func TestDecodeArticles(t *testing.T) {
	t.Parallel()

	got, _ := Decode(dump, Articles, nil)
	require.Len(t, got, 2)
	assert.Equal(t, Article{OldID: 7, Code: "101", Name: "Coupe homme", PriceTTC: 25, Category: "Coupe", Active: true}, got[0])
	assert.Equal(t, 0.0, got[1].PriceTTC, "NULL price falls back to zero")
	assert.False(t, got[1].Active)
}

func TestDecodeTicketsAndLines(t *testing.T) {
	t.Parallel()

	tickets, _ := Decode(dump, Tickets, nil)
	require.Len(t, tickets, 2)
	require.NotNil(t, tickets[0].ClientID)
	assert.Equal(t, int64(12), *tickets[0].ClientID)
	assert.Nil(t, tickets[1].ClientID)
	assert.Equal(t, int64(5), tickets[0].Number)

	lines, _ := Decode(dump, TicketLines, nil)
	require.Len(t, lines, 2)
	assert.Equal(t, int64(-7), lines[0].ArticleID)
	assert.Equal(t, int64(7), lines[0].CatalogID())
	assert.Equal(t, 2.0, lines[0].Quantity)
	assert.Nil(t, lines[0].ProductID)

	require.NotNil(t, lines[1].ProductID)
	assert.Equal(t, int64(55), *lines[1].ProductID)
	assert.Equal(t, 0.0, lines[1].Price, "NULL price falls back to zero")
	assert.Equal(t, 1.0, lines[1].Quantity, "NULL quantity falls back to one")
}

func TestDecodePayments(t *testing.T) {
	t.Parallel()

	got, _ := Decode(dump, Payments, nil)
	require.Len(t, got, 2)
	assert.Equal(t, Payment{OldID: 500, TicketID: 100, Method: MethodCard, Amount: 50}, got[0])
	assert.Equal(t, MethodOther, got[1].Method)
	assert.Zero(t, got[1].Amount)
}

func TestDecodeBarcodeSources(t *testing.T) {
	t.Parallel()

	codes, _ := Decode(dump, ProductBarcodes, nil)
	require.Len(t, codes, 2)
	assert.Equal(t, "3760001", codes[0].Barcode)
	assert.Empty(t, codes[1].Barcode, "NULL barcode is empty")

	stock, _ := Decode(dump, StockEntries, nil)
	require.Len(t, stock, 2)
	assert.Equal(t, "3760002", stock[0].Barcode)
	assert.Empty(t, stock[1].Barcode)
}

func TestDecodeBarcodeSources_IgnoresUnusedColumns(t *testing.T) {
	t.Parallel()

	text := "INSERT INTO `produit_code_barre` VALUES\n(3, 58, 'x', '3760003');\n" +
		"INSERT INTO `stock` VALUES\n(3, 58, 'x', 'many', 'main', '3760004', 0);\n"
	skips := &recordingSkips{}

	codes, cs := Decode(text, ProductBarcodes, skips)
	require.Len(t, codes, 1)
	assert.Equal(t, ProductBarcode{OldID: 3, ProductID: 58, Barcode: "3760003"}, codes[0])
	assert.Zero(t, cs.Invalid)

	stock, ss := Decode(text, StockEntries, skips)
	require.Len(t, stock, 1)
	assert.Equal(t, StockEntry{OldID: 3, ProductID: 58, Barcode: "3760004"}, stock[0])
	assert.Zero(t, ss.Invalid)
	assert.Empty(t, skips.calls)
}

func TestDecode_MissingTable(t *testing.T) {
	t.Parallel()

	got, stats := Decode("-- empty dump\n", Payments, nil)
	assert.Empty(t, got)
	assert.True(t, stats.Missing())
	assert.Zero(t, stats.Tuples)
}

func TestMethodFor(t *testing.T) {
	t.Parallel()

	want := map[string]PaymentMethod{
		"1": MethodCash, "2": MethodCard, "3": MethodOther, "4": MethodCheck,
		"5": MethodCard, "6": MethodContactless, "7": MethodGiftCard, "8": MethodOther,
		"0": MethodOther, "42": MethodOther, "": MethodOther,
	}
	for code, m := range want {
		assert.Equal(t, m, MethodFor(code), "code %q", code)
	}
}

func TestStockUnit(t *testing.T) {
	t.Parallel()

	zero, unit := int64(0), int64(55)
	tests := []struct {
		name   string
		line   TicketLine
		want   int64
		wantOK bool
	}{
		{"null", TicketLine{}, 0, false},
		{"zero", TicketLine{ProductID: &zero}, 0, false},
		{"set", TicketLine{ProductID: &unit}, 55, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := tt.line.StockUnit()
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSaleQuantity(t *testing.T) {
	t.Parallel()

	assert.Equal(t, int64(1), TicketLine{Quantity: 0}.SaleQuantity())
	assert.Equal(t, int64(2), TicketLine{Quantity: 2.7}.SaleQuantity())
	assert.Equal(t, int64(0), TicketLine{Quantity: 0.5}.SaleQuantity())
	assert.Equal(t, int64(-1), TicketLine{Quantity: -1}.SaleQuantity())
}
