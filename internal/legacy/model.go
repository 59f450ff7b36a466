// Package legacy decodes rows of the legacy point-of-sale dump into typed
// records.
//
// Every record carries OldID, the integer primary key of its source table.
// OldID is the only join key used against the identifier mapping tables
// written by the emitter. Optional columns are pointers (nil means NULL).
package legacy

import "github.com/golang-sql/civil"

// Customer is a row of the legacy `client` table.
type Customer struct {
	OldID      int64
	Number     string // numcli
	LastName   string
	FirstName  string
	Address    string
	City       string
	PostalCode string
	Phone      string
	Phone2     string
	Email      string
	BirthDate  *civil.Date
	Notes      string
	CreatedAt  *string // raw MySQL datetime, passed through unchanged
	UpdatedAt  *string
}

// Article is a row of the legacy `articles` table: a catalog item sold as a
// service.
type Article struct {
	OldID    int64
	Code     string
	Name     string
	PriceTTC float64 // tax-inclusive
	Category string
	Active   bool
}

// Ticket is a row of the legacy `ticket` table: one sale.
type Ticket struct {
	OldID    int64
	Date     string // raw, may be empty or the zero sentinel
	Number   int64
	ClientID *int64
}

// TicketLine is a row of `ligne_ticket`.
//
// ArticleID and ProductID share one legacy identifier space: ArticleID points
// at `articles` (sometimes stored negated), ProductID at a physical stock
// unit. The emitter resolves them through the product mapping with an
// explicit kind.
type TicketLine struct {
	OldID      int64
	TicketID   int64
	EmployeeID int64
	ArticleID  int64
	ProductID  *int64
	Price      float64 // unit price, tax-inclusive
	Quantity   float64
}

// Payment is a row of `paiement_ticket`.
type Payment struct {
	OldID    int64
	TicketID int64
	Method   PaymentMethod
	Amount   float64
}

// ProductBarcode is a row of `produit_code_barre`.
type ProductBarcode struct {
	OldID     int64
	ProductID int64
	Barcode   string
}

// StockEntry is a row of `stock`. Only the fields needed for barcode
// reconciliation are kept.
type StockEntry struct {
	OldID     int64
	ProductID int64
	Barcode   string
}
