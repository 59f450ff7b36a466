package legacy

import (
	"fmt"
	"math"
	"strings"

	"posmigrate/internal/parser/sqldump"
)

// Legacy table names as they appear in the dump.
const (
	TableCustomers       = "client"
	TableArticles        = "articles"
	TableTickets         = "ticket"
	TableTicketLines     = "ligne_ticket"
	TablePayments        = "paiement_ticket"
	TableProductBarcodes = "produit_code_barre"
	TableStock           = "stock"
)

// Customers decodes `client`:
// (id, numcli, nom, prenom, adresse, ville, cp, tel_1, tel_2, email,
// anniversaire, commentaire, created_at, updated_at, magasin_id, actif, number).
var Customers = Decoder[Customer]{
	Table:     TableCustomers,
	MinFields: 16,
	Decode: func(f Fields) (Customer, error) {
		id, err := f.Int(0)
		if err != nil {
			return Customer{}, err
		}
		c := Customer{
			OldID:      id,
			Number:     f.Text(1),
			LastName:   f.Text(2),
			FirstName:  f.Text(3),
			Address:    f.Text(4),
			City:       f.Text(5),
			PostalCode: f.Text(6),
			Phone:      f.Text(7),
			Phone2:     f.Text(8),
			Email:      f.Text(9),
			BirthDate:  ParseBirthday(f.Text(10)),
			Notes:      f.Text(11),
		}
		if v, ok := ParseDateTime(f.Raw(12)); ok {
			c.CreatedAt = &v
		}
		if v, ok := ParseDateTime(f.Raw(13)); ok {
			c.UpdatedAt = &v
		}
		return c, nil
	},
}

// Articles decodes `articles`:
// (id, code, libelle, prix, categorie, _, _, _, actif).
var Articles = Decoder[Article]{
	Table:     TableArticles,
	MinFields: 9,
	Decode: func(f Fields) (Article, error) {
		id, err := f.Int(0)
		if err != nil {
			return Article{}, err
		}
		code, err := f.Int(1)
		if err != nil {
			return Article{}, err
		}
		active, err := f.Int(8)
		if err != nil {
			return Article{}, err
		}
		return Article{
			OldID:    id,
			Code:     fmt.Sprint(code),
			Name:     f.Text(2),
			PriceTTC: f.Money(3),
			Category: f.Text(4),
			Active:   active == 1,
		}, nil
	},
}

// Tickets decodes `ticket`:
// (id, date, heure, numero, client_id, magasin_id, planning_id).
var Tickets = Decoder[Ticket]{
	Table:     TableTickets,
	MinFields: 7,
	Decode: func(f Fields) (Ticket, error) {
		id, err := f.Int(0)
		if err != nil {
			return Ticket{}, err
		}
		num, err := f.Int(3)
		if err != nil {
			return Ticket{}, err
		}
		client, err := f.OptInt(4)
		if err != nil {
			return Ticket{}, err
		}
		return Ticket{
			OldID:    id,
			Date:     f.Text(1),
			Number:   num,
			ClientID: client,
		}, nil
	},
}

// TicketLines decodes `ligne_ticket`:
// (id, ticket_id, employe_id, article_id, produits_id, grilles_valeurs_id,
// article_prix, article_prix_remise, type_promotion_id, montant_promotion,
// date_retour, quantite, montant_retour).
var TicketLines = Decoder[TicketLine]{
	Table:     TableTicketLines,
	MinFields: 13,
	Decode: func(f Fields) (TicketLine, error) {
		var (
			l   TicketLine
			err error
		)
		if l.OldID, err = f.Int(0); err != nil {
			return TicketLine{}, err
		}
		if l.TicketID, err = f.Int(1); err != nil {
			return TicketLine{}, err
		}
		if l.EmployeeID, err = f.Int(2); err != nil {
			return TicketLine{}, err
		}
		if l.ArticleID, err = f.Int(3); err != nil {
			return TicketLine{}, err
		}
		if l.ProductID, err = f.OptInt(4); err != nil {
			return TicketLine{}, err
		}
		l.Price = f.Money(6)
		l.Quantity = f.Float(11, 1)
		return l, nil
	},
}

// Payments decodes `paiement_ticket`:
// (id, ticket_id, mode_id, montant, _, _).
var Payments = Decoder[Payment]{
	Table:     TablePayments,
	MinFields: 6,
	Decode: func(f Fields) (Payment, error) {
		id, err := f.Int(0)
		if err != nil {
			return Payment{}, err
		}
		ticket, err := f.Int(1)
		if err != nil {
			return Payment{}, err
		}
		return Payment{
			OldID:    id,
			TicketID: ticket,
			Method:   MethodFor(sqldump.Unquote(f.Raw(2))),
			Amount:   f.Money(3),
		}, nil
	},
}

// ProductBarcodes decodes `produit_code_barre`:
// (id, produits_id, grilles_valeurs_id, code_barre).
var ProductBarcodes = Decoder[ProductBarcode]{
	Table:     TableProductBarcodes,
	MinFields: 4,
	Decode: func(f Fields) (ProductBarcode, error) {
		id, err := f.Int(0)
		if err != nil {
			return ProductBarcode{}, err
		}
		product, err := f.Int(1)
		if err != nil {
			return ProductBarcode{}, err
		}
		return ProductBarcode{
			OldID:     id,
			ProductID: product,
			Barcode:   barcode(f, 3),
		}, nil
	},
}

// StockEntries decodes `stock`:
// (id, produits_id, grilles_valeurs_id, quantite, magasin_id, code_barre, ...).
var StockEntries = Decoder[StockEntry]{
	Table:     TableStock,
	MinFields: 6,
	Decode: func(f Fields) (StockEntry, error) {
		id, err := f.Int(0)
		if err != nil {
			return StockEntry{}, err
		}
		product, err := f.Int(1)
		if err != nil {
			return StockEntry{}, err
		}
		return StockEntry{
			OldID:     id,
			ProductID: product,
			Barcode:   barcode(f, 5),
		}, nil
	},
}

// barcode returns the trimmed barcode at i, or "" when it is empty or NULL
// (bare or quoted).
func barcode(f Fields, i int) string {
	v := strings.TrimSpace(f.Text(i))
	if v == "NULL" {
		return ""
	}
	return v
}

// SaleQuantity is the integer quantity written on a sale item: the legacy
// quantity truncated toward zero, except that a zero quantity counts as 1.
func (l TicketLine) SaleQuantity() int64 {
	if l.Quantity == 0 {
		return 1
	}
	return int64(math.Trunc(l.Quantity))
}

// StockUnit returns the stock unit sold on the line. A NULL or zero
// produits_id means the line sells a catalog article.
func (l TicketLine) StockUnit() (int64, bool) {
	if l.ProductID == nil || *l.ProductID == 0 {
		return 0, false
	}
	return *l.ProductID, true
}

// CatalogID returns the article id as stored in the catalog, undoing the
// negation some lines carry.
func (l TicketLine) CatalogID() int64 {
	if l.ArticleID < 0 {
		return -l.ArticleID
	}
	return l.ArticleID
}
