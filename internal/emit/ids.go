package emit

import (
	"strconv"

	"github.com/google/uuid"
)

// DefaultNamespace seeds surrogate ids when the configuration does not set
// one. Changing it changes every generated id.
var DefaultNamespace = uuid.MustParse("6f1c2a7e-93b4-5d0e-8a61-2c4f7b9e0d35")

// Entity names used to derive surrogate ids.
const (
	EntityClient   = "client"
	EntityArticle  = "article"
	EntitySale     = "sale"
	EntitySaleItem = "sale_item"
	EntityPayment  = "payment"
)

// IDs derives stable UUIDv5 surrogate ids from (entity, legacy id), so the
// same legacy row always gets the same destination id.
type IDs struct {
	ns uuid.UUID
}

// NewIDs returns an id generator for ns. The nil UUID selects
// DefaultNamespace.
func NewIDs(ns uuid.UUID) IDs {
	if ns == uuid.Nil {
		ns = DefaultNamespace
	}
	return IDs{ns: ns}
}

// For returns the surrogate id of legacy row oldID of entity.
func (g IDs) For(entity string, oldID int64) uuid.UUID {
	return uuid.NewSHA1(g.ns, []byte(entity+":"+strconv.FormatInt(oldID, 10)))
}

// Literal renders the id as a UUID-typed SQL literal.
func (g IDs) Literal(entity string, oldID int64) string {
	return "'" + g.For(entity, oldID).String() + "'::uuid"
}
