package reconcile

import (
	"math"

	"posmigrate/internal/legacy"
)

// DefaultSellerID is the legacy employee credited with a sale that has no
// lines.
const DefaultSellerID int64 = 1

// SaleAggregate is derived from the lines of one ticket.
type SaleAggregate struct {
	// Total is the tax-inclusive sum of price × quantity over the lines.
	Total float64
	// SellerID is the employee of the first line seen for the ticket.
	SellerID int64
	// Lines is the number of lines.
	Lines int
}

// SummarizeSales computes one aggregate per ticket id from lines, taken in
// source order. The seller is the employee of the first line encountered;
// later lines never override it.
func SummarizeSales(lines []legacy.TicketLine) map[int64]SaleAggregate {
	out := make(map[int64]SaleAggregate)
	for _, l := range lines {
		agg, seen := out[l.TicketID]
		if !seen {
			agg.SellerID = l.EmployeeID
		}
		agg.Total += l.Price * l.Quantity
		agg.Lines++
		out[l.TicketID] = agg
	}
	return out
}

// SaleFor returns the aggregate for ticket, or a zero total credited to
// DefaultSellerID when the ticket has no lines.
func SaleFor(aggs map[int64]SaleAggregate, ticket int64) SaleAggregate {
	if agg, ok := aggs[ticket]; ok {
		return agg
	}
	return SaleAggregate{SellerID: DefaultSellerID}
}

// Round2 rounds v to two decimal places, halves away from zero.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Split divides a tax-inclusive amount into its tax-exclusive part and its
// tax using divisor (1.20 for 20% VAT). net is rounded first; tax is the
// rounded difference between amount and net. Each component is rounded on
// its own, so totals built from rounded components may differ from the
// rounded total by a cent.
func Split(amount, divisor float64) (net, tax float64) {
	net = Round2(amount / divisor)
	tax = Round2(amount - net)
	return net, tax
}
