package lineitem

import "github.com/shopspring/decimal"

// LineItem is one product entry of an order as submitted by the client.
// Its JSON form is the one stored in the deliveries.products column.
type LineItem struct {
	ProductID int64           `json:"id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

// Subtotal returns price multiplied by quantity.
func (l LineItem) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Total sums the subtotals of items.
func Total(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Subtotal())
	}

	return total
}

// Demand aggregates the requested quantity per product.
func Demand(items []LineItem) map[int64]int {
	demand := make(map[int64]int, len(items))
	for _, it := range items {
		demand[it.ProductID] += it.Quantity
	}

	return demand
}
