package market

import "github.com/shopspring/decimal"

// Money arithmetic stays in decimal end to end; no float intermediates.

func LineCost(price decimal.Decimal, qty int) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(qty)))
}

// CartCost sums price*quantity over cart lines. Prices come from the lookup
// so totals always reflect the current catalog, not what the client sent.
func CartCost(lines []CartLine, priceOf func(productID string) decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(LineCost(priceOf(l.ProductID), l.Quantity))
	}
	return total
}
