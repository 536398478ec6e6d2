package draft

import (
	"github.com/shopspring/decimal"

	"tillpoint/internal/core/types"
)

// Totals is the priced view of a draft.
type Totals struct {
	Subtotal types.Money `json:"subtotal"`
	Discount types.Money `json:"discount"`
	Total    types.Money `json:"total"`
}

// Calculate prices a draft: subtotal over all lines, discount from the
// percentage, total as their difference.
//
// Negative-quantity lines subtract from the subtotal. That is the
// return-in-invoice convention, not a bug. The function is pure and is
// recomputed on every read; totals are never cached on the draft.
func Calculate(d *Draft, discountPct types.Money) Totals {
	subtotal := decimal.Zero
	for _, line := range d.Lines {
		subtotal = subtotal.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}

	discount := subtotal.Mul(types.Percent(discountPct))

	return Totals{
		Subtotal: subtotal,
		Discount: discount,
		Total:    subtotal.Sub(discount),
	}
}
