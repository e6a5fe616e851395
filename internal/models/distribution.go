package models

import (
	"sort"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// SplitByPercentage splits an amount over the given percentage weights using
// largest remainder correction: every weight gets its share rounded down to
// cents, then the leftover cents go to the largest discarded remainders,
// earlier entries first on ties.
//
// The parts always sum to the cent-exact rounding of amount times the summed
// weights. This is the single splitting routine, shared between deposit
// distribution, proportional reversal and the statistics reconstruction, so
// all three agree with each other.
func SplitByPercentage(amount decimal.Decimal, weights []decimal.Decimal) []decimal.Decimal {
	amount = amount.Round(2)

	parts := make([]decimal.Decimal, len(weights))
	remainders := make([]decimal.Decimal, len(weights))

	distributed := decimal.Zero
	weightSum := decimal.Zero
	for i, weight := range weights {
		raw := amount.Mul(weight).Div(hundred)
		parts[i] = raw.RoundDown(2)
		remainders[i] = raw.Sub(parts[i])
		distributed = distributed.Add(parts[i])
		weightSum = weightSum.Add(weight)
	}

	// The cent-exact total the parts have to sum to. When the weights sum to
	// less than 100, the remainder intentionally stays undistributed.
	target := amount.Mul(weightSum).Div(hundred).Round(2)

	order := make([]int, len(weights))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return remainders[order[a]].GreaterThan(remainders[order[b]])
	})

	cent := decimal.New(1, -2)
	missing := target.Sub(distributed).Mul(hundred).IntPart()
	for i := int64(0); i < missing && len(order) > 0; i++ {
		idx := order[i%int64(len(order))]
		parts[idx] = parts[idx].Add(cent)
	}

	return parts
}
