package split

import (
	"github.com/shopspring/decimal"
)

// Reconcile adjusts a near-exact entry list so it sums to total exactly and
// reports the adjustment made.
//
// The drift target is the last remaining-share entry when one exists, since
// that recipient is defined as absorbing leftovers; otherwise the single
// largest non-remaining entry, where a one-minor-unit shift is
// proportionally smallest. A zero-amount adjustment with Index -1 means the
// entries already reconciled.
func Reconcile(total decimal.Decimal, entries []Entry) ([]Entry, Adjustment) {
	adjusted := make([]Entry, len(entries))
	copy(adjusted, entries)

	drift := total
	for _, entry := range adjusted {
		drift = drift.Sub(entry.Amount)
	}

	if drift.IsZero() || len(adjusted) == 0 {
		return adjusted, Adjustment{Amount: decimal.Zero, Index: -1}
	}

	target := driftTarget(adjusted)
	adjusted[target].Amount = adjusted[target].Amount.Add(drift)

	return adjusted, Adjustment{
		Amount:      drift,
		RecipientID: adjusted[target].RecipientID,
		Index:       target,
	}
}

func driftTarget(entries []Entry) int {
	lastRemaining := -1
	largest := 0

	for i, entry := range entries {
		if entry.RuleType == RuleRemaining {
			lastRemaining = i
			continue
		}

		if entry.Amount.GreaterThan(entries[largest].Amount) {
			largest = i
		}
	}

	if lastRemaining >= 0 {
		return lastRemaining
	}

	return largest
}
