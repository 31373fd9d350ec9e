package split

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/LerianStudio/lib-allocation/allocation"
	"github.com/LerianStudio/lib-allocation/allocation/money"
)

var oneHundred = decimal.NewFromInt(100)

// Compute divides the request total across its rules and returns a fully
// reconciled outcome.
//
// Structurally malformed requests (non-positive total, fewer than two rules,
// unknown rule type, minAmount above maxAmount) fail with a DomainError and
// no partial outcome. Requests whose constraints cannot reconcile to the
// total return an outcome with Reconciled=false and populated Errors.
//
// The last-listed remaining recipient absorbs all rounding drift. Callers
// who care about fairness across repeated splits should rotate which
// recipient is listed last.
func Compute(input Request) (Outcome, error) {
	if err := validate(input); err != nil {
		return Outcome{}, err
	}

	ordered := orderRules(input.Rules)
	state := allocate(input, ordered)
	state.shareRemaining(input)
	state.checkFeasibility(input)
	state.reconcile(input)

	return state.outcome(), nil
}

func validate(input Request) error {
	if strings.TrimSpace(input.Currency) == "" {
		return allocation.NewDomainError(allocation.ErrorInvalidRequest, "currency", "currency is required")
	}

	if !input.TotalAmount.IsPositive() {
		return allocation.NewDomainError(allocation.ErrorInvalidRequest, "totalAmount", "totalAmount must be greater than zero")
	}

	if !money.IsRounded(input.TotalAmount, input.Currency) {
		return allocation.NewDomainError(allocation.ErrorInvalidRequest, "totalAmount", "totalAmount must be expressible in minor units")
	}

	if len(input.Rules) < 2 {
		return allocation.NewDomainError(allocation.ErrorInvalidRequest, "rules", "at least two rules are required")
	}

	for i, rule := range input.Rules {
		if err := validateRule(i, rule); err != nil {
			return err
		}
	}

	return nil
}

func validateRule(index int, rule Rule) error {
	field := fmt.Sprintf("rules[%d]", index)

	if strings.TrimSpace(rule.RecipientID) == "" {
		return allocation.NewDomainError(allocation.ErrorInvalidRequest, field+".recipientId", "recipientId is required")
	}

	if !rule.Type.known() {
		return allocation.NewDomainError(allocation.ErrorInvalidRequest, field+".type", "unknown rule type")
	}

	if rule.MinAmount != nil && rule.MaxAmount != nil && rule.MinAmount.GreaterThan(*rule.MaxAmount) {
		return allocation.NewDomainError(allocation.ErrorInvalidRequest, field+".minAmount", "minAmount must not exceed maxAmount")
	}

	switch {
	case rule.Type == RuleFixedAmount:
		if !rule.Value.IsPositive() {
			return allocation.NewDomainError(allocation.ErrorInvalidRequest, field+".value", "fixed amount must be greater than zero")
		}
	case rule.Type.percentBased():
		if !rule.Value.IsPositive() || rule.Value.GreaterThan(oneHundred) {
			return allocation.NewDomainError(allocation.ErrorInvalidRequest, field+".value", "percent must be greater than 0 and at most 100")
		}
	}

	return nil
}

// orderRules stable-sorts rules by type priority, keeping original order for
// ties so that "last remaining recipient" refers to the caller's listing.
func orderRules(rules []Rule) []Rule {
	ordered := make([]Rule, len(rules))
	copy(ordered, rules)

	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Type.priority() < ordered[j].Type.priority()
	})

	return ordered
}

// calcState accumulates entries, notes, and errors across the passes.
type calcState struct {
	entries        []Entry
	notes          []allocation.Note
	errs           []allocation.DomainError
	available      decimal.Decimal
	requested      decimal.Decimal
	roundedCount   int
	remainingIdx   []int
	adjustment     decimal.Decimal
	adjustmentMade bool
}

// allocate runs the fixed and percent-based passes, clamping every amount to
// the funds still available and tracking what the rules asked for before
// clamping so infeasibility can be reported.
func allocate(input Request, ordered []Rule) *calcState {
	state := &calcState{
		entries:   make([]Entry, 0, len(ordered)),
		available: input.TotalAmount,
		requested: decimal.Zero,
	}

	for _, rule := range ordered {
		if rule.Type == RuleRemaining {
			state.remainingIdx = append(state.remainingIdx, len(state.entries))
			state.entries = append(state.entries, Entry{
				RecipientID: rule.RecipientID,
				Amount:      decimal.Zero,
				RuleType:    rule.Type,
			})

			continue
		}

		want := ruleAmount(input, rule, state)
		amount := want

		if amount.GreaterThan(state.available) {
			amount = state.available
			state.note(allocation.NoteClampedValue, rule.RecipientID,
				fmt.Sprintf("allocation reduced from %s to %s to fit available funds", want, amount))
		}

		state.requested = state.requested.Add(want)
		state.available = state.available.Sub(amount)
		state.entries = append(state.entries, Entry{
			RecipientID: rule.RecipientID,
			Amount:      amount,
			RuleType:    rule.Type,
		})
	}

	return state
}

// ruleAmount resolves the pre-availability amount a rule asks for.
func ruleAmount(input Request, rule Rule, state *calcState) decimal.Decimal {
	if rule.Type == RuleFixedAmount {
		return money.RoundToMinorUnit(rule.Value, input.Currency)
	}

	state.roundedCount++

	amount := money.PercentOf(input.TotalAmount, rule.Value, input.Currency)

	bounded, clamped := money.Clamp(amount, rule.MinAmount, rule.MaxAmount, input.Currency)
	if clamped {
		state.note(allocation.NoteClampedValue, rule.RecipientID,
			fmt.Sprintf("allocation adjusted from %s to %s by min/max bounds", amount, bounded))
	}

	return bounded
}

// shareRemaining splits the leftover pool equally across remaining rules.
// Every recipient except the last gets the floored equal share; the last one
// gets the leftover minus the others exactly, so no residue survives even
// when the division is inexact.
func (state *calcState) shareRemaining(input Request) {
	count := len(state.remainingIdx)
	if count == 0 {
		return
	}

	exp := money.Exponent(input.Currency)
	base := state.available.DivRound(decimal.NewFromInt(int64(count)), exp+4).RoundDown(exp)

	others := decimal.Zero
	for _, idx := range state.remainingIdx[:count-1] {
		state.entries[idx].Amount = base
		others = others.Add(base)
	}

	last := state.remainingIdx[count-1]
	state.entries[last].Amount = state.available.Sub(others)
	state.available = decimal.Zero
}

// checkFeasibility records the business errors that force Reconciled=false:
// commitments beyond the total with nobody flexible to squeeze, and leftover
// funds with nobody flexible to absorb them.
func (state *calcState) checkFeasibility(input Request) {
	if len(state.remainingIdx) > 0 {
		return
	}

	if state.requested.GreaterThan(input.TotalAmount) {
		state.errs = append(state.errs, allocation.DomainError{
			Code:  allocation.ErrorInfeasibleAllocation,
			Field: "rules",
			Message: fmt.Sprintf("allocations of %s exceed total %s with no remaining-share recipient",
				state.requested, input.TotalAmount),
		})

		return
	}

	// Leftover beyond what per-entry rounding can explain means the rules
	// simply do not cover the total.
	tolerance := decimal.New(int64(state.roundedCount), -money.Exponent(input.Currency))
	if state.available.GreaterThan(tolerance) {
		state.errs = append(state.errs, allocation.DomainError{
			Code:  allocation.ErrorUnallocatedTotal,
			Field: "rules",
			Message: fmt.Sprintf("%s of total %s is not covered by any rule",
				state.available, input.TotalAmount),
		})
	}
}

// reconcile folds residual drift into a single entry unless the request was
// already flagged infeasible.
func (state *calcState) reconcile(input Request) {
	if len(state.errs) > 0 {
		return
	}

	entries, adjustment := Reconcile(input.TotalAmount, state.entries)
	state.entries = entries
	state.adjustment = adjustment.Amount

	if !adjustment.Amount.IsZero() {
		state.adjustmentMade = true
		state.note(allocation.NoteRoundingAdjustment, adjustment.RecipientID,
			fmt.Sprintf("rounding drift of %s absorbed", adjustment.Amount))
	}
}

func (state *calcState) note(code allocation.NoteCode, recipientID, message string) {
	state.notes = append(state.notes, allocation.Note{
		Code:    code,
		Field:   recipientID,
		Message: message,
	})
}

func (state *calcState) outcome() Outcome {
	total := decimal.Zero
	for _, entry := range state.entries {
		total = total.Add(entry.Amount)
	}

	adjustment := state.adjustment
	if !state.adjustmentMade {
		adjustment = decimal.Zero
	}

	return Outcome{
		PerRecipient:       state.entries,
		TotalCalculated:    total,
		RoundingAdjustment: adjustment,
		Reconciled:         len(state.errs) == 0,
		Errors:             state.errs,
		Notes:              state.notes,
	}
}
