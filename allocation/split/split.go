package split

import (
	"github.com/shopspring/decimal"

	"github.com/LerianStudio/lib-allocation/allocation"
)

// RuleType identifies the allocation strategy of a split rule.
type RuleType string

const (
	// RuleFixedAmount allocates an absolute amount.
	RuleFixedAmount RuleType = "FIXED_AMOUNT"
	// RulePercentage allocates a percentage of the original total.
	RulePercentage RuleType = "PERCENTAGE"
	// RuleCommission allocates a commission percentage of the original total.
	RuleCommission RuleType = "COMMISSION"
	// RuleRemaining shares whatever is left after all other rules.
	RuleRemaining RuleType = "REMAINING"
)

// priority returns the processing order of a rule type. Fixed commitments are
// honored first so percentage and commission rules always act on the original
// total, and remaining recipients absorb the leftover last.
func (t RuleType) priority() int {
	switch t {
	case RuleFixedAmount:
		return 0
	case RulePercentage:
		return 1
	case RuleCommission:
		return 2
	case RuleRemaining:
		return 3
	default:
		return 4
	}
}

func (t RuleType) known() bool {
	return t.priority() < 4
}

// percentBased reports whether the rule value is a percent of the total.
func (t RuleType) percentBased() bool {
	return t == RulePercentage || t == RuleCommission
}

// Rule defines how part of the split total is assigned to one recipient.
//
// Value carries the absolute amount for RuleFixedAmount, the percent of the
// total (0-100) for RulePercentage and RuleCommission, and is ignored for
// RuleRemaining. MinAmount and MaxAmount bound percent-based allocations.
type Rule struct {
	RecipientID string           `json:"recipientId"`
	Type        RuleType         `json:"type"`
	Value       decimal.Decimal  `json:"value"`
	MinAmount   *decimal.Decimal `json:"minAmount,omitempty"`
	MaxAmount   *decimal.Decimal `json:"maxAmount,omitempty"`
}

// Request is the validated input for a split computation.
type Request struct {
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Currency    string          `json:"currency"`
	Rules       []Rule          `json:"rules"`
}

// Entry is one recipient's calculated share of the total.
type Entry struct {
	RecipientID string          `json:"recipientId"`
	Amount      decimal.Decimal `json:"amount"`
	RuleType    RuleType        `json:"ruleType"`
}

// Outcome is the result of a split computation.
//
// Reconciled reports whether the entries sum to the request total exactly
// with no outstanding business errors. An unreconciled outcome means the
// payment must not proceed as requested.
type Outcome struct {
	PerRecipient       []Entry                  `json:"perRecipient"`
	TotalCalculated    decimal.Decimal          `json:"totalCalculated"`
	RoundingAdjustment decimal.Decimal          `json:"roundingAdjustment"`
	Reconciled         bool                     `json:"reconciled"`
	Errors             []allocation.DomainError `json:"errors,omitempty"`
	Notes              []allocation.Note        `json:"notes,omitempty"`
}

// Adjustment describes the drift correction applied by Reconcile.
type Adjustment struct {
	Amount      decimal.Decimal `json:"amount"`
	RecipientID string          `json:"recipientId,omitempty"`
	Index       int             `json:"index"`
}
