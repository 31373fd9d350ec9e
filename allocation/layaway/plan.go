package layaway

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/LerianStudio/lib-allocation/allocation"
	"github.com/LerianStudio/lib-allocation/allocation/money"
)

var oneHundred = decimal.NewFromInt(100)

// daysPerMonth is the calendar approximation used to size the suggested
// payment cadence over the holding period.
const daysPerMonth = 30

// Request is the validated input for a layaway plan.
type Request struct {
	TotalAmount    decimal.Decimal `json:"totalAmount"`
	Currency       string          `json:"currency,omitempty"`
	DepositPercent decimal.Decimal `json:"depositPercent"`
	MinimumDeposit decimal.Decimal `json:"minimumDeposit"`
	StartDate      time.Time       `json:"startDate"`
	PeriodDays     int             `json:"periodDays"`
}

// Suggestion is the even payment cadence proposed for the remaining balance.
type Suggestion struct {
	Amount decimal.Decimal `json:"amount"`
	Count  int             `json:"count"`
}

// Plan describes the deposit and balance terms for a layaway purchase.
type Plan struct {
	RequiredDeposit      decimal.Decimal `json:"requiredDeposit"`
	RemainingAmount      decimal.Decimal `json:"remainingAmount"`
	ExpiryDate           time.Time       `json:"expiryDate"`
	SuggestedInstallment Suggestion      `json:"suggestedInstallment"`
	Currency             string          `json:"currency,omitempty"`
}

// ComputePlan derives the layaway terms for a purchase. The deposit is the
// greater of the percentage-based amount and the configured minimum, never
// exceeding the total itself.
func ComputePlan(input Request) (Plan, error) {
	if err := validate(input); err != nil {
		return Plan{}, err
	}

	deposit := money.PercentOf(input.TotalAmount, input.DepositPercent, input.Currency)

	if minimum := money.RoundToMinorUnit(input.MinimumDeposit, input.Currency); deposit.LessThan(minimum) {
		deposit = minimum
	}

	if deposit.GreaterThan(input.TotalAmount) {
		deposit = input.TotalAmount
	}

	remaining := input.TotalAmount.Sub(deposit)

	return Plan{
		RequiredDeposit:      deposit,
		RemainingAmount:      remaining,
		ExpiryDate:           input.StartDate.AddDate(0, 0, input.PeriodDays),
		SuggestedInstallment: suggest(remaining, input),
		Currency:             input.Currency,
	}, nil
}

func validate(input Request) error {
	if !input.TotalAmount.IsPositive() {
		return allocation.NewDomainError(allocation.ErrorInvalidRequest, "totalAmount", "totalAmount must be greater than zero")
	}

	if !money.IsRounded(input.TotalAmount, input.Currency) {
		return allocation.NewDomainError(allocation.ErrorInvalidRequest, "totalAmount", "totalAmount must be expressible in minor units")
	}

	if input.DepositPercent.IsNegative() || input.DepositPercent.GreaterThan(oneHundred) {
		return allocation.NewDomainError(allocation.ErrorInvalidRequest, "depositPercent", "depositPercent must be between 0 and 100")
	}

	if input.MinimumDeposit.IsNegative() {
		return allocation.NewDomainError(allocation.ErrorInvalidRequest, "minimumDeposit", "minimumDeposit must not be negative")
	}

	if input.StartDate.IsZero() {
		return allocation.NewDomainError(allocation.ErrorInvalidRequest, "startDate", "startDate is required")
	}

	if input.PeriodDays < 1 {
		return allocation.NewDomainError(allocation.ErrorInvalidRequest, "periodDays", "periodDays must be at least one")
	}

	return nil
}

// suggest sizes the even cadence: one payment per full month of the holding
// period, or a single payment when the period is shorter than a month.
func suggest(remaining decimal.Decimal, input Request) Suggestion {
	months := input.PeriodDays / daysPerMonth
	if months < 1 || remaining.IsZero() {
		return Suggestion{Amount: remaining, Count: 1}
	}

	amount := money.RoundToMinorUnit(
		remaining.DivRound(decimal.NewFromInt(int64(months)), money.Exponent(input.Currency)+4),
		input.Currency,
	)

	return Suggestion{Amount: amount, Count: months}
}

// Schedule expands the suggested cadence into concrete payment amounts. Each
// payment is capped at the balance still unpaid, and the last payment absorbs
// the remainder, so the amounts sum to RemainingAmount exactly and never go
// negative even when the suggested amount was rounded up.
func (p Plan) Schedule() []decimal.Decimal {
	count := p.SuggestedInstallment.Count
	if count < 1 {
		return nil
	}

	amounts := make([]decimal.Decimal, count)
	paid := decimal.Zero

	for i := 0; i < count-1; i++ {
		payment := p.SuggestedInstallment.Amount
		if unpaid := p.RemainingAmount.Sub(paid); payment.GreaterThan(unpaid) {
			payment = unpaid
		}

		amounts[i] = payment
		paid = paid.Add(payment)
	}

	amounts[count-1] = p.RemainingAmount.Sub(paid)

	return amounts
}
