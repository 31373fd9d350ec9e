package installment

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/LerianStudio/lib-allocation/allocation"
	"github.com/LerianStudio/lib-allocation/allocation/money"
)

// Status represents the lifecycle state of a schedule entry. The engine only
// ever emits pending entries; settlement transitions belong to the caller.
type Status string

// StatusPending marks an entry that has not been paid.
const StatusPending Status = "PENDING"

var (
	one           = decimal.NewFromInt(1)
	twelveHundred = decimal.NewFromInt(1200)
)

// Request is the validated input for an installment schedule.
//
// Principal is the full purchase amount; the financed principal is Principal
// minus DownPayment. Currency selects the minor-unit exponent for rounding
// and may be empty for two-decimal currencies.
type Request struct {
	Principal                 decimal.Decimal `json:"principal"`
	Currency                  string          `json:"currency,omitempty"`
	InstallmentCount          int             `json:"installmentCount"`
	FrequencyDays             int             `json:"frequencyDays"`
	StartDate                 time.Time       `json:"startDate"`
	DownPayment               decimal.Decimal `json:"downPayment"`
	AnnualInterestRatePercent decimal.Decimal `json:"annualInterestRatePercent"`
}

// Entry is one period of an installment schedule.
type Entry struct {
	Index            int             `json:"index"`
	DueDate          time.Time       `json:"dueDate"`
	PrincipalPortion decimal.Decimal `json:"principalPortion"`
	InterestPortion  decimal.Decimal `json:"interestPortion"`
	TotalDue         decimal.Decimal `json:"totalDue"`
	RemainingBalance decimal.Decimal `json:"remainingBalance"`
	Status           Status          `json:"status"`
}

// ComputeSchedule amortizes the financed principal across the requested
// periods. Principal portions always sum to the financed principal exactly:
// the final period absorbs whatever balance rounding leaves behind, and its
// total due is adjusted to match.
func ComputeSchedule(input Request) ([]Entry, error) {
	financed, err := validate(input)
	if err != nil {
		return nil, err
	}

	if input.AnnualInterestRatePercent.IsZero() {
		return equalPrincipalSchedule(input, financed), nil
	}

	return amortizedSchedule(input, financed), nil
}

func validate(input Request) (decimal.Decimal, error) {
	if !input.Principal.IsPositive() {
		return decimal.Zero, allocation.NewDomainError(allocation.ErrorInvalidRequest, "principal", "principal must be greater than zero")
	}

	if !money.IsRounded(input.Principal, input.Currency) {
		return decimal.Zero, allocation.NewDomainError(allocation.ErrorInvalidRequest, "principal", "principal must be expressible in minor units")
	}

	if input.InstallmentCount < 2 {
		return decimal.Zero, allocation.NewDomainError(allocation.ErrorInvalidRequest, "installmentCount", "at least two installments are required")
	}

	if input.FrequencyDays < 1 {
		return decimal.Zero, allocation.NewDomainError(allocation.ErrorInvalidRequest, "frequencyDays", "frequencyDays must be at least one")
	}

	if input.StartDate.IsZero() {
		return decimal.Zero, allocation.NewDomainError(allocation.ErrorInvalidRequest, "startDate", "startDate is required")
	}

	if input.DownPayment.IsNegative() {
		return decimal.Zero, allocation.NewDomainError(allocation.ErrorInvalidRequest, "downPayment", "downPayment must not be negative")
	}

	if !money.IsRounded(input.DownPayment, input.Currency) {
		return decimal.Zero, allocation.NewDomainError(allocation.ErrorInvalidRequest, "downPayment", "downPayment must be expressible in minor units")
	}

	if input.AnnualInterestRatePercent.IsNegative() {
		return decimal.Zero, allocation.NewDomainError(allocation.ErrorInvalidRequest, "annualInterestRatePercent", "interest rate must not be negative")
	}

	financed := input.Principal.Sub(input.DownPayment)
	if !financed.IsPositive() {
		return decimal.Zero, allocation.NewDomainError(allocation.ErrorInvalidRequest, "downPayment", "downPayment leaves no principal to finance")
	}

	return financed, nil
}

// equalPrincipalSchedule splits the financed principal evenly: every period
// except the last gets the floored equal share and the last period absorbs
// the remaining balance exactly.
func equalPrincipalSchedule(input Request, financed decimal.Decimal) []Entry {
	count := input.InstallmentCount
	exp := money.Exponent(input.Currency)
	base := financed.DivRound(decimal.NewFromInt(int64(count)), exp+4).RoundDown(exp)

	entries := make([]Entry, 0, count)
	remaining := financed

	for index := 1; index <= count; index++ {
		portion := base
		if index == count {
			portion = remaining
		}

		remaining = remaining.Sub(portion)
		entries = append(entries, Entry{
			Index:            index,
			DueDate:          dueDate(input, index),
			PrincipalPortion: portion,
			InterestPortion:  decimal.Zero,
			TotalDue:         portion,
			RemainingBalance: remaining,
			Status:           StatusPending,
		})
	}

	return entries
}

// amortizedSchedule applies the standard fixed-payment formula
//
//	payment = P * r * (1+r)^n / ((1+r)^n - 1)
//
// with r = annualRate/100/12. The pow factor is computed in float64; every
// stored value is rounded to the minor unit and the running balance is
// recomputed from the rounded portions so drift cannot accumulate across
// periods. The final period's total due is adjusted so principal portions
// sum to the financed principal exactly.
func amortizedSchedule(input Request, financed decimal.Decimal) []Entry {
	count := input.InstallmentCount
	monthlyRate := input.AnnualInterestRatePercent.Div(twelveHundred)

	factor := decimal.NewFromFloat(math.Pow(1+monthlyRate.InexactFloat64(), float64(count)))
	payment := money.RoundToMinorUnit(
		financed.Mul(monthlyRate).Mul(factor).Div(factor.Sub(one)),
		input.Currency,
	)

	entries := make([]Entry, 0, count)
	remaining := financed

	for index := 1; index <= count; index++ {
		interest := money.RoundToMinorUnit(remaining.Mul(monthlyRate), input.Currency)

		var portion, totalDue decimal.Decimal

		if index == count {
			portion = remaining
			totalDue = portion.Add(interest)
		} else {
			portion = payment.Sub(interest)
			if portion.GreaterThan(remaining) {
				portion = remaining
			}

			if portion.IsNegative() {
				portion = decimal.Zero
			}

			totalDue = payment
		}

		remaining = remaining.Sub(portion)
		entries = append(entries, Entry{
			Index:            index,
			DueDate:          dueDate(input, index),
			PrincipalPortion: portion,
			InterestPortion:  interest,
			TotalDue:         totalDue,
			RemainingBalance: remaining,
			Status:           StatusPending,
		})
	}

	return entries
}

func dueDate(input Request, index int) time.Time {
	return input.StartDate.AddDate(0, 0, index*input.FrequencyDays)
}
