// Package installment generates amortized payment schedules.
//
// ComputeSchedule produces one entry per period covering principal, interest,
// total due, and the balance left after the period. Zero-rate requests use an
// equal-principal split; positive rates use the standard fixed-payment
// amortization formula. In both cases the final period absorbs residual
// rounding so principal portions sum to the financed principal exactly.
package installment
