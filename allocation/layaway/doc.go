// Package layaway computes deposit and balance terms for deferred purchases.
//
// ComputePlan derives the required deposit from a percentage with a minimum
// floor, the remaining balance due before expiry, and a suggested even
// payment cadence over the holding period. Plan.Schedule expands the
// suggestion into concrete amounts with the same last-payment-absorbs-
// remainder rule used by the installment scheduler.
package layaway
