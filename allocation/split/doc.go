// Package split divides a payment total across heterogeneous recipient rules.
//
// Core flow:
//   - Compute validates the request, orders rules by type priority, and
//     produces one calculated entry per recipient.
//   - Reconcile folds residual rounding drift into a single entry so the
//     outcome sums to the request total exactly.
//
// Rule types are processed in a fixed priority: fixed amounts first, then
// percentages and commissions of the original total, with remaining-share
// recipients absorbing whatever is left. Infeasible requests (commitments
// that cannot reconcile to the total) are reported on the outcome with
// Reconciled=false rather than as errors; callers must treat an
// unreconciled outcome as a hard stop for the payment.
package split
