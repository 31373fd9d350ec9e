// Package allocation provides the shared domain error and note types used by
// the monetary allocation subpackages.
//
// Core flow:
//   - split.Compute divides a total across heterogeneous recipient rules.
//   - installment.ComputeSchedule amortizes a financed principal over periods.
//   - layaway.ComputePlan derives deposit and balance terms for deferred sales.
//
// Every subpackage routes monetary values through money.RoundToMinorUnit so
// that results reconcile to the request total exactly, in minor currency
// units. All entry points are pure functions: no I/O, no clock reads, no
// shared state. The engine subpackage wraps them with logging, tracing, and
// result caching for services that need those concerns.
package allocation
