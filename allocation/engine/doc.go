// Package engine wraps the pure allocation calculators with the service
// concerns they deliberately avoid: structured logging, tracing, and
// idempotency-reference result caching.
//
// The calculators themselves stay deterministic and side-effect free; the
// engine is the single place where I/O happens. Cache failures are logged
// and ignored so a degraded cache never fails a computation.
package engine
