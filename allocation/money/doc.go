// Package money provides the canonical rounding primitive for the allocation
// engine.
//
// Every monetary value produced by the split, installment, and layaway
// packages passes through RoundToMinorUnit before it is stored or compared.
// The primitive uses round-half-to-even (banker's rounding) so that repeated
// rounding across many recipients or periods does not bias totals upward the
// way round-half-up does.
package money
