package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}

	return d
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func TestExponent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		currency string
		want     int32
	}{
		{currency: "NGN", want: 2},
		{currency: "USD", want: 2},
		{currency: "JPY", want: 0},
		{currency: "XOF", want: 0},
		{currency: "BHD", want: 3},
		{currency: "", want: 2},
		{currency: "ZZZ", want: 2},
	}

	for _, tt := range tests {
		t.Run(tt.currency, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, Exponent(tt.currency))
		})
	}
}

func TestRoundToMinorUnit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		amount   string
		currency string
		want     string
	}{
		{name: "exact value unchanged", amount: "10.25", currency: "NGN", want: "10.25"},
		{name: "rounds down below half", amount: "10.254", currency: "NGN", want: "10.25"},
		{name: "rounds up above half", amount: "10.256", currency: "NGN", want: "10.26"},
		{name: "half to even down", amount: "10.245", currency: "NGN", want: "10.24"},
		{name: "half to even up", amount: "10.235", currency: "NGN", want: "10.24"},
		{name: "negative half to even", amount: "-10.245", currency: "NGN", want: "-10.24"},
		{name: "zero-exponent currency", amount: "1234.5", currency: "JPY", want: "1234"},
		{name: "zero-exponent half to even", amount: "1233.5", currency: "JPY", want: "1234"},
		{name: "three-exponent currency", amount: "1.23456", currency: "BHD", want: "1.235"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := RoundToMinorUnit(dec(tt.amount), tt.currency)
			assert.True(t, dec(tt.want).Equal(got), "want %s, got %s", tt.want, got)
		})
	}
}

func TestRoundToMinorUnit_Idempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{"10.255", "0.005", "-3.125", "999999999.995", "42"}

	for _, in := range inputs {
		once := RoundToMinorUnit(dec(in), "NGN")
		twice := RoundToMinorUnit(once, "NGN")
		require.True(t, once.Equal(twice), "round(round(%s)) = %s, round(%s) = %s", in, twice, in, once)
	}
}

func TestRoundToMinorUnit_Neutrality(t *testing.T) {
	t.Parallel()

	// A long run of exact .005 halves must not drift upward the way
	// round-half-up would. Half of them round up, half round down.
	sumBank := decimal.Zero
	sumHalfUp := decimal.Zero
	step := dec("0.01")
	half := dec("0.005")

	value := decimal.Zero
	for i := 0; i < 1000; i++ {
		x := value.Add(half)
		sumBank = sumBank.Add(RoundToMinorUnit(x, "NGN"))
		sumHalfUp = sumHalfUp.Add(x.Round(2))
		value = value.Add(step)
	}

	exact := decimal.Zero
	value = decimal.Zero
	for i := 0; i < 1000; i++ {
		exact = exact.Add(value.Add(half))
		value = value.Add(step)
	}

	assert.True(t, sumBank.Equal(exact), "banker sum %s, exact %s", sumBank, exact)
	assert.True(t, sumHalfUp.GreaterThan(exact), "half-up sum %s should exceed exact %s", sumHalfUp, exact)
}

func TestPercentOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		total   string
		percent string
		want    string
	}{
		{name: "ten percent", total: "10000.00", percent: "10", want: "1000.00"},
		{name: "fractional percent", total: "100.00", percent: "2.5", want: "2.50"},
		{name: "repeating product", total: "33.33", percent: "33.33", want: "11.11"},
		{name: "half rounds to even", total: "1.00", percent: "12.5", want: "0.12"},
		{name: "hundred percent", total: "45.67", percent: "100", want: "45.67"},
		{name: "zero percent", total: "45.67", percent: "0", want: "0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := PercentOf(dec(tt.total), dec(tt.percent), "NGN")
			assert.True(t, dec(tt.want).Equal(got), "want %s, got %s", tt.want, got)
		})
	}
}

func TestClamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		amount      string
		minimum     *decimal.Decimal
		maximum     *decimal.Decimal
		want        string
		wantClamped bool
	}{
		{name: "within bounds", amount: "50.00", minimum: decPtr("10"), maximum: decPtr("100"), want: "50.00"},
		{name: "below minimum", amount: "5.00", minimum: decPtr("10"), want: "10.00", wantClamped: true},
		{name: "above maximum", amount: "150.00", maximum: decPtr("100"), want: "100.00", wantClamped: true},
		{name: "no bounds", amount: "5.00", want: "5.00"},
		{name: "unrounded bound is rounded first", amount: "150.00", maximum: decPtr("100.005"), want: "100.00", wantClamped: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, clamped := Clamp(dec(tt.amount), tt.minimum, tt.maximum, "NGN")
			assert.True(t, dec(tt.want).Equal(got), "want %s, got %s", tt.want, got)
			assert.Equal(t, tt.wantClamped, clamped)
		})
	}
}
