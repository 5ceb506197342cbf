// Package money provides exact currency arithmetic so chained discount
// math never accumulates floating-point drift.
package money

import "github.com/shopspring/decimal"

// Amount is an exact currency amount.
type Amount struct {
	d decimal.Decimal
}

// Zero is the zero amount.
var Zero = Amount{}

// FromInt builds an Amount from a whole currency value.
func FromInt(n int64) Amount {
	return Amount{d: decimal.NewFromInt(n)}
}

// FromFloat builds an Amount from a float value.
func FromFloat(f float64) Amount {
	return Amount{d: decimal.NewFromFloat(f)}
}

// Add returns a + b.
func (a Amount) Add(b Amount) Amount {
	return Amount{d: a.d.Add(b.d)}
}

// Sub returns a - b.
func (a Amount) Sub(b Amount) Amount {
	return Amount{d: a.d.Sub(b.d)}
}

// MulInt returns a scaled by an integer count.
func (a Amount) MulInt(n int) Amount {
	return Amount{d: a.d.Mul(decimal.NewFromInt(int64(n)))}
}

// PercentOff returns a reduced by p percent, e.g. PercentOff(10) of 4000
// is 3600. p of zero returns a unchanged.
func (a Amount) PercentOff(p float64) Amount {
	factor := decimal.NewFromInt(1).Sub(decimal.NewFromFloat(p).Div(decimal.NewFromInt(100)))
	return Amount{d: a.d.Mul(factor)}
}

// IsNegative reports whether the amount is below zero.
func (a Amount) IsNegative() bool {
	return a.d.IsNegative()
}

// Float64 returns the amount rounded to two decimal places, for
// serialization into stored and exported numeric fields.
func (a Amount) Float64() float64 {
	f, _ := a.d.Round(2).Float64()
	return f
}

// String renders the exact amount.
func (a Amount) String() string {
	return a.d.String()
}
