package paytracker

import "github.com/shopspring/decimal"

// Scale is the number of decimals used to display amounts.
const Scale = 2

// newDecimal is a convenient factory for decimal.Decimal
func newDecimal[T float64 | int | int64 | decimal.Decimal](value T) decimal.Decimal {
	switch v := any(value).(type) {
	case decimal.Decimal:
		return v
	case float64:
		return decimal.NewFromFloat(v)
	case int:
		return decimal.NewFromInt(int64(v))
	case int64:
		return decimal.NewFromInt(v)
	default:
		panic("unsupported type")
	}
}

// Amount is an exact, signed monetary delta in some currency.
//
// The zero value is a valid zero amount.
type Amount struct {
	value decimal.Decimal
}

// A returns the Amount for value.
//
// Floats are converted with their shortest decimal representation, they are
// meant for tests and constants only.
func A[T float64 | int | int64 | decimal.Decimal](value T) Amount {
	return Amount{value: newDecimal(value)}
}

// ParseAmount parses an exact decimal literal, with an optional sign and
// exponent.
func ParseAmount(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, err
	}
	return Amount{value: d}, nil
}

func (a Amount) Add(b Amount) Amount      { return Amount{value: a.value.Add(b.value)} }
func (a Amount) Neg() Amount              { return Amount{value: a.value.Neg()} }
func (a Amount) Equal(b Amount) bool      { return a.value.Equal(b.value) }
func (a Amount) IsZero() bool             { return a.value.IsZero() }
func (a Amount) IsNegative() bool         { return a.value.IsNegative() }
func (a Amount) Decimal() decimal.Decimal { return a.value }

// String returns the amount rounded half-up to two decimals, e.g "-64.40".
func (a Amount) String() string {
	return a.value.StringFixed(Scale)
}

// Exact returns all the digits of the amount.
func (a Amount) Exact() string {
	return a.value.String()
}

// Convert returns the amount expressed in the reference currency, given
// rate units of this currency per one unit of reference.
//
// The division is exact, then rounded half-up to two decimals.
// It returns false if the rate cannot be used (zero or negative).
func (a Amount) Convert(rate decimal.Decimal) (Amount, bool) {
	if !rate.IsPositive() {
		return Amount{}, false
	}
	return Amount{value: a.value.DivRound(rate, Scale)}, true
}
