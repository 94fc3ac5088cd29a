// Package money holds currency amounts as integer cents to keep the
// POS arithmetic exact. Decimal conversion happens only at the parse
// and format boundaries.
package money

import (
	"fmt"

	pkgerrors "github.com/mvgarcia/taproom/pkg/errors"
	"github.com/shopspring/decimal"
)

// Cents is a BRL amount in hundredths.
type Cents int64

// FromDecimal converts a decimal amount to cents, rounding half-up to
// two places the way the backend serializes money.
func FromDecimal(d decimal.Decimal) Cents {
	return Cents(d.Round(2).Shift(2).IntPart())
}

// FromFloat converts a float amount (as decoded from JSON) to cents.
func FromFloat(v float64) Cents {
	return FromDecimal(decimal.NewFromFloat(v))
}

// Parse reads a decimal string such as "12.50" into cents.
func Parse(s string) (Cents, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeValidation, err, fmt.Sprintf("invalid amount %q", s))
	}
	return FromDecimal(d), nil
}

// Decimal returns the amount as a two-place decimal.
func (c Cents) Decimal() decimal.Decimal {
	return decimal.New(int64(c), -2)
}

// Float returns the amount as a float64 for wire payloads that expect
// JSON numbers.
func (c Cents) Float() float64 {
	f, _ := c.Decimal().Float64()
	return f
}

func (c Cents) String() string {
	return c.Decimal().StringFixed(2)
}

// Mul multiplies a unit price by a quantity.
func (c Cents) Mul(quantity int) Cents {
	return c * Cents(quantity)
}

// Split divides total into n shares that sum exactly to total. The
// remainder after floor division is handed out one cent at a time to
// the leading shares, so no share differs from another by more than
// one cent.
func Split(total Cents, n int) ([]Cents, error) {
	if n < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "share count must be at least 1")
	}
	if total < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "total must not be negative")
	}

	base := total / Cents(n)
	remainder := int(total % Cents(n))

	shares := make([]Cents, n)
	for i := range shares {
		shares[i] = base
		if i < remainder {
			shares[i]++
		}
	}
	return shares, nil
}

// Sum adds a list of amounts.
func Sum(amounts []Cents) Cents {
	var total Cents
	for _, a := range amounts {
		total += a
	}
	return total
}
