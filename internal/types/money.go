// README: Common value objects shared across modules (money, ids, errors).
package types

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ErrInvalidInput is the single input-validation kind shared by the pricing and dispute cores.
var ErrInvalidInput = errors.New("invalid input")

type ID string

// Money is an exact decimal amount in the base currency unit.
type Money struct {
	Amount   decimal.Decimal
	Currency string
}

const DefaultCurrency = "USD"

// Display rounds to currency precision. Only call at presentation time.
func (m Money) Display() float64 {
	return m.Amount.Round(2).InexactFloat64()
}
