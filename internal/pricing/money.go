// Package pricing computes ticket prices from a session's base price and
// the ticket type chosen for each seat.
package pricing

import (
	"fmt"
	"math"
	"strings"
)

// Cents is an amount of money in minor currency units.
type Cents int64

// FromFloat converts a decimal amount such as 25.5 to cents, rounding to the
// nearest cent.
func FromFloat(v float64) Cents { return Cents(math.Round(v * 100)) }

// Float returns the amount in major units.
func (c Cents) Float() float64 { return float64(c) / 100 }

// String renders the amount with two decimals, e.g. "37.50".
func (c Cents) String() string {
	sign := ""
	v := int64(c)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// BRL renders the amount the way the storefront displays it, e.g. "R$ 37,50".
func (c Cents) BRL() string { return "R$ " + strings.Replace(c.String(), ".", ",", 1) }
