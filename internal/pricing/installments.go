package pricing

import (
	"errors"
	"fmt"
)

// MaxInstallments is the largest split offered at checkout.
const MaxInstallments = 6

var ErrInvalidInstallments = errors.New("invalid installment count")

// Installments splits total into n payments whose sum is exactly total.
// Leftover cents go to the first payments, so no payment differs from
// another by more than one cent.
func Installments(total Cents, n int) ([]Cents, error) {
	if n < 1 || n > MaxInstallments {
		return nil, fmt.Errorf("%w: %d (allowed 1-%d)", ErrInvalidInstallments, n, MaxInstallments)
	}
	if total < 0 {
		return nil, ErrNegativePrice
	}
	share := total / Cents(n)
	rem := total % Cents(n)
	out := make([]Cents, n)
	for i := range out {
		out[i] = share
		if Cents(i) < rem {
			out[i]++
		}
	}
	return out, nil
}

// InstallmentOption describes one entry of the checkout split menu.
type InstallmentOption struct {
	Count      int   `json:"count"`
	EachCents  Cents `json:"each_cents"`
	TotalCents Cents `json:"total_cents"`
}

// InstallmentMenu lists every split from one payment up to MaxInstallments.
// EachCents is the largest payment of the split.
func InstallmentMenu(total Cents) []InstallmentOption {
	if total < 0 {
		return nil
	}
	menu := make([]InstallmentOption, 0, MaxInstallments)
	for n := 1; n <= MaxInstallments; n++ {
		parts, _ := Installments(total, n)
		menu = append(menu, InstallmentOption{Count: n, EachCents: parts[0], TotalCents: total})
	}
	return menu
}
