package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstallmentsSumToTotal(t *testing.T) {
	t.Parallel()
	for _, total := range []Cents{0, 1, 3750, 4500, 10001} {
		for n := 1; n <= MaxInstallments; n++ {
			parts, err := Installments(total, n)
			require.NoError(t, err)
			require.Len(t, parts, n)
			var sum Cents
			for _, p := range parts {
				sum += p
				assert.LessOrEqual(t, parts[0]-p, Cents(1))
			}
			assert.Equal(t, total, sum, "total=%d n=%d", total, n)
		}
	}
}

func TestInstallmentsRemainderFirst(t *testing.T) {
	t.Parallel()
	parts, err := Installments(1000, 3)
	require.NoError(t, err)
	assert.Equal(t, []Cents{334, 333, 333}, parts)
}

func TestInstallmentsBounds(t *testing.T) {
	t.Parallel()
	_, err := Installments(1000, 0)
	assert.ErrorIs(t, err, ErrInvalidInstallments)
	_, err = Installments(1000, 7)
	assert.ErrorIs(t, err, ErrInvalidInstallments)
	_, err = Installments(-5, 2)
	assert.ErrorIs(t, err, ErrNegativePrice)
}

func TestInstallmentMenu(t *testing.T) {
	t.Parallel()
	menu := InstallmentMenu(9000)
	require.Len(t, menu, MaxInstallments)
	assert.Equal(t, InstallmentOption{Count: 1, EachCents: 9000, TotalCents: 9000}, menu[0])
	assert.Equal(t, InstallmentOption{Count: 4, EachCents: 2250, TotalCents: 9000}, menu[3])
	assert.Equal(t, Cents(1500), menu[5].EachCents)
}
