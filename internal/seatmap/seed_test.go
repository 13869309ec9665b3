package seatmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sequenceRNG returns values from a fixed sequence, cycling.
type sequenceRNG struct {
	values []float64
	idx    int
}

func (r *sequenceRNG) Float64() float64 {
	v := r.values[r.idx%len(r.values)]
	r.idx++
	return v
}

func TestSeederUsesOccupancyThreshold(t *testing.T) {
	t.Parallel()
	// every fifth draw is below 0.2
	rng := &sequenceRNG{values: []float64{0.5, 0.9, 0.1, 0.3, 0.7}}
	set, err := NewSeeder(rng, DefaultOccupancy).Occupied(2, 5)
	require.NoError(t, err)
	assert.Equal(t, []SeatID{{"A", 3}, {"B", 3}}, set.Sorted())
}

func TestSeederClampsOccupancy(t *testing.T) {
	t.Parallel()
	rng := &sequenceRNG{values: []float64{0.0, 0.99}}
	all, err := NewSeeder(rng, 7).Occupied(2, 2)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	none, err := NewSeeder(rng, -1).Occupied(2, 2)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSeederRejectsInvalidGeometry(t *testing.T) {
	t.Parallel()
	_, err := NewSeeder(&sequenceRNG{values: []float64{0}}, 0.2).Occupied(30, 2)
	assert.ErrorIs(t, err, ErrInvalidLayout)
}

func TestSeededSetFeedsGenerate(t *testing.T) {
	t.Parallel()
	rng := &sequenceRNG{values: []float64{0.05, 0.95}}
	sold, err := NewSeeder(rng, DefaultOccupancy).Occupied(4, 4)
	require.NoError(t, err)
	layout, err := Generate("3", 4, 4, sold)
	require.NoError(t, err)
	assert.Equal(t, 16-len(sold), layout.Available())
}
