package seatmap

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCoversEveryRowAndNumber(t *testing.T) {
	t.Parallel()
	for _, tc := range []struct{ rows, cols int }{{1, 1}, {5, 10}, {12, 10}, {26, 3}} {
		layout, err := Generate("1", tc.rows, tc.cols, nil)
		require.NoError(t, err)
		require.Len(t, layout.Seats, tc.rows*tc.cols)

		seen := SeatSet{}
		for _, s := range layout.Seats {
			assert.False(t, seen.Has(s.ID), "duplicate %s", s.ID)
			seen[s.ID] = struct{}{}
		}
		for i := 0; i < tc.rows; i++ {
			for n := 1; n <= tc.cols; n++ {
				assert.True(t, seen.Has(SeatID{Row: RowLabel(i), Number: n}))
			}
		}
	}
}

func TestGenerateRowMajorOrder(t *testing.T) {
	t.Parallel()
	layout, err := Generate("1", 2, 3, nil)
	require.NoError(t, err)
	got := make([]string, len(layout.Seats))
	for i, s := range layout.Seats {
		got[i] = s.ID.String()
	}
	assert.Equal(t, []string{"A1", "A2", "A3", "B1", "B2", "B3"}, got)
}

func TestGeneratePremiumBanding(t *testing.T) {
	t.Parallel()
	layout, err := Generate("1", 12, 10, nil)
	require.NoError(t, err)
	for _, s := range layout.Seats {
		idx, ok := RowIndex(s.ID.Row)
		require.True(t, ok)
		if idx >= 3 && idx < 9 {
			assert.Equal(t, TypePremium, s.Type, s.ID.String())
		} else {
			assert.Equal(t, TypeStandard, s.Type, s.ID.String())
		}
		assert.NotEqual(t, TypeAccessible, s.Type)
	}
}

func TestGenerateMarksOccupied(t *testing.T) {
	t.Parallel()
	sold := NewSeatSet(SeatID{"A", 1}, SeatID{"C", 4}, SeatID{"Z", 99})
	layout, err := Generate("1", 5, 10, sold)
	require.NoError(t, err)

	occupied := 0
	for _, s := range layout.Seats {
		if s.Status == StatusOccupied {
			occupied++
			assert.True(t, sold.Has(s.ID))
		} else {
			assert.Equal(t, StatusAvailable, s.Status)
		}
	}
	assert.Equal(t, 2, occupied)
	assert.Equal(t, 48, layout.Available())
}

func TestGenerateIsDeterministic(t *testing.T) {
	t.Parallel()
	sold := NewSeatSet(SeatID{"B", 2})
	a, err := Generate("9", 8, 8, sold)
	require.NoError(t, err)
	b, err := Generate("9", 8, 8, sold)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	a.Seats[0].Status = StatusSelected
	assert.Equal(t, StatusAvailable, b.Seats[0].Status, "each call returns a fresh slice")
}

func TestGenerateRejectsInvalidGeometry(t *testing.T) {
	t.Parallel()
	for _, tc := range []struct{ rows, cols int }{{0, 10}, {-1, 10}, {5, 0}, {27, 10}} {
		layout, err := Generate("1", tc.rows, tc.cols, nil)
		assert.ErrorIs(t, err, ErrInvalidLayout)
		assert.Empty(t, layout.Seats)
	}
}

func TestLayoutFindAndWithSelection(t *testing.T) {
	t.Parallel()
	layout, err := Generate("1", 3, 4, NewSeatSet(SeatID{"A", 2}))
	require.NoError(t, err)

	s, ok := layout.Find(SeatID{"C", 4})
	require.True(t, ok)
	assert.Equal(t, "C4", s.ID.String())
	_, ok = layout.Find(SeatID{"D", 1})
	assert.False(t, ok)
	_, ok = layout.Find(SeatID{"A", 5})
	assert.False(t, ok)

	marked := layout.WithSelection(NewSeatSet(SeatID{"A", 1}, SeatID{"A", 2}))
	a1, _ := marked.Find(SeatID{"A", 1})
	a2, _ := marked.Find(SeatID{"A", 2})
	assert.Equal(t, StatusSelected, a1.Status)
	assert.Equal(t, StatusOccupied, a2.Status)
	orig, _ := layout.Find(SeatID{"A", 1})
	assert.Equal(t, StatusAvailable, orig.Status)
}

func TestParseSeatID(t *testing.T) {
	t.Parallel()
	id, err := ParseSeatID(" b 12")
	require.NoError(t, err)
	assert.Equal(t, SeatID{Row: "B", Number: 12}, id)

	for _, bad := range []string{"", "B", "4B", "B0", "B-1", "AA1", "Bx", "B+4", "B٤"} {
		_, err := ParseSeatID(bad)
		assert.ErrorIs(t, err, ErrInvalidSeatID, bad)
	}
}

func TestSeatIDJSONKeys(t *testing.T) {
	t.Parallel()
	in := map[SeatID]string{{"B", 3}: "inteira", {"B", 4}: "meia"}
	raw, err := json.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, `{"B3":"inteira","B4":"meia"}`, string(raw))

	var out map[SeatID]string
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, in, out)

	raw, err = json.Marshal(Seat{ID: SeatID{"A", 1}, Status: StatusAvailable, Type: TypeStandard})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"A1","status":"available","type":"standard"}`, string(raw))
}

func TestSeatSetSorted(t *testing.T) {
	t.Parallel()
	set := NewSeatSet(SeatID{"B", 10}, SeatID{"A", 3}, SeatID{"B", 2})
	assert.Equal(t, []SeatID{{"A", 3}, {"B", 2}, {"B", 10}}, set.Sorted())
	var empty SeatSet
	assert.False(t, empty.Has(SeatID{"A", 1}))
}
