package seatmap

import (
	"errors"
	"fmt"
)

// ErrInvalidLayout is returned when a room geometry cannot be laid out.
var ErrInvalidLayout = errors.New("invalid layout")

// Layout is the generated seat map of one session.
type Layout struct {
	SessionID   string `json:"session_id"`
	Rows        int    `json:"rows"`
	SeatsPerRow int    `json:"seats_per_row"`
	Seats       []Seat `json:"seats"`
}

// ValidateGeometry checks that rows and seatsPerRow can be laid out.
func ValidateGeometry(rows, seatsPerRow int) error {
	if rows <= 0 || seatsPerRow <= 0 {
		return fmt.Errorf("%w: rows=%d seats_per_row=%d must be positive", ErrInvalidLayout, rows, seatsPerRow)
	}
	if rows > MaxRows {
		return fmt.Errorf("%w: rows=%d exceeds the %d row letters A-Z", ErrInvalidLayout, rows, MaxRows)
	}
	return nil
}

// TypeForRow returns the seat type of 0-based row i in a room of rows rows.
// Rows from rows/4 up to (but excluding) 3*rows/4 are premium.
func TypeForRow(i, rows int) Type {
	if i >= rows/4 && i < rows*3/4 {
		return TypePremium
	}
	return TypeStandard
}

// Generate lays out rows x seatsPerRow seats in row-major order. Seats in
// occupied are marked occupied; identities in occupied that fall outside the
// room are ignored. Generate never returns a partial map.
func Generate(sessionID string, rows, seatsPerRow int, occupied SeatSet) (Layout, error) {
	if err := ValidateGeometry(rows, seatsPerRow); err != nil {
		return Layout{}, err
	}
	seats := make([]Seat, 0, rows*seatsPerRow)
	for i := 0; i < rows; i++ {
		label := RowLabel(i)
		typ := TypeForRow(i, rows)
		for n := 1; n <= seatsPerRow; n++ {
			id := SeatID{Row: label, Number: n}
			status := StatusAvailable
			if occupied.Has(id) {
				status = StatusOccupied
			}
			seats = append(seats, Seat{ID: id, Status: status, Type: typ})
		}
	}
	return Layout{SessionID: sessionID, Rows: rows, SeatsPerRow: seatsPerRow, Seats: seats}, nil
}

// Find returns the seat with the given identity.
func (l Layout) Find(id SeatID) (Seat, bool) {
	idx, ok := l.index(id)
	if !ok {
		return Seat{}, false
	}
	return l.Seats[idx], true
}

// index relies on the row-major order produced by Generate.
func (l Layout) index(id SeatID) (int, bool) {
	r, ok := RowIndex(id.Row)
	if !ok || r >= l.Rows || id.Number < 1 || id.Number > l.SeatsPerRow {
		return -1, false
	}
	idx := r*l.SeatsPerRow + id.Number - 1
	if idx >= len(l.Seats) {
		return -1, false
	}
	return idx, true
}

// Available counts the seats that are not occupied.
func (l Layout) Available() int {
	n := 0
	for _, s := range l.Seats {
		if s.Status != StatusOccupied {
			n++
		}
	}
	return n
}

// WithSelection returns a copy of the layout in which the given identities
// are marked selected. Occupied seats keep their status.
func (l Layout) WithSelection(selected SeatSet) Layout {
	out := l
	out.Seats = make([]Seat, len(l.Seats))
	copy(out.Seats, l.Seats)
	for id := range selected {
		if idx, ok := out.index(id); ok && out.Seats[idx].Status == StatusAvailable {
			out.Seats[idx].Status = StatusSelected
		}
	}
	return out
}
