package model

import (
	"errors"
	"fmt"

	"github.com/iliyamo/cinexplorer/internal/seatmap"
)

// ErrInvalidRoom is returned when a room's geometry is inconsistent.
var ErrInvalidRoom = errors.New("invalid room")

// Room is a screening room inside a cinema. Its geometry drives the seat map
// of every session played in it.
type Room struct {
	ID          uint64 `json:"id" yaml:"id"`
	CinemaID    uint64 `json:"cinema_id" yaml:"cinema_id"`
	Name        string `json:"name" yaml:"name"`
	Type        string `json:"type" yaml:"type"`
	Rows        int    `json:"rows" yaml:"rows"`
	SeatsPerRow int    `json:"seats_per_row" yaml:"seats_per_row"`
	TotalSeats  int    `json:"total_seats" yaml:"total_seats"`
}

// NewRoom builds a room and derives TotalSeats from the geometry.
func NewRoom(id, cinemaID uint64, name, typ string, rows, seatsPerRow int) (Room, error) {
	r := Room{
		ID:          id,
		CinemaID:    cinemaID,
		Name:        name,
		Type:        typ,
		Rows:        rows,
		SeatsPerRow: seatsPerRow,
		TotalSeats:  rows * seatsPerRow,
	}
	return r, r.Validate()
}

// Validate checks the geometry against the seat map limits and that
// TotalSeats equals Rows*SeatsPerRow.
func (r Room) Validate() error {
	if err := seatmap.ValidateGeometry(r.Rows, r.SeatsPerRow); err != nil {
		return fmt.Errorf("%w %d: %w", ErrInvalidRoom, r.ID, err)
	}
	if r.TotalSeats != r.Rows*r.SeatsPerRow {
		return fmt.Errorf("%w %d: total_seats %d != %d x %d", ErrInvalidRoom, r.ID, r.TotalSeats, r.Rows, r.SeatsPerRow)
	}
	return nil
}
