package model

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/iliyamo/cinexplorer/internal/pricing"
)

// ErrInvalidSession is returned when a session's seat counters disagree.
var ErrInvalidSession = errors.New("invalid session")

// Session is one screening of a movie in a room at a date and time.
//
// Fields:
//
//	Date           – local calendar date, YYYY-MM-DD.
//	Time           – local start time, HH:MM.
//	PriceCents     – base price of a full (inteira) ticket.
//	AvailableSeats – seats not yet sold; never above TotalSeats.
type Session struct {
	ID             uint64        `json:"id" yaml:"id"`
	MovieID        uint64        `json:"movie_id" yaml:"movie_id"`
	CinemaID       uint64        `json:"cinema_id" yaml:"cinema_id"`
	RoomID         uint64        `json:"room_id" yaml:"room_id"`
	Date           string        `json:"date" yaml:"date"`
	Time           string        `json:"time" yaml:"time"`
	PriceCents     pricing.Cents `json:"price_cents" yaml:"price_cents"`
	AvailableSeats int           `json:"available_seats" yaml:"available_seats"`
	TotalSeats     int           `json:"total_seats" yaml:"total_seats"`
}

// Key is the session identifier used in seat keys and cache entries.
func (s Session) Key() string { return strconv.FormatUint(s.ID, 10) }

// Validate checks the seat counters.
func (s Session) Validate() error {
	if s.PriceCents < 0 {
		return fmt.Errorf("%w %d: negative price", ErrInvalidSession, s.ID)
	}
	if s.AvailableSeats < 0 || s.AvailableSeats > s.TotalSeats {
		return fmt.Errorf("%w %d: available_seats %d outside 0..%d", ErrInvalidSession, s.ID, s.AvailableSeats, s.TotalSeats)
	}
	return nil
}

// Movie is the catalog entry a session screens.
type Movie struct {
	ID             uint64   `json:"id" yaml:"id"`
	Title          string   `json:"title" yaml:"title"`
	Synopsis       string   `json:"synopsis,omitempty" yaml:"synopsis"`
	DurationMin    int      `json:"duration_min" yaml:"duration_min"`
	Classification string   `json:"classification" yaml:"classification"`
	Genres         []string `json:"genres" yaml:"genres"`
}
