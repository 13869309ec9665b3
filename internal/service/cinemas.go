package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/cinexplorer/internal/catalog"
	"github.com/iliyamo/cinexplorer/internal/geo"
	"github.com/iliyamo/cinexplorer/internal/model"
	"github.com/iliyamo/cinexplorer/internal/seatmap"
)

// Cinema sort orders.
const (
	SortDistance = "distance"
	SortName     = "name"
	SortRating   = "rating"
)

var ErrUnknownSort = errors.New("unknown sort order")

// CinemaResult is a cinema with its distance from the shopper, when known.
type CinemaResult struct {
	model.Cinema
	DistanceKm *float64 `json:"distance_km,omitempty"`
}

// CinemaFinder lists cinemas and their sessions for the storefront.
type CinemaFinder struct {
	catalog catalog.Provider
	sold    SoldSeats
}

// NewCinemaFinder returns a finder reading the catalog from p and sold seats
// from sold. It must be given the same SoldSeats as the TicketService so the
// session listing and the session detail agree on availability.
func NewCinemaFinder(p catalog.Provider, sold SoldSeats) *CinemaFinder {
	return &CinemaFinder{catalog: p, sold: sold}
}

// List returns every cinema in the requested order. Distance ordering needs
// the shopper's coordinate; without one it falls back to name order and
// ranked is false. An empty sortBy means distance.
func (f *CinemaFinder) List(ctx context.Context, user *geo.Coordinate, sortBy string) (out []CinemaResult, ranked bool, err error) {
	cinemas, err := f.catalog.ListCinemas(ctx)
	if err != nil {
		return nil, false, err
	}
	byID := make(map[string]model.Cinema, len(cinemas))
	venues := make([]geo.Venue, len(cinemas))
	for i, c := range cinemas {
		v := c.Venue()
		byID[v.ID] = c
		venues[i] = v
	}

	var rs []geo.Ranked
	switch strings.ToLower(strings.TrimSpace(sortBy)) {
	case "", SortDistance:
		rs, ranked = geo.Rank(user, venues)
		if !ranked {
			rs = geo.SortByName(venues)
		}
	case SortName:
		rs = geo.SortByName(venues)
	case SortRating:
		rs = geo.SortByRating(venues)
	default:
		return nil, false, fmt.Errorf("%w: %q", ErrUnknownSort, sortBy)
	}

	out = make([]CinemaResult, len(rs))
	for i, r := range rs {
		out[i] = CinemaResult{Cinema: byID[r.ID], DistanceKm: r.DistanceKm}
	}
	return out, ranked, nil
}

// Sessions lists a cinema's sessions in schedule order. AvailableSeats is
// derived from the sold seats, as in the session detail.
func (f *CinemaFinder) Sessions(ctx context.Context, cinemaID uint64) ([]model.Session, error) {
	sessions, err := f.catalog.ListSessionsByCinema(ctx, cinemaID)
	if err != nil {
		return nil, err
	}
	rooms := map[uint64]model.Room{}
	for i, ss := range sessions {
		room, ok := rooms[ss.RoomID]
		if !ok {
			if room, err = f.catalog.GetRoom(ctx, ss.RoomID); err != nil {
				return nil, err
			}
			rooms[ss.RoomID] = room
		}
		layout, err := sessionLayout(ctx, f.sold, ss, room)
		if err != nil {
			return nil, err
		}
		sessions[i].AvailableSeats = layout.Available()
	}
	return sessions, nil
}

// sessionLayout generates the seat map of session s in room with the sold
// seats marked occupied.
func sessionLayout(ctx context.Context, sold SoldSeats, s model.Session, room model.Room) (seatmap.Layout, error) {
	occupied, err := sold.ListBySession(ctx, s.ID)
	if err != nil {
		return seatmap.Layout{}, fmt.Errorf("sold seats: %w", err)
	}
	return seatmap.Generate(s.Key(), room.Rows, room.SeatsPerRow, occupied)
}
