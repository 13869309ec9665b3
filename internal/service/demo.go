package service

import (
	"context"
	"math/rand/v2"
	"sync"

	"github.com/iliyamo/cinexplorer/internal/catalog"
	"github.com/iliyamo/cinexplorer/internal/seatmap"
)

// DemoSold adds a randomly drawn set of occupied seats to every session on
// top of the seats really sold, so a fresh install does not show empty
// rooms. The draw is seeded by the session id and computed once, so the
// demo seats stay put across requests and restarts.
type DemoSold struct {
	Sold      SoldSeats
	Catalog   catalog.Provider
	Occupancy float64

	mu     sync.Mutex
	seeded map[uint64]seatmap.SeatSet
}

// NewDemoSold wraps sold. An occupancy of 0 or less returns sold unchanged.
func NewDemoSold(sold SoldSeats, p catalog.Provider, occupancy float64) SoldSeats {
	if occupancy <= 0 {
		return sold
	}
	return &DemoSold{Sold: sold, Catalog: p, Occupancy: occupancy, seeded: map[uint64]seatmap.SeatSet{}}
}

func (d *DemoSold) ListBySession(ctx context.Context, sessionID uint64) (seatmap.SeatSet, error) {
	sold, err := d.Sold.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	demo, err := d.demoSeats(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	out := make(seatmap.SeatSet, len(sold)+len(demo))
	for id := range sold {
		out[id] = struct{}{}
	}
	for id := range demo {
		out[id] = struct{}{}
	}
	return out, nil
}

func (d *DemoSold) demoSeats(ctx context.Context, sessionID uint64) (seatmap.SeatSet, error) {
	d.mu.Lock()
	set, ok := d.seeded[sessionID]
	d.mu.Unlock()
	if ok {
		return set, nil
	}

	s, err := d.Catalog.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	room, err := d.Catalog.GetRoom(ctx, s.RoomID)
	if err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewPCG(sessionID, 0))
	set, err = seatmap.NewSeeder(rng, d.Occupancy).Occupied(room.Rows, room.SeatsPerRow)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	d.seeded[sessionID] = set
	d.mu.Unlock()
	return set, nil
}
