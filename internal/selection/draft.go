package selection

import (
	"github.com/iliyamo/cinexplorer/internal/pricing"
	"github.com/iliyamo/cinexplorer/internal/seatmap"
)

// Draft is the plain, serializable form of a cart. It is what gets stored
// between requests and handed to checkout.
type Draft struct {
	SessionID       string                                `json:"session_id"`
	SelectedSeats   []seatmap.SeatID                      `json:"selected_seats"`
	TicketTypes     map[seatmap.SeatID]pricing.TicketType `json:"ticket_types"`
	TotalPriceCents pricing.Cents                         `json:"total_price_cents"`
}

// Snapshot captures the tracker state and its total at base price.
func (t *Tracker) Snapshot(base pricing.Cents) (Draft, error) {
	total, err := t.Total(base)
	if err != nil {
		return Draft{}, err
	}
	return Draft{
		SessionID:       t.sessionID,
		SelectedSeats:   t.Selected(),
		TicketTypes:     t.TicketTypes(),
		TotalPriceCents: total,
	}, nil
}

// Restore rebuilds a tracker from a stored draft against the current seat
// map. Seats that no longer exist or have been sold since the draft was
// saved are dropped and returned. Ticket types are kept only for seats that
// remain selected and only when they can still be sold, so a draft with a
// missing or stale type fails Validate.
func Restore(layout seatmap.Layout, d Draft) (*Tracker, []seatmap.SeatID) {
	t := NewTracker(layout.SessionID)
	var dropped []seatmap.SeatID
	for _, id := range d.SelectedSeats {
		seat, ok := layout.Find(id)
		if !ok || seat.Status == seatmap.StatusOccupied {
			dropped = append(dropped, id)
			continue
		}
		t.selected[id] = struct{}{}
	}
	for id, typ := range d.TicketTypes {
		if t.selected.Has(id) && typ.Sellable() {
			t.ticketTypes[id] = typ
		}
	}
	return t, dropped
}
