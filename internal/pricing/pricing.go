package pricing

import (
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/cinexplorer/internal/seatmap"
)

var (
	ErrUnpricedTicketType = errors.New("ticket type has no price rule")
	ErrUnknownTicketType  = errors.New("unknown ticket type")
	ErrNegativePrice      = errors.New("base price must not be negative")
)

// TicketType is the discount category applied to a single seat.
type TicketType string

const (
	Full        TicketType = "inteira"
	Half        TicketType = "meia"
	Promotional TicketType = "promocional" // reserved, not sold yet
)

// DefaultTicketType is assigned to a seat when it is first selected.
const DefaultTicketType = Full

// ParseTicketType accepts the storefront names and their English aliases.
func ParseTicketType(s string) (TicketType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "inteira", "full":
		return Full, nil
	case "meia", "half":
		return Half, nil
	case "promocional", "promotional":
		return Promotional, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTicketType, s)
}

// Sellable reports whether the type has a price rule and can be put in a cart.
func (t TicketType) Sellable() bool { return t == Full || t == Half }

// LineTotal prices one seat. Half price rounds half a cent up.
func LineTotal(base Cents, t TicketType) (Cents, error) {
	if base < 0 {
		return 0, ErrNegativePrice
	}
	switch t {
	case Full:
		return base, nil
	case Half:
		return (base + 1) / 2, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnpricedTicketType, t)
}

// Line is the priced entry of one seat in an order.
type Line struct {
	Seat       seatmap.SeatID `json:"seat"`
	TicketType TicketType     `json:"ticket_type"`
	PriceCents Cents          `json:"price_cents"`
}

// Lines prices every seat of selections independently from base, in seat
// order. Each line is derived from its own ticket type, never from the
// aggregate.
func Lines(base Cents, selections map[seatmap.SeatID]TicketType) ([]Line, error) {
	ids := make([]seatmap.SeatID, 0, len(selections))
	for id := range selections {
		ids = append(ids, id)
	}
	seatmap.SortIDs(ids)

	lines := make([]Line, 0, len(ids))
	for _, id := range ids {
		t := selections[id]
		price, err := LineTotal(base, t)
		if err != nil {
			return nil, fmt.Errorf("seat %s: %w", id, err)
		}
		lines = append(lines, Line{Seat: id, TicketType: t, PriceCents: price})
	}
	return lines, nil
}

// Sum adds the line prices.
func Sum(lines []Line) Cents {
	var total Cents
	for _, l := range lines {
		total += l.PriceCents
	}
	return total
}

// OrderTotal is the sum of every line of selections. An empty selection
// costs zero.
func OrderTotal(base Cents, selections map[seatmap.SeatID]TicketType) (Cents, error) {
	lines, err := Lines(base, selections)
	if err != nil {
		return 0, err
	}
	return Sum(lines), nil
}
