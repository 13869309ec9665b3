// Package selection tracks the seats a shopper has put in their cart for one
// session, together with the ticket type chosen for each seat.
package selection

import (
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/cinexplorer/internal/pricing"
	"github.com/iliyamo/cinexplorer/internal/seatmap"
)

var (
	ErrSeatNotSelected       = errors.New("seat is not selected")
	ErrTicketTypeUnavailable = errors.New("ticket type is not available for sale")
	ErrEmptySelection        = errors.New("no seats selected")
	ErrIncompleteTicketTypes = errors.New("ticket type missing for selected seats")
)

// IncompleteTicketTypesError lists the selected seats that have no ticket
// type. It matches ErrIncompleteTicketTypes with errors.Is.
type IncompleteTicketTypesError struct {
	Missing []seatmap.SeatID
}

func (e *IncompleteTicketTypesError) Error() string {
	names := make([]string, len(e.Missing))
	for i, id := range e.Missing {
		names[i] = id.String()
	}
	return fmt.Sprintf("%s: %s", ErrIncompleteTicketTypes, strings.Join(names, ", "))
}

func (e *IncompleteTicketTypesError) Is(target error) bool { return target == ErrIncompleteTicketTypes }

// Tracker holds one shopper's selection for one session. The key set of the
// ticket-type mapping is always a subset of the selected seats. A Tracker is
// not safe for concurrent use.
type Tracker struct {
	sessionID   string
	selected    seatmap.SeatSet
	ticketTypes map[seatmap.SeatID]pricing.TicketType
}

// NewTracker returns an empty tracker for sessionID.
func NewTracker(sessionID string) *Tracker {
	return &Tracker{
		sessionID:   sessionID,
		selected:    seatmap.SeatSet{},
		ticketTypes: map[seatmap.SeatID]pricing.TicketType{},
	}
}

// SessionID returns the session the tracker belongs to.
func (t *Tracker) SessionID() string { return t.sessionID }

// Toggle adds seat to the selection with the default ticket type, or removes
// it (and its ticket type) if it was already selected. Occupied seats are
// ignored. The result reports whether the selection changed.
func (t *Tracker) Toggle(seat seatmap.Seat) bool {
	if seat.Status == seatmap.StatusOccupied {
		return false
	}
	if t.selected.Has(seat.ID) {
		delete(t.selected, seat.ID)
		delete(t.ticketTypes, seat.ID)
		return true
	}
	t.selected[seat.ID] = struct{}{}
	t.ticketTypes[seat.ID] = pricing.DefaultTicketType
	return true
}

// SetTicketType changes the ticket type of an already selected seat.
func (t *Tracker) SetTicketType(id seatmap.SeatID, typ pricing.TicketType) error {
	if !t.selected.Has(id) {
		return fmt.Errorf("%w: %s", ErrSeatNotSelected, id)
	}
	if !typ.Sellable() {
		return fmt.Errorf("%w: %q", ErrTicketTypeUnavailable, typ)
	}
	t.ticketTypes[id] = typ
	return nil
}

// Clear empties the selection and the ticket types.
func (t *Tracker) Clear() {
	t.selected = seatmap.SeatSet{}
	t.ticketTypes = map[seatmap.SeatID]pricing.TicketType{}
}

// IsSelected reports whether id is in the selection.
func (t *Tracker) IsSelected(id seatmap.SeatID) bool { return t.selected.Has(id) }

// Len is the number of selected seats.
func (t *Tracker) Len() int { return len(t.selected) }

// Selected returns the selected seats in row/number order.
func (t *Tracker) Selected() []seatmap.SeatID { return t.selected.Sorted() }

// SelectedSet returns a copy of the selection.
func (t *Tracker) SelectedSet() seatmap.SeatSet {
	out := make(seatmap.SeatSet, len(t.selected))
	for id := range t.selected {
		out[id] = struct{}{}
	}
	return out
}

// TicketTypes returns a copy of the seat to ticket type mapping.
func (t *Tracker) TicketTypes() map[seatmap.SeatID]pricing.TicketType {
	out := make(map[seatmap.SeatID]pricing.TicketType, len(t.ticketTypes))
	for id, typ := range t.ticketTypes {
		out[id] = typ
	}
	return out
}

// Validate checks that the cart can proceed to payment: at least one seat is
// selected and every selected seat has a ticket type.
func (t *Tracker) Validate() error {
	if len(t.selected) == 0 {
		return ErrEmptySelection
	}
	var missing []seatmap.SeatID
	for _, id := range t.selected.Sorted() {
		if _, ok := t.ticketTypes[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return &IncompleteTicketTypesError{Missing: missing}
	}
	return nil
}

// Total prices the current selection from base. Seats without a ticket type
// are priced as full until Validate is called.
func (t *Tracker) Total(base pricing.Cents) (pricing.Cents, error) {
	sel := make(map[seatmap.SeatID]pricing.TicketType, len(t.selected))
	for id := range t.selected {
		typ, ok := t.ticketTypes[id]
		if !ok {
			typ = pricing.DefaultTicketType
		}
		sel[id] = typ
	}
	return pricing.OrderTotal(base, sel)
}
