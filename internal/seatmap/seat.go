// Package seatmap builds the seat layout of a session's room.
//
// A seat is identified by its row letter and 1-based number within the row
// (for example "B4"). Identities are unique within one session. The layout
// of a room is a pure function of its geometry and the set of seats that
// were already sold, so the same inputs always yield the same map.
package seatmap

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// MaxRows is the number of row letters available (A..Z).
const MaxRows = 26

// Status is the availability of a seat in a session.
type Status string

const (
	StatusAvailable Status = "available"
	StatusOccupied  Status = "occupied"
	StatusSelected  Status = "selected"
)

// Type is the comfort class of a seat.
type Type string

const (
	TypeStandard   Type = "standard"
	TypePremium    Type = "premium"
	TypeAccessible Type = "accessible" // reserved for manual curation
)

// ErrInvalidSeatID is returned by ParseSeatID for malformed identities.
var ErrInvalidSeatID = errors.New("invalid seat id")

// SeatID identifies a seat by row letter and 1-based number. It encodes
// to JSON as its string form so it can key JSON objects.
type SeatID struct {
	Row    string
	Number int
}

// String renders the identity as row letter followed by number, e.g. "B4".
func (id SeatID) String() string { return id.Row + strconv.Itoa(id.Number) }

// MarshalText implements encoding.TextMarshaler.
func (id SeatID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

// UnmarshalText parses the "B4" form.
func (id *SeatID) UnmarshalText(b []byte) error {
	parsed, err := ParseSeatID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// Less orders identities row first, then number.
func (id SeatID) Less(other SeatID) bool {
	if id.Row != other.Row {
		return id.Row < other.Row
	}
	return id.Number < other.Number
}

// ParseSeatID parses identities like "B4" or "b 12". The row must be a
// single letter A..Z and the number a positive integer.
func ParseSeatID(s string) (SeatID, error) {
	s = strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), " ", ""))
	if len(s) < 2 || s[0] < 'A' || s[0] > 'Z' {
		return SeatID{}, fmt.Errorf("%w: %q", ErrInvalidSeatID, s)
	}
	for i := 1; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return SeatID{}, fmt.Errorf("%w: %q", ErrInvalidSeatID, s)
		}
	}
	n, err := strconv.Atoi(s[1:])
	if err != nil || n < 1 {
		return SeatID{}, fmt.Errorf("%w: %q", ErrInvalidSeatID, s)
	}
	return SeatID{Row: s[:1], Number: n}, nil
}

// RowLabel returns the letter for a 0-based row index, or "" when the
// index is outside A..Z.
func RowLabel(i int) string {
	if i < 0 || i >= MaxRows {
		return ""
	}
	return string(rune('A' + i))
}

// RowIndex is the inverse of RowLabel.
func RowIndex(label string) (int, bool) {
	if len(label) != 1 {
		return -1, false
	}
	ch := label[0]
	if ch >= 'a' && ch <= 'z' {
		ch -= 'a' - 'A'
	}
	if ch < 'A' || ch > 'Z' {
		return -1, false
	}
	return int(ch - 'A'), true
}

// Seat is one position in a session's seat map.
type Seat struct {
	ID     SeatID `json:"id"`
	Status Status `json:"status"`
	Type   Type   `json:"type"`
}

// Key is the session-scoped seat key used by the storefront, e.g. "7-B4".
func (s Seat) Key(sessionID string) string { return sessionID + "-" + s.ID.String() }

// SeatSet is a set of seat identities.
type SeatSet map[SeatID]struct{}

// NewSeatSet builds a set from the given identities.
func NewSeatSet(ids ...SeatID) SeatSet {
	set := make(SeatSet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// Has reports whether id is in the set. A nil set is empty.
func (s SeatSet) Has(id SeatID) bool {
	_, ok := s[id]
	return ok
}

// Sorted returns the identities in row/number order.
func (s SeatSet) Sorted() []SeatID {
	out := make([]SeatID, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	SortIDs(out)
	return out
}

// SortIDs sorts identities in place, row first then number.
func SortIDs(ids []SeatID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i].Less(ids[j]) })
}
