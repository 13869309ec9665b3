// Package queue defines message payloads exchanged over the message broker
// and the consumer that records them.
package queue

// TicketsIssuedQueue is the durable queue checkout publishes to.
const TicketsIssuedQueue = "tickets.issued"

// SeatLine is one purchased seat in an event.
type SeatLine struct {
	Seat       string `json:"seat"`
	TicketType string `json:"ticket_type"`
	PriceCents int64  `json:"price_cents"`
}

// TicketsIssuedEvent is published after a checkout commits. It carries
// enough for downstream consumers to log, notify, or feed analytics without
// querying the primary database.
type TicketsIssuedEvent struct {
	TicketID      uint64     `json:"ticket_id"`
	Code          string     `json:"code"`
	UserID        uint64     `json:"user_id"`
	SessionID     uint64     `json:"session_id"`
	CinemaID      uint64     `json:"cinema_id"`
	CinemaName    string     `json:"cinema_name"`
	RoomName      string     `json:"room_name"`
	MovieTitle    string     `json:"movie_title"`
	Date          string     `json:"date"`
	Time          string     `json:"time"`
	Seats         []SeatLine `json:"seats"`
	TotalCents    int64      `json:"total_cents"`
	PaymentMethod string     `json:"payment_method"`
	Installments  int        `json:"installments"`
	IssuedAt      string     `json:"issued_at"`
}
