package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/iliyamo/cinexplorer/internal/model"
	"github.com/iliyamo/cinexplorer/internal/pricing"
)

// TicketRepo stores completed checkouts. A ticket groups every seat bought
// in one order; each seat is a row in ticket_lines with its own type and
// price.
type TicketRepo struct {
	db *sql.DB
}

// NewTicketRepo returns a new TicketRepo bound to the given database.
func NewTicketRepo(db *sql.DB) *TicketRepo { return &TicketRepo{db: db} }

// CreateTx inserts the ticket header and its lines within tx and populates
// t.ID. The caller must commit or roll back.
func (r *TicketRepo) CreateTx(ctx context.Context, tx *sql.Tx, t *model.Ticket) error {
	const q = `INSERT INTO tickets (code, user_id, session_id, total_cents, payment_method, installments, purchased_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, t.Code, t.UserID, t.SessionID, t.TotalCents, t.PaymentMethod, t.Installments, t.PurchasedAt)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	return r.createLinesTx(ctx, tx, t.ID, t.Lines)
}

// createLinesTx inserts all lines in a single statement. Passing no lines
// has no effect.
func (r *TicketRepo) createLinesTx(ctx context.Context, tx *sql.Tx, ticketID uint64, lines []pricing.Line) error {
	if len(lines) == 0 {
		return nil
	}
	var b strings.Builder
	b.WriteString("INSERT INTO ticket_lines (ticket_id, row_label, seat_number, ticket_type, price_cents) VALUES ")
	args := make([]any, 0, len(lines)*5)
	for i, l := range lines {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString("(?, ?, ?, ?, ?)")
		args = append(args, ticketID, l.Seat.Row, l.Seat.Number, string(l.TicketType), l.PriceCents)
	}
	_, err := tx.ExecContext(ctx, b.String(), args...)
	return err
}

// TicketDetail is a ticket joined with what the shopper needs to find the
// screening: movie, cinema, room and schedule.
type TicketDetail struct {
	model.Ticket
	MovieTitle string `json:"movie_title"`
	CinemaName string `json:"cinema_name"`
	RoomName   string `json:"room_name"`
	Date       string `json:"date"`
	Time       string `json:"time"`
}

// ListByUser returns the user's tickets, newest first, each with its lines
// in seat order. A user without purchases gets an empty slice.
func (r *TicketRepo) ListByUser(ctx context.Context, userID uint64) ([]TicketDetail, error) {
	const q = `SELECT t.id, t.code, t.user_id, t.session_id, t.total_cents, t.payment_method, t.installments, t.purchased_at,
	                  m.title, c.name, rm.name,
	                  DATE_FORMAT(s.show_date, '%Y-%m-%d'), TIME_FORMAT(s.show_time, '%H:%i')
	           FROM tickets t
	           JOIN sessions s ON s.id = t.session_id
	           JOIN movies m ON m.id = s.movie_id
	           JOIN cinemas c ON c.id = s.cinema_id
	           JOIN rooms rm ON rm.id = s.room_id
	           WHERE t.user_id = ?
	           ORDER BY t.purchased_at DESC, t.id DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []TicketDetail{}
	index := map[uint64]int{}
	for rows.Next() {
		var d TicketDetail
		var purchased time.Time
		if err := rows.Scan(&d.ID, &d.Code, &d.UserID, &d.SessionID, &d.TotalCents, &d.PaymentMethod, &d.Installments, &purchased,
			&d.MovieTitle, &d.CinemaName, &d.RoomName, &d.Date, &d.Time); err != nil {
			return nil, err
		}
		d.PurchasedAt = purchased.UTC()
		d.Lines = []pricing.Line{}
		index[d.ID] = len(out)
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}

	// load the lines of every ticket in one round trip
	placeholders := make([]string, 0, len(out))
	args := make([]any, 0, len(out))
	for _, d := range out {
		placeholders = append(placeholders, "?")
		args = append(args, d.ID)
	}
	lq := `SELECT ticket_id, row_label, seat_number, ticket_type, price_cents FROM ticket_lines
	       WHERE ticket_id IN (` + strings.Join(placeholders, ",") + `)
	       ORDER BY ticket_id, row_label, seat_number`
	lrows, err := r.db.QueryContext(ctx, lq, args...)
	if err != nil {
		return nil, err
	}
	defer lrows.Close()
	for lrows.Next() {
		var (
			ticketID uint64
			l        pricing.Line
			typ      string
		)
		if err := lrows.Scan(&ticketID, &l.Seat.Row, &l.Seat.Number, &typ, &l.PriceCents); err != nil {
			return nil, err
		}
		l.TicketType = pricing.TicketType(typ)
		if i, ok := index[ticketID]; ok {
			out[i].Lines = append(out[i].Lines, l)
		}
	}
	if err := lrows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
