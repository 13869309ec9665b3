package repository // repository for sold seat persistence

import (
	"context"      // context for managing deadlines
	"database/sql" // sql provides DB interfaces
	"fmt"
	"strings"

	"github.com/iliyamo/cinexplorer/internal/seatmap"
)

// SoldSeatRepo records which seats of a session have been sold. A seat map
// is generated on every read from this set, so there is no per-seat status
// row to keep in sync.
type SoldSeatRepo struct {
	db *sql.DB
}

// NewSoldSeatRepo constructs a SoldSeatRepo given a DB handle.
func NewSoldSeatRepo(db *sql.DB) *SoldSeatRepo {
	return &SoldSeatRepo{db: db}
}

// ListBySession returns the sold seats of a session. A session with no
// sales yields an empty, non-nil set.
func (r *SoldSeatRepo) ListBySession(ctx context.Context, sessionID uint64) (seatmap.SeatSet, error) {
	const q = `SELECT row_label, seat_number FROM sold_seats WHERE session_id = ?`
	rows, err := r.db.QueryContext(ctx, q, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := seatmap.SeatSet{}
	for rows.Next() {
		var id seatmap.SeatID
		if err := rows.Scan(&id.Row, &id.Number); err != nil {
			return nil, err
		}
		out[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// MarkSoldTx inserts one sold_seats row per seat in a single statement
// within tx. The primary key (session_id, row_label, seat_number) rejects
// a seat sold twice; that case is reported as ErrSeatTaken and the caller
// must roll back.
func (r *SoldSeatRepo) MarkSoldTx(ctx context.Context, tx *sql.Tx, sessionID, ticketID uint64, ids []seatmap.SeatID) error {
	if len(ids) == 0 {
		return nil
	}
	var b strings.Builder
	b.WriteString("INSERT INTO sold_seats (session_id, row_label, seat_number, ticket_id) VALUES ")
	args := make([]any, 0, len(ids)*4)
	for i, id := range ids {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString("(?, ?, ?, ?)")
		args = append(args, sessionID, id.Row, id.Number, ticketID)
	}
	if _, err := tx.ExecContext(ctx, b.String(), args...); err != nil {
		if isDuplicate(err) {
			return fmt.Errorf("%w: session %d", ErrSeatTaken, sessionID)
		}
		return err
	}
	return nil
}
