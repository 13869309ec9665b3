package repository

import (
	"context"
	"database/sql"
)

// SessionRepo owns the write side of sessions: the available seat counter
// kept in step with sold_seats at checkout.
type SessionRepo struct {
	db *sql.DB
}

// NewSessionRepo returns a SessionRepo bound to db.
func NewSessionRepo(db *sql.DB) *SessionRepo { return &SessionRepo{db: db} }

// DB exposes the underlying sql.DB so callers can begin transactions that
// span several repositories.
func (r *SessionRepo) DB() *sql.DB {
	return r.db
}

// DecrementAvailableTx subtracts n seats from the session counter inside tx.
// The guard in the WHERE clause keeps available_seats from going negative;
// when it does not match, ErrSoldOut is returned and nothing changes.
func (r *SessionRepo) DecrementAvailableTx(ctx context.Context, tx *sql.Tx, sessionID uint64, n int) error {
	if n <= 0 {
		return nil
	}
	const q = `UPDATE sessions SET available_seats = available_seats - ?
	           WHERE id = ? AND available_seats >= ?`
	res, err := tx.ExecContext(ctx, q, n, sessionID, n)
	if err != nil {
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrSoldOut
	}
	return nil
}
