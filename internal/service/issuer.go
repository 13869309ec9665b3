package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/iliyamo/cinexplorer/internal/model"
	"github.com/iliyamo/cinexplorer/internal/repository"
	"github.com/iliyamo/cinexplorer/internal/seatmap"
)

// TicketIssuer persists a priced ticket atomically: the ticket and its
// lines, the sold seats and the session counter either all change or none
// do. On success t.ID is set.
type TicketIssuer interface {
	Issue(ctx context.Context, t *model.Ticket) error
}

// SQLIssuer issues tickets in a single MySQL transaction.
type SQLIssuer struct {
	db       *sql.DB
	tickets  *repository.TicketRepo
	sold     *repository.SoldSeatRepo
	sessions *repository.SessionRepo
}

// NewSQLIssuer builds the repositories it needs on top of db.
func NewSQLIssuer(db *sql.DB) *SQLIssuer {
	return &SQLIssuer{
		db:       db,
		tickets:  repository.NewTicketRepo(db),
		sold:     repository.NewSoldSeatRepo(db),
		sessions: repository.NewSessionRepo(db),
	}
}

// Issue returns repository.ErrSeatTaken when another order sold one of the
// seats first and repository.ErrSoldOut when the session counter would go
// negative. Both leave the database untouched.
func (i *SQLIssuer) Issue(ctx context.Context, t *model.Ticket) error {
	if len(t.Lines) == 0 {
		return fmt.Errorf("issue ticket: no lines")
	}
	tx, err := i.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := i.tickets.CreateTx(ctx, tx, t); err != nil {
		return err
	}
	ids := make([]seatmap.SeatID, len(t.Lines))
	for k, l := range t.Lines {
		ids[k] = l.Seat
	}
	// the sold_seats primary key is what stops two buyers getting one seat
	if err := i.sold.MarkSoldTx(ctx, tx, t.SessionID, t.ID, ids); err != nil {
		return err
	}
	if err := i.sessions.DecrementAvailableTx(ctx, tx, t.SessionID, len(ids)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
