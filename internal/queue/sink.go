package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

// Sink records a consumed event.
type Sink interface {
	Write(ctx context.Context, ev TicketsIssuedEvent) error
}

// FileSink appends each event as one JSON line to Path, creating the parent
// directory on first use.
type FileSink struct {
	Path string
	mu   sync.Mutex
}

// DefaultLogPath is where FileSink writes when no analytics database is set.
const DefaultLogPath = "logs/tickets.log"

func NewFileSink(path string) *FileSink {
	if path == "" {
		path = DefaultLogPath
	}
	return &FileSink{Path: path}
}

func (f *FileSink) Write(_ context.Context, ev TicketsIssuedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	file, err := os.OpenFile(f.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()
	if err := json.NewEncoder(file).Encode(ev); err != nil {
		return fmt.Errorf("write log entry: %w", err)
	}
	return nil
}

// execer is the part of *pgxpool.Pool the Postgres sink needs.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresSink stores events in the ticket_log table of the analytics
// database. The seat lines are kept as JSONB.
type PostgresSink struct {
	Pool execer
}

func NewPostgresSink(pool execer) *PostgresSink {
	return &PostgresSink{Pool: pool}
}

const ticketLogSchema = `CREATE TABLE IF NOT EXISTS ticket_log (
	ticket_id      BIGINT PRIMARY KEY,
	code           TEXT NOT NULL,
	user_id        BIGINT NOT NULL,
	session_id     BIGINT NOT NULL,
	cinema_name    TEXT NOT NULL,
	movie_title    TEXT NOT NULL,
	seats          JSONB NOT NULL,
	total_cents    BIGINT NOT NULL,
	payment_method TEXT NOT NULL,
	installments   INT NOT NULL,
	issued_at      TIMESTAMPTZ NOT NULL
)`

// EnsureSchema creates ticket_log if it does not exist.
func (p *PostgresSink) EnsureSchema(ctx context.Context) error {
	if _, err := p.Pool.Exec(ctx, ticketLogSchema); err != nil {
		return fmt.Errorf("create ticket_log: %w", err)
	}
	return nil
}

// Write inserts the event. A redelivered event with the same ticket_id is
// ignored.
func (p *PostgresSink) Write(ctx context.Context, ev TicketsIssuedEvent) error {
	seats, err := json.Marshal(ev.Seats)
	if err != nil {
		return err
	}
	issued, err := time.Parse(time.RFC3339, ev.IssuedAt)
	if err != nil {
		return fmt.Errorf("issued_at: %w", err)
	}
	_, err = p.Pool.Exec(ctx, `
		INSERT INTO ticket_log (ticket_id, code, user_id, session_id, cinema_name, movie_title, seats, total_cents, payment_method, installments, issued_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (ticket_id) DO NOTHING
	`,
		ev.TicketID,
		ev.Code,
		ev.UserID,
		ev.SessionID,
		ev.CinemaName,
		ev.MovieTitle,
		seats,
		ev.TotalCents,
		ev.PaymentMethod,
		ev.Installments,
		issued,
	)
	if err != nil {
		return fmt.Errorf("insert ticket log: %w", err)
	}
	return nil
}
