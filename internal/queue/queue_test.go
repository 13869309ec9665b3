package queue

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func event(id uint64) TicketsIssuedEvent {
	return TicketsIssuedEvent{
		TicketID:   id,
		Code:       "c0ffee",
		UserID:     2,
		SessionID:  5,
		CinemaName: "CineXplorer Plaza",
		MovieTitle: "Oppenheimer",
		Seats: []SeatLine{
			{Seat: "B3", TicketType: "inteira", PriceCents: 2500},
			{Seat: "B4", TicketType: "meia", PriceCents: 1250},
		},
		TotalCents:    3750,
		PaymentMethod: "pix",
		Installments:  1,
		IssuedAt:      "2024-05-17T12:00:00Z",
	}
}

func TestFileSinkAppendsJSONLines(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "nested", "tickets.log")
	sink := NewFileSink(path)
	ctx := context.Background()

	require.NoError(t, sink.Write(ctx, event(1)))
	require.NoError(t, sink.Write(ctx, event(2)))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	var got []TicketsIssuedEvent
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var ev TicketsIssuedEvent
		require.NoError(t, json.Unmarshal(sc.Bytes(), &ev))
		got = append(got, ev)
	}
	require.Len(t, got, 2)
	assert.Equal(t, event(1), got[0])
	assert.Equal(t, uint64(2), got[1].TicketID)
}

type memorySink struct{ events []TicketsIssuedEvent }

func (m *memorySink) Write(_ context.Context, ev TicketsIssuedEvent) error {
	m.events = append(m.events, ev)
	return nil
}

func TestHandleMessage(t *testing.T) {
	t.Parallel()
	sink := &memorySink{}
	body, err := json.Marshal(event(9))
	require.NoError(t, err)

	require.NoError(t, HandleMessage(context.Background(), sink, body))
	require.Len(t, sink.events, 1)
	assert.Equal(t, int64(3750), sink.events[0].TotalCents)

	assert.Error(t, HandleMessage(context.Background(), sink, []byte("{")))
	assert.Error(t, HandleMessage(context.Background(), sink, []byte(`{"code":"x"}`)))
	assert.Len(t, sink.events, 1)
}

type recordingExec struct {
	sql  []string
	args [][]any
}

func (r *recordingExec) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	r.sql = append(r.sql, sql)
	r.args = append(r.args, args)
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func TestPostgresSink(t *testing.T) {
	t.Parallel()
	db := &recordingExec{}
	sink := NewPostgresSink(db)
	ctx := context.Background()

	require.NoError(t, sink.EnsureSchema(ctx))
	require.NoError(t, sink.Write(ctx, event(7)))
	require.Len(t, db.sql, 2)
	assert.Contains(t, db.sql[0], "CREATE TABLE IF NOT EXISTS ticket_log")
	assert.Contains(t, db.sql[1], "ON CONFLICT (ticket_id) DO NOTHING")
	args := db.args[1]
	require.Len(t, args, 11)
	assert.Equal(t, uint64(7), args[0])
	assert.JSONEq(t, `[{"seat":"B3","ticket_type":"inteira","price_cents":2500},{"seat":"B4","ticket_type":"meia","price_cents":1250}]`,
		string(args[6].([]byte)))

	bad := event(8)
	bad.IssuedAt = "yesterday"
	assert.Error(t, sink.Write(ctx, bad))
}
