package router

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinexplorer/internal/cart"
	"github.com/iliyamo/cinexplorer/internal/catalog"
	"github.com/iliyamo/cinexplorer/internal/config"
	"github.com/iliyamo/cinexplorer/internal/handler"
	"github.com/iliyamo/cinexplorer/internal/model"
	"github.com/iliyamo/cinexplorer/internal/realtime"
	"github.com/iliyamo/cinexplorer/internal/repository"
	"github.com/iliyamo/cinexplorer/internal/seatmap"
	"github.com/iliyamo/cinexplorer/internal/service"
	"github.com/iliyamo/cinexplorer/internal/utils"
)

const secret = "router-secret"

const seed = `
movies:
  - { id: 1, title: "Oppenheimer", duration_min: 180, classification: "16 anos", genres: [Drama] }
cinemas:
  - id: 7
    name: "Plaza"
    rating: 4.7
    location: { lat: -22.9999, lng: -43.3652 }
  - id: 9
    name: "Millenium"
    rating: 4.8
    location: { lat: -23.6229, lng: -46.6973 }
rooms:
  - { id: 3, cinema_id: 7, name: "Sala 3", type: "2D", rows: 5, seats_per_row: 10, total_seats: 50 }
sessions:
  - { id: 10, movie_id: 1, cinema_id: 7, room_id: 3, date: "2024-05-18", time: "14:00", price_cents: 2500, available_seats: 50, total_seats: 50 }
`

type memSold struct {
	mu   sync.Mutex
	sold seatmap.SeatSet
}

func (m *memSold) ListBySession(_ context.Context, sessionID uint64) (seatmap.SeatSet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := seatmap.SeatSet{}
	for id := range m.sold {
		out[id] = struct{}{}
	}
	return out, nil
}

func (m *memSold) mark(ids ...seatmap.SeatID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range ids {
		m.sold[id] = struct{}{}
	}
}

type memIssuer struct {
	sold *memSold
	mu   sync.Mutex
	err  error
	got  []model.Ticket
}

func (m *memIssuer) Issue(_ context.Context, t *model.Ticket) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	t.ID = uint64(len(m.got) + 1)
	for _, l := range t.Lines {
		m.sold.mark(l.Seat)
	}
	m.got = append(m.got, *t)
	return nil
}

func (m *memIssuer) ListByUser(_ context.Context, userID uint64) ([]repository.TicketDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []repository.TicketDetail{}
	for _, t := range m.got {
		if t.UserID == userID {
			out = append(out, repository.TicketDetail{Ticket: t, MovieTitle: "Oppenheimer"})
		}
	}
	return out, nil
}

type env struct {
	srv    *httptest.Server
	hub    *realtime.Hub
	sold   *memSold
	issuer *memIssuer
}

func newEnv(t *testing.T, ready map[string]handler.Pinger) *env {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	p, err := catalog.Parse([]byte(seed))
	require.NoError(t, err)

	sold := &memSold{sold: seatmap.SeatSet{}}
	issuer := &memIssuer{sold: sold}
	hub := realtime.NewHub(logger)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	tickets := service.NewTicketService(service.Deps{
		Catalog: p,
		Sold:    sold,
		Carts:   cart.NewMemoryStore(),
		Issuer:  issuer,
		History: issuer,
		Live:    hub,
		Logger:  logger,
	})
	e := New(Deps{
		Auth:      handler.NewAuthHandler(config.Config{JWTSecret: secret}, nil, nil),
		Public:    &handler.PublicHandler{Finder: service.NewCinemaFinder(p, sold), Tickets: tickets, Hub: hub, Logger: logger},
		Customer:  &handler.CustomerHandler{Tickets: tickets, Logger: logger},
		JWTSecret: secret,
		Ready:     ready,
		Logger:    logger,
	})
	srv := httptest.NewServer(e)
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return &env{srv: srv, hub: hub, sold: sold, issuer: issuer}
}

func token(t *testing.T, uid uint64) string {
	t.Helper()
	tok, err := utils.NewAccessToken(secret, uid, model.RoleUser, 5)
	require.NoError(t, err)
	return tok.Token
}

// call sends a JSON request and decodes the JSON response into a map.
func (e *env) call(t *testing.T, method, path, tok string, body any) (int, map[string]any) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		bs, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(bs)
	}
	req, err := http.NewRequest(method, e.srv.URL+path, rd)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if tok != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+tok)
	}
	res, err := e.srv.Client().Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	raw, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	out := map[string]any{}
	if len(raw) > 0 && strings.HasPrefix(res.Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return res.StatusCode, out
}

func TestProbes(t *testing.T) {
	e := newEnv(t, map[string]handler.Pinger{
		"db":    handler.PingFunc(func(context.Context) error { return nil }),
		"redis": handler.PingFunc(func(context.Context) error { return errors.New("connection refused") }),
	})

	res, err := e.srv.Client().Get(e.srv.URL + "/healthz")
	require.NoError(t, err)
	body, _ := io.ReadAll(res.Body)
	res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "ok", string(body))

	code, out := e.call(t, http.MethodGet, "/readyz", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, map[string]any{"db": "ok", "redis": "connection refused"}, out["checks"])
}

func TestBrowse(t *testing.T) {
	e := newEnv(t, nil)

	// Copacabana: Plaza in Rio is closer than Millenium in Sao Paulo
	code, out := e.call(t, http.MethodGet, "/v1/cinemas?lat=-22.9711&lng=-43.1822", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, out["ranked"])
	items := out["items"].([]any)
	require.Len(t, items, 2)
	first := items[0].(map[string]any)
	assert.Equal(t, "Plaza", first["name"])
	assert.Less(t, first["distance_km"].(float64), 30.0)

	code, out = e.call(t, http.MethodGet, "/v1/cinemas", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, out["ranked"])
	assert.Equal(t, "Millenium", out["items"].([]any)[0].(map[string]any)["name"])

	code, _ = e.call(t, http.MethodGet, "/v1/cinemas?lat=-22.9", "", nil)
	assert.Equal(t, http.StatusBadRequest, code)
	code, _ = e.call(t, http.MethodGet, "/v1/cinemas?sort=price", "", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, out = e.call(t, http.MethodGet, "/v1/cinemas/7/sessions", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, out["items"], 1)
	code, out = e.call(t, http.MethodGet, "/v1/cinemas/404/sessions", "", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "cinema not found", out["error"])

	code, out = e.call(t, http.MethodGet, "/v1/sessions/10/seats", "", nil)
	require.Equal(t, http.StatusOK, code)
	layout := out["layout"].(map[string]any)
	assert.Len(t, layout["seats"], 50)
	assert.EqualValues(t, 50, out["session"].(map[string]any)["available_seats"])

	code, _ = e.call(t, http.MethodGet, "/v1/sessions/x/seats", "", nil)
	assert.Equal(t, http.StatusBadRequest, code)
	code, out = e.call(t, http.MethodGet, "/v1/sessions/11", "", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "session not found", out["error"])

	code, out = e.call(t, http.MethodGet, "/v1/nowhere", "", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.NotEmpty(t, out["error"])
}

func TestCustomerRoutesNeedToken(t *testing.T) {
	e := newEnv(t, nil)
	for _, r := range []struct{ method, path string }{
		{http.MethodGet, "/v1/sessions/10/cart"},
		{http.MethodPost, "/v1/sessions/10/cart/toggle"},
		{http.MethodGet, "/v1/sessions/10/quote"},
		{http.MethodPost, "/v1/sessions/10/checkout"},
		{http.MethodGet, "/v1/my-tickets"},
		{http.MethodGet, "/v1/me"},
	} {
		code, out := e.call(t, r.method, r.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, code, r.path)
		assert.NotEmpty(t, out["error"], r.path)
	}
}

func TestShoppingFlow(t *testing.T) {
	e := newEnv(t, nil)
	alice := token(t, 1)

	code, out := e.call(t, http.MethodPost, "/v1/sessions/10/cart/toggle", alice, echo.Map{"seat": "B3"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, out["changed"])
	code, out = e.call(t, http.MethodPost, "/v1/sessions/10/cart/toggle", alice, echo.Map{"seat": "B4"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "R$ 50,00", out["cart"].(map[string]any)["total"])

	code, _ = e.call(t, http.MethodPost, "/v1/sessions/10/cart/toggle", alice, echo.Map{"seat": "??"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, out = e.call(t, http.MethodPut, "/v1/sessions/10/cart/ticket-types", alice,
		echo.Map{"ticket_types": echo.Map{"B4": "meia"}})
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 3750, out["total_price_cents"])
	assert.Equal(t, map[string]any{"B3": "inteira", "B4": "meia"}, out["ticket_types"])

	code, _ = e.call(t, http.MethodPut, "/v1/sessions/10/cart/ticket-types", alice,
		echo.Map{"ticket_types": echo.Map{"B3": "meia", "B4": "promocional"}})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	code, _ = e.call(t, http.MethodPut, "/v1/sessions/10/cart/ticket-types", alice,
		echo.Map{"ticket_types": echo.Map{"E1": "meia"}})
	assert.Equal(t, http.StatusUnprocessableEntity, code)

	// rejected updates leave the cart as it was
	code, out = e.call(t, http.MethodGet, "/v1/sessions/10/cart", alice, nil)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 3750, out["total_price_cents"])

	code, out = e.call(t, http.MethodGet, "/v1/sessions/10/quote?installments=4", alice, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []any{938.0, 938.0, 937.0, 937.0}, out["split"])
	assert.EqualValues(t, 3750, out["quote"].(map[string]any)["total_cents"])
	code, _ = e.call(t, http.MethodGet, "/v1/sessions/10/quote?installments=9", alice, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, code)

	code, _ = e.call(t, http.MethodPost, "/v1/sessions/10/checkout", alice, echo.Map{"payment_method": "debit", "installments": 2})
	assert.Equal(t, http.StatusBadRequest, code)

	code, out = e.call(t, http.MethodPost, "/v1/sessions/10/checkout", alice, echo.Map{"payment_method": "credit", "installments": 3})
	require.Equal(t, http.StatusCreated, code)
	assert.NotEmpty(t, out["code"])
	assert.EqualValues(t, 3750, out["total_cents"])
	assert.Len(t, out["lines"], 2)

	code, out = e.call(t, http.MethodGet, "/v1/sessions/10/cart", alice, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, out["selected_seats"])
	code, out = e.call(t, http.MethodPost, "/v1/sessions/10/checkout", alice, echo.Map{"payment_method": "pix"})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, "no seats selected", out["error"])

	code, out = e.call(t, http.MethodGet, "/v1/sessions/10", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 48, out["session"].(map[string]any)["available_seats"])
	code, out = e.call(t, http.MethodGet, "/v1/cinemas/7/sessions", "", nil)
	require.Equal(t, http.StatusOK, code)
	items := out["items"].([]any)
	require.Len(t, items, 1)
	assert.EqualValues(t, 48, items[0].(map[string]any)["available_seats"])

	// another shopper cannot pick a sold seat
	bob := token(t, 2)
	code, out = e.call(t, http.MethodPost, "/v1/sessions/10/cart/toggle", bob, echo.Map{"seat": "B3"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, out["changed"])

	code, out = e.call(t, http.MethodGet, "/v1/my-tickets", alice, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, out["items"], 1)
	code, out = e.call(t, http.MethodGet, "/v1/my-tickets", bob, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, out["items"])
}

func TestCheckoutConflicts(t *testing.T) {
	e := newEnv(t, nil)
	bob := token(t, 2)

	code, _ := e.call(t, http.MethodPost, "/v1/sessions/10/cart/toggle", bob, echo.Map{"seat": "A1"})
	require.Equal(t, http.StatusOK, code)
	code, _ = e.call(t, http.MethodPost, "/v1/sessions/10/cart/toggle", bob, echo.Map{"seat": "A2"})
	require.Equal(t, http.StatusOK, code)

	e.sold.mark(seatmap.SeatID{Row: "A", Number: 1})
	code, out := e.call(t, http.MethodPost, "/v1/sessions/10/checkout", bob, echo.Map{"payment_method": "pix"})
	require.Equal(t, http.StatusConflict, code)
	assert.Equal(t, []any{"A1"}, out["unavailable"])

	// the cart now holds only A2; a lost race at commit time is still a 409
	e.issuer.mu.Lock()
	e.issuer.err = repository.ErrSeatTaken
	e.issuer.mu.Unlock()
	code, out = e.call(t, http.MethodPost, "/v1/sessions/10/checkout", bob, echo.Map{"payment_method": "pix"})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "seat already sold", out["error"])

	code, out = e.call(t, http.MethodGet, "/v1/sessions/10/cart", bob, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []any{"A2"}, out["selected_seats"])

	code, _ = e.call(t, http.MethodDelete, "/v1/sessions/10/cart", bob, nil)
	assert.Equal(t, http.StatusNoContent, code)
}

func TestLiveFeedReceivesSales(t *testing.T) {
	e := newEnv(t, nil)

	code, _ := e.call(t, http.MethodGet, "/v1/sessions/99/live", "", nil)
	assert.Equal(t, http.StatusNotFound, code)

	url := "ws" + strings.TrimPrefix(e.srv.URL, "http") + "/v1/sessions/10/live"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return e.hub.Subscribers(10) == 1 }, 2*time.Second, 10*time.Millisecond)

	alice := token(t, 1)
	code, _ = e.call(t, http.MethodPost, "/v1/sessions/10/cart/toggle", alice, echo.Map{"seat": "C5"})
	require.Equal(t, http.StatusOK, code)
	code, _ = e.call(t, http.MethodPost, "/v1/sessions/10/checkout", alice, echo.Map{"payment_method": "pix"})
	require.Equal(t, http.StatusCreated, code)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg struct {
		Type      string   `json:"type"`
		SessionID uint64   `json:"session_id"`
		Payload   []string `json:"payload"`
	}
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, realtime.TypeSeatsSold, msg.Type)
	assert.Equal(t, uint64(10), msg.SessionID)
	assert.Equal(t, []string{"C5"}, msg.Payload)
}
