// Package service composes the catalog, seat inventory, cart storage and
// pricing into the storefront operations: seat maps, carts, quotes and
// checkout.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/cinexplorer/internal/cart"
	"github.com/iliyamo/cinexplorer/internal/catalog"
	"github.com/iliyamo/cinexplorer/internal/model"
	"github.com/iliyamo/cinexplorer/internal/pricing"
	"github.com/iliyamo/cinexplorer/internal/queue"
	"github.com/iliyamo/cinexplorer/internal/realtime"
	"github.com/iliyamo/cinexplorer/internal/repository"
	"github.com/iliyamo/cinexplorer/internal/seatmap"
	"github.com/iliyamo/cinexplorer/internal/selection"
)

var (
	ErrUnknownSeat      = errors.New("seat does not exist in this room")
	ErrInvalidPayment   = errors.New("invalid payment")
	ErrSeatsUnavailable = errors.New("selected seats are no longer available")
)

// SeatsUnavailableError lists cart seats that were sold after they were
// selected. They have already been removed from the stored cart.
type SeatsUnavailableError struct {
	Seats []seatmap.SeatID
}

func (e *SeatsUnavailableError) Error() string {
	names := make([]string, len(e.Seats))
	for i, id := range e.Seats {
		names[i] = id.String()
	}
	return fmt.Sprintf("%s: %s", ErrSeatsUnavailable, strings.Join(names, ", "))
}

func (e *SeatsUnavailableError) Is(target error) bool { return target == ErrSeatsUnavailable }

// SoldSeats reads the seats already sold for a session.
type SoldSeats interface {
	ListBySession(ctx context.Context, sessionID uint64) (seatmap.SeatSet, error)
}

// TicketLister reads a user's purchase history.
type TicketLister interface {
	ListByUser(ctx context.Context, userID uint64) ([]repository.TicketDetail, error)
}

// Broadcaster pushes live updates to clients watching a session.
type Broadcaster interface {
	Publish(sessionID uint64, m realtime.Message)
}

// DefaultPublishTimeout bounds a tickets.issued publish, which runs after
// Checkout has returned.
const DefaultPublishTimeout = 5 * time.Second

// Deps wires a TicketService. Publisher and Live are optional.
type Deps struct {
	Catalog   catalog.Provider
	Sold      SoldSeats
	Carts     cart.Store
	Issuer    TicketIssuer
	History   TicketLister
	Publisher Publisher
	Live      Broadcaster
	Logger    *slog.Logger
	Now       func() time.Time
	NewCode   func() string

	PublishTimeout time.Duration
}

// TicketService implements the shopper flow for one session: look at the
// seat map, build a cart, get a quote and check out.
type TicketService struct {
	Deps

	publishing sync.WaitGroup
}

// NewTicketService fills in defaults for the logger, the clock and the
// ticket code generator.
func NewTicketService(d Deps) *TicketService {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.NewCode == nil {
		d.NewCode = uuid.NewString
	}
	if d.PublishTimeout <= 0 {
		d.PublishTimeout = DefaultPublishTimeout
	}
	return &TicketService{Deps: d}
}

// Wait blocks until every tickets.issued publish started by Checkout has
// finished. Call it on shutdown.
func (s *TicketService) Wait() {
	s.publishing.Wait()
}

// SessionView is a session with the movie, cinema and room it refers to.
// Session.AvailableSeats is derived from the sold seats, not from the
// stored counter.
type SessionView struct {
	Session model.Session `json:"session"`
	Movie   model.Movie   `json:"movie"`
	Cinema  model.Cinema  `json:"cinema"`
	Room    model.Room    `json:"room"`
}

// SeatMapView is a session with its generated seat map.
type SeatMapView struct {
	SessionView
	Layout seatmap.Layout `json:"layout"`
}

// Session returns the session detail.
func (s *TicketService) Session(ctx context.Context, sessionID uint64) (SessionView, error) {
	v, _, err := s.load(ctx, sessionID)
	return v, err
}

// SeatMap returns the session's seat map with sold seats marked occupied.
func (s *TicketService) SeatMap(ctx context.Context, sessionID uint64) (SeatMapView, error) {
	v, layout, err := s.load(ctx, sessionID)
	if err != nil {
		return SeatMapView{}, err
	}
	return SeatMapView{SessionView: v, Layout: layout}, nil
}

func (s *TicketService) load(ctx context.Context, sessionID uint64) (SessionView, seatmap.Layout, error) {
	var v SessionView
	var err error
	if v.Session, err = s.Catalog.GetSession(ctx, sessionID); err != nil {
		return v, seatmap.Layout{}, err
	}
	if v.Room, err = s.Catalog.GetRoom(ctx, v.Session.RoomID); err != nil {
		return v, seatmap.Layout{}, err
	}
	if v.Movie, err = s.Catalog.GetMovie(ctx, v.Session.MovieID); err != nil {
		return v, seatmap.Layout{}, err
	}
	if v.Cinema, err = s.Catalog.GetCinema(ctx, v.Session.CinemaID); err != nil {
		return v, seatmap.Layout{}, err
	}
	layout, err := sessionLayout(ctx, s.Sold, v.Session, v.Room)
	if err != nil {
		return v, seatmap.Layout{}, err
	}
	v.Session.AvailableSeats = layout.Available()
	return v, layout, nil
}

// CartView is the stored cart as returned to the shopper. Dropped lists
// seats removed because they were sold since the last request.
type CartView struct {
	selection.Draft
	Total   string           `json:"total"`
	Dropped []seatmap.SeatID `json:"dropped,omitempty"`
}

type cartState struct {
	view    SessionView
	layout  seatmap.Layout
	tracker *selection.Tracker
	dropped []seatmap.SeatID
}

func (s *TicketService) openCart(ctx context.Context, userID, sessionID uint64) (*cartState, error) {
	v, layout, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	d, err := s.Carts.Load(ctx, userID, sessionID)
	if err != nil && !errors.Is(err, cart.ErrNotFound) {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	tr, dropped := selection.Restore(layout, d)
	st := &cartState{view: v, layout: layout, tracker: tr, dropped: dropped}
	if len(dropped) > 0 {
		s.Logger.Info("cart seats sold elsewhere", "user_id", userID, "session_id", sessionID, "dropped", len(dropped))
		if _, err := s.saveCart(ctx, userID, sessionID, st); err != nil {
			return nil, err
		}
	}
	return st, nil
}

func (s *TicketService) saveCart(ctx context.Context, userID, sessionID uint64, st *cartState) (CartView, error) {
	d, err := st.tracker.Snapshot(st.view.Session.PriceCents)
	if err != nil {
		return CartView{}, err
	}
	if st.tracker.Len() == 0 {
		err = s.Carts.Delete(ctx, userID, sessionID)
	} else {
		err = s.Carts.Save(ctx, userID, sessionID, d)
	}
	if err != nil {
		return CartView{}, fmt.Errorf("save cart: %w", err)
	}
	return cartView(d, st.dropped), nil
}

func (s *TicketService) viewCart(st *cartState) (CartView, error) {
	d, err := st.tracker.Snapshot(st.view.Session.PriceCents)
	if err != nil {
		return CartView{}, err
	}
	return cartView(d, st.dropped), nil
}

func cartView(d selection.Draft, dropped []seatmap.SeatID) CartView {
	return CartView{Draft: d, Total: d.TotalPriceCents.BRL(), Dropped: dropped}
}

// Cart returns the user's cart for a session. A user without a cart gets an
// empty one.
func (s *TicketService) Cart(ctx context.Context, userID, sessionID uint64) (CartView, error) {
	st, err := s.openCart(ctx, userID, sessionID)
	if err != nil {
		return CartView{}, err
	}
	return s.viewCart(st)
}

// Toggle selects or deselects one seat. changed is false when the seat is
// occupied; the cart is then returned untouched.
func (s *TicketService) Toggle(ctx context.Context, userID, sessionID uint64, id seatmap.SeatID) (view CartView, changed bool, err error) {
	st, err := s.openCart(ctx, userID, sessionID)
	if err != nil {
		return CartView{}, false, err
	}
	seat, ok := st.layout.Find(id)
	if !ok {
		return CartView{}, false, fmt.Errorf("%w: %s", ErrUnknownSeat, id)
	}
	if !st.tracker.Toggle(seat) {
		view, err = s.viewCart(st)
		return view, false, err
	}
	view, err = s.saveCart(ctx, userID, sessionID, st)
	return view, err == nil, err
}

// SetTicketTypes assigns ticket types to selected seats. Either every
// assignment applies or, on the first error, none is stored.
func (s *TicketService) SetTicketTypes(ctx context.Context, userID, sessionID uint64, types map[seatmap.SeatID]pricing.TicketType) (CartView, error) {
	st, err := s.openCart(ctx, userID, sessionID)
	if err != nil {
		return CartView{}, err
	}
	ids := make([]seatmap.SeatID, 0, len(types))
	for id := range types {
		ids = append(ids, id)
	}
	seatmap.SortIDs(ids)
	for _, id := range ids {
		if err := st.tracker.SetTicketType(id, types[id]); err != nil {
			return CartView{}, err
		}
	}
	return s.saveCart(ctx, userID, sessionID, st)
}

// ClearCart forgets the user's cart for a session.
func (s *TicketService) ClearCart(ctx context.Context, userID, sessionID uint64) error {
	return s.Carts.Delete(ctx, userID, sessionID)
}

// Quote is the priced cart with the installment options for its total.
type Quote struct {
	SessionID    uint64                      `json:"session_id"`
	Lines        []pricing.Line              `json:"lines"`
	TotalCents   pricing.Cents               `json:"total_cents"`
	Total        string                      `json:"total"`
	Installments []pricing.InstallmentOption `json:"installments"`
}

// Quote prices the cart seat by seat. The cart must be complete: at least
// one seat and a ticket type for every seat.
func (s *TicketService) Quote(ctx context.Context, userID, sessionID uint64) (Quote, error) {
	q, _, err := s.quote(ctx, userID, sessionID)
	return q, err
}

func (s *TicketService) quote(ctx context.Context, userID, sessionID uint64) (Quote, *cartState, error) {
	st, err := s.openCart(ctx, userID, sessionID)
	if err != nil {
		return Quote{}, nil, err
	}
	if len(st.dropped) > 0 {
		return Quote{}, nil, &SeatsUnavailableError{Seats: st.dropped}
	}
	if err := st.tracker.Validate(); err != nil {
		return Quote{}, nil, err
	}
	lines, err := pricing.Lines(st.view.Session.PriceCents, st.tracker.TicketTypes())
	if err != nil {
		return Quote{}, nil, err
	}
	total := pricing.Sum(lines)
	return Quote{
		SessionID:    sessionID,
		Lines:        lines,
		TotalCents:   total,
		Total:        total.BRL(),
		Installments: pricing.InstallmentMenu(total),
	}, st, nil
}

// Payment is the mock payment submitted at checkout. Nothing is charged.
type Payment struct {
	Method       string `json:"payment_method"`
	Installments int    `json:"installments"`
}

func (p Payment) normalize() (Payment, error) {
	p.Method = strings.ToLower(strings.TrimSpace(p.Method))
	if p.Installments == 0 {
		p.Installments = 1
	}
	switch p.Method {
	case model.PaymentCredit:
		if p.Installments < 1 || p.Installments > pricing.MaxInstallments {
			return p, fmt.Errorf("%w: installments must be between 1 and %d", ErrInvalidPayment, pricing.MaxInstallments)
		}
	case model.PaymentDebit, model.PaymentPix:
		if p.Installments != 1 {
			return p, fmt.Errorf("%w: %s is paid in a single installment", ErrInvalidPayment, p.Method)
		}
	default:
		return p, fmt.Errorf("%w: unknown method %q", ErrInvalidPayment, p.Method)
	}
	return p, nil
}

// Checkout turns the cart into a ticket. The seats, the ticket and the
// session counter are written in one transaction; if another order took one
// of the seats first, repository.ErrSeatTaken is returned and the cart is
// kept. After commit the cart is deleted, a tickets.issued event is
// published in the background and watchers of the session are told which
// seats were sold.
func (s *TicketService) Checkout(ctx context.Context, userID, sessionID uint64, p Payment) (model.Ticket, error) {
	p, err := p.normalize()
	if err != nil {
		return model.Ticket{}, err
	}
	q, st, err := s.quote(ctx, userID, sessionID)
	if err != nil {
		return model.Ticket{}, err
	}

	t := model.Ticket{
		SessionID:     sessionID,
		UserID:        userID,
		Code:          s.NewCode(),
		Lines:         q.Lines,
		TotalCents:    q.TotalCents,
		PaymentMethod: p.Method,
		Installments:  p.Installments,
		PurchasedAt:   s.Now().UTC().Truncate(time.Second),
	}
	if err := s.Issuer.Issue(ctx, &t); err != nil {
		return model.Ticket{}, err
	}
	s.Logger.Info("tickets issued", "ticket_id", t.ID, "user_id", userID, "session_id", sessionID,
		"seats", len(t.Lines), "total_cents", int64(t.TotalCents))

	if err := s.Carts.Delete(ctx, userID, sessionID); err != nil {
		s.Logger.Warn("cart delete after checkout failed", "err", err, "user_id", userID, "session_id", sessionID)
	}
	if s.Publisher != nil {
		s.publish(ctx, issuedEvent(t, st.view))
	}
	if s.Live != nil {
		seats := make([]seatmap.SeatID, len(t.Lines))
		for i, l := range t.Lines {
			seats[i] = l.Seat
		}
		s.Live.Publish(sessionID, realtime.Message{Type: realtime.TypeSeatsSold, SessionID: sessionID, Payload: seats})
	}
	return t, nil
}

// publish sends ev off the request path. The request context is detached so
// the publish outlives the response, and bounded by PublishTimeout.
func (s *TicketService) publish(ctx context.Context, ev queue.TicketsIssuedEvent) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.PublishTimeout)
	s.publishing.Add(1)
	go func() {
		defer s.publishing.Done()
		defer cancel()
		if err := s.Publisher.PublishTicketsIssued(ctx, ev); err != nil {
			s.Logger.Warn("tickets.issued publish failed", "err", err, "ticket_id", ev.TicketID)
		}
	}()
}

func issuedEvent(t model.Ticket, v SessionView) queue.TicketsIssuedEvent {
	seats := make([]queue.SeatLine, len(t.Lines))
	for i, l := range t.Lines {
		seats[i] = queue.SeatLine{Seat: l.Seat.String(), TicketType: string(l.TicketType), PriceCents: int64(l.PriceCents)}
	}
	return queue.TicketsIssuedEvent{
		TicketID:      t.ID,
		Code:          t.Code,
		UserID:        t.UserID,
		SessionID:     t.SessionID,
		CinemaID:      v.Cinema.ID,
		CinemaName:    v.Cinema.Name,
		RoomName:      v.Room.Name,
		MovieTitle:    v.Movie.Title,
		Date:          v.Session.Date,
		Time:          v.Session.Time,
		Seats:         seats,
		TotalCents:    int64(t.TotalCents),
		PaymentMethod: t.PaymentMethod,
		Installments:  t.Installments,
		IssuedAt:      t.PurchasedAt.Format(time.RFC3339),
	}
}

// Tickets lists the user's purchases, newest first.
func (s *TicketService) Tickets(ctx context.Context, userID uint64) ([]repository.TicketDetail, error) {
	return s.History.ListByUser(ctx, userID)
}
