package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinexplorer/internal/pricing"
	"github.com/iliyamo/cinexplorer/internal/seatmap"
	"github.com/iliyamo/cinexplorer/internal/service"
)

// CustomerHandler serves the signed-in shopper: cart, quote, checkout and
// purchase history.
type CustomerHandler struct {
	Tickets *service.TicketService
	Logger  *slog.Logger
}

type toggleReq struct {
	Seat string `json:"seat"`
}

type ticketTypesReq struct {
	TicketTypes map[string]string `json:"ticket_types"`
}

// ids extracts the user and session from the request.
func (h *CustomerHandler) ids(c echo.Context) (userID, sessionID uint64, err error) {
	userID, err = getUserID(c)
	if err != nil {
		return 0, 0, echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	sessionID, ok := pathID(c, "id")
	if !ok {
		return 0, 0, echo.NewHTTPError(http.StatusBadRequest, "invalid session id")
	}
	return userID, sessionID, nil
}

// GetCart handles GET /v1/sessions/:id/cart.
func (h *CustomerHandler) GetCart(c echo.Context) error {
	uid, sid, err := h.ids(c)
	if err != nil {
		return err
	}
	v, err := h.Tickets.Cart(c.Request().Context(), uid, sid)
	if err != nil {
		return serviceError(c, h.Logger, err)
	}
	return c.JSON(http.StatusOK, v)
}

// Toggle handles POST /v1/sessions/:id/cart/toggle with {"seat": "B4"}.
// Selecting an occupied seat changes nothing and answers with changed=false.
func (h *CustomerHandler) Toggle(c echo.Context) error {
	uid, sid, err := h.ids(c)
	if err != nil {
		return err
	}
	var req toggleReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	seat, err := seatmap.ParseSeatID(req.Seat)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	v, changed, err := h.Tickets.Toggle(c.Request().Context(), uid, sid, seat)
	if err != nil {
		return serviceError(c, h.Logger, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"cart": v, "changed": changed})
}

// SetTicketTypes handles PUT /v1/sessions/:id/cart/ticket-types with
// {"ticket_types": {"B4": "meia"}}.
func (h *CustomerHandler) SetTicketTypes(c echo.Context) error {
	uid, sid, err := h.ids(c)
	if err != nil {
		return err
	}
	var req ticketTypesReq
	if err := c.Bind(&req); err != nil || len(req.TicketTypes) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "ticket_types required"})
	}
	types := make(map[seatmap.SeatID]pricing.TicketType, len(req.TicketTypes))
	for rawSeat, rawType := range req.TicketTypes {
		seat, err := seatmap.ParseSeatID(rawSeat)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		typ, err := pricing.ParseTicketType(rawType)
		if err != nil {
			return serviceError(c, h.Logger, err)
		}
		types[seat] = typ
	}
	v, err := h.Tickets.SetTicketTypes(c.Request().Context(), uid, sid, types)
	if err != nil {
		return serviceError(c, h.Logger, err)
	}
	return c.JSON(http.StatusOK, v)
}

// ClearCart handles DELETE /v1/sessions/:id/cart.
func (h *CustomerHandler) ClearCart(c echo.Context) error {
	uid, sid, err := h.ids(c)
	if err != nil {
		return err
	}
	if err := h.Tickets.ClearCart(c.Request().Context(), uid, sid); err != nil {
		return serviceError(c, h.Logger, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Quote handles GET /v1/sessions/:id/quote. With ?installments=n the
// response also carries the exact split for n payments.
func (h *CustomerHandler) Quote(c echo.Context) error {
	uid, sid, err := h.ids(c)
	if err != nil {
		return err
	}
	q, err := h.Tickets.Quote(c.Request().Context(), uid, sid)
	if err != nil {
		return serviceError(c, h.Logger, err)
	}
	raw := c.QueryParam("installments")
	if raw == "" {
		return c.JSON(http.StatusOK, q)
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "installments must be a number"})
	}
	parts, err := pricing.Installments(q.TotalCents, n)
	if err != nil {
		return serviceError(c, h.Logger, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"quote": q, "split": parts})
}

// Checkout handles POST /v1/sessions/:id/checkout with
// {"payment_method": "credit", "installments": 3}.
func (h *CustomerHandler) Checkout(c echo.Context) error {
	uid, sid, err := h.ids(c)
	if err != nil {
		return err
	}
	var p service.Payment
	if err := c.Bind(&p); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	t, err := h.Tickets.Checkout(c.Request().Context(), uid, sid, p)
	if err != nil {
		return serviceError(c, h.Logger, err)
	}
	return c.JSON(http.StatusCreated, t)
}

// MyTickets handles GET /v1/my-tickets.
func (h *CustomerHandler) MyTickets(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.Tickets.Tickets(c.Request().Context(), uid)
	if err != nil {
		return serviceError(c, h.Logger, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}
