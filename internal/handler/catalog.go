package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinexplorer/internal/geo"
	"github.com/iliyamo/cinexplorer/internal/realtime"
	"github.com/iliyamo/cinexplorer/internal/service"
)

// PublicHandler serves the unauthenticated browsing API: cinemas, their
// sessions, session detail, seat maps and the live seat feed.
type PublicHandler struct {
	Finder  *service.CinemaFinder
	Tickets *service.TicketService
	Hub     *realtime.Hub
	Logger  *slog.Logger
}

// parseCoordinate reads lat and lng from the query. Both absent means no
// coordinate; one without the other or an out-of-range value is an error.
func parseCoordinate(c echo.Context) (*geo.Coordinate, bool) {
	rawLat, rawLng := c.QueryParam("lat"), c.QueryParam("lng")
	if rawLat == "" && rawLng == "" {
		return nil, true
	}
	lat, err1 := strconv.ParseFloat(rawLat, 64)
	lng, err2 := strconv.ParseFloat(rawLng, 64)
	if err1 != nil || err2 != nil || lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return nil, false
	}
	return &geo.Coordinate{Lat: lat, Lng: lng}, true
}

// ListCinemas handles GET /v1/cinemas?lat=&lng=&sort=. "ranked" tells the
// client whether the order is by distance.
func (h *PublicHandler) ListCinemas(c echo.Context) error {
	user, ok := parseCoordinate(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "lat and lng must be given together as valid coordinates"})
	}
	items, ranked, err := h.Finder.List(c.Request().Context(), user, c.QueryParam("sort"))
	if err != nil {
		return serviceError(c, h.Logger, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items, "ranked": ranked})
}

// CinemaSessions handles GET /v1/cinemas/:id/sessions.
func (h *PublicHandler) CinemaSessions(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid cinema id"})
	}
	sessions, err := h.Finder.Sessions(c.Request().Context(), id)
	if err != nil {
		return serviceError(c, h.Logger, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": sessions})
}

// Session handles GET /v1/sessions/:id.
func (h *PublicHandler) Session(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session id"})
	}
	v, err := h.Tickets.Session(c.Request().Context(), id)
	if err != nil {
		return serviceError(c, h.Logger, err)
	}
	return c.JSON(http.StatusOK, v)
}

// SeatMap handles GET /v1/sessions/:id/seats.
func (h *PublicHandler) SeatMap(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session id"})
	}
	v, err := h.Tickets.SeatMap(c.Request().Context(), id)
	if err != nil {
		return serviceError(c, h.Logger, err)
	}
	return c.JSON(http.StatusOK, v)
}

// Live handles GET /v1/sessions/:id/live by upgrading to a WebSocket that
// receives seats_sold messages for the session.
func (h *PublicHandler) Live(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session id"})
	}
	if _, err := h.Tickets.Catalog.GetSession(c.Request().Context(), id); err != nil {
		return serviceError(c, h.Logger, err)
	}
	if err := h.Hub.ServeWs(c.Response(), c.Request(), id); err != nil {
		// the upgrader has already written the error response
		h.Logger.Warn("websocket upgrade failed", "err", err, "session_id", id)
	}
	return nil
}
