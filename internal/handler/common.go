package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinexplorer/internal/catalog"
	"github.com/iliyamo/cinexplorer/internal/middleware"
	"github.com/iliyamo/cinexplorer/internal/pricing"
	"github.com/iliyamo/cinexplorer/internal/repository"
	"github.com/iliyamo/cinexplorer/internal/seatmap"
	"github.com/iliyamo/cinexplorer/internal/selection"
	"github.com/iliyamo/cinexplorer/internal/service"
)

var errNoUser = errors.New("invalid user_id in context")

// getUserID returns the user authenticated by the JWT middleware.
func getUserID(c echo.Context) (uint64, error) {
	id, ok := middleware.UserID(c)
	if !ok {
		return 0, errNoUser
	}
	return id, nil
}

// pathID parses a positive numeric path parameter.
func pathID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	return id, err == nil && id > 0
}

// seatNames renders seat identities as their labels, e.g. "B4".
func seatNames(ids []seatmap.SeatID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

// serviceError maps domain errors to HTTP responses. Anything unknown is
// logged and reported as 500 without details.
func serviceError(c echo.Context, logger *slog.Logger, err error) error {
	var incomplete *selection.IncompleteTicketTypesError
	var gone *service.SeatsUnavailableError
	switch {
	case errors.As(err, &incomplete):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{
			"error":   "ticket type missing for selected seats",
			"missing": seatNames(incomplete.Missing),
		})
	case errors.As(err, &gone):
		return c.JSON(http.StatusConflict, echo.Map{
			"error":       "some seats are no longer available",
			"unavailable": seatNames(gone.Seats),
		})
	case errors.Is(err, catalog.ErrSessionNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "session not found"})
	case errors.Is(err, catalog.ErrCinemaNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "cinema not found"})
	case errors.Is(err, catalog.ErrRoomNotFound), errors.Is(err, catalog.ErrMovieNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrSeatTaken):
		return c.JSON(http.StatusConflict, echo.Map{"error": "seat already sold"})
	case errors.Is(err, repository.ErrSoldOut):
		return c.JSON(http.StatusConflict, echo.Map{"error": "session sold out"})
	case errors.Is(err, selection.ErrEmptySelection):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "no seats selected"})
	case errors.Is(err, selection.ErrSeatNotSelected),
		errors.Is(err, selection.ErrTicketTypeUnavailable),
		errors.Is(err, pricing.ErrUnknownTicketType),
		errors.Is(err, pricing.ErrInvalidInstallments):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrUnknownSeat),
		errors.Is(err, service.ErrInvalidPayment),
		errors.Is(err, service.ErrUnknownSort):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	logger.Error("request failed", "err", err, "path", c.Path())
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}

// ErrorHandler renders errors returned from handlers, including Echo's own
// (404 route, 405 method, bind failures), as {"error": "..."}.
func ErrorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		code := http.StatusInternalServerError
		msg := "internal error"
		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			if m, ok := he.Message.(string); ok {
				msg = m
			} else {
				msg = http.StatusText(code)
			}
		} else {
			logger.Error("unhandled error", "err", err, "path", c.Path())
		}
		if c.Request().Method == http.MethodHead {
			err = c.NoContent(code)
		} else {
			err = c.JSON(code, echo.Map{"error": msg})
		}
		if err != nil {
			logger.Warn("write error response", "err", err)
		}
	}
}
