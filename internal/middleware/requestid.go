package middleware

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const HeaderRequestID = "X-Request-Id"

// RequestID makes sure every request carries an X-Request-Id, reusing the
// client's when present.
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := c.Request().Header.Get(HeaderRequestID)
			if id == "" {
				id = uuid.NewString()
			}
			c.Response().Header().Set(HeaderRequestID, id)
			c.Set("request_id", id)
			return next(c)
		}
	}
}

// Logging writes one structured line per request. Handler errors are passed
// to Echo's error handler first so the logged status is the one sent.
func Logging(logger *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			attrs := []any{
				"request_id", c.Get("request_id"),
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
				"route", c.Path(),
				"status", c.Response().Status,
				"latency_ms", time.Since(start).Milliseconds(),
			}
			if uid, ok := UserID(c); ok {
				attrs = append(attrs, "user_id", uid)
			}
			if c.Response().Status >= 500 {
				logger.Error("request", attrs...)
			} else {
				logger.Info("request", attrs...)
			}
			return nil
		}
	}
}
