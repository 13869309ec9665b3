package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Health is the liveness probe used by load balancers. It returns a plain
// text "ok".
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

// Pinger is a dependency the readiness probe checks.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) PingContext(ctx context.Context) error { return f(ctx) }

// Ready returns a readiness probe that pings every named dependency. Any
// failure makes the probe answer 503 with the failing names.
func Ready(deps map[string]Pinger) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		status := make(map[string]string, len(deps))
		code := http.StatusOK
		for name, p := range deps {
			if err := p.PingContext(ctx); err != nil {
				status[name] = err.Error()
				code = http.StatusServiceUnavailable
				continue
			}
			status[name] = "ok"
		}
		return c.JSON(code, echo.Map{"checks": status})
	}
}
