package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinexplorer/internal/model"
)

// RequireRole rejects with 403 any request whose role, as stored by
// JWTAuth, is not one of roles.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := c.Get(KeyRole).(string)
			if !ok || !allowed[role] {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			return next(c)
		}
	}
}

// Shopper is the chain in front of every signed-in endpoint: a valid access
// token whose role may buy tickets.
func Shopper(secret string) []echo.MiddlewareFunc {
	return []echo.MiddlewareFunc{
		JWTAuth(secret),
		RequireRole(model.RoleUser, model.RoleAdmin),
	}
}
