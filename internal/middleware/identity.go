package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// UserID returns the authenticated user set by JWTAuth.
func UserID(c echo.Context) (uint64, bool) {
	id, ok := c.Get(KeyUserID).(uint64)
	return id, ok && id != 0
}

// userKey identifies the caller in rate limit keys; "anon" when nobody is
// signed in.
func userKey(c echo.Context) string {
	if id, ok := UserID(c); ok {
		return strconv.FormatUint(id, 10)
	}
	return "anon"
}
