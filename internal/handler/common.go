// Package handler contains the HTTP handlers. Authentication is
// performed by middleware; handlers read the verified user ID back out
// of the request context and translate service errors to statuses.
package handler

import (
	"errors"

	"github.com/labstack/echo/v4"
)

var errNoUser = errors.New("no user in context")

// getUserID extracts the authenticated user ID set by the JWT
// middleware. The type switch tolerates numeric re-encoding in tests.
func getUserID(c echo.Context) (uint64, error) {
	switch v := c.Get("user_id").(type) {
	case uint64:
		return v, nil
	case int64:
		if v > 0 {
			return uint64(v), nil
		}
	case float64:
		if v > 0 {
			return uint64(v), nil
		}
	}
	return 0, errNoUser
}
