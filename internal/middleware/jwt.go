// Package middleware provides reusable HTTP middleware: bearer token
// verification, request logging and rate limiting. Issuing tokens is
// the job of the external auth service; this layer only verifies them.
package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// ErrInvalidToken is returned by ParseSubject for any token that does
// not verify or whose subject is unusable.
var ErrInvalidToken = errors.New("invalid token")

// ParseSubject verifies an HS256 token against secret and returns the
// user ID carried in the "sub" claim. It is shared between the HTTP
// middleware and the websocket upgrade, which receives the token as a
// query parameter.
func ParseSubject(raw, secret string) (uint64, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return 0, ErrInvalidToken
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return 0, ErrInvalidToken
	}
	switch sub := claims["sub"].(type) {
	case float64:
		if sub <= 0 {
			return 0, ErrInvalidToken
		}
		return uint64(sub), nil
	case string:
		n, err := strconv.ParseUint(strings.TrimSpace(sub), 10, 64)
		if err != nil || n == 0 {
			return 0, ErrInvalidToken
		}
		return n, nil
	}
	return 0, ErrInvalidToken
}

// JWTAuth returns an Echo middleware that validates a Bearer access
// token and stores the verified user ID in the request context under
// "user_id". Handlers read it back via their getUserID helper.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			userID, err := ParseSubject(strings.TrimPrefix(auth, "Bearer "), secret)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}
			c.Set("user_id", userID)
			return next(c)
		}
	}
}
