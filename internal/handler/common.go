// Package handler contains the HTTP handlers for the project tracker
// API.  Handlers bind and validate input, call repositories with a
// bounded context, and map sentinel errors onto HTTP status codes.
package handler

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
)

// dbTimeout bounds every repository call made from a handler.
const dbTimeout = 5 * time.Second

var errNoUser = errors.New("no user in context")

// getUserID extracts the authenticated user's ID from the request
// context.  JWT numeric claims arrive as float64 after JSON parsing,
// so several representations are accepted.
func getUserID(c echo.Context) (uint64, error) {
	switch v := c.Get("user_id").(type) {
	case uint64:
		return v, nil
	case float64:
		return uint64(v), nil
	case string:
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return 0, errNoUser
		}
		return n, nil
	default:
		return 0, errNoUser
	}
}

// getRole returns the role claim stored by the auth middleware, or
// the empty string when absent.
func getRole(c echo.Context) string {
	role, _ := c.Get("role").(string)
	return role
}

// reqCtx returns a context bounded by dbTimeout, derived from the
// request context so client disconnects still cancel queries.
func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), dbTimeout)
}

// pathID parses the named path parameter as an unsigned ID.
func pathID(c echo.Context, name string) (uint64, error) {
	return strconv.ParseUint(c.Param(name), 10, 64)
}
