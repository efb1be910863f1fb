package middleware

// identity.go holds helpers shared across middleware files for
// resolving who is making the current request.

import (
	"fmt"

	"github.com/labstack/echo/v4"
)

// userIdentity returns a stable identifier for the authenticated user
// stored in context by JWTAuth, or "public" when the request is
// unauthenticated.  The cache middleware keys entries by this value.
func userIdentity(c echo.Context) string {
	if v := c.Get("user_id"); v != nil {
		if s := fmt.Sprint(v); s != "" && s != "<nil>" {
			return s
		}
	}
	return "public"
}
