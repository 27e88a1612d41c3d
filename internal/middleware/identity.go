package middleware

// identity.go holds helpers shared across middleware files.  Rate-limit
// keys want a caller identity even when the route is public, so the
// lookup falls back to "guest" rather than failing.

import (
    "fmt"

    "github.com/labstack/echo/v4"
)

// callerKey returns a string identity for the current request: the
// user_id claim stored by JWTAuth when present, otherwise "guest".
func callerKey(c echo.Context) string {
    v := c.Get("user_id")
    if v == nil {
        return "guest"
    }
    switch t := v.(type) {
    case string:
        if t != "" {
            return t
        }
    case float64:
        return fmt.Sprintf("%.0f", t)
    case uint64:
        return fmt.Sprintf("%d", t)
    case int64:
        return fmt.Sprintf("%d", t)
    }
    return "guest"
}
