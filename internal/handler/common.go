package handler // handler defines http handlers

import (
    "errors"
    "strconv"

    "github.com/go-playground/validator/v10"
    "github.com/labstack/echo/v4"
)

// validate checks request DTOs against their struct tags.  A single
// instance is safe for concurrent use and caches struct metadata.
var validate = validator.New()

// getUserID extracts the user_id claim from echo.Context and converts it
// to uint64.  JWT numeric claims arrive as float64; other types show up
// in tests, so the switch stays permissive.
func getUserID(c echo.Context) (uint64, error) {
    v := c.Get("user_id")
    switch t := v.(type) {
    case uint64:
        return t, nil
    case int:
        return uint64(t), nil
    case int64:
        return uint64(t), nil
    case float64:
        return uint64(t), nil
    case string:
        if n, err := strconv.ParseUint(t, 10, 64); err == nil {
            return n, nil
        }
    }
    return 0, errors.New("invalid user_id in context")
}

// parseVehicleID reads the vehicle_id query parameter shared by the lock
// endpoints.
func parseVehicleID(c echo.Context) (uint64, error) {
    id, err := strconv.ParseUint(c.QueryParam("vehicle_id"), 10, 64)
    if err != nil || id == 0 {
        return 0, errors.New("vehicle_id is required")
    }
    return id, nil
}
