// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios without
// inspecting driver error strings. For example, ErrVehicleNotFound
// signals that a lock or booking referenced a vehicle that does not
// exist.
package repository

import "errors"

// ErrVehicleNotFound is returned when an operation references a vehicle
// id with no matching row. Handlers should translate this into an HTTP
// 404 response.
var ErrVehicleNotFound = errors.New("vehicle not found")

// ErrNoActiveLock is returned when a booking is attempted without a
// live lock on the vehicle. Handlers should translate this into an
// HTTP 409 response so the client restarts checkout.
var ErrNoActiveLock = errors.New("no active lock for vehicle")

// ErrCouponNotFound is returned when a coupon code has no active row.
var ErrCouponNotFound = errors.New("coupon not found")
