package model

import (
    "time"

    "github.com/shopspring/decimal"
)

// Booking records a confirmed rental.  A booking is only ever created by
// converting the user's active lock on the vehicle, so at the moment of
// creation the caller provably held exclusive rights to the window.
//
// Fields:
//  ID         – primary key identifier.
//  UserID     – renter.
//  VehicleID  – rented vehicle.
//  LockID     – the lock that was converted into this booking.
//  StartTime  – rental window start.
//  EndTime    – rental window end.
//  Subtotal   – price before discounts.
//  Discount   – coupon discount applied, zero when none.
//  Total      – amount charged (Subtotal - Discount).
//  CouponCode – applied coupon code, empty when none.
//  Status     – CONFIRMED or CANCELLED.
//  CreatedAt  – creation timestamp.
type Booking struct {
    ID         uint64          `json:"id"`          // bookings.id
    UserID     uint64          `json:"user_id"`     // bookings.user_id
    VehicleID  uint64          `json:"vehicle_id"`  // bookings.vehicle_id
    LockID     uint64          `json:"lock_id"`     // bookings.lock_id
    StartTime  time.Time       `json:"start_time"`  // bookings.start_time
    EndTime    time.Time       `json:"end_time"`    // bookings.end_time
    Subtotal   decimal.Decimal `json:"subtotal"`    // bookings.subtotal
    Discount   decimal.Decimal `json:"discount"`    // bookings.discount
    Total      decimal.Decimal `json:"total"`       // bookings.total
    CouponCode string          `json:"coupon_code"` // bookings.coupon_code
    Status     string          `json:"status"`      // bookings.status
    CreatedAt  time.Time       `json:"created_at"`  // bookings.created_at
}
