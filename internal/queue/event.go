// Package queue defines message payloads exchanged over the message broker.
package queue

// BookingConfirmedEvent is published when checkout completes and the
// reservation lock converts into a booking.  It carries enough detail for
// downstream consumers to log, notify, or feed analytics without querying
// the primary database.
type BookingConfirmedEvent struct {
    BookingID   uint64 `json:"booking_id"`
    LockID      uint64 `json:"lock_id"`
    UserID      uint64 `json:"user_id"`
    VehicleID   uint64 `json:"vehicle_id"`
    VehicleName string `json:"vehicle_name"`
    City        string `json:"city"`
    StartTime   string `json:"start_time"`
    EndTime     string `json:"end_time"`
    Subtotal    string `json:"subtotal"`
    Discount    string `json:"discount"`
    Total       string `json:"total"`
    CouponCode  string `json:"coupon_code,omitempty"`
    ConfirmedAt string `json:"confirmed_at"`
}
