package model

import "time"

// OTPEvent records a one-time code issued to a phone number.  Only the
// bcrypt hash of the code is stored; the plain code leaves the service
// exactly once, through the delivery notifier.  An event can be consumed
// at most once and stops being usable at ExpiresAt.
type OTPEvent struct {
    ID        uint64    // otp_events.id
    Phone     string    // otp_events.phone
    CodeHash  string    // otp_events.code_hash
    ExpiresAt time.Time // otp_events.expires_at
    Consumed  bool      // otp_events.consumed
    CreatedAt time.Time // otp_events.created_at
}
