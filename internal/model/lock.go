package model

import "time"

// Lock statuses.  A lock starts as active and moves exactly once into one
// of the terminal states; nothing ever transitions a lock back to active.
const (
    LockStatusActive    = "active"    // lock is claiming the vehicle
    LockStatusExpired   = "expired"   // lease ran out before checkout finished
    LockStatusCancelled = "cancelled" // holder released the lock explicitly
    LockStatusConverted = "converted" // lock became a confirmed booking
)

// Lock represents a temporary exclusive claim on a vehicle while a user
// completes checkout.  Locks prevent two users from booking the same
// vehicle at the same time.  A lock is only blocking while its status is
// active AND its expires_at lies in the future; an active lock whose
// lease has run out is treated as expired on every read path even before
// the sweeper physically updates it.
//
// Fields:
//  ID         – primary key identifier.
//  VehicleID  – vehicle being claimed.
//  UserID     – user holding the claim.
//  StartTime  – requested rental window start.
//  EndTime    – requested rental window end (always after StartTime).
//  ExpiresAt  – absolute lease deadline; the lock stops blocking here.
//  Status     – one of the LockStatus* constants above.
//  SessionID  – checkout session identifier, diagnostic only.
//  DeviceInfo – client user agent, diagnostic only.
//  CreatedAt  – creation timestamp, immutable.
type Lock struct {
    ID         uint64    `json:"id"`          // locks.id
    VehicleID  uint64    `json:"vehicle_id"`  // locks.vehicle_id
    UserID     uint64    `json:"user_id"`     // locks.user_id
    StartTime  time.Time `json:"start_time"`  // locks.start_time
    EndTime    time.Time `json:"end_time"`    // locks.end_time
    ExpiresAt  time.Time `json:"expires_at"`  // locks.expires_at
    Status     string    `json:"status"`      // locks.status
    SessionID  string    `json:"session_id"`  // locks.session_id
    DeviceInfo string    `json:"device_info"` // locks.device_info
    CreatedAt  time.Time `json:"created_at"`  // locks.created_at
}

// Blocking reports whether the lock excludes other users at the given
// instant.  The repository's SQL read paths apply this same predicate
// (status = active AND expires_at > now) inside their queries.
func (l *Lock) Blocking(now time.Time) bool {
    return l.Status == LockStatusActive && l.ExpiresAt.After(now)
}

// Terminal reports whether the lock has reached a final state and may be
// purged once past the retention window.
func (l *Lock) Terminal() bool {
    switch l.Status {
    case LockStatusExpired, LockStatusCancelled, LockStatusConverted:
        return true
    }
    return false
}
