package utils

import (
    "errors"
    "strings"
    "time"
)

// ErrAmbiguousDate is returned for inputs that are not strict RFC 3339.
// Locale-style strings like "09/12/2025 09:00" are rejected outright:
// whether that means September 12 or December 9 depends on who typed it,
// and guessing has corrupted booking windows before.  The client must
// send an explicit offset.
var ErrAmbiguousDate = errors.New("timestamp must be RFC 3339 with explicit offset")

// ParseBookingTime parses a rental window boundary off the wire.  Only
// RFC 3339 with a numeric offset or Z is accepted; everything else fails
// with ErrAmbiguousDate.  The result is normalized to UTC.
func ParseBookingTime(s string) (time.Time, error) {
    s = strings.TrimSpace(s)
    if s == "" {
        return time.Time{}, ErrAmbiguousDate
    }
    t, err := time.Parse(time.RFC3339, s)
    if err != nil {
        return time.Time{}, ErrAmbiguousDate
    }
    return t.UTC(), nil
}
