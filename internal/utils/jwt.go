package utils // package utils provides helper functions for token creation and OTP handling

import (
    "time" // time utilities for generating expirations

    "github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// AccessToken represents a signed JWT access token along with its expiry.
// The Token field contains the JWT string.  Exp stores the expiration
// timestamp as a time.Time.  Tokens are sent in the Authorization header
// when calling protected endpoints.
type AccessToken struct {
    Token string    // the serialized JWT string
    Exp   time.Time // the UTC expiration time
}

// NewAccessToken builds and signs an HS256 JWT for a verified account.
// It takes the signing secret, the user id, the phone number, the role
// and a TTL in hours.  The JWT carries standard claims: subject (sub),
// phone_number, role, expiration (exp) and issued at (iat).  There is no
// refresh flow; OTP verification simply issues a fresh token.
func NewAccessToken(secret string, userID uint64, phone, role string, ttlHours int) (AccessToken, error) {
    now := time.Now().UTC()
    exp := now.Add(time.Duration(ttlHours) * time.Hour)
    claims := jwt.MapClaims{
        "sub":          userID,
        "phone_number": phone,
        "role":         role,
        "exp":          exp.Unix(),
        "iat":          now.Unix(),
    }
    t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
    signed, err := t.SignedString([]byte(secret))
    if err != nil {
        return AccessToken{}, err
    }
    return AccessToken{Token: signed, Exp: exp}, nil
}
