package model

import (
    "database/sql"
    "time"
)

// User roles.  Every verified caller starts as CUSTOMER; an approved host
// application promotes the account to HOST.  ADMIN is assigned out of
// band for operators and gates the operational routes.
const (
    RoleCustomer = "CUSTOMER"
    RoleHost     = "HOST"
    RoleAdmin    = "ADMIN"
)

// User represents an account keyed by phone number.  There are no
// passwords – identity is established with a one-time code sent to the
// phone, after which the service issues a signed bearer token.
//
// Fields:
//  ID        – primary key identifier; the JWT subject.
//  Phone     – E.164 phone number, unique.
//  FullName  – display name, optional until the profile is filled in.
//  Email     – contact email, optional.
//  Role      – CUSTOMER or HOST.
//  Verified  – whether the phone number has passed OTP verification.
//  LastLogin – most recent successful verification, nullable.
//  CreatedAt – account creation timestamp.
type User struct {
    ID        uint64       `json:"id"`         // users.id
    Phone     string       `json:"phone"`      // users.phone
    FullName  string       `json:"full_name"`  // users.full_name
    Email     string       `json:"email"`      // users.email
    Role      string       `json:"role"`       // users.role
    Verified  bool         `json:"verified"`   // users.verified
    LastLogin sql.NullTime `json:"-"`          // users.last_login
    CreatedAt time.Time    `json:"created_at"` // users.created_at
}
