package repository

import (
    "context"
    "database/sql"
    "strings"
    "time"

    "github.com/MM-miles16/MMMILES/internal/model"
)

// OTPRepo persists one-time login codes (single 'code_hash' column; the
// plain code is never stored).
type OTPRepo struct{ DB *sql.DB }

func NewOTPRepo(db *sql.DB) *OTPRepo { return &OTPRepo{DB: db} }

// Create inserts an OTP event row for the phone number.
func (r *OTPRepo) Create(ctx context.Context, phone, codeHash string, exp time.Time) error {
    _, err := r.DB.ExecContext(ctx,
        "INSERT INTO otp_events (phone, code_hash, expires_at) VALUES (?,?,?)",
        strings.TrimSpace(phone), codeHash, exp.UTC().Format("2006-01-02 15:04:05"))
    return err
}

// LatestByPhone returns the most recently issued OTP event for the phone
// number.  Expiry and consumption checks are left to the caller so it
// can report precise failure reasons.
func (r *OTPRepo) LatestByPhone(ctx context.Context, phone string) (model.OTPEvent, error) {
    var ev model.OTPEvent
    err := r.DB.QueryRowContext(ctx,
        `SELECT id, phone, code_hash, expires_at, consumed, created_at
         FROM otp_events WHERE phone = ? ORDER BY created_at DESC LIMIT 1`,
        strings.TrimSpace(phone),
    ).Scan(&ev.ID, &ev.Phone, &ev.CodeHash, &ev.ExpiresAt, &ev.Consumed, &ev.CreatedAt)
    return ev, err
}

// MarkConsumed burns the OTP event so it cannot be replayed.  Returns
// sql.ErrNoRows when the event was already consumed, which callers treat
// as a failed verification.
func (r *OTPRepo) MarkConsumed(ctx context.Context, id uint64) error {
    res, err := r.DB.ExecContext(ctx,
        "UPDATE otp_events SET consumed = 1 WHERE id = ? AND consumed = 0", id)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        return sql.ErrNoRows
    }
    return nil
}

// DeleteExpired removes OTP events past their expiry; invoked by the
// cleanup sweeper alongside the lock purge.
func (r *OTPRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
    res, err := r.DB.ExecContext(ctx,
        "DELETE FROM otp_events WHERE expires_at <= ?",
        now.UTC().Format("2006-01-02 15:04:05"))
    if err != nil {
        return 0, err
    }
    return res.RowsAffected()
}
