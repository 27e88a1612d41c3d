package repository

import (
    "context"
    "database/sql"
    "time"

    "github.com/MM-miles16/MMMILES/internal/model"
)

const bookingColumns = `id, user_id, vehicle_id, lock_id, start_time, end_time, subtotal, discount, total, coupon_code, status, created_at`

// BookingRepo provides data access to the bookings table.
type BookingRepo struct {
    db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the provided database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// CreateTx inserts a booking within the provided transaction and fills in
// its id.  The caller converts the lock in the same transaction so the
// booking and the lock transition commit or roll back together.
func (r *BookingRepo) CreateTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
    now := time.Now().UTC()
    res, err := tx.ExecContext(ctx,
        `INSERT INTO bookings (user_id, vehicle_id, lock_id, start_time, end_time, subtotal, discount, total, coupon_code, status, created_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
        b.UserID, b.VehicleID, b.LockID,
        sqlTime(b.StartTime), sqlTime(b.EndTime),
        b.Subtotal, b.Discount, b.Total,
        b.CouponCode, b.Status, sqlTime(now),
    )
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    b.ID = uint64(id)
    b.CreatedAt = now
    return nil
}

// ListByUser returns the caller's bookings, newest first.
func (r *BookingRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Booking, error) {
    rows, err := r.db.QueryContext(ctx,
        `SELECT `+bookingColumns+` FROM bookings WHERE user_id = ? ORDER BY created_at DESC`,
        userID,
    )
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var out []model.Booking
    for rows.Next() {
        var b model.Booking
        if err := rows.Scan(
            &b.ID, &b.UserID, &b.VehicleID, &b.LockID,
            &b.StartTime, &b.EndTime,
            &b.Subtotal, &b.Discount, &b.Total,
            &b.CouponCode, &b.Status, &b.CreatedAt,
        ); err != nil {
            return nil, err
        }
        out = append(out, b)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return out, nil
}
