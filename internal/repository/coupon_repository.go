package repository

import (
    "context"
    "database/sql"
    "strings"

    "github.com/MM-miles16/MMMILES/internal/model"
)

// CouponRepo provides read/update access to the coupons table.
type CouponRepo struct {
    db *sql.DB
}

// NewCouponRepo returns a new CouponRepo bound to the provided database.
func NewCouponRepo(db *sql.DB) *CouponRepo { return &CouponRepo{db: db} }

// GetActiveByCode fetches an active coupon by its upper-cased code.
// Returns ErrCouponNotFound when no active row matches.
func (r *CouponRepo) GetActiveByCode(ctx context.Context, code string) (model.Coupon, error) {
    var c model.Coupon
    err := r.db.QueryRowContext(ctx,
        `SELECT id, code, discount_type, discount_value, COALESCE(max_discount, 0), COALESCE(min_amount, 0),
                valid_from, valid_until, COALESCE(usage_limit, 0), used_count, is_active
         FROM coupons WHERE code = ? AND is_active = 1 LIMIT 1`,
        strings.ToUpper(strings.TrimSpace(code)),
    ).Scan(&c.ID, &c.Code, &c.DiscountType, &c.DiscountValue, &c.MaxDiscount, &c.MinAmount,
        &c.ValidFrom, &c.ValidUntil, &c.UsageLimit, &c.UsedCount, &c.IsActive)
    if err == sql.ErrNoRows {
        return model.Coupon{}, ErrCouponNotFound
    }
    return c, err
}

// IncrementUsageTx bumps the redemption counter within the booking
// transaction so the usage limit holds under concurrent checkouts.
func (r *CouponRepo) IncrementUsageTx(ctx context.Context, tx *sql.Tx, id uint64) error {
    _, err := tx.ExecContext(ctx,
        `UPDATE coupons SET used_count = used_count + 1 WHERE id = ?`, id)
    return err
}
