package service

import (
    "errors"
    "time"

    "github.com/shopspring/decimal"

    "github.com/MM-miles16/MMMILES/internal/model"
)

// Coupon rejection reasons surfaced to the client.  These are user-facing
// strings, not internal errors.
const (
    CouponReasonWindow     = "coupon has expired or is not yet valid"
    CouponReasonMinAmount  = "order amount below coupon minimum"
    CouponReasonUsageLimit = "coupon usage limit exceeded"
)

// ErrCouponNotApplicable wraps a coupon rejection; the reason constant
// rides alongside it in CouponCheck.
var ErrCouponNotApplicable = errors.New("coupon not applicable")

// Quote breaks down a checkout price.
type Quote struct {
    Subtotal decimal.Decimal `json:"subtotal"`
    Discount decimal.Decimal `json:"discount"`
    Total    decimal.Decimal `json:"total"`
}

// PriceWindow computes the rental subtotal for a window: full days at
// the day rate plus remaining hours at the hour rate, with partial hours
// rounded up.  A remainder priced above a full day is charged as a day,
// so a 23-hour remainder never costs more than 24 would.
func PriceWindow(v model.Vehicle, start, end time.Time) (decimal.Decimal, error) {
    if !end.After(start) {
        return decimal.Zero, ErrInvalidWindow
    }
    d := end.Sub(start)
    days := int64(d / (24 * time.Hour))
    rem := d % (24 * time.Hour)
    hours := int64(rem / time.Hour)
    if rem%time.Hour > 0 {
        hours++
    }

    subtotal := v.PricePerDay.Mul(decimal.NewFromInt(days))
    remCost := v.PricePerHour.Mul(decimal.NewFromInt(hours))
    if remCost.GreaterThan(v.PricePerDay) {
        remCost = v.PricePerDay
    }
    return subtotal.Add(remCost).Round(2), nil
}

// CouponCheck is the outcome of validating a coupon against a subtotal.
type CouponCheck struct {
    Valid    bool            `json:"valid"`
    Reason   string          `json:"reason,omitempty"`
    Discount decimal.Decimal `json:"discount"`
}

// CheckCoupon validates a coupon against the subtotal at the given
// instant and computes the discount.  Percentage discounts are capped by
// MaxDiscount when set; no discount ever exceeds the subtotal.
func CheckCoupon(c model.Coupon, subtotal decimal.Decimal, now time.Time) CouponCheck {
    if now.Before(c.ValidFrom) || now.After(c.ValidUntil) {
        return CouponCheck{Reason: CouponReasonWindow, Discount: decimal.Zero}
    }
    if subtotal.LessThan(c.MinAmount) {
        return CouponCheck{Reason: CouponReasonMinAmount, Discount: decimal.Zero}
    }
    if c.UsageLimit > 0 && c.UsedCount >= c.UsageLimit {
        return CouponCheck{Reason: CouponReasonUsageLimit, Discount: decimal.Zero}
    }

    var discount decimal.Decimal
    switch c.DiscountType {
    case model.DiscountPercentage:
        discount = subtotal.Mul(c.DiscountValue).Div(decimal.NewFromInt(100))
        if c.MaxDiscount.IsPositive() && discount.GreaterThan(c.MaxDiscount) {
            discount = c.MaxDiscount
        }
    default: // fixed
        discount = c.DiscountValue
    }
    if discount.GreaterThan(subtotal) {
        discount = subtotal
    }
    return CouponCheck{Valid: true, Discount: discount.Round(2)}
}

// BuildQuote combines window pricing with an optional coupon check.  The
// coupon pointer is nil when the client supplied no code.
func BuildQuote(v model.Vehicle, start, end time.Time, coupon *model.Coupon, now time.Time) (Quote, error) {
    subtotal, err := PriceWindow(v, start, end)
    if err != nil {
        return Quote{}, err
    }
    discount := decimal.Zero
    if coupon != nil {
        chk := CheckCoupon(*coupon, subtotal, now)
        if !chk.Valid {
            return Quote{}, ErrCouponNotApplicable
        }
        discount = chk.Discount
    }
    return Quote{
        Subtotal: subtotal,
        Discount: discount,
        Total:    subtotal.Sub(discount),
    }, nil
}
