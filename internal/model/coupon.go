package model

import (
    "time"

    "github.com/shopspring/decimal"
)

// Coupon discount types.
const (
    DiscountFixed      = "fixed"
    DiscountPercentage = "percentage"
)

// Coupon represents a checkout discount code.  Percentage coupons may cap
// the discount via MaxDiscount; fixed coupons ignore it.
type Coupon struct {
    ID            uint64          `json:"id"`             // coupons.id
    Code          string          `json:"code"`           // coupons.code, stored upper-case
    DiscountType  string          `json:"discount_type"`  // coupons.discount_type
    DiscountValue decimal.Decimal `json:"discount_value"` // coupons.discount_value
    MaxDiscount   decimal.Decimal `json:"max_discount"`   // coupons.max_discount, zero = uncapped
    MinAmount     decimal.Decimal `json:"min_amount"`     // coupons.min_amount
    ValidFrom     time.Time       `json:"valid_from"`     // coupons.valid_from
    ValidUntil    time.Time       `json:"valid_until"`    // coupons.valid_until
    UsageLimit    int             `json:"usage_limit"`    // coupons.usage_limit, zero = unlimited
    UsedCount     int             `json:"used_count"`     // coupons.used_count
    IsActive      bool            `json:"is_active"`      // coupons.is_active
}
