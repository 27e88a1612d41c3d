package handler

import (
    "errors"
    "log"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/shopspring/decimal"

    "github.com/MM-miles16/MMMILES/internal/repository"
    "github.com/MM-miles16/MMMILES/internal/service"
)

// CouponHandler validates discount codes for the checkout page.
type CouponHandler struct {
    Coupons *repository.CouponRepo
}

func NewCouponHandler(cp *repository.CouponRepo) *CouponHandler {
    if cp == nil {
        panic("nil repository passed to NewCouponHandler")
    }
    return &CouponHandler{Coupons: cp}
}

type validateCouponReq struct {
    Code     string          `json:"code" validate:"required"`
    Subtotal decimal.Decimal `json:"subtotal"`
}

// Validate handles POST /v1/coupons/validate.  Invalid codes and failed
// conditions come back as 400 with valid=false and a reason; the client
// shows the reason inline on the checkout form.
func (h *CouponHandler) Validate(c echo.Context) error {
    var req validateCouponReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"valid": false, "message": "invalid body"})
    }
    if err := validate.Struct(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"valid": false, "message": "coupon code is required"})
    }

    coupon, err := h.Coupons.GetActiveByCode(c.Request().Context(), req.Code)
    if err != nil {
        if errors.Is(err, repository.ErrCouponNotFound) {
            return c.JSON(http.StatusBadRequest, echo.Map{"valid": false, "message": "invalid coupon code"})
        }
        log.Printf("coupons: load failed code=%q: %v", req.Code, err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"valid": false, "message": "failed to validate coupon"})
    }

    chk := service.CheckCoupon(coupon, req.Subtotal, time.Now().UTC())
    if !chk.Valid {
        return c.JSON(http.StatusBadRequest, echo.Map{"valid": false, "message": chk.Reason})
    }
    return c.JSON(http.StatusOK, echo.Map{
        "valid":    true,
        "message":  "coupon applied successfully",
        "discount": chk.Discount,
        "coupon": echo.Map{
            "code":           coupon.Code,
            "discount_type":  coupon.DiscountType,
            "discount_value": coupon.DiscountValue,
        },
    })
}
