package handler

import (
    "context"
    "errors"
    "log"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/MM-miles16/MMMILES/internal/model"
    "github.com/MM-miles16/MMMILES/internal/queue"
    "github.com/MM-miles16/MMMILES/internal/queue_publisher"
    "github.com/MM-miles16/MMMILES/internal/repository"
    "github.com/MM-miles16/MMMILES/internal/service"
)

// BookingHandler finalises checkout.  Creating a booking converts the
// caller's live lock in the same transaction as the booking insert, so
// a lock can never turn into two bookings and a booking never appears
// without its lock having been converted.
type BookingHandler struct {
    Locks    *repository.LockRepo
    Bookings *repository.BookingRepo
    Vehicles *repository.VehicleRepo
    Coupons  *repository.CouponRepo
}

func NewBookingHandler(locks *repository.LockRepo, bookings *repository.BookingRepo, vehicles *repository.VehicleRepo, coupons *repository.CouponRepo) *BookingHandler {
    if locks == nil || bookings == nil || vehicles == nil || coupons == nil {
        panic("nil repository passed to NewBookingHandler")
    }
    return &BookingHandler{Locks: locks, Bookings: bookings, Vehicles: vehicles, Coupons: coupons}
}

type createBookingReq struct {
    VehicleID  uint64 `json:"vehicle_id" validate:"required"`
    CouponCode string `json:"coupon_code"`
}

// Create handles POST /v1/bookings.  The rental window comes from the
// caller's lock, not the request body: whatever window the lock protects
// is what gets booked.  Requires a live lock on the vehicle (409 when it
// expired or was never taken).
func (h *BookingHandler) Create(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    var req createBookingReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if err := validate.Struct(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "vehicle_id is required"})
    }

    ctx := c.Request().Context()
    now := time.Now().UTC()

    vehicle, err := h.Vehicles.GetByID(ctx, req.VehicleID)
    if err != nil {
        if errors.Is(err, repository.ErrVehicleNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "vehicle not found"})
        }
        log.Printf("bookings: load vehicle failed id=%d: %v", req.VehicleID, err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load vehicle"})
    }

    var coupon *model.Coupon
    if req.CouponCode != "" {
        cp, err := h.Coupons.GetActiveByCode(ctx, req.CouponCode)
        if err != nil {
            if errors.Is(err, repository.ErrCouponNotFound) {
                return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid coupon code"})
            }
            log.Printf("bookings: coupon load failed code=%q: %v", req.CouponCode, err)
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to validate coupon"})
        }
        coupon = &cp
    }

    tx, err := h.Locks.DB().BeginTx(ctx, nil)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    lock, err := h.Locks.ConvertTx(ctx, tx, req.VehicleID, userID, now)
    if err != nil {
        if errors.Is(err, repository.ErrNoActiveLock) {
            return c.JSON(http.StatusConflict, echo.Map{"error": "no active lock for this vehicle; restart checkout"})
        }
        log.Printf("bookings: convert lock failed vehicle=%d user=%d: %v", req.VehicleID, userID, err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to confirm booking"})
    }

    quote, err := service.BuildQuote(vehicle, lock.StartTime, lock.EndTime, coupon, now)
    if err != nil {
        if errors.Is(err, service.ErrCouponNotApplicable) {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "coupon not applicable"})
        }
        log.Printf("bookings: quote failed vehicle=%d: %v", req.VehicleID, err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to price booking"})
    }

    booking := &model.Booking{
        UserID:    userID,
        VehicleID: req.VehicleID,
        LockID:    lock.ID,
        StartTime: lock.StartTime,
        EndTime:   lock.EndTime,
        Subtotal:  quote.Subtotal,
        Discount:  quote.Discount,
        Total:     quote.Total,
        Status:    "CONFIRMED",
    }
    if coupon != nil {
        booking.CouponCode = coupon.Code
        if err := h.Coupons.IncrementUsageTx(ctx, tx, coupon.ID); err != nil {
            log.Printf("bookings: coupon usage bump failed id=%d: %v", coupon.ID, err)
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to apply coupon"})
        }
    }
    if err := h.Bookings.CreateTx(ctx, tx, booking); err != nil {
        log.Printf("bookings: insert failed vehicle=%d user=%d: %v", req.VehicleID, userID, err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create booking"})
    }
    if err := tx.Commit(); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
    }
    committed = true

    // Publish after commit; a broker outage must not undo the booking.
    event := queue.BookingConfirmedEvent{
        BookingID:   booking.ID,
        LockID:      lock.ID,
        UserID:      userID,
        VehicleID:   vehicle.ID,
        VehicleName: vehicle.Make + " " + vehicle.CarModel,
        City:        vehicle.City,
        StartTime:   booking.StartTime.Format(time.RFC3339),
        EndTime:     booking.EndTime.Format(time.RFC3339),
        Subtotal:    booking.Subtotal.StringFixed(2),
        Discount:    booking.Discount.StringFixed(2),
        Total:       booking.Total.StringFixed(2),
        CouponCode:  booking.CouponCode,
        ConfirmedAt: now.Format(time.RFC3339),
    }
    go func() {
        pubCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
        defer cancel()
        _ = queue_publisher.PublishBookingConfirmed(pubCtx, event)
    }()

    return c.JSON(http.StatusCreated, echo.Map{"booking": booking})
}

// List handles GET /v1/bookings for the authenticated user.
func (h *BookingHandler) List(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    items, err := h.Bookings.ListByUser(c.Request().Context(), userID)
    if err != nil {
        log.Printf("bookings: list failed user=%d: %v", userID, err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load bookings"})
    }
    if items == nil {
        items = []model.Booking{}
    }
    return c.JSON(http.StatusOK, echo.Map{"items": items})
}
