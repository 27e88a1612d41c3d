package handler

import (
    "errors"
    "log"
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/MM-miles16/MMMILES/internal/model"
    "github.com/MM-miles16/MMMILES/internal/repository"
    "github.com/MM-miles16/MMMILES/internal/service"
    "github.com/MM-miles16/MMMILES/internal/utils"
)

// VehicleHandler serves the public search and detail endpoints.  These
// routes are unauthenticated so guests can browse before logging in;
// search sits behind the Redis response cache.
type VehicleHandler struct {
    Vehicles *repository.VehicleRepo
    Coupons  *repository.CouponRepo
}

func NewVehicleHandler(v *repository.VehicleRepo, cp *repository.CouponRepo) *VehicleHandler {
    if v == nil {
        panic("nil repository passed to NewVehicleHandler")
    }
    return &VehicleHandler{Vehicles: v, Coupons: cp}
}

// Search handles GET /v1/vehicles?city=X.  City is mandatory; listings
// outside the caller's city are never relevant to a rental.
func (h *VehicleHandler) Search(c echo.Context) error {
    city := c.QueryParam("city")
    if city == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "city missing"})
    }
    items, err := h.Vehicles.SearchByCity(c.Request().Context(), city)
    if err != nil {
        log.Printf("vehicles: search failed city=%q: %v", city, err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load vehicles"})
    }
    if items == nil {
        items = []model.Vehicle{}
    }
    return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Get handles GET /v1/vehicles/:id.
func (h *VehicleHandler) Get(c echo.Context) error {
    id, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || id == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid vehicle id"})
    }
    v, err := h.Vehicles.GetByID(c.Request().Context(), id)
    if err != nil {
        if errors.Is(err, repository.ErrVehicleNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "vehicle not found"})
        }
        log.Printf("vehicles: get failed id=%d: %v", id, err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load vehicle"})
    }
    return c.JSON(http.StatusOK, echo.Map{"item": v})
}

// Quote handles GET /v1/vehicles/:id/quote?start=...&end=...&coupon=CODE.
// It prices a window before the user commits to a lock, applying the
// coupon when one is supplied and valid.  Timestamps must be RFC 3339.
func (h *VehicleHandler) Quote(c echo.Context) error {
    id, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || id == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid vehicle id"})
    }
    start, err := utils.ParseBookingTime(c.QueryParam("start"))
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "start: " + err.Error()})
    }
    end, err := utils.ParseBookingTime(c.QueryParam("end"))
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "end: " + err.Error()})
    }

    ctx := c.Request().Context()
    v, err := h.Vehicles.GetByID(ctx, id)
    if err != nil {
        if errors.Is(err, repository.ErrVehicleNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "vehicle not found"})
        }
        log.Printf("vehicles: quote load failed id=%d: %v", id, err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load vehicle"})
    }

    var coupon *model.Coupon
    if code := c.QueryParam("coupon"); code != "" && h.Coupons != nil {
        cp, err := h.Coupons.GetActiveByCode(ctx, code)
        if err != nil {
            if errors.Is(err, repository.ErrCouponNotFound) {
                return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid coupon code"})
            }
            log.Printf("vehicles: coupon load failed code=%q: %v", code, err)
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to validate coupon"})
        }
        coupon = &cp
    }

    quote, err := service.BuildQuote(v, start, end, coupon, time.Now().UTC())
    if err != nil {
        if errors.Is(err, service.ErrInvalidWindow) {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "end must be after start"})
        }
        if errors.Is(err, service.ErrCouponNotApplicable) {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "coupon not applicable"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to build quote"})
    }
    return c.JSON(http.StatusOK, echo.Map{"quote": quote})
}
