package handler

import (
    "errors"
    "log"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/MM-miles16/MMMILES/internal/model"
    "github.com/MM-miles16/MMMILES/internal/repository"
    "github.com/MM-miles16/MMMILES/internal/service"
    "github.com/MM-miles16/MMMILES/internal/utils"
)

// LockHandler exposes the vehicle reservation lock operations.  All
// mutating methods assume JWT authentication has already run; the caller
// identity always comes from the token, never the body.  Store-level
// failures are logged with the vehicle and caller for diagnosis but are
// returned to the client as a generic error.
type LockHandler struct {
    Mgr *service.LockManager
}

// NewLockHandler constructs a LockHandler.  The manager must be non-nil.
func NewLockHandler(mgr *service.LockManager) *LockHandler {
    if mgr == nil {
        panic("nil manager passed to NewLockHandler")
    }
    return &LockHandler{Mgr: mgr}
}

// Query handles GET /v1/locks?vehicle_id=X.  It returns every lock that
// currently blocks the vehicle plus a count, and is safe to call without
// authentication: the car detail page polls it to show availability.
func (h *LockHandler) Query(c echo.Context) error {
    vehicleID, err := parseVehicleID(c)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
    }
    locks, err := h.Mgr.Query(c.Request().Context(), vehicleID)
    if err != nil {
        log.Printf("locks: query failed vehicle=%d: %v", vehicleID, err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to check locks"})
    }
    if locks == nil {
        locks = []model.Lock{}
    }
    return c.JSON(http.StatusOK, echo.Map{
        "locks":           locks,
        "activeLockCount": len(locks),
    })
}

type acquireReq struct {
    VehicleID uint64 `json:"vehicle_id" validate:"required"`
    StartTime string `json:"start_time" validate:"required"`
    EndTime   string `json:"end_time" validate:"required"`
}

// Acquire handles POST /v1/locks.  On success the caller holds the only
// live lock on the vehicle for the next lease period; re-posting while
// the lock is live returns the same lock instead of a duplicate.  A 409
// carries the blocking locks so the client can show who holds the car.
func (h *LockHandler) Acquire(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    var req acquireReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if err := validate.Struct(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "vehicle_id, start_time and end_time are required"})
    }
    start, err := utils.ParseBookingTime(req.StartTime)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "start_time: " + err.Error()})
    }
    end, err := utils.ParseBookingTime(req.EndTime)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "end_time: " + err.Error()})
    }

    res, err := h.Mgr.Acquire(c.Request().Context(), service.AcquireInput{
        VehicleID:  req.VehicleID,
        UserID:     userID,
        StartTime:  start,
        EndTime:    end,
        DeviceInfo: c.Request().UserAgent(),
    })
    if err != nil {
        var conflict *service.ConflictError
        switch {
        case errors.As(err, &conflict):
            return c.JSON(http.StatusConflict, echo.Map{
                "error":           "vehicle is currently locked by another user",
                "locked_by_other": true,
                "existing_locks":  conflict.Blocking,
            })
        case errors.Is(err, service.ErrInvalidWindow):
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "end_time must be after start_time"})
        case errors.Is(err, repository.ErrVehicleNotFound):
            return c.JSON(http.StatusNotFound, echo.Map{"error": "vehicle not found"})
        }
        log.Printf("locks: acquire failed vehicle=%d user=%d: %v", req.VehicleID, userID, err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create lock"})
    }
    if res.Existing {
        return c.JSON(http.StatusOK, echo.Map{
            "message":       "user already has an active lock for this vehicle",
            "lock":          res.Lock,
            "existing_lock": true,
        })
    }
    return c.JSON(http.StatusOK, echo.Map{
        "message": "lock created successfully",
        "lock":    res.Lock,
    })
}

// Release handles DELETE /v1/locks?vehicle_id=X.  Releasing a lock that
// does not exist still returns 200 so client retry logic stays simple.
func (h *LockHandler) Release(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    vehicleID, err := parseVehicleID(c)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
    }
    if err := h.Mgr.Release(c.Request().Context(), vehicleID, userID); err != nil {
        log.Printf("locks: release failed vehicle=%d user=%d: %v", vehicleID, userID, err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to remove lock"})
    }
    return c.JSON(http.StatusOK, echo.Map{"message": "lock removed successfully"})
}

// Cleanup handles POST /v1/locks/cleanup, the operational trigger for a
// sweep-and-purge pass.  A failed sweep is an error; a failed purge is
// only housekeeping and is logged without failing the request.
func (h *LockHandler) Cleanup(c echo.Context) error {
    ctx := c.Request().Context()
    if _, err := h.Mgr.Sweep(ctx); err != nil {
        log.Printf("locks: cleanup sweep failed: %v", err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update expired locks"})
    }
    if _, err := h.Mgr.Purge(ctx); err != nil {
        log.Printf("locks: cleanup purge failed: %v", err)
    }
    return c.JSON(http.StatusOK, echo.Map{
        "message":   "lock cleanup completed successfully",
        "timestamp": time.Now().UTC().Format(time.RFC3339),
    })
}
