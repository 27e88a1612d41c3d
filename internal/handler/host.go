package handler

import (
    "database/sql"
    "errors"
    "log"
    "net/http"
    "strconv"

    "github.com/labstack/echo/v4"

    "github.com/MM-miles16/MMMILES/internal/model"
    "github.com/MM-miles16/MMMILES/internal/repository"
)

// HostHandler receives host-registration intake forms.
type HostHandler struct {
    Hosts *repository.HostRepo
}

func NewHostHandler(hosts *repository.HostRepo) *HostHandler {
    if hosts == nil {
        panic("nil repository passed to NewHostHandler")
    }
    return &HostHandler{Hosts: hosts}
}

type hostApplicationReq struct {
    FullName     string `json:"full_name" validate:"required,min=2,max=100"`
    Phone        string `json:"phone" validate:"required,e164"`
    Email        string `json:"email" validate:"omitempty,email"`
    City         string `json:"city" validate:"required,min=2,max=60"`
    VehicleMake  string `json:"vehicle_make" validate:"required,max=60"`
    VehicleModel string `json:"vehicle_model" validate:"required,max=60"`
    VehicleYear  int    `json:"vehicle_year" validate:"required,min=1990,max=2030"`
    Notes        string `json:"notes" validate:"max=1000"`
}

// Apply handles POST /v1/host-applications.  The form is public; anyone
// can apply to list a car.  Validation failures return field-level
// messages so the client can highlight the offending input.
func (h *HostHandler) Apply(c echo.Context) error {
    var req hostApplicationReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if err := validate.Struct(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation failed", "detail": err.Error()})
    }

    app := &model.HostApplication{
        FullName:     req.FullName,
        Phone:        req.Phone,
        Email:        req.Email,
        City:         req.City,
        VehicleMake:  req.VehicleMake,
        VehicleModel: req.VehicleModel,
        VehicleYear:  req.VehicleYear,
        Notes:        req.Notes,
    }
    if err := h.Hosts.Create(c.Request().Context(), app); err != nil {
        log.Printf("hosts: create application failed phone=%s: %v", req.Phone, err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to submit application"})
    }
    return c.JSON(http.StatusCreated, echo.Map{
        "message":     "application submitted",
        "application": app,
    })
}

// Get handles GET /v1/host-applications/:id, the operator view of a
// submitted application.  The route sits behind RequireRole(ADMIN).
func (h *HostHandler) Get(c echo.Context) error {
    id, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || id == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid application id"})
    }
    app, err := h.Hosts.GetByID(c.Request().Context(), id)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "application not found"})
        }
        log.Printf("hosts: load application failed id=%d: %v", id, err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load application"})
    }
    return c.JSON(http.StatusOK, echo.Map{"application": app})
}
