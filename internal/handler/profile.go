package handler

import (
    "context"
    "log"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/MM-miles16/MMMILES/internal/repository"
)

// ProfileHandler serves the authenticated user's dashboard profile.
type ProfileHandler struct {
    Users *repository.UserRepo
}

func NewProfileHandler(u *repository.UserRepo) *ProfileHandler {
    if u == nil {
        panic("nil repository passed to NewProfileHandler")
    }
    return &ProfileHandler{Users: u}
}

// Me handles GET /v1/me.
func (h *ProfileHandler) Me(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    u, err := h.Users.GetByID(ctx, userID)
    if err != nil {
        log.Printf("profile: load failed user=%d: %v", userID, err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load profile"})
    }
    return c.JSON(http.StatusOK, echo.Map{"user": u})
}

type updateProfileReq struct {
    FullName string `json:"full_name" validate:"required,min=2,max=100"`
    Email    string `json:"email" validate:"omitempty,email"`
}

// Update handles PUT /v1/me.
func (h *ProfileHandler) Update(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    var req updateProfileReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if err := validate.Struct(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation failed", "detail": err.Error()})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    if err := h.Users.UpdateProfile(ctx, userID, req.FullName, req.Email); err != nil {
        log.Printf("profile: update failed user=%d: %v", userID, err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update profile"})
    }
    u, err := h.Users.GetByID(ctx, userID)
    if err != nil {
        return c.JSON(http.StatusOK, echo.Map{"message": "profile updated"})
    }
    return c.JSON(http.StatusOK, echo.Map{"message": "profile updated", "user": u})
}
