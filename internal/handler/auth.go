package handler

import (
    "context"
    "database/sql"
    "errors"
    "log"
    "net/http"
    "regexp"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/MM-miles16/MMMILES/internal/config"
    "github.com/MM-miles16/MMMILES/internal/repository"
    "github.com/MM-miles16/MMMILES/internal/utils"
)

// OTPNotifier delivers a one-time code to a phone number.  Delivery
// channels (WhatsApp, SMS) are external collaborators; the service only
// needs somewhere to hand the code.
type OTPNotifier interface {
    SendOTP(ctx context.Context, phone, code string) error
}

// LogOTPNotifier writes codes to the application log.  Used in dev and
// as the fallback when no delivery integration is configured.
type LogOTPNotifier struct{}

func (LogOTPNotifier) SendOTP(_ context.Context, phone, code string) error {
    log.Printf("otp: code for %s is %s", phone, code)
    return nil
}

// phoneRe accepts E.164-style numbers: optional +, 8 to 15 digits.
var phoneRe = regexp.MustCompile(`^\+?[0-9]{8,15}$`)

// AuthHandler bundles dependencies for the phone+OTP login endpoints.
type AuthHandler struct {
    Cfg      config.Config
    Users    *repository.UserRepo
    OTPs     *repository.OTPRepo
    Notifier OTPNotifier
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo, o *repository.OTPRepo, n OTPNotifier) *AuthHandler {
    if u == nil || o == nil {
        panic("nil repository passed to NewAuthHandler")
    }
    if n == nil {
        n = LogOTPNotifier{}
    }
    return &AuthHandler{Cfg: cfg, Users: u, OTPs: o, Notifier: n}
}

// ----- DTOs -----

type sendOTPReq struct {
    Phone string `json:"phone"`
}
type verifyOTPReq struct {
    Phone string `json:"phone"`
    OTP   string `json:"otp"`
}

// SendOTP handles POST /v1/auth/send-otp.  The account row is created on
// first contact so verification has something to flag; only the bcrypt
// hash of the code is stored.
func (h *AuthHandler) SendOTP(c echo.Context) error {
    var req sendOTPReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    if !phoneRe.MatchString(req.Phone) {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "valid phone required"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    if _, err := h.Users.UpsertByPhone(ctx, req.Phone); err != nil {
        log.Printf("auth: upsert user failed phone=%s: %v", req.Phone, err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to send otp"})
    }

    code, err := utils.GenerateOTP(h.Cfg.OTPLength)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to send otp"})
    }
    hash, err := utils.HashOTP(code, h.Cfg.BcryptCost)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to send otp"})
    }
    exp := time.Now().UTC().Add(time.Duration(h.Cfg.OTPTTLMin) * time.Minute)
    if err := h.OTPs.Create(ctx, req.Phone, hash, exp); err != nil {
        log.Printf("auth: store otp failed phone=%s: %v", req.Phone, err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to send otp"})
    }
    if err := h.Notifier.SendOTP(ctx, req.Phone, code); err != nil {
        log.Printf("auth: deliver otp failed phone=%s: %v", req.Phone, err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to deliver otp"})
    }
    return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "otp sent successfully"})
}

// VerifyOTP handles POST /v1/auth/verify-otp.  The most recent code for
// the phone must match, be unexpired and unconsumed; consumption is a
// conditional update so a replayed code loses the race.  Success issues
// the long-lived access token.
func (h *AuthHandler) VerifyOTP(c echo.Context) error {
    var req verifyOTPReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    if req.Phone == "" || req.OTP == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "phone and otp required"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    ev, err := h.OTPs.LatestByPhone(ctx, req.Phone)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "no otp found"})
        }
        log.Printf("auth: load otp failed phone=%s: %v", req.Phone, err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "verification failed"})
    }
    if time.Now().UTC().After(ev.ExpiresAt) {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "otp expired"})
    }
    if !utils.VerifyOTP(ev.CodeHash, req.OTP) {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid otp"})
    }
    if err := h.OTPs.MarkConsumed(ctx, ev.ID); err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "otp already used"})
        }
        log.Printf("auth: consume otp failed phone=%s: %v", req.Phone, err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "verification failed"})
    }

    u, err := h.Users.GetByPhone(ctx, req.Phone)
    if err != nil {
        log.Printf("auth: load user failed phone=%s: %v", req.Phone, err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "verification failed"})
    }
    if err := h.Users.MarkVerified(ctx, u.ID, time.Now().UTC()); err != nil {
        log.Printf("auth: mark verified failed user=%d: %v", u.ID, err)
    }

    access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Phone, u.Role, h.Cfg.AccessTTLHours)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to issue token"})
    }
    return c.JSON(http.StatusOK, echo.Map{
        "success": true,
        "message": "otp verified successfully",
        "token":   access.Token,
        "expires": access.Exp,
    })
}
