package middleware

import (
    "bytes"
    "context"
    "crypto/sha1"
    "fmt"
    "net/http"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/MM-miles16/MMMILES/internal/config"
)

// bodyRecorder captures the response body and status while forwarding
// everything to the client.
type bodyRecorder struct {
    http.ResponseWriter
    status int
    buf    bytes.Buffer
    limit  int
}

func (w *bodyRecorder) WriteHeader(code int) {
    w.status = code
    w.ResponseWriter.WriteHeader(code)
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
    if w.limit <= 0 || w.buf.Len() < w.limit {
        w.buf.Write(b)
    }
    return w.ResponseWriter.Write(b)
}

// NewRedisCache caches successful JSON responses for the configured TTL.
// It backs the public vehicle search so repeated city queries do not hit
// MySQL on every page load; a 30 second window of staleness in listings
// is acceptable.  Only configured methods are cached, only 200 responses
// are stored, and oversized bodies are skipped rather than truncated.
func NewRedisCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return func(next echo.HandlerFunc) echo.HandlerFunc {
            return func(c echo.Context) error { return next(c) }
        }
    }

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            r := c.Request()
            if !cfg.Methods[r.Method] {
                return next(c)
            }
            sum := sha1.Sum([]byte(r.Method + ":" + c.Path() + "?" + r.URL.RawQuery))
            key := fmt.Sprintf("%s:%x", cfg.Prefix, sum)

            if bs, err := rdb.Get(r.Context(), key).Bytes(); err == nil && len(bs) > 0 {
                c.Response().Header().Set("X-Cache", "HIT")
                return c.JSONBlob(http.StatusOK, bs)
            }

            rec := &bodyRecorder{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: cfg.MaxBodyBytes}
            c.Response().Writer = rec
            c.Response().Header().Set("X-Cache", "MISS")

            if err := next(c); err != nil {
                return err
            }

            if rec.status == http.StatusOK && rec.buf.Len() > 0 && (cfg.MaxBodyBytes <= 0 || rec.buf.Len() <= cfg.MaxBodyBytes) {
                // Store detached from the request context; the response is
                // already on its way to the client.
                _ = rdb.SetEx(context.Background(), key, rec.buf.Bytes(), cfg.TTL).Err()
            }
            return nil
        }
    }
}
