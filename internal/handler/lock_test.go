package handler

import (
    "context"
    "encoding/json"
    "net/http"
    "net/http/httptest"
    "strings"
    "sync"
    "testing"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/MM-miles16/MMMILES/internal/model"
    "github.com/MM-miles16/MMMILES/internal/repository"
    "github.com/MM-miles16/MMMILES/internal/service"
)

// fakeLockStore implements service.LockStore in memory so handlers can
// be exercised without MySQL.  One mutex around Acquire gives the same
// atomicity the row-locking SQL implementation provides.
type fakeLockStore struct {
    mu       sync.Mutex
    nextID   uint64
    vehicles map[uint64]bool
    locks    map[uint64]*repository.LockRecord
}

func newFakeLockStore(vehicleIDs ...uint64) *fakeLockStore {
    s := &fakeLockStore{
        vehicles: make(map[uint64]bool),
        locks:    make(map[uint64]*repository.LockRecord),
    }
    for _, id := range vehicleIDs {
        s.vehicles[id] = true
    }
    return s
}

func (s *fakeLockStore) Acquire(_ context.Context, rec *repository.LockRecord, now time.Time) (bool, *repository.LockRecord, []repository.LockRecord, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    if !s.vehicles[rec.VehicleID] {
        return false, nil, nil, repository.ErrVehicleNotFound
    }
    var blocking []repository.LockRecord
    for _, l := range s.locks {
        if m := l.Model(); l.VehicleID != rec.VehicleID || !m.Blocking(now) {
            continue
        }
        if l.UserID == rec.UserID {
            cp := *l
            return false, &cp, nil, nil
        }
        blocking = append(blocking, *l)
    }
    if len(blocking) > 0 {
        return false, nil, blocking, nil
    }
    s.nextID++
    rec.ID = s.nextID
    rec.CreatedAt = now.UTC()
    cp := *rec
    s.locks[rec.ID] = &cp
    return true, nil, nil, nil
}

func (s *fakeLockStore) ActiveByVehicle(_ context.Context, vehicleID uint64, now time.Time) ([]repository.LockRecord, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    var out []repository.LockRecord
    for _, l := range s.locks {
        if m := l.Model(); l.VehicleID == vehicleID && m.Blocking(now) {
            out = append(out, *l)
        }
    }
    return out, nil
}

func (s *fakeLockStore) Release(_ context.Context, vehicleID, userID uint64, now time.Time) (int64, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    var n int64
    for _, l := range s.locks {
        if m := l.Model(); l.VehicleID == vehicleID && l.UserID == userID && m.Blocking(now) {
            l.Status = model.LockStatusCancelled
            n++
        }
    }
    return n, nil
}

func (s *fakeLockStore) SweepExpired(_ context.Context, now time.Time) (int64, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    var n int64
    for _, l := range s.locks {
        if l.Status == model.LockStatusActive && !l.ExpiresAt.After(now) {
            l.Status = model.LockStatusExpired
            n++
        }
    }
    return n, nil
}

func (s *fakeLockStore) PurgeStale(_ context.Context, cutoff time.Time) (int64, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    var n int64
    for id, l := range s.locks {
        if m := l.Model(); m.Terminal() && l.CreatedAt.Before(cutoff) {
            delete(s.locks, id)
            n++
        }
    }
    return n, nil
}

func newLockTestHandler(vehicleIDs ...uint64) *LockHandler {
    mgr := service.NewLockManager(newFakeLockStore(vehicleIDs...), 30*time.Minute, 24*time.Hour)
    return NewLockHandler(mgr)
}

func acquireBody(vehicleID uint64) string {
    start := time.Now().UTC().Add(24 * time.Hour).Format(time.RFC3339)
    end := time.Now().UTC().Add(48 * time.Hour).Format(time.RFC3339)
    b, _ := json.Marshal(echo.Map{
        "vehicle_id": vehicleID,
        "start_time": start,
        "end_time":   end,
    })
    return string(b)
}

// doJSON runs a handler against a synthetic request and decodes the JSON
// response.  userID zero leaves the context unauthenticated.
func doJSON(t *testing.T, h echo.HandlerFunc, method, target, body string, userID uint64) (int, map[string]any) {
    t.Helper()
    e := echo.New()
    req := httptest.NewRequest(method, target, strings.NewReader(body))
    if body != "" {
        req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
    }
    rec := httptest.NewRecorder()
    c := e.NewContext(req, rec)
    if userID != 0 {
        c.Set("user_id", userID)
    }
    require.NoError(t, h(c))

    var out map[string]any
    require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
    return rec.Code, out
}

func TestLockQueryEmpty(t *testing.T) {
    h := newLockTestHandler(1)

    code, body := doJSON(t, h.Query, http.MethodGet, "/v1/locks?vehicle_id=1", "", 0)
    assert.Equal(t, http.StatusOK, code)
    assert.Equal(t, float64(0), body["activeLockCount"])
    assert.Empty(t, body["locks"])
}

func TestLockQueryMissingVehicleID(t *testing.T) {
    h := newLockTestHandler(1)

    code, body := doJSON(t, h.Query, http.MethodGet, "/v1/locks", "", 0)
    assert.Equal(t, http.StatusBadRequest, code)
    assert.Equal(t, "vehicle_id is required", body["error"])
}

func TestLockAcquireSuccess(t *testing.T) {
    h := newLockTestHandler(1)

    code, body := doJSON(t, h.Acquire, http.MethodPost, "/v1/locks", acquireBody(1), 10)
    require.Equal(t, http.StatusOK, code)
    assert.Equal(t, "lock created successfully", body["message"])

    lock, ok := body["lock"].(map[string]any)
    require.True(t, ok)
    assert.Equal(t, "active", lock["status"])
    assert.Equal(t, float64(10), lock["user_id"])

    code, body = doJSON(t, h.Query, http.MethodGet, "/v1/locks?vehicle_id=1", "", 0)
    require.Equal(t, http.StatusOK, code)
    assert.Equal(t, float64(1), body["activeLockCount"])
}

func TestLockAcquireConflict(t *testing.T) {
    h := newLockTestHandler(1)

    code, _ := doJSON(t, h.Acquire, http.MethodPost, "/v1/locks", acquireBody(1), 10)
    require.Equal(t, http.StatusOK, code)

    code, body := doJSON(t, h.Acquire, http.MethodPost, "/v1/locks", acquireBody(1), 20)
    assert.Equal(t, http.StatusConflict, code)
    assert.Equal(t, true, body["locked_by_other"])

    existing, ok := body["existing_locks"].([]any)
    require.True(t, ok)
    require.Len(t, existing, 1)
    blocking := existing[0].(map[string]any)
    assert.Equal(t, float64(10), blocking["user_id"])
}

func TestLockAcquireIdempotent(t *testing.T) {
    h := newLockTestHandler(1)

    code, first := doJSON(t, h.Acquire, http.MethodPost, "/v1/locks", acquireBody(1), 10)
    require.Equal(t, http.StatusOK, code)

    code, second := doJSON(t, h.Acquire, http.MethodPost, "/v1/locks", acquireBody(1), 10)
    assert.Equal(t, http.StatusOK, code)
    assert.Equal(t, true, second["existing_lock"])

    firstLock := first["lock"].(map[string]any)
    secondLock := second["lock"].(map[string]any)
    assert.Equal(t, firstLock["id"], secondLock["id"])
}

func TestLockAcquireUnauthorized(t *testing.T) {
    h := newLockTestHandler(1)

    code, body := doJSON(t, h.Acquire, http.MethodPost, "/v1/locks", acquireBody(1), 0)
    assert.Equal(t, http.StatusUnauthorized, code)
    assert.Equal(t, "unauthorized", body["error"])
}

func TestLockAcquireUnknownVehicle(t *testing.T) {
    h := newLockTestHandler(1)

    code, body := doJSON(t, h.Acquire, http.MethodPost, "/v1/locks", acquireBody(99), 10)
    assert.Equal(t, http.StatusNotFound, code)
    assert.Equal(t, "vehicle not found", body["error"])
}

func TestLockAcquireRejectsAmbiguousDates(t *testing.T) {
    h := newLockTestHandler(1)

    b, _ := json.Marshal(echo.Map{
        "vehicle_id": 1,
        "start_time": "09/12/2025 09:00",
        "end_time":   "12/12/2025 09:00",
    })
    code, body := doJSON(t, h.Acquire, http.MethodPost, "/v1/locks", string(b), 10)
    assert.Equal(t, http.StatusBadRequest, code)
    assert.Contains(t, body["error"], "RFC 3339")
}

func TestLockAcquireRejectsInvertedWindow(t *testing.T) {
    h := newLockTestHandler(1)

    start := time.Now().UTC().Add(48 * time.Hour).Format(time.RFC3339)
    end := time.Now().UTC().Add(24 * time.Hour).Format(time.RFC3339)
    b, _ := json.Marshal(echo.Map{
        "vehicle_id": 1,
        "start_time": start,
        "end_time":   end,
    })
    code, body := doJSON(t, h.Acquire, http.MethodPost, "/v1/locks", string(b), 10)
    assert.Equal(t, http.StatusBadRequest, code)
    assert.Equal(t, "end_time must be after start_time", body["error"])
}

func TestLockAcquireMissingFields(t *testing.T) {
    h := newLockTestHandler(1)

    code, _ := doJSON(t, h.Acquire, http.MethodPost, "/v1/locks", `{"vehicle_id":1}`, 10)
    assert.Equal(t, http.StatusBadRequest, code)
}

func TestLockReleaseAlwaysSucceeds(t *testing.T) {
    h := newLockTestHandler(1)

    code, _ := doJSON(t, h.Acquire, http.MethodPost, "/v1/locks", acquireBody(1), 10)
    require.Equal(t, http.StatusOK, code)

    // Release the held lock, then release again with nothing held.
    code, body := doJSON(t, h.Release, http.MethodDelete, "/v1/locks?vehicle_id=1", "", 10)
    assert.Equal(t, http.StatusOK, code)
    assert.Equal(t, "lock removed successfully", body["message"])

    code, _ = doJSON(t, h.Release, http.MethodDelete, "/v1/locks?vehicle_id=1", "", 10)
    assert.Equal(t, http.StatusOK, code)

    code, resp := doJSON(t, h.Query, http.MethodGet, "/v1/locks?vehicle_id=1", "", 0)
    require.Equal(t, http.StatusOK, code)
    assert.Equal(t, float64(0), resp["activeLockCount"])
}

func TestLockCleanup(t *testing.T) {
    h := newLockTestHandler(1)

    code, body := doJSON(t, h.Cleanup, http.MethodPost, "/v1/locks/cleanup", "", 10)
    assert.Equal(t, http.StatusOK, code)
    assert.Equal(t, "lock cleanup completed successfully", body["message"])

    ts, ok := body["timestamp"].(string)
    require.True(t, ok)
    _, err := time.Parse(time.RFC3339, ts)
    assert.NoError(t, err)
}
