// Package service holds the business logic that sits between the HTTP
// handlers and the repositories: the reservation lock manager, the
// cleanup sweeper and checkout pricing.
package service

import (
    "context"
    "errors"
    "fmt"
    "time"

    "github.com/google/uuid"

    "github.com/MM-miles16/MMMILES/internal/model"
    "github.com/MM-miles16/MMMILES/internal/repository"
)

// ErrInvalidWindow is returned when a claim's rental window is missing
// or its end does not come after its start.  Handlers translate it into
// an HTTP 400 response.
var ErrInvalidWindow = errors.New("invalid rental window")

// ConflictError is returned when another user holds a live lock on the
// requested vehicle.  It carries the blocking locks so the client can
// show who holds the vehicle and until when.
type ConflictError struct {
    Blocking []model.Lock
}

func (e *ConflictError) Error() string {
    return fmt.Sprintf("vehicle locked by another user (%d blocking locks)", len(e.Blocking))
}

// LockStore is the storage contract the manager runs on.  Acquire must
// be atomic with respect to other Acquire calls for the same vehicle:
// the conflict check and the insert happen as one unit, so two racing
// claims never both succeed.  The MySQL implementation lives in
// repository.LockRepo; tests substitute an in-memory store.
type LockStore interface {
    Acquire(ctx context.Context, rec *repository.LockRecord, now time.Time) (created bool, existing *repository.LockRecord, blocking []repository.LockRecord, err error)
    ActiveByVehicle(ctx context.Context, vehicleID uint64, now time.Time) ([]repository.LockRecord, error)
    Release(ctx context.Context, vehicleID, userID uint64, now time.Time) (int64, error)
    SweepExpired(ctx context.Context, now time.Time) (int64, error)
    PurgeStale(ctx context.Context, cutoff time.Time) (int64, error)
}

// AcquireInput carries a claim request into the manager.  The caller
// identity comes from the authenticated context, never the body.
type AcquireInput struct {
    VehicleID  uint64
    UserID     uint64
    StartTime  time.Time
    EndTime    time.Time
    DeviceInfo string
}

// AcquireResult is the manager's answer to a successful claim.  Existing
// is true when the caller already held a live lock and got it back
// unchanged instead of a duplicate.
type AcquireResult struct {
    Lock     model.Lock
    Existing bool
}

// LockManager enforces single-holder semantics for vehicle reservation
// locks.  Correctness comes from the store's atomic Acquire; the manager
// adds validation, lease computation and the error taxonomy.
type LockManager struct {
    store     LockStore
    lease     time.Duration // how long a fresh lock blocks other users
    retention time.Duration // how long terminal locks are kept before purge
    now       func() time.Time
}

// NewLockManager wires a manager over the given store.  Lease and
// retention must be positive; the defaults used in production are 30
// minutes and 24 hours.
func NewLockManager(store LockStore, lease, retention time.Duration) *LockManager {
    if store == nil {
        panic("nil store passed to NewLockManager")
    }
    if lease <= 0 || retention <= 0 {
        panic("lease and retention must be positive")
    }
    return &LockManager{store: store, lease: lease, retention: retention, now: time.Now}
}

// Acquire claims the vehicle for the caller.  Outcomes:
//   - a fresh lock with status active and a lease of now+lease duration,
//   - the caller's existing live lock (idempotent re-acquire), or
//   - *ConflictError carrying the blocking locks of other users.
//
// Window validation rejects zero timestamps and windows whose end does
// not come after their start; ambiguous local formats never reach this
// point because the gateway only accepts RFC 3339.
func (m *LockManager) Acquire(ctx context.Context, in AcquireInput) (AcquireResult, error) {
    if in.VehicleID == 0 || in.UserID == 0 {
        return AcquireResult{}, ErrInvalidWindow
    }
    if in.StartTime.IsZero() || in.EndTime.IsZero() || !in.EndTime.After(in.StartTime) {
        return AcquireResult{}, ErrInvalidWindow
    }
    now := m.now().UTC()
    rec := &repository.LockRecord{
        VehicleID:  in.VehicleID,
        UserID:     in.UserID,
        StartTime:  in.StartTime.UTC(),
        EndTime:    in.EndTime.UTC(),
        ExpiresAt:  now.Add(m.lease),
        Status:     model.LockStatusActive,
        SessionID:  uuid.NewString(),
        DeviceInfo: in.DeviceInfo,
    }
    created, existing, blocking, err := m.store.Acquire(ctx, rec, now)
    if err != nil {
        return AcquireResult{}, err
    }
    if len(blocking) > 0 {
        return AcquireResult{}, &ConflictError{Blocking: toModels(blocking)}
    }
    if existing != nil {
        return AcquireResult{Lock: existing.Model(), Existing: true}, nil
    }
    if !created {
        return AcquireResult{}, errors.New("lock store returned no outcome")
    }
    return AcquireResult{Lock: rec.Model()}, nil
}

// Query returns the locks currently blocking the vehicle.  Rows whose
// lease already ran out are excluded even before the sweeper runs.
func (m *LockManager) Query(ctx context.Context, vehicleID uint64) ([]model.Lock, error) {
    recs, err := m.store.ActiveByVehicle(ctx, vehicleID, m.now().UTC())
    if err != nil {
        return nil, err
    }
    return toModels(recs), nil
}

// Release cancels the caller's live lock on the vehicle.  Releasing a
// lock that does not exist is a no-op, not an error.
func (m *LockManager) Release(ctx context.Context, vehicleID, userID uint64) error {
    _, err := m.store.Release(ctx, vehicleID, userID, m.now().UTC())
    return err
}

// Sweep reconciles lazily-expired locks into the explicit expired state
// and returns how many rows changed.
func (m *LockManager) Sweep(ctx context.Context) (int64, error) {
    return m.store.SweepExpired(ctx, m.now().UTC())
}

// Purge deletes terminal-state locks older than the retention window
// and returns how many rows were removed.
func (m *LockManager) Purge(ctx context.Context) (int64, error) {
    return m.store.PurgeStale(ctx, m.now().UTC().Add(-m.retention))
}

func toModels(recs []repository.LockRecord) []model.Lock {
    out := make([]model.Lock, 0, len(recs))
    for i := range recs {
        out = append(out, recs[i].Model())
    }
    return out
}
