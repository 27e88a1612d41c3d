package service

import (
    "context"
    "errors"
    "sync"
    "sync/atomic"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/MM-miles16/MMMILES/internal/repository"
)

var baseTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestManager(store LockStore, at time.Time) *LockManager {
    m := NewLockManager(store, 30*time.Minute, 24*time.Hour)
    m.now = func() time.Time { return at }
    return m
}

func claim(vehicleID, userID uint64) AcquireInput {
    return AcquireInput{
        VehicleID:  vehicleID,
        UserID:     userID,
        StartTime:  baseTime.Add(24 * time.Hour),
        EndTime:    baseTime.Add(48 * time.Hour),
        DeviceInfo: "test-agent",
    }
}

func TestAcquireCreatesActiveLock(t *testing.T) {
    store := newMemStore(1)
    mgr := newTestManager(store, baseTime)

    res, err := mgr.Acquire(context.Background(), claim(1, 10))
    require.NoError(t, err)
    assert.False(t, res.Existing)
    assert.Equal(t, "active", res.Lock.Status)
    assert.Equal(t, baseTime.Add(30*time.Minute), res.Lock.ExpiresAt)
    assert.NotEmpty(t, res.Lock.SessionID)

    locks, err := mgr.Query(context.Background(), 1)
    require.NoError(t, err)
    assert.Len(t, locks, 1)
}

func TestAcquireRejectsInvalidWindow(t *testing.T) {
    mgr := newTestManager(newMemStore(1), baseTime)

    cases := []AcquireInput{
        {VehicleID: 1, UserID: 10}, // zero timestamps
        {VehicleID: 1, UserID: 10, StartTime: baseTime, EndTime: baseTime},                     // end == start
        {VehicleID: 1, UserID: 10, StartTime: baseTime, EndTime: baseTime.Add(-time.Hour)},    // end before start
        {VehicleID: 0, UserID: 10, StartTime: baseTime, EndTime: baseTime.Add(time.Hour)},     // missing vehicle
        {VehicleID: 1, UserID: 0, StartTime: baseTime, EndTime: baseTime.Add(time.Hour)},      // missing user
    }
    for _, in := range cases {
        _, err := mgr.Acquire(context.Background(), in)
        assert.ErrorIs(t, err, ErrInvalidWindow)
    }
}

func TestAcquireUnknownVehicle(t *testing.T) {
    mgr := newTestManager(newMemStore(1), baseTime)

    _, err := mgr.Acquire(context.Background(), claim(99, 10))
    assert.ErrorIs(t, err, repository.ErrVehicleNotFound)
}

func TestAcquireConflictBetweenUsers(t *testing.T) {
    store := newMemStore(1)
    mgr := newTestManager(store, baseTime)

    first, err := mgr.Acquire(context.Background(), claim(1, 10))
    require.NoError(t, err)

    _, err = mgr.Acquire(context.Background(), claim(1, 20))
    var conflict *ConflictError
    require.ErrorAs(t, err, &conflict)
    require.Len(t, conflict.Blocking, 1)
    assert.Equal(t, first.Lock.ID, conflict.Blocking[0].ID)
    assert.Equal(t, uint64(10), conflict.Blocking[0].UserID)
}

func TestAcquireIdempotentForSameUser(t *testing.T) {
    store := newMemStore(1)
    mgr := newTestManager(store, baseTime)

    first, err := mgr.Acquire(context.Background(), claim(1, 10))
    require.NoError(t, err)
    require.False(t, first.Existing)

    second, err := mgr.Acquire(context.Background(), claim(1, 10))
    require.NoError(t, err)
    assert.True(t, second.Existing)
    assert.Equal(t, first.Lock.ID, second.Lock.ID)
    assert.Equal(t, first.Lock.SessionID, second.Lock.SessionID)

    // The re-acquire must not have inserted a duplicate row.
    locks, err := mgr.Query(context.Background(), 1)
    require.NoError(t, err)
    assert.Len(t, locks, 1)
}

func TestConcurrentAcquireSingleWinner(t *testing.T) {
    store := newMemStore(1)
    mgr := newTestManager(store, baseTime)

    const callers = 32
    var wins, conflicts int64
    var wg sync.WaitGroup
    start := make(chan struct{})
    for i := 0; i < callers; i++ {
        wg.Add(1)
        go func(userID uint64) {
            defer wg.Done()
            <-start
            _, err := mgr.Acquire(context.Background(), claim(1, userID))
            switch {
            case err == nil:
                atomic.AddInt64(&wins, 1)
            default:
                var conflict *ConflictError
                if errors.As(err, &conflict) {
                    atomic.AddInt64(&conflicts, 1)
                }
            }
        }(uint64(100 + i))
    }
    close(start)
    wg.Wait()

    assert.Equal(t, int64(1), wins, "exactly one caller may win the lock")
    assert.Equal(t, int64(callers-1), conflicts)

    locks, err := mgr.Query(context.Background(), 1)
    require.NoError(t, err)
    assert.Len(t, locks, 1)
}

func TestExpiredLockStopsBlocking(t *testing.T) {
    store := newMemStore(1)
    mgr := newTestManager(store, baseTime)

    _, err := mgr.Acquire(context.Background(), claim(1, 10))
    require.NoError(t, err)

    // One second past the lease deadline the lock must neither show up
    // in queries nor block a new claim, even though no sweep ran.
    later := baseTime.Add(30*time.Minute + time.Second)
    mgr.now = func() time.Time { return later }

    locks, err := mgr.Query(context.Background(), 1)
    require.NoError(t, err)
    assert.Empty(t, locks)

    res, err := mgr.Acquire(context.Background(), claim(1, 20))
    require.NoError(t, err)
    assert.False(t, res.Existing)
    assert.Equal(t, uint64(20), res.Lock.UserID)
}

func TestLockBlocksUntilLeaseDeadline(t *testing.T) {
    store := newMemStore(1)
    mgr := newTestManager(store, baseTime)

    _, err := mgr.Acquire(context.Background(), claim(1, 10))
    require.NoError(t, err)

    // At 29 minutes the lease still holds.
    mgr.now = func() time.Time { return baseTime.Add(29 * time.Minute) }
    _, err = mgr.Acquire(context.Background(), claim(1, 20))
    var conflict *ConflictError
    assert.ErrorAs(t, err, &conflict)
}

func TestReleaseIsIdempotent(t *testing.T) {
    store := newMemStore(1)
    mgr := newTestManager(store, baseTime)

    res, err := mgr.Acquire(context.Background(), claim(1, 10))
    require.NoError(t, err)

    require.NoError(t, mgr.Release(context.Background(), 1, 10))

    rec, ok := store.get(res.Lock.ID)
    require.True(t, ok)
    assert.Equal(t, "cancelled", rec.Status)

    // Releasing again, or releasing a vehicle with no lock, succeeds.
    assert.NoError(t, mgr.Release(context.Background(), 1, 10))
    assert.NoError(t, mgr.Release(context.Background(), 1, 20))
}

func TestReleaseAfterLeaseLapseLeavesLockForSweeper(t *testing.T) {
    store := newMemStore(1)
    mgr := newTestManager(store, baseTime)

    res, err := mgr.Acquire(context.Background(), claim(1, 10))
    require.NoError(t, err)

    // Past the lease deadline the row no longer blocks, so release must
    // not rewrite it to cancelled; the sweeper owns that transition.
    mgr.now = func() time.Time { return baseTime.Add(31 * time.Minute) }
    require.NoError(t, mgr.Release(context.Background(), 1, 10))

    rec, ok := store.get(res.Lock.ID)
    require.True(t, ok)
    assert.Equal(t, "active", rec.Status)

    n, err := mgr.Sweep(context.Background())
    require.NoError(t, err)
    assert.Equal(t, int64(1), n)

    rec, _ = store.get(res.Lock.ID)
    assert.Equal(t, "expired", rec.Status)
}

func TestReleaseOnlyCancelsOwnLock(t *testing.T) {
    store := newMemStore(1)
    mgr := newTestManager(store, baseTime)

    res, err := mgr.Acquire(context.Background(), claim(1, 10))
    require.NoError(t, err)

    require.NoError(t, mgr.Release(context.Background(), 1, 20))

    rec, ok := store.get(res.Lock.ID)
    require.True(t, ok)
    assert.Equal(t, "active", rec.Status)
}

func TestSweepFlipsOnlyLapsedActiveLocks(t *testing.T) {
    store := newMemStore(1, 2, 3)
    mgr := newTestManager(store, baseTime)

    lapsed, err := mgr.Acquire(context.Background(), claim(1, 10))
    require.NoError(t, err)
    cancelled, err := mgr.Acquire(context.Background(), claim(2, 10))
    require.NoError(t, err)
    require.NoError(t, mgr.Release(context.Background(), 2, 10))

    // A lock whose lease has not run out yet must survive the sweep.
    mgr.now = func() time.Time { return baseTime.Add(20 * time.Minute) }
    live, err := mgr.Acquire(context.Background(), claim(3, 10))
    require.NoError(t, err)

    mgr.now = func() time.Time { return baseTime.Add(35 * time.Minute) }
    n, err := mgr.Sweep(context.Background())
    require.NoError(t, err)
    assert.Equal(t, int64(1), n)

    rec, _ := store.get(lapsed.Lock.ID)
    assert.Equal(t, "expired", rec.Status)
    rec, _ = store.get(cancelled.Lock.ID)
    assert.Equal(t, "cancelled", rec.Status, "sweep must not touch cancelled locks")
    rec, _ = store.get(live.Lock.ID)
    assert.Equal(t, "active", rec.Status)
}

func TestPurgeRemovesOnlyOldTerminalLocks(t *testing.T) {
    store := newMemStore(1, 2, 3)
    mgr := newTestManager(store, baseTime)

    old, err := mgr.Acquire(context.Background(), claim(1, 10))
    require.NoError(t, err)
    require.NoError(t, mgr.Release(context.Background(), 1, 10))

    // A terminal lock created within the retention window stays.
    mgr.now = func() time.Time { return baseTime.Add(23 * time.Hour) }
    recent, err := mgr.Acquire(context.Background(), claim(2, 10))
    require.NoError(t, err)
    require.NoError(t, mgr.Release(context.Background(), 2, 10))

    // An active lock is never purged regardless of age.
    active, err := mgr.Acquire(context.Background(), claim(3, 10))
    require.NoError(t, err)

    mgr.now = func() time.Time { return baseTime.Add(25 * time.Hour) }
    n, err := mgr.Purge(context.Background())
    require.NoError(t, err)
    assert.Equal(t, int64(1), n)

    _, ok := store.get(old.Lock.ID)
    assert.False(t, ok, "terminal lock past retention must be deleted")
    _, ok = store.get(recent.Lock.ID)
    assert.True(t, ok)
    _, ok = store.get(active.Lock.ID)
    assert.True(t, ok)
}

func TestLocksOnDifferentVehiclesDoNotInterfere(t *testing.T) {
    store := newMemStore(1, 2)
    mgr := newTestManager(store, baseTime)

    _, err := mgr.Acquire(context.Background(), claim(1, 10))
    require.NoError(t, err)

    res, err := mgr.Acquire(context.Background(), claim(2, 20))
    require.NoError(t, err)
    assert.False(t, res.Existing)
}
