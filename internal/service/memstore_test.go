package service

import (
    "context"
    "sync"
    "time"

    "github.com/MM-miles16/MMMILES/internal/model"
    "github.com/MM-miles16/MMMILES/internal/repository"
)

// memStore is an in-memory LockStore used to exercise the manager's
// semantics without MySQL.  A single mutex around Acquire stands in for
// the vehicle-row lock: the conflict check and the insert run as one
// atomic unit, exactly the guarantee the SQL implementation provides.
type memStore struct {
    mu       sync.Mutex
    nextID   uint64
    vehicles map[uint64]bool
    locks    map[uint64]*repository.LockRecord
}

func newMemStore(vehicleIDs ...uint64) *memStore {
    s := &memStore{
        vehicles: make(map[uint64]bool),
        locks:    make(map[uint64]*repository.LockRecord),
    }
    for _, id := range vehicleIDs {
        s.vehicles[id] = true
    }
    return s
}

func (s *memStore) Acquire(_ context.Context, rec *repository.LockRecord, now time.Time) (bool, *repository.LockRecord, []repository.LockRecord, error) {
    s.mu.Lock()
    defer s.mu.Unlock()

    if !s.vehicles[rec.VehicleID] {
        return false, nil, nil, repository.ErrVehicleNotFound
    }

    var blocking []repository.LockRecord
    var own *repository.LockRecord
    for _, l := range s.locks {
        if l.VehicleID != rec.VehicleID || !blockingAt(l, now) {
            continue
        }
        if l.UserID == rec.UserID {
            cp := *l
            own = &cp
        } else {
            blocking = append(blocking, *l)
        }
    }
    if len(blocking) > 0 {
        return false, nil, blocking, nil
    }
    if own != nil {
        return false, own, nil, nil
    }

    s.nextID++
    rec.ID = s.nextID
    rec.CreatedAt = now.UTC()
    cp := *rec
    s.locks[rec.ID] = &cp
    return true, nil, nil, nil
}

func (s *memStore) ActiveByVehicle(_ context.Context, vehicleID uint64, now time.Time) ([]repository.LockRecord, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    var out []repository.LockRecord
    for _, l := range s.locks {
        if l.VehicleID == vehicleID && blockingAt(l, now) {
            out = append(out, *l)
        }
    }
    return out, nil
}

func (s *memStore) Release(_ context.Context, vehicleID, userID uint64, now time.Time) (int64, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    var n int64
    for _, l := range s.locks {
        if l.VehicleID == vehicleID && l.UserID == userID && blockingAt(l, now) {
            l.Status = model.LockStatusCancelled
            n++
        }
    }
    return n, nil
}

func (s *memStore) SweepExpired(_ context.Context, now time.Time) (int64, error) {
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

func (s *memStore) PurgeStale(_ context.Context, cutoff time.Time) (int64, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    var n int64
    for id, l := range s.locks {
        m := l.Model()
        if m.Terminal() && l.CreatedAt.Before(cutoff) {
            delete(s.locks, id)
            n++
        }
    }
    return n, nil
}

// blockingAt applies the model's expiry predicate to a stored record.
func blockingAt(rec *repository.LockRecord, now time.Time) bool {
    m := rec.Model()
    return m.Blocking(now)
}

// get returns a copy of the stored record, for assertions.
func (s *memStore) get(id uint64) (repository.LockRecord, bool) {
    s.mu.Lock()
    defer s.mu.Unlock()
    l, ok := s.locks[id]
    if !ok {
        return repository.LockRecord{}, false
    }
    return *l, true
}
