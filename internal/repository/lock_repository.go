package repository

import (
    "context"
    "database/sql"
    "time"

    "github.com/MM-miles16/MMMILES/internal/model"
)

// LockRecord represents the persistence model for a vehicle reservation
// lock.  It is used internally by the repository layer when creating and
// querying locks.  The exported model.Lock should be used for business
// logic and API responses.
type LockRecord struct {
    ID         uint64    // primary key of the locks row
    VehicleID  uint64    // vehicle being claimed
    UserID     uint64    // user holding the claim; must be non-zero
    StartTime  time.Time // requested rental window start
    EndTime    time.Time // requested rental window end
    ExpiresAt  time.Time // lease deadline
    Status     string    // active | expired | cancelled | converted
    SessionID  string    // checkout session identifier
    DeviceInfo string    // client user agent
    CreatedAt  time.Time // creation timestamp
}

// Model converts the persistence record into the API model.
func (rec *LockRecord) Model() model.Lock {
    return model.Lock{
        ID:         rec.ID,
        VehicleID:  rec.VehicleID,
        UserID:     rec.UserID,
        StartTime:  rec.StartTime,
        EndTime:    rec.EndTime,
        ExpiresAt:  rec.ExpiresAt,
        Status:     rec.Status,
        SessionID:  rec.SessionID,
        DeviceInfo: rec.DeviceInfo,
        CreatedAt:  rec.CreatedAt,
    }
}

// sqlTime formats a timestamp the way the locks table stores DATETIME
// columns.  All comparisons happen in UTC.
func sqlTime(t time.Time) string { return t.UTC().Format("2006-01-02 15:04:05") }

const lockColumns = `id, vehicle_id, user_id, start_time, end_time, expires_at, status, session_id, device_info, created_at`

// LockRepo provides data access to the locks table.  All methods behave
// with respect to UTC timestamps; callers pass an explicit "now" so that
// every read applies the same expiry predicate.
type LockRepo struct {
    db *sql.DB
}

// NewLockRepo returns a new LockRepo bound to the provided database.
func NewLockRepo(db *sql.DB) *LockRepo { return &LockRepo{db: db} }

// DB exposes the underlying handle so handlers can open transactions that
// span locks and bookings.
func (r *LockRepo) DB() *sql.DB { return r.db }

// Acquire attempts to claim the vehicle for rec.UserID.  The whole claim
// runs inside a single transaction: the vehicle row is locked with
// SELECT ... FOR UPDATE, which serializes concurrent acquires for the
// same vehicle, so the conflict check and the insert behave as one
// atomic compare-and-set.  Two racing callers can never both insert.
//
// Outcomes:
//   - blocking non-empty: another user holds a live lock; nothing written.
//   - existing non-nil:   the caller already holds a live lock; it is
//     returned unchanged and nothing is written (idempotent re-acquire).
//   - created true:       a new lock row was inserted and rec.ID is set.
//
// Returns ErrVehicleNotFound when the vehicle id has no row.
func (r *LockRepo) Acquire(ctx context.Context, rec *LockRecord, now time.Time) (created bool, existing *LockRecord, blocking []LockRecord, err error) {
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return false, nil, nil, err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    // Serialize all acquires for this vehicle on its row lock.
    var vid uint64
    err = tx.QueryRowContext(ctx, `SELECT id FROM vehicles WHERE id = ? FOR UPDATE`, rec.VehicleID).Scan(&vid)
    if err == sql.ErrNoRows {
        return false, nil, nil, ErrVehicleNotFound
    }
    if err != nil {
        return false, nil, nil, err
    }

    // Live locks held by other users block the claim.
    blocking, err = scanLocks(tx.QueryContext(ctx,
        `SELECT `+lockColumns+` FROM locks
         WHERE vehicle_id = ? AND status = ? AND expires_at > ? AND user_id <> ?`,
        rec.VehicleID, model.LockStatusActive, sqlTime(now), rec.UserID,
    ))
    if err != nil {
        return false, nil, nil, err
    }
    if len(blocking) > 0 {
        return false, nil, blocking, nil
    }

    // A live lock already held by the caller is returned as-is.
    own, err := scanLocks(tx.QueryContext(ctx,
        `SELECT `+lockColumns+` FROM locks
         WHERE vehicle_id = ? AND status = ? AND expires_at > ? AND user_id = ?
         ORDER BY created_at DESC LIMIT 1`,
        rec.VehicleID, model.LockStatusActive, sqlTime(now), rec.UserID,
    ))
    if err != nil {
        return false, nil, nil, err
    }
    if len(own) > 0 {
        if err := tx.Commit(); err != nil {
            return false, nil, nil, err
        }
        committed = true
        return false, &own[0], nil, nil
    }

    res, err := tx.ExecContext(ctx,
        `INSERT INTO locks (vehicle_id, user_id, start_time, end_time, expires_at, status, session_id, device_info, created_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
        rec.VehicleID, rec.UserID,
        sqlTime(rec.StartTime), sqlTime(rec.EndTime), sqlTime(rec.ExpiresAt),
        rec.Status, rec.SessionID, rec.DeviceInfo, sqlTime(now),
    )
    if err != nil {
        return false, nil, nil, err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return false, nil, nil, err
    }
    if err := tx.Commit(); err != nil {
        return false, nil, nil, err
    }
    committed = true
    rec.ID = uint64(id)
    rec.CreatedAt = now.UTC()
    return true, nil, nil, nil
}

// ActiveByVehicle returns every lock that is still blocking for the
// vehicle at the given instant.  Rows whose lease has run out are
// excluded even when the sweeper has not yet flipped their status.
func (r *LockRepo) ActiveByVehicle(ctx context.Context, vehicleID uint64, now time.Time) ([]LockRecord, error) {
    return scanLocks(r.db.QueryContext(ctx,
        `SELECT `+lockColumns+` FROM locks
         WHERE vehicle_id = ? AND status = ? AND expires_at > ?
         ORDER BY created_at ASC`,
        vehicleID, model.LockStatusActive, sqlTime(now),
    ))
}

// Release cancels the caller's live locks for the vehicle and returns
// how many rows changed.  Zero rows is not an error; release is
// idempotent so client retry logic stays simple.  Only locks whose
// lease still holds are cancelled; a lapsed row already stopped
// blocking and belongs to the sweeper, which will mark it expired.
func (r *LockRepo) Release(ctx context.Context, vehicleID, userID uint64, now time.Time) (int64, error) {
    res, err := r.db.ExecContext(ctx,
        `UPDATE locks SET status = ? WHERE vehicle_id = ? AND user_id = ? AND status = ? AND expires_at > ?`,
        model.LockStatusCancelled, vehicleID, userID, model.LockStatusActive, sqlTime(now),
    )
    if err != nil {
        return 0, err
    }
    return res.RowsAffected()
}

// SweepExpired flips every active lock whose lease has run out to the
// expired status and returns the number of rows changed.  Cancelled and
// converted locks are never touched.
func (r *LockRepo) SweepExpired(ctx context.Context, now time.Time) (int64, error) {
    res, err := r.db.ExecContext(ctx,
        `UPDATE locks SET status = ? WHERE status = ? AND expires_at <= ?`,
        model.LockStatusExpired, model.LockStatusActive, sqlTime(now),
    )
    if err != nil {
        return 0, err
    }
    return res.RowsAffected()
}

// PurgeStale deletes terminal-state locks created before the cutoff and
// returns the number of rows removed.  Purge only ever deletes rows the
// active predicate already excludes, so it is safe to run concurrently
// with Acquire and ActiveByVehicle.
func (r *LockRepo) PurgeStale(ctx context.Context, cutoff time.Time) (int64, error) {
    res, err := r.db.ExecContext(ctx,
        `DELETE FROM locks WHERE status IN (?, ?, ?) AND created_at < ?`,
        model.LockStatusExpired, model.LockStatusCancelled, model.LockStatusConverted, sqlTime(cutoff),
    )
    if err != nil {
        return 0, err
    }
    return res.RowsAffected()
}

// ConvertTx promotes the caller's live lock for the vehicle to the
// converted status within the provided transaction and returns the lock.
// The row is locked FOR UPDATE so a concurrent sweep cannot expire it
// between the read and the update.  The caller must commit or roll back.
// Returns ErrNoActiveLock when the caller holds no live lock.
func (r *LockRepo) ConvertTx(ctx context.Context, tx *sql.Tx, vehicleID, userID uint64, now time.Time) (*LockRecord, error) {
    rows, err := scanLocks(tx.QueryContext(ctx,
        `SELECT `+lockColumns+` FROM locks
         WHERE vehicle_id = ? AND user_id = ? AND status = ? AND expires_at > ?
         ORDER BY created_at DESC LIMIT 1 FOR UPDATE`,
        vehicleID, userID, model.LockStatusActive, sqlTime(now),
    ))
    if err != nil {
        return nil, err
    }
    if len(rows) == 0 {
        return nil, ErrNoActiveLock
    }
    rec := rows[0]
    if _, err := tx.ExecContext(ctx,
        `UPDATE locks SET status = ? WHERE id = ?`,
        model.LockStatusConverted, rec.ID,
    ); err != nil {
        return nil, err
    }
    rec.Status = model.LockStatusConverted
    return &rec, nil
}

// scanLocks drains a lock query into records.  It accepts the (rows, err)
// pair directly so call sites stay compact.
func scanLocks(rows *sql.Rows, err error) ([]LockRecord, error) {
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var out []LockRecord
    for rows.Next() {
        var rec LockRecord
        if err := rows.Scan(
            &rec.ID, &rec.VehicleID, &rec.UserID,
            &rec.StartTime, &rec.EndTime, &rec.ExpiresAt,
            &rec.Status, &rec.SessionID, &rec.DeviceInfo, &rec.CreatedAt,
        ); err != nil {
            return nil, err
        }
        out = append(out, rec)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return out, nil
}
