package repository

import (
    "context"
    "database/sql"
    "time"

    "github.com/MM-miles16/MMMILES/internal/model"
)

// HostRepo persists host-registration intake forms.
type HostRepo struct {
    db *sql.DB
}

// NewHostRepo returns a new HostRepo bound to the provided database.
func NewHostRepo(db *sql.DB) *HostRepo { return &HostRepo{db: db} }

// Create inserts a pending application and fills in its id.
func (r *HostRepo) Create(ctx context.Context, app *model.HostApplication) error {
    now := time.Now().UTC()
    res, err := r.db.ExecContext(ctx,
        `INSERT INTO host_applications (full_name, phone, email, city, vehicle_make, vehicle_model, vehicle_year, notes, status, created_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
        app.FullName, app.Phone, app.Email, app.City,
        app.VehicleMake, app.VehicleModel, app.VehicleYear, app.Notes,
        model.HostApplicationPending, sqlTime(now),
    )
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    app.ID = uint64(id)
    app.Status = model.HostApplicationPending
    app.CreatedAt = now
    return nil
}

// GetByID fetches a single application.
func (r *HostRepo) GetByID(ctx context.Context, id uint64) (model.HostApplication, error) {
    var app model.HostApplication
    err := r.db.QueryRowContext(ctx,
        `SELECT id, full_name, phone, email, city, vehicle_make, vehicle_model, vehicle_year, COALESCE(notes,''), status, created_at
         FROM host_applications WHERE id = ? LIMIT 1`, id,
    ).Scan(&app.ID, &app.FullName, &app.Phone, &app.Email, &app.City,
        &app.VehicleMake, &app.VehicleModel, &app.VehicleYear, &app.Notes,
        &app.Status, &app.CreatedAt)
    return app, err
}
