package repository

import (
    "context"
    "database/sql"
    "strings"

    "github.com/MM-miles16/MMMILES/internal/model"
)

const vehicleColumns = `id, host_id, make, model, year, city, transmission, fuel_type, seats, price_per_day, price_per_hour, image_url, available_status, created_at`

// VehicleRepo provides read access to the vehicles table.  Listing
// management (create/update by hosts) lives outside this service; search
// and detail lookups are all the lock and booking flows need.
type VehicleRepo struct {
    db *sql.DB
}

// NewVehicleRepo returns a new VehicleRepo bound to the provided database.
func NewVehicleRepo(db *sql.DB) *VehicleRepo { return &VehicleRepo{db: db} }

// SearchByCity returns available vehicles in the given city, newest
// listing first.  City matching is case-insensitive.
func (r *VehicleRepo) SearchByCity(ctx context.Context, city string) ([]model.Vehicle, error) {
    rows, err := r.db.QueryContext(ctx,
        `SELECT `+vehicleColumns+` FROM vehicles
         WHERE LOWER(city) = ? AND available_status = 1
         ORDER BY created_at DESC`,
        strings.ToLower(strings.TrimSpace(city)),
    )
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var out []model.Vehicle
    for rows.Next() {
        v, err := scanVehicle(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, v)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return out, nil
}

// GetByID fetches a single vehicle.  Returns ErrVehicleNotFound when the
// id has no row.
func (r *VehicleRepo) GetByID(ctx context.Context, id uint64) (model.Vehicle, error) {
    row := r.db.QueryRowContext(ctx,
        `SELECT `+vehicleColumns+` FROM vehicles WHERE id = ? LIMIT 1`, id)
    v, err := scanVehicle(row)
    if err == sql.ErrNoRows {
        return model.Vehicle{}, ErrVehicleNotFound
    }
    return v, err
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
    Scan(dest ...any) error
}

func scanVehicle(row rowScanner) (model.Vehicle, error) {
    var v model.Vehicle
    err := row.Scan(
        &v.ID, &v.HostID, &v.Make, &v.CarModel, &v.Year, &v.City,
        &v.Transmission, &v.FuelType, &v.Seats,
        &v.PricePerDay, &v.PricePerHour,
        &v.ImageURL, &v.Available, &v.CreatedAt,
    )
    return v, err
}
