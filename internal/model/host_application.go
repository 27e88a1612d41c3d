package model

import "time"

// Host application statuses.
const (
    HostApplicationPending  = "PENDING"
    HostApplicationApproved = "APPROVED"
    HostApplicationRejected = "REJECTED"
)

// HostApplication is the intake form submitted by a vehicle owner who
// wants to list cars on the marketplace.  Applications sit in PENDING
// until an operator reviews them.
type HostApplication struct {
    ID           uint64    `json:"id"`            // host_applications.id
    FullName     string    `json:"full_name"`     // host_applications.full_name
    Phone        string    `json:"phone"`         // host_applications.phone
    Email        string    `json:"email"`         // host_applications.email
    City         string    `json:"city"`          // host_applications.city
    VehicleMake  string    `json:"vehicle_make"`  // host_applications.vehicle_make
    VehicleModel string    `json:"vehicle_model"` // host_applications.vehicle_model
    VehicleYear  int       `json:"vehicle_year"`  // host_applications.vehicle_year
    Notes        string    `json:"notes"`         // host_applications.notes
    Status       string    `json:"status"`        // host_applications.status
    CreatedAt    time.Time `json:"created_at"`    // host_applications.created_at
}
