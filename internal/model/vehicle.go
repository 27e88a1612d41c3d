package model

import (
    "time"

    "github.com/shopspring/decimal"
)

// Vehicle represents a rentable car listed on the marketplace.  Pricing
// uses decimals to avoid float rounding in quotes and coupon maths.
//
// Fields:
//  ID              – primary key identifier.
//  HostID          – user who listed the vehicle.
//  Make, CarModel  – manufacturer and model name.
//  Year            – manufacturing year.
//  City            – city the vehicle is rented from; search filters on it.
//  Transmission    – MANUAL or AUTOMATIC.
//  FuelType        – PETROL, DIESEL or ELECTRIC.
//  Seats           – passenger capacity.
//  PricePerDay     – rental price for a full day.
//  PricePerHour    – rental price for a single hour.
//  ImageURL        – primary listing photo.
//  Available       – whether the vehicle shows up in search results.
//  CreatedAt       – listing timestamp.
type Vehicle struct {
    ID           uint64          `json:"id"`             // vehicles.id
    HostID       uint64          `json:"host_id"`        // vehicles.host_id
    Make         string          `json:"make"`           // vehicles.make
    CarModel     string          `json:"model"`          // vehicles.model
    Year         int             `json:"year"`           // vehicles.year
    City         string          `json:"city"`           // vehicles.city
    Transmission string          `json:"transmission"`   // vehicles.transmission
    FuelType     string          `json:"fuel_type"`      // vehicles.fuel_type
    Seats        int             `json:"seats"`          // vehicles.seats
    PricePerDay  decimal.Decimal `json:"price_per_day"`  // vehicles.price_per_day
    PricePerHour decimal.Decimal `json:"price_per_hour"` // vehicles.price_per_hour
    ImageURL     string          `json:"image_url"`      // vehicles.image_url
    Available    bool            `json:"available"`      // vehicles.available_status
    CreatedAt    time.Time       `json:"created_at"`     // vehicles.created_at
}
