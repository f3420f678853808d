package domain

import "time"

type VehicleType string

const (
	VehicleTypeBike    VehicleType = "BIKE"
	VehicleTypeScooter VehicleType = "SCOOTER"
	VehicleTypeCar     VehicleType = "CAR"
)

type Vehicle struct {
	ID        string      `json:"id"`
	Model     string      `json:"model"`
	Location  string      `json:"location"`
	Color     string      `json:"color"`
	Stock     int         `json:"stock"`
	Price     int64       `json:"price"`
	Type      VehicleType `json:"type"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}
