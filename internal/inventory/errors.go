package inventory

import "errors"

var (
	ErrVehicleNotFound = errors.New("vehicle not found")
	ErrOutOfStock      = errors.New("vehicle out of stock")
)
