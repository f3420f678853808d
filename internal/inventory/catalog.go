package inventory

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/go-playground/validator/v10"

	"github.com/joao-fontenele/motormind/internal/domain"
)

type catalogEntry struct {
	Model    string `json:"model" validate:"required"`
	Location string `json:"location" validate:"required"`
	Color    string `json:"color" validate:"required"`
	Stock    int    `json:"stock" validate:"gte=0"`
	Price    int64  `json:"price" validate:"gte=0"`
	Type     string `json:"type" validate:"required,oneof=BIKE SCOOTER CAR"`
}

// ParseCatalog reads a JSON array of vehicles. Every entry is validated and
// the first invalid one fails the whole catalog.
func ParseCatalog(r io.Reader) ([]domain.Vehicle, error) {
	var entries []catalogEntry
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	validate := validator.New()
	vehicles := make([]domain.Vehicle, 0, len(entries))
	for i, e := range entries {
		if err := validate.Struct(e); err != nil {
			return nil, fmt.Errorf("catalog entry %d (%s): %w", i, e.Model, err)
		}
		vehicles = append(vehicles, domain.Vehicle{
			Model:    e.Model,
			Location: e.Location,
			Color:    e.Color,
			Stock:    e.Stock,
			Price:    e.Price,
			Type:     domain.VehicleType(e.Type),
		})
	}
	return vehicles, nil
}

type Creator interface {
	Create(ctx context.Context, v *domain.Vehicle) error
}

// Seed inserts vehicles one by one and returns how many were created.
func Seed(ctx context.Context, store Creator, vehicles []domain.Vehicle) (int, error) {
	for i := range vehicles {
		if err := store.Create(ctx, &vehicles[i]); err != nil {
			return i, fmt.Errorf("create %s: %w", vehicles[i].Model, err)
		}
	}
	return len(vehicles), nil
}
