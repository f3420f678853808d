package domain

import "time"

type MovementSource string

const (
	MovementSourceAgent  MovementSource = "agent"
	MovementSourceManual MovementSource = "manual"
)

// StockMovementEvent is published after every successful stock decrement.
type StockMovementEvent struct {
	ID             string         `json:"id"`
	VehicleID      string         `json:"vehicle_id"`
	Model          string         `json:"model"`
	Location       string         `json:"location"`
	Color          string         `json:"color"`
	PreviousStock  int            `json:"previous_stock"`
	RemainingStock int            `json:"remaining_stock"`
	Source         MovementSource `json:"source"`
	OccurredAt     time.Time      `json:"occurred_at"`
}
