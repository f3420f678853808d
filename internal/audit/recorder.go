package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/joao-fontenele/motormind/internal/domain"
)

type MovementStore interface {
	Record(ctx context.Context, e domain.StockMovementEvent) (bool, error)
	List(ctx context.Context, vehicleID string, limit int) ([]domain.StockMovementEvent, error)
}

// Recorder writes stock movement events consumed from the broker into the
// audit trail.
type Recorder struct {
	store  MovementStore
	logger *slog.Logger
}

func NewRecorder(store MovementStore, logger *slog.Logger) *Recorder {
	return &Recorder{store: store, logger: logger}
}

// Handle records one event payload. Payloads that can never be recorded are
// logged and skipped so they do not block the partition.
func (r *Recorder) Handle(ctx context.Context, payload []byte) error {
	var event domain.StockMovementEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		r.logger.Error("skipping malformed stock movement", "error", err)
		return nil
	}
	if event.ID == "" || event.VehicleID == "" {
		r.logger.Error("skipping stock movement without ids", "event_id", event.ID, "vehicle_id", event.VehicleID)
		return nil
	}

	inserted, err := r.store.Record(ctx, event)
	if err != nil {
		return fmt.Errorf("record stock movement %s: %w", event.ID, err)
	}
	if !inserted {
		r.logger.Info("stock movement already recorded", "event_id", event.ID)
		return nil
	}

	r.logger.Info("stock movement recorded",
		"event_id", event.ID,
		"vehicle_id", event.VehicleID,
		"source", event.Source,
		"remaining_stock", event.RemainingStock,
	)
	return nil
}
