package inventory

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/joao-fontenele/motormind/internal/domain"
)

var ledgerTracer = otel.Tracer("inventory/ledger")

type StockStore interface {
	GetByID(ctx context.Context, id string) (*domain.Vehicle, error)
	UpdateStock(ctx context.Context, id string, stock int) (*domain.Vehicle, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, key string, event any) error
}

// Ledger applies single-unit stock decrements on allocation.
//
// The precondition read and the write are separate statements, so two
// concurrent decrements of a unit holding one item can both succeed and
// leave the stock negative.
type Ledger struct {
	store     StockStore
	publisher EventPublisher
	logger    *slog.Logger
}

// NewLedger creates a ledger. publisher may be nil.
func NewLedger(store StockStore, publisher EventPublisher, logger *slog.Logger) *Ledger {
	return &Ledger{
		store:     store,
		publisher: publisher,
		logger:    logger,
	}
}

// Decrement removes one unit from the stock of vehicle id. It fails with
// ErrVehicleNotFound or ErrOutOfStock when the preconditions do not hold.
func (l *Ledger) Decrement(ctx context.Context, id string, source domain.MovementSource) (*domain.Vehicle, error) {
	ctx, span := ledgerTracer.Start(ctx, "inventory.decrement")
	defer span.End()
	span.SetAttributes(
		attribute.String("vehicle.id", id),
		attribute.String("movement.source", string(source)),
	)

	vehicle, err := l.decrement(ctx, id, source)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	return vehicle, nil
}

func (l *Ledger) decrement(ctx context.Context, id string, source domain.MovementSource) (*domain.Vehicle, error) {
	current, err := l.store.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get vehicle %s: %w", id, err)
	}
	if current == nil {
		return nil, fmt.Errorf("vehicle %s: %w", id, ErrVehicleNotFound)
	}
	if current.Stock <= 0 {
		return nil, fmt.Errorf("vehicle %s: %w", id, ErrOutOfStock)
	}

	updated, err := l.store.UpdateStock(ctx, id, current.Stock-1)
	if err != nil {
		return nil, fmt.Errorf("update stock for vehicle %s: %w", id, err)
	}
	if updated == nil {
		return nil, fmt.Errorf("vehicle %s: %w", id, ErrVehicleNotFound)
	}

	l.logger.Info("stock decremented",
		"vehicle_id", id,
		"model", updated.Model,
		"previous_stock", current.Stock,
		"remaining_stock", updated.Stock,
		"source", source,
	)

	l.publish(ctx, current.Stock, updated, source)

	return updated, nil
}

func (l *Ledger) publish(ctx context.Context, previous int, vehicle *domain.Vehicle, source domain.MovementSource) {
	if l.publisher == nil {
		return
	}

	event := domain.StockMovementEvent{
		ID:             uuid.New().String(),
		VehicleID:      vehicle.ID,
		Model:          vehicle.Model,
		Location:       vehicle.Location,
		Color:          vehicle.Color,
		PreviousStock:  previous,
		RemainingStock: vehicle.Stock,
		Source:         source,
		OccurredAt:     time.Now().UTC(),
	}

	if err := l.publisher.Publish(ctx, vehicle.ID, event); err != nil {
		l.logger.Error("failed to publish stock movement", "error", err, "vehicle_id", vehicle.ID)
	}
}
