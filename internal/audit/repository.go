package audit

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/joao-fontenele/motormind/internal/domain"
)

type MovementRepository struct {
	db *sql.DB
}

func NewMovementRepository(db *sql.DB) *MovementRepository {
	return &MovementRepository{db: db}
}

// Record stores a movement. It returns false when the event id was already
// recorded, which happens when the consumer redelivers a message.
func (r *MovementRepository) Record(ctx context.Context, e domain.StockMovementEvent) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO stock_movements
			(id, vehicle_id, model, location, color, previous_stock, remaining_stock, source, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO NOTHING
	`, e.ID, e.VehicleID, e.Model, e.Location, e.Color, e.PreviousStock, e.RemainingStock, e.Source, e.OccurredAt)
	if err != nil {
		return false, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// List returns the newest movements first, optionally for one vehicle.
func (r *MovementRepository) List(ctx context.Context, vehicleID string, limit int) ([]domain.StockMovementEvent, error) {
	var (
		rows *sql.Rows
		err  error
	)

	const columns = `id, vehicle_id, model, location, color, previous_stock, remaining_stock, source, occurred_at`

	if vehicleID == "" {
		rows, err = r.db.QueryContext(ctx, `
			SELECT `+columns+`
			FROM stock_movements
			ORDER BY occurred_at DESC, id
			LIMIT $1
		`, limit)
	} else {
		if _, perr := uuid.Parse(vehicleID); perr != nil {
			return []domain.StockMovementEvent{}, nil
		}
		rows, err = r.db.QueryContext(ctx, `
			SELECT `+columns+`
			FROM stock_movements
			WHERE vehicle_id = $1
			ORDER BY occurred_at DESC, id
			LIMIT $2
		`, vehicleID, limit)
	}
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	movements := []domain.StockMovementEvent{}
	for rows.Next() {
		var e domain.StockMovementEvent
		if err := rows.Scan(&e.ID, &e.VehicleID, &e.Model, &e.Location, &e.Color,
			&e.PreviousStock, &e.RemainingStock, &e.Source, &e.OccurredAt); err != nil {
			return nil, err
		}
		movements = append(movements, e)
	}

	return movements, rows.Err()
}
