package inventory

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/joao-fontenele/motormind/internal/domain"
)

const vehicleColumns = `id, model, location, color, stock, price, type, created_at, updated_at`

type VehicleRepository struct {
	db *sql.DB
}

func NewVehicleRepository(db *sql.DB) *VehicleRepository {
	return &VehicleRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVehicle(row rowScanner) (*domain.Vehicle, error) {
	v := &domain.Vehicle{}
	if err := row.Scan(&v.ID, &v.Model, &v.Location, &v.Color, &v.Stock, &v.Price, &v.Type, &v.CreatedAt, &v.UpdatedAt); err != nil {
		return nil, err
	}
	return v, nil
}

// scanOne returns (nil, nil) when the query matched no row.
func scanOne(row *sql.Row) (*domain.Vehicle, error) {
	v, err := scanVehicle(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return v, nil
}

func (r *VehicleRepository) query(ctx context.Context, query string, args ...any) ([]domain.Vehicle, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	vehicles := []domain.Vehicle{}
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		vehicles = append(vehicles, *v)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return vehicles, nil
}

func (r *VehicleRepository) ListAll(ctx context.Context) ([]domain.Vehicle, error) {
	return r.query(ctx, `
		SELECT `+vehicleColumns+`
		FROM vehicles
		ORDER BY model, id
	`)
}

func (r *VehicleRepository) GetByID(ctx context.Context, id string) (*domain.Vehicle, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}

	return scanOne(r.db.QueryRowContext(ctx, `
		SELECT `+vehicleColumns+`
		FROM vehicles
		WHERE id = $1
	`, id))
}

func (r *VehicleRepository) Create(ctx context.Context, v *domain.Vehicle) error {
	v.ID = uuid.New().String()
	now := time.Now().UTC()
	v.CreatedAt = now
	v.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO vehicles (id, model, location, color, stock, price, type, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
	`, v.ID, v.Model, v.Location, v.Color, v.Stock, v.Price, v.Type, now)
	return err
}

// Update replaces the mutable fields of a vehicle. An empty type keeps the
// stored one. It returns nil when the vehicle does not exist.
func (r *VehicleRepository) Update(ctx context.Context, v domain.Vehicle) (*domain.Vehicle, error) {
	if _, err := uuid.Parse(v.ID); err != nil {
		return nil, nil
	}

	return scanOne(r.db.QueryRowContext(ctx, `
		UPDATE vehicles
		SET model = $2, location = $3, color = $4, stock = $5, price = $6,
			type = COALESCE(NULLIF($7, ''), type), updated_at = NOW()
		WHERE id = $1
		RETURNING `+vehicleColumns+`
	`, v.ID, v.Model, v.Location, v.Color, v.Stock, v.Price, string(v.Type)))
}

// Delete removes a vehicle and returns the deleted row, or nil when absent.
func (r *VehicleRepository) Delete(ctx context.Context, id string) (*domain.Vehicle, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}

	return scanOne(r.db.QueryRowContext(ctx, `
		DELETE FROM vehicles
		WHERE id = $1
		RETURNING `+vehicleColumns+`
	`, id))
}

// SearchByModel returns in-stock vehicles whose model contains term,
// ignoring case.
func (r *VehicleRepository) SearchByModel(ctx context.Context, term string) ([]domain.Vehicle, error) {
	return r.query(ctx, `
		SELECT `+vehicleColumns+`
		FROM vehicles
		WHERE model ILIKE $1 AND stock >= 1
		ORDER BY model, id
	`, containsPattern(term))
}

// SearchByPatterns returns in-stock vehicles whose model contains any of
// the patterns, ignoring case.
func (r *VehicleRepository) SearchByPatterns(ctx context.Context, patterns []string) ([]domain.Vehicle, error) {
	if len(patterns) == 0 {
		return []domain.Vehicle{}, nil
	}

	likes := make([]string, len(patterns))
	for i, p := range patterns {
		likes[i] = containsPattern(p)
	}

	return r.query(ctx, `
		SELECT `+vehicleColumns+`
		FROM vehicles
		WHERE model ILIKE ANY($1) AND stock >= 1
		ORDER BY model, id
	`, pq.Array(likes))
}

// UpdateStock overwrites the stock of a vehicle. It returns nil when the
// vehicle does not exist.
func (r *VehicleRepository) UpdateStock(ctx context.Context, id string, stock int) (*domain.Vehicle, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}

	return scanOne(r.db.QueryRowContext(ctx, `
		UPDATE vehicles
		SET stock = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING `+vehicleColumns+`
	`, id, stock))
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func containsPattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}
