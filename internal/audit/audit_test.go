package audit

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/joao-fontenele/motormind/internal/domain"
)

type memoryMovements struct {
	recorded  []domain.StockMovementEvent
	err       error
	vehicleID string
	limit     int
}

func (m *memoryMovements) Record(_ context.Context, e domain.StockMovementEvent) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	for _, r := range m.recorded {
		if r.ID == e.ID {
			return false, nil
		}
	}
	m.recorded = append(m.recorded, e)
	return true, nil
}

func (m *memoryMovements) List(_ context.Context, vehicleID string, limit int) ([]domain.StockMovementEvent, error) {
	m.vehicleID, m.limit = vehicleID, limit
	if m.err != nil {
		return nil, m.err
	}
	return m.recorded, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRecorder_Handle(t *testing.T) {
	event := domain.StockMovementEvent{
		ID:             "e1",
		VehicleID:      "v1",
		Model:          "Pulsar 150",
		PreviousStock:  2,
		RemainingStock: 1,
		Source:         domain.MovementSourceAgent,
		OccurredAt:     time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	payload, _ := json.Marshal(event)

	t.Run("records once", func(t *testing.T) {
		store := &memoryMovements{}
		recorder := NewRecorder(store, discardLogger())

		for range 2 {
			if err := recorder.Handle(context.Background(), payload); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		}

		if len(store.recorded) != 1 {
			t.Fatalf("expected 1 movement, got %d", len(store.recorded))
		}
		if store.recorded[0] != event {
			t.Errorf("expected %+v, got %+v", event, store.recorded[0])
		}
	})

	t.Run("skips malformed payloads", func(t *testing.T) {
		store := &memoryMovements{}
		recorder := NewRecorder(store, discardLogger())

		for _, p := range []string{`not json`, `{"model":"x"}`} {
			if err := recorder.Handle(context.Background(), []byte(p)); err != nil {
				t.Errorf("expected %q to be skipped, got %v", p, err)
			}
		}
		if len(store.recorded) != 0 {
			t.Errorf("expected nothing recorded, got %d", len(store.recorded))
		}
	})

	t.Run("store failure is returned", func(t *testing.T) {
		dbErr := errors.New("connection refused")
		recorder := NewRecorder(&memoryMovements{err: dbErr}, discardLogger())

		if err := recorder.Handle(context.Background(), payload); !errors.Is(err, dbErr) {
			t.Errorf("expected store error, got %v", err)
		}
	})
}

func TestHandler_HandleList(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		store := &memoryMovements{recorded: []domain.StockMovementEvent{{ID: "e1", VehicleID: "v1"}}}
		handler := NewHandler(store, discardLogger())

		req := httptest.NewRequest(http.MethodGet, "/stock-movements?vehicle_id=v1", nil)
		rec := httptest.NewRecorder()

		handler.HandleList(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
		if store.limit != defaultListLimit || store.vehicleID != "v1" {
			t.Errorf("expected limit %d for v1, got %d for %q", defaultListLimit, store.limit, store.vehicleID)
		}
		var movements []domain.StockMovementEvent
		if err := json.NewDecoder(rec.Body).Decode(&movements); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if len(movements) != 1 {
			t.Errorf("expected 1 movement, got %d", len(movements))
		}
	})

	for _, limit := range []string{"0", "501", "ten"} {
		t.Run("invalid limit "+limit, func(t *testing.T) {
			handler := NewHandler(&memoryMovements{}, discardLogger())

			req := httptest.NewRequest(http.MethodGet, "/stock-movements?limit="+limit, nil)
			rec := httptest.NewRecorder()

			handler.HandleList(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected status 400, got %d", rec.Code)
			}
		})
	}

	t.Run("store failure", func(t *testing.T) {
		handler := NewHandler(&memoryMovements{err: errors.New("boom")}, discardLogger())

		req := httptest.NewRequest(http.MethodGet, "/stock-movements", nil)
		rec := httptest.NewRecorder()

		handler.HandleList(rec, req)

		if rec.Code != http.StatusInternalServerError {
			t.Errorf("expected status 500, got %d", rec.Code)
		}
	})
}
