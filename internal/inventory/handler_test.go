package inventory

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/joao-fontenele/motormind/internal/domain"
)

func newTestHandler(store *memoryStore, keys IdempotencyStore) *Handler {
	return NewHandler(store, NewLedger(store, nil, discardLogger()), keys, discardLogger())
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}
	return body["error"]
}

func TestHandler_HandleCreate(t *testing.T) {
	t.Run("creates a vehicle", func(t *testing.T) {
		store := newMemoryStore()
		handler := newTestHandler(store, nil)

		body := `{"model":"Pulsar 150","location":"Delhi","color":"Red","stock":0,"price":120000,"type":"BIKE"}`
		req := httptest.NewRequest(http.MethodPost, "/vehicles", strings.NewReader(body))
		rec := httptest.NewRecorder()

		handler.HandleCreate(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected status 201, got %d", rec.Code)
		}
		var vehicle domain.Vehicle
		if err := json.NewDecoder(rec.Body).Decode(&vehicle); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if vehicle.ID == "" {
			t.Error("expected id to be set")
		}
		if vehicle.Stock != 0 {
			t.Errorf("expected stock 0, got %d", vehicle.Stock)
		}
		if len(store.vehicles) != 1 {
			t.Errorf("expected 1 stored vehicle, got %d", len(store.vehicles))
		}
	})

	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"malformed json", `{"model":`, "invalid request body"},
		{"missing model", `{"location":"Delhi","color":"Red","stock":1,"price":1,"type":"BIKE"}`, "missing model"},
		{"missing stock", `{"model":"X","location":"Delhi","color":"Red","price":1,"type":"BIKE"}`, "missing stock"},
		{"negative stock", `{"model":"X","location":"Delhi","color":"Red","stock":-1,"price":1,"type":"BIKE"}`, "stock must be >= 0"},
		{"unknown type", `{"model":"X","location":"Delhi","color":"Red","stock":1,"price":1,"type":"TRUCK"}`, "type must be one of BIKE SCOOTER CAR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := newTestHandler(newMemoryStore(), nil)

			req := httptest.NewRequest(http.MethodPost, "/vehicles", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()

			handler.HandleCreate(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected status 400, got %d", rec.Code)
			}
			if got := decodeError(t, rec); got != tt.wantErr {
				t.Errorf("expected %q, got %q", tt.wantErr, got)
			}
		})
	}
}

func TestHandler_HandleGet(t *testing.T) {
	store := newMemoryStore(domain.Vehicle{ID: "v1", Model: "Apache RTR"})
	handler := newTestHandler(store, nil)

	t.Run("found", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/vehicles/v1", nil)
		req.SetPathValue("id", "v1")
		rec := httptest.NewRecorder()

		handler.HandleGet(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("expected status 200, got %d", rec.Code)
		}
	})

	t.Run("not found", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/vehicles/nope", nil)
		req.SetPathValue("id", "nope")
		rec := httptest.NewRecorder()

		handler.HandleGet(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Errorf("expected status 404, got %d", rec.Code)
		}
	})

	t.Run("store failure", func(t *testing.T) {
		failing := newMemoryStore()
		failing.err = errStore
		h := newTestHandler(failing, nil)

		req := httptest.NewRequest(http.MethodGet, "/vehicles/v1", nil)
		req.SetPathValue("id", "v1")
		rec := httptest.NewRecorder()

		h.HandleGet(rec, req)

		if rec.Code != http.StatusInternalServerError {
			t.Errorf("expected status 500, got %d", rec.Code)
		}
		if got := decodeError(t, rec); got != "internal server error" {
			t.Errorf("expected generic message, got %q", got)
		}
	})
}

func TestHandler_HandleUpdate(t *testing.T) {
	t.Run("keeps the stored type when omitted", func(t *testing.T) {
		store := newMemoryStore(domain.Vehicle{ID: "v1", Model: "Activa", Type: domain.VehicleTypeScooter, Stock: 1})
		handler := newTestHandler(store, nil)

		body := `{"model":"Activa 6G","location":"Pune","color":"White","stock":7,"price":80000}`
		req := httptest.NewRequest(http.MethodPut, "/vehicles/v1", strings.NewReader(body))
		req.SetPathValue("id", "v1")
		rec := httptest.NewRecorder()

		handler.HandleUpdate(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
		stored := store.vehicles["v1"]
		if stored.Model != "Activa 6G" || stored.Stock != 7 {
			t.Errorf("unexpected stored vehicle: %+v", stored)
		}
		if stored.Type != domain.VehicleTypeScooter {
			t.Errorf("expected type SCOOTER, got %s", stored.Type)
		}
	})

	t.Run("not found", func(t *testing.T) {
		handler := newTestHandler(newMemoryStore(), nil)

		body := `{"model":"Activa","location":"Pune","color":"White","stock":1,"price":1}`
		req := httptest.NewRequest(http.MethodPut, "/vehicles/v9", strings.NewReader(body))
		req.SetPathValue("id", "v9")
		rec := httptest.NewRecorder()

		handler.HandleUpdate(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Errorf("expected status 404, got %d", rec.Code)
		}
	})
}

func TestHandler_HandleDelete(t *testing.T) {
	store := newMemoryStore(domain.Vehicle{ID: "v1"})
	handler := newTestHandler(store, nil)

	for _, want := range []int{http.StatusOK, http.StatusNotFound} {
		req := httptest.NewRequest(http.MethodDelete, "/vehicles/v1", nil)
		req.SetPathValue("id", "v1")
		rec := httptest.NewRecorder()

		handler.HandleDelete(rec, req)

		if rec.Code != want {
			t.Errorf("expected status %d, got %d", want, rec.Code)
		}
	}
}

func TestHandler_HandleSearch(t *testing.T) {
	store := newMemoryStore(catalog()...)
	handler := newTestHandler(store, nil)

	t.Run("ranked results", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/vehicles/search?q=R15", nil)
		rec := httptest.NewRecorder()

		handler.HandleSearch(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
		var vehicles []domain.Vehicle
		if err := json.NewDecoder(rec.Body).Decode(&vehicles); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		want := []string{"4", "6", "3"}
		if got := ids(vehicles); strings.Join(got, ",") != strings.Join(want, ",") {
			t.Errorf("expected %v, got %v", want, got)
		}
	})

	t.Run("missing query", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/vehicles/search", nil)
		rec := httptest.NewRecorder()

		handler.HandleSearch(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", rec.Code)
		}
	})
}

func TestHandler_HandleBuy(t *testing.T) {
	buy := func(h *Handler, body, key string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/buy", strings.NewReader(body))
		if key != "" {
			req.Header.Set(IdempotencyHeader, key)
		}
		rec := httptest.NewRecorder()
		h.HandleBuy(rec, req)
		return rec
	}

	t.Run("decrements then reports out of stock", func(t *testing.T) {
		store := newMemoryStore(domain.Vehicle{ID: "v1", Stock: 1})
		handler := newTestHandler(store, nil)

		if rec := buy(handler, `{"id":"v1"}`, ""); rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
		rec := buy(handler, `{"id":"v1"}`, "")
		if rec.Code != http.StatusConflict {
			t.Errorf("expected status 409, got %d", rec.Code)
		}
		if got := decodeError(t, rec); got != "vehicle out of stock" {
			t.Errorf("expected out of stock message, got %q", got)
		}
	})

	t.Run("unknown vehicle", func(t *testing.T) {
		handler := newTestHandler(newMemoryStore(), nil)

		if rec := buy(handler, `{"id":"v404"}`, ""); rec.Code != http.StatusNotFound {
			t.Errorf("expected status 404, got %d", rec.Code)
		}
	})

	t.Run("missing id", func(t *testing.T) {
		handler := newTestHandler(newMemoryStore(), nil)

		rec := buy(handler, `{}`, "")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", rec.Code)
		}
		if got := decodeError(t, rec); got != "missing id" {
			t.Errorf("expected %q, got %q", "missing id", got)
		}
	})

	t.Run("replayed idempotency key", func(t *testing.T) {
		store := newMemoryStore(domain.Vehicle{ID: "v1", Stock: 5})
		keys := &fakeKeys{}
		handler := newTestHandler(store, keys)

		if rec := buy(handler, `{"id":"v1"}`, "abc"); rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
		if rec := buy(handler, `{"id":"v1"}`, "abc"); rec.Code != http.StatusConflict {
			t.Errorf("expected status 409, got %d", rec.Code)
		}
		if store.vehicles["v1"].Stock != 4 {
			t.Errorf("expected stock 4, got %d", store.vehicles["v1"].Stock)
		}
		if !keys.claimed["buy:abc"] {
			t.Error("expected key buy:abc to be claimed")
		}
	})

	t.Run("key is released when the write fails", func(t *testing.T) {
		store := newMemoryStore()
		store.err = errStore
		keys := &fakeKeys{}
		handler := newTestHandler(store, keys)

		if rec := buy(handler, `{"id":"v1"}`, "retry-me"); rec.Code != http.StatusInternalServerError {
			t.Errorf("expected status 500, got %d", rec.Code)
		}
		if len(keys.released) != 1 || keys.released[0] != "buy:retry-me" {
			t.Errorf("expected buy:retry-me to be released, got %v", keys.released)
		}
	})

	t.Run("idempotency store failure", func(t *testing.T) {
		store := newMemoryStore(domain.Vehicle{ID: "v1", Stock: 5})
		handler := newTestHandler(store, &fakeKeys{err: errors.New("redis down")})

		if rec := buy(handler, `{"id":"v1"}`, "abc"); rec.Code != http.StatusInternalServerError {
			t.Errorf("expected status 500, got %d", rec.Code)
		}
		if store.updates != 0 {
			t.Errorf("expected no stock writes, got %d", store.updates)
		}
	})
}
