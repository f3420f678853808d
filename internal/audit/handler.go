package audit

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

type Handler struct {
	store  MovementStore
	logger *slog.Logger
}

func NewHandler(store MovementStore, logger *slog.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	limit := defaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxListLimit {
			h.writeError(w, http.StatusBadRequest, "limit must be between 1 and 500")
			return
		}
		limit = n
	}
	vehicleID := r.URL.Query().Get("vehicle_id")

	movements, err := h.store.List(r.Context(), vehicleID, limit)
	if err != nil {
		h.logger.Error("failed to list stock movements", "error", err, "vehicle_id", vehicleID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, movements)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
