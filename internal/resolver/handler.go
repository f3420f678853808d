package resolver

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/joao-fontenele/motormind/internal/domain"
	"github.com/joao-fontenele/motormind/internal/inventory"
	"github.com/joao-fontenele/motormind/internal/oracle"
)

type MessageResolver interface {
	Resolve(ctx context.Context, message string) (domain.Resolution, error)
}

type Handler struct {
	resolver MessageResolver
	validate *validator.Validate
	logger   *slog.Logger
}

func NewHandler(resolver MessageResolver, logger *slog.Logger) *Handler {
	return &Handler{
		resolver: resolver,
		validate: validator.New(),
		logger:   logger,
	}
}

type agentRequest struct {
	Message string `json:"message" validate:"required"`
}

func (h *Handler) HandleAgent(w http.ResponseWriter, r *http.Request) {
	var req agentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.writeError(w, http.StatusBadRequest, "missing message")
		return
	}

	resolution, err := h.resolver.Resolve(r.Context(), req.Message)
	if err != nil {
		switch {
		case errors.Is(err, oracle.ErrEmptyResponse):
			h.logger.Error("oracle returned no content", "error", err)
			h.writeError(w, http.StatusBadGateway, "no response received from assistant")
		case errors.Is(err, inventory.ErrVehicleNotFound):
			h.writeError(w, http.StatusConflict, "selected vehicle no longer exists")
		case errors.Is(err, inventory.ErrOutOfStock):
			h.writeError(w, http.StatusConflict, "selected vehicle is out of stock")
		default:
			h.logger.Error("failed to resolve message", "error", err)
			h.writeError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	h.logger.Info("message resolved", "kind", resolution.Kind())
	h.writeJSON(w, http.StatusOK, resolution)
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
