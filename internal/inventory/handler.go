package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/joao-fontenele/motormind/internal/domain"
)

type Store interface {
	ListAll(ctx context.Context) ([]domain.Vehicle, error)
	GetByID(ctx context.Context, id string) (*domain.Vehicle, error)
	Create(ctx context.Context, v *domain.Vehicle) error
	Update(ctx context.Context, v domain.Vehicle) (*domain.Vehicle, error)
	Delete(ctx context.Context, id string) (*domain.Vehicle, error)
	SearchByPatterns(ctx context.Context, patterns []string) ([]domain.Vehicle, error)
}

type Decrementer interface {
	Decrement(ctx context.Context, id string, source domain.MovementSource) (*domain.Vehicle, error)
}

// IdempotencyStore reports whether a key is claimed for the first time.
type IdempotencyStore interface {
	Claim(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}

const IdempotencyHeader = "Idempotency-Key"

type Handler struct {
	store    Store
	ledger   Decrementer
	matcher  *Matcher
	keys     IdempotencyStore
	validate *validator.Validate
	logger   *slog.Logger
}

// NewHandler creates the inventory handler. keys may be nil, in which case
// the Idempotency-Key header is ignored.
func NewHandler(store Store, ledger Decrementer, keys IdempotencyStore, logger *slog.Logger) *Handler {
	return &Handler{
		store:    store,
		ledger:   ledger,
		matcher:  DefaultMatcher(),
		keys:     keys,
		validate: newValidator(),
		logger:   logger,
	}
}

// newValidator reports fields by their JSON name.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

type vehicleRequest struct {
	Model    string `json:"model" validate:"required"`
	Location string `json:"location" validate:"required"`
	Color    string `json:"color" validate:"required"`
	Stock    *int   `json:"stock" validate:"required,gte=0"`
	Price    *int64 `json:"price" validate:"required,gte=0"`
	Type     string `json:"type" validate:"required,oneof=BIKE SCOOTER CAR"`
}

type updateVehicleRequest struct {
	Model    string `json:"model" validate:"required"`
	Location string `json:"location" validate:"required"`
	Color    string `json:"color" validate:"required"`
	Stock    *int   `json:"stock" validate:"required,gte=0"`
	Price    *int64 `json:"price" validate:"required,gte=0"`
	Type     string `json:"type" validate:"omitempty,oneof=BIKE SCOOTER CAR"`
}

type buyRequest struct {
	ID string `json:"id" validate:"required"`
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	vehicles, err := h.store.ListAll(r.Context())
	if err != nil {
		h.logger.Error("failed to list vehicles", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("vehicles listed", "count", len(vehicles))
	h.writeJSON(w, http.StatusOK, vehicles)
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req vehicleRequest
	if !h.decode(w, r, &req) {
		return
	}

	vehicle := &domain.Vehicle{
		Model:    req.Model,
		Location: req.Location,
		Color:    req.Color,
		Stock:    *req.Stock,
		Price:    *req.Price,
		Type:     domain.VehicleType(req.Type),
	}

	if err := h.store.Create(r.Context(), vehicle); err != nil {
		h.logger.Error("failed to create vehicle", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("vehicle created", "vehicle_id", vehicle.ID, "model", vehicle.Model)
	h.writeJSON(w, http.StatusCreated, vehicle)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	vehicle, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get vehicle", "error", err, "vehicle_id", id)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if vehicle == nil {
		h.writeError(w, http.StatusNotFound, "vehicle not found")
		return
	}

	h.writeJSON(w, http.StatusOK, vehicle)
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req updateVehicleRequest
	if !h.decode(w, r, &req) {
		return
	}

	vehicle, err := h.store.Update(r.Context(), domain.Vehicle{
		ID:       id,
		Model:    req.Model,
		Location: req.Location,
		Color:    req.Color,
		Stock:    *req.Stock,
		Price:    *req.Price,
		Type:     domain.VehicleType(req.Type),
	})
	if err != nil {
		h.logger.Error("failed to update vehicle", "error", err, "vehicle_id", id)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if vehicle == nil {
		h.writeError(w, http.StatusNotFound, "vehicle not found")
		return
	}

	h.logger.Info("vehicle updated", "vehicle_id", id)
	h.writeJSON(w, http.StatusOK, vehicle)
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	vehicle, err := h.store.Delete(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to delete vehicle", "error", err, "vehicle_id", id)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if vehicle == nil {
		h.writeError(w, http.StatusNotFound, "vehicle not found")
		return
	}

	h.logger.Info("vehicle deleted", "vehicle_id", id)
	h.writeJSON(w, http.StatusOK, vehicle)
}

func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	term := strings.TrimSpace(r.URL.Query().Get("q"))
	if term == "" {
		h.writeError(w, http.StatusBadRequest, "missing query parameter q")
		return
	}

	vehicles, err := h.store.SearchByPatterns(r.Context(), h.matcher.Patterns(term))
	if err != nil {
		h.logger.Error("failed to search vehicles", "error", err, "term", term)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	SortByRelevance(vehicles, term)

	h.logger.Info("vehicles searched", "term", term, "count", len(vehicles))
	h.writeJSON(w, http.StatusOK, vehicles)
}

func (h *Handler) HandleBuy(w http.ResponseWriter, r *http.Request) {
	var req buyRequest
	if !h.decode(w, r, &req) {
		return
	}

	var claimed string
	if key := r.Header.Get(IdempotencyHeader); key != "" && h.keys != nil {
		first, err := h.keys.Claim(r.Context(), "buy:"+key)
		if err != nil {
			h.logger.Error("failed to claim idempotency key", "error", err, "key", key)
			h.writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		if !first {
			h.writeError(w, http.StatusConflict, "duplicate request")
			return
		}
		claimed = "buy:" + key
	}

	vehicle, err := h.ledger.Decrement(r.Context(), req.ID, domain.MovementSourceManual)
	if err != nil {
		switch {
		case errors.Is(err, ErrVehicleNotFound):
			h.writeError(w, http.StatusNotFound, "vehicle not found")
		case errors.Is(err, ErrOutOfStock):
			h.writeError(w, http.StatusConflict, "vehicle out of stock")
		default:
			h.logger.Error("failed to buy vehicle", "error", err, "vehicle_id", req.ID)
			if claimed != "" {
				if err := h.keys.Release(r.Context(), claimed); err != nil {
					h.logger.Error("failed to release idempotency key", "error", err, "key", claimed)
				}
			}
			h.writeError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	h.logger.Info("vehicle bought", "vehicle_id", vehicle.ID, "remaining_stock", vehicle.Stock)
	h.writeJSON(w, http.StatusOK, vehicle)
}

// decode reads and validates the JSON body into dst, answering 400 on
// failure.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		h.writeError(w, http.StatusBadRequest, validationMessage(err))
		return false
	}
	return true
}

func validationMessage(err error) string {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return "invalid request body"
	}
	fe := errs[0]
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return "missing " + field
	case "oneof":
		return field + " must be one of " + fe.Param()
	case "gte":
		return field + " must be >= " + fe.Param()
	default:
		return "invalid " + field
	}
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
