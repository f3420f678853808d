package resolver

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/joao-fontenele/motormind/internal/domain"
	"github.com/joao-fontenele/motormind/internal/inventory"
	"github.com/joao-fontenele/motormind/internal/normalize"
	"github.com/joao-fontenele/motormind/internal/oracle"
)

var tracer = otel.Tracer("resolver")

type Oracle interface {
	Complete(ctx context.Context, instruction, message string) (string, error)
}

type Inventory interface {
	SearchByModel(ctx context.Context, term string) ([]domain.Vehicle, error)
	ListAll(ctx context.Context) ([]domain.Vehicle, error)
}

type Ledger interface {
	Decrement(ctx context.Context, id string, source domain.MovementSource) (*domain.Vehicle, error)
}

// Resolver turns a free-text customer message into a Resolution.
type Resolver struct {
	oracle      Oracle
	inventory   Inventory
	ledger      Ledger
	matcher     *inventory.Matcher
	logger      *slog.Logger
	resolutions metric.Int64Counter
}

func New(o Oracle, inv Inventory, ledger Ledger, logger *slog.Logger) *Resolver {
	counter, err := otel.Meter("resolver").Int64Counter(
		"motormind.resolutions",
		metric.WithDescription("Resolved customer messages by outcome."),
	)
	if err != nil {
		logger.Warn("failed to create resolutions counter", "error", err)
	}

	return &Resolver{
		oracle:      o,
		inventory:   inv,
		ledger:      ledger,
		matcher:     inventory.DefaultMatcher(),
		logger:      logger,
		resolutions: counter,
	}
}

// Resolve runs one message through extraction, then either answers
// conversationally, allocates an exact model match, or recommends the
// closest alternative. Any unit named by the oracle is decremented once.
func (r *Resolver) Resolve(ctx context.Context, message string) (domain.Resolution, error) {
	ctx, span := tracer.Start(ctx, "resolver.resolve")
	defer span.End()

	res, err := r.resolve(ctx, span, message)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return domain.Resolution{}, err
	}

	span.SetAttributes(attribute.String("resolution.kind", string(res.Kind())))
	if r.resolutions != nil {
		r.resolutions.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", string(res.Kind()))))
	}
	return res, nil
}

func (r *Resolver) resolve(ctx context.Context, span trace.Span, message string) (domain.Resolution, error) {
	raw, err := r.complete(ctx, "extract", extractInstruction, message)
	if err != nil {
		return domain.Resolution{}, err
	}

	parsed, tier := normalize.Parse(raw)
	request := parsed.CustomerRequest
	if tier.Degraded() {
		r.logger.Warn("oracle extraction was not clean JSON", "tier", tier.String())
	}
	span.SetAttributes(
		attribute.String("request.model", request.Model),
		attribute.String("normalize.tier", tier.String()),
	)

	if request.IsUnrecognized() {
		reply, err := r.complete(ctx, "converse", converseInstruction, message)
		if err != nil {
			return domain.Resolution{}, err
		}
		return domain.Conversational(reply), nil
	}

	if request.Model == domain.Unknown || request.Location == domain.Unknown {
		r.logger.Warn("request is missing model or location",
			"model", request.Model,
			"location", request.Location,
		)
	}

	matches, err := r.inventory.SearchByModel(ctx, request.Model)
	if err != nil {
		return domain.Resolution{}, fmt.Errorf("search inventory for %q: %w", request.Model, err)
	}

	if len(matches) > 0 {
		offer, err := r.offer(ctx, "allocate", allocateInstruction, matches, request)
		if err != nil {
			return domain.Resolution{}, err
		}
		return domain.Allocated(offer), nil
	}

	catalog, err := r.inventory.ListAll(ctx)
	if err != nil {
		return domain.Resolution{}, fmt.Errorf("list inventory: %w", err)
	}
	similar := r.matcher.FindSimilar(request.Model, catalog)
	r.logger.Info("no exact match, recommending alternatives",
		"model", request.Model,
		"candidates", len(similar),
	)

	offer, err := r.offer(ctx, "recommend", recommendInstruction, similar, request)
	if err != nil {
		return domain.Resolution{}, err
	}
	return domain.Recommended(offer), nil
}

// offer asks the oracle to choose among candidates and decrements the
// chosen unit when the reply names one.
func (r *Resolver) offer(
	ctx context.Context,
	step string,
	instruction func([]domain.Vehicle) (string, error),
	candidates []domain.Vehicle,
	request domain.CustomerRequest,
) (domain.AllocationOffer, error) {
	prompt, err := instruction(candidates)
	if err != nil {
		return domain.AllocationOffer{}, err
	}
	message, err := requestMessage(request)
	if err != nil {
		return domain.AllocationOffer{}, err
	}

	raw, err := r.complete(ctx, step, prompt, message)
	if err != nil {
		return domain.AllocationOffer{}, err
	}

	offer := normalize.Offer(raw)
	if offer.UUID == "" {
		r.logger.Warn("oracle offer has no uuid, nothing reserved", "step", step, "model", offer.Model)
		return offer, nil
	}

	vehicle, err := r.ledger.Decrement(ctx, offer.UUID, domain.MovementSourceAgent)
	if err != nil {
		return domain.AllocationOffer{}, fmt.Errorf("%s: reserve vehicle %s: %w", step, offer.UUID, err)
	}

	r.logger.Info("vehicle reserved",
		"step", step,
		"vehicle_id", vehicle.ID,
		"remaining_stock", vehicle.Stock,
	)
	return offer, nil
}

func (r *Resolver) complete(ctx context.Context, step, instruction, message string) (string, error) {
	ctx, span := tracer.Start(ctx, "resolver."+step)
	defer span.End()

	text, err := r.oracle.Complete(ctx, instruction, message)
	if err == nil && text == "" {
		err = oracle.ErrEmptyResponse
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", fmt.Errorf("%s: %w", step, err)
	}
	return text, nil
}
