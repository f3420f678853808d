package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/joao-fontenele/motormind/internal/audit"
	"github.com/joao-fontenele/motormind/internal/idempotency"
	"github.com/joao-fontenele/motormind/internal/inventory"
	"github.com/joao-fontenele/motormind/internal/messaging"
	"github.com/joao-fontenele/motormind/internal/oracle"
	"github.com/joao-fontenele/motormind/internal/resolver"
	"github.com/joao-fontenele/motormind/internal/telemetry"
)

func main() {
	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	metricsHandler, shutdownTelemetry, err := telemetry.Setup(ctx, "allocator", "0.1.0")
	if err != nil {
		logger.Error("failed to initialize telemetry", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownTelemetry(ctx) }()

	postgresURL := os.Getenv("POSTGRES_URL")
	if postgresURL == "" {
		logger.Error("POSTGRES_URL environment variable is required")
		os.Exit(1)
	}

	apiKey := os.Getenv("ORACLE_API_KEY")
	if apiKey == "" {
		logger.Error("ORACLE_API_KEY environment variable is required")
		os.Exit(1)
	}

	db, err := telemetry.OpenDB(postgresURL, "inventory", "audit")
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	if err := db.PingContext(ctx); err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	var publisher inventory.EventPublisher
	if kafkaBrokers := os.Getenv("KAFKA_BROKERS"); kafkaBrokers != "" {
		producer := messaging.NewProducer(strings.Split(kafkaBrokers, ","), messaging.StockMovementsTopic)
		defer func() { _ = producer.Close() }()
		publisher = producer
	} else {
		logger.Warn("KAFKA_BROKERS not set, stock movements will not be published")
	}

	var keys inventory.IdempotencyStore
	if redisAddr := os.Getenv("REDIS_ADDR"); redisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: redisAddr})
		defer func() { _ = client.Close() }()
		store := idempotency.NewRedisStore(client, idempotency.DefaultTTL)
		if err := store.Ping(ctx); err != nil {
			logger.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		keys = store
	}

	oracleRPS := 2.0
	if raw := os.Getenv("ORACLE_RPS"); raw != "" {
		oracleRPS, err = strconv.ParseFloat(raw, 64)
		if err != nil {
			logger.Error("invalid ORACLE_RPS", "error", err, "value", raw)
			os.Exit(1)
		}
	}

	oracleClient := oracle.NewClient(apiKey, os.Getenv("ORACLE_MODEL"), os.Getenv("ORACLE_BASE_URL"),
		oracle.WithRateLimit(oracleRPS),
		oracle.WithLogger(logger),
	)

	vehicles := inventory.NewVehicleRepository(db)
	ledger := inventory.NewLedger(vehicles, publisher, logger)
	movements := audit.NewMovementRepository(db)

	inventoryHandler := inventory.NewHandler(vehicles, ledger, keys, logger)
	agentHandler := resolver.NewHandler(resolver.New(oracleClient, vehicles, ledger, logger), logger)
	auditHandler := audit.NewHandler(movements, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /vehicles", telemetry.WithHTTPRoute(inventoryHandler.HandleList))
	mux.HandleFunc("POST /vehicles", telemetry.WithHTTPRoute(inventoryHandler.HandleCreate))
	mux.HandleFunc("GET /vehicles/search", telemetry.WithHTTPRoute(inventoryHandler.HandleSearch))
	mux.HandleFunc("GET /vehicles/{id}", telemetry.WithHTTPRoute(inventoryHandler.HandleGet))
	mux.HandleFunc("PUT /vehicles/{id}", telemetry.WithHTTPRoute(inventoryHandler.HandleUpdate))
	mux.HandleFunc("DELETE /vehicles/{id}", telemetry.WithHTTPRoute(inventoryHandler.HandleDelete))
	mux.HandleFunc("POST /buy", telemetry.WithHTTPRoute(inventoryHandler.HandleBuy))
	mux.HandleFunc("POST /agent", telemetry.WithHTTPRoute(agentHandler.HandleAgent))
	mux.HandleFunc("GET /stock-movements", telemetry.WithHTTPRoute(auditHandler.HandleList))
	mux.Handle("GET /metrics", metricsHandler)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8081"
	}

	server := &http.Server{
		Addr: ":" + port,
		Handler: otelhttp.NewHandler(mux, "allocator",
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				if r.Pattern != "" {
					return r.Pattern
				}
				return r.Method + " " + r.URL.Path
			}),
		),
		ReadTimeout: 10 * time.Second,
		// a resolution makes up to three sequential oracle calls
		WriteTimeout: 3 * time.Minute,
	}

	go func() {
		logger.Info("starting allocator service", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}
