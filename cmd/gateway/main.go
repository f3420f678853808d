package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/joao-fontenele/motormind/internal/gateway"
	"github.com/joao-fontenele/motormind/internal/telemetry"
)

func main() {
	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	shutdownTracer, err := telemetry.InitTracerProvider(ctx, "gateway", "0.1.0")
	if err != nil {
		logger.Error("failed to initialize tracer", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownTracer(ctx) }()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	allocatorServiceURL := os.Getenv("ALLOCATOR_SERVICE_URL")
	if allocatorServiceURL == "" {
		logger.Error("ALLOCATOR_SERVICE_URL is required")
		os.Exit(1)
	}

	corsOrigin := os.Getenv("CORS_ORIGIN")
	if corsOrigin == "" {
		corsOrigin = "http://localhost:5173"
	}

	httpClient := &http.Client{
		Timeout:   3 * time.Minute,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}

	handler := gateway.NewHandler(gateway.NewServiceProxy(allocatorServiceURL, httpClient), logger)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", telemetry.WithHTTPRoute(handler.HandleWelcome))
	mux.HandleFunc("GET /api/docs", telemetry.WithHTTPRoute(handler.HandleDocs))
	mux.HandleFunc("GET /api/vehicles", telemetry.WithHTTPRoute(handler.HandleAPI))
	mux.HandleFunc("POST /api/vehicles", telemetry.WithHTTPRoute(handler.HandleAPI))
	mux.HandleFunc("GET /api/vehicles/search", telemetry.WithHTTPRoute(handler.HandleAPI))
	mux.HandleFunc("GET /api/vehicles/{id}", telemetry.WithHTTPRoute(handler.HandleAPI))
	mux.HandleFunc("PUT /api/vehicles/{id}", telemetry.WithHTTPRoute(handler.HandleAPI))
	mux.HandleFunc("DELETE /api/vehicles/{id}", telemetry.WithHTTPRoute(handler.HandleAPI))
	mux.HandleFunc("POST /api/buy", telemetry.WithHTTPRoute(handler.HandleAPI))
	mux.HandleFunc("POST /api/agent", telemetry.WithHTTPRoute(handler.HandleAPI))
	mux.HandleFunc("GET /api/stock-movements", telemetry.WithHTTPRoute(handler.HandleAPI))

	server := &http.Server{
		Addr: ":" + port,
		Handler: gateway.CORS(corsOrigin, otelhttp.NewHandler(mux, "gateway",
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				if r.Pattern != "" {
					return r.Pattern
				}
				return r.Method + " " + r.URL.Path
			}),
		)),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 3 * time.Minute,
	}

	go func() {
		logger.Info("starting gateway service", "port", port, "cors_origin", corsOrigin)
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
