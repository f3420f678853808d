package oracle

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	callDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "motormind",
			Subsystem: "oracle",
			Name:      "call_duration_seconds",
			Help:      "Duration of oracle completion calls in seconds.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"status"},
	)

	callsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "motormind",
			Subsystem: "oracle",
			Name:      "calls_total",
			Help:      "Total number of oracle completion calls.",
		},
		[]string{"status"},
	)

	// error_type: timeout, auth, rate_limit, server, empty_response, unknown
	errorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "motormind",
			Subsystem: "oracle",
			Name:      "errors_total",
			Help:      "Total oracle errors by type.",
		},
		[]string{"error_type"},
	)

	tokensTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "motormind",
			Subsystem: "oracle",
			Name:      "tokens_total",
			Help:      "Total tokens reported by the oracle.",
		},
		[]string{"direction"},
	)

	activeRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "motormind",
			Subsystem: "oracle",
			Name:      "active_requests",
			Help:      "Number of in-flight oracle calls.",
		},
	)
)

func observeCall(d time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
		errorsTotal.WithLabelValues(classifyError(err)).Inc()
	}
	callDuration.WithLabelValues(status).Observe(d.Seconds())
	callsTotal.WithLabelValues(status).Inc()
}

func observeTokens(input, output int) {
	tokensTotal.WithLabelValues("input").Add(float64(input))
	tokensTotal.WithLabelValues("output").Add(float64(output))
}

func classifyError(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, ErrEmptyResponse) {
		return "empty_response"
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return "timeout"
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "timeout"):
		return "timeout"
	case strings.Contains(msg, "status 401") || strings.Contains(msg, "status 403"):
		return "auth"
	case strings.Contains(msg, "status 429") || strings.Contains(msg, "rate limit"):
		return "rate_limit"
	case strings.Contains(msg, "status 5"):
		return "server"
	default:
		return "unknown"
	}
}
