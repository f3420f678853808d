package messaging

import (
	"context"
	"slices"
	"testing"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

func TestHeaderCarrier(t *testing.T) {
	t.Run("set overwrites existing keys", func(t *testing.T) {
		msg := &kafka.Message{Headers: []kafka.Header{{Key: "traceparent", Value: []byte("old")}}}
		c := headerCarrier{msg: msg}

		c.Set("traceparent", "new")
		c.Set("tracestate", "a=b")

		if got := c.Get("traceparent"); got != "new" {
			t.Errorf("expected new, got %s", got)
		}
		if len(msg.Headers) != 2 {
			t.Errorf("expected 2 headers, got %d", len(msg.Headers))
		}
		if !slices.Equal(c.Keys(), []string{"traceparent", "tracestate"}) {
			t.Errorf("unexpected keys: %v", c.Keys())
		}
		if c.Get("missing") != "" {
			t.Error("expected empty value for missing key")
		}
	})

	t.Run("round trips trace context", func(t *testing.T) {
		traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
		spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
		sc := trace.NewSpanContext(trace.SpanContextConfig{
			TraceID:    traceID,
			SpanID:     spanID,
			TraceFlags: trace.FlagsSampled,
		})
		ctx := trace.ContextWithSpanContext(context.Background(), sc)

		prop := propagation.TraceContext{}
		msg := &kafka.Message{}
		prop.Inject(ctx, headerCarrier{msg: msg})

		extracted := trace.SpanContextFromContext(prop.Extract(context.Background(), headerCarrier{msg: msg}))
		if extracted.TraceID() != traceID {
			t.Errorf("expected trace id %s, got %s", traceID, extracted.TraceID())
		}
		if !extracted.IsRemote() {
			t.Error("expected remote span context")
		}
	})
}
