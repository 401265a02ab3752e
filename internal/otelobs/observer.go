// Package otelobs adapts acp.Connection's Observer hook into OpenTelemetry
// spans, so every request/response/notification crossing a connection
// shows up as a trace event without the acp package itself depending on
// OpenTelemetry.
package otelobs

import (
	"context"
	"fmt"

	"github.com/agentclientprotocol/acp-go/acp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Observer records one short span per Event, sent or received, tagged
// with its direction, kind, method and request id.
type Observer struct {
	tracer trace.Tracer
}

// New builds an Observer that reports spans on the given tracer. Pass
// otel.Tracer("acp") from the call site so span provider wiring stays
// outside this package.
func New(tracer trace.Tracer) *Observer {
	return &Observer{tracer: tracer}
}

// Observe implements acp.Observer.
func (o *Observer) Observe(e acp.Event) {
	_, span := o.tracer.Start(context.Background(), spanName(e))
	defer span.End()

	span.SetAttributes(
		attribute.String("acp.direction", directionLabel(e.Direction)),
		attribute.String("acp.kind", kindLabel(e.Kind)),
	)
	if e.Method != "" {
		span.SetAttributes(attribute.String("acp.method", e.Method))
	}
	if !e.ID.IsZero() {
		span.SetAttributes(attribute.String("acp.request_id", e.ID.String()))
	}
}

func spanName(e acp.Event) string {
	if e.Method != "" {
		return fmt.Sprintf("acp.%s", e.Method)
	}
	return "acp.response"
}

func directionLabel(d acp.EventDirection) string {
	if d == acp.DirectionSent {
		return "sent"
	}
	return "received"
}

func kindLabel(k acp.EventKind) string {
	switch k {
	case acp.EventRequest:
		return "request"
	case acp.EventNotification:
		return "notification"
	default:
		return "response"
	}
}
