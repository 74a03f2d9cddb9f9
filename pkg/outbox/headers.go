package outbox

import (
	"context"

	"github.com/twmb/franz-go/pkg/kgo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/tuanvumaihuynh/inventory/pkg/correlationid"
)

// BuildHeaders captures the trace context and correlation ID of ctx so an event
// written now can be linked back to the command that produced it.
func BuildHeaders(ctx context.Context) map[string]string {
	headers := map[string]string{}
	otel.GetTextMapPropagator().Inject(ctx, propagation.MapCarrier(headers))

	if id, ok := correlationid.FromContext(ctx); ok {
		headers[correlationid.Header] = id
	}
	return headers
}

// ExtractContextFromHeaders is the inverse of BuildHeaders.
func ExtractContextFromHeaders(ctx context.Context, headers map[string]string) context.Context {
	ctx = otel.GetTextMapPropagator().Extract(ctx, propagation.MapCarrier(headers))

	if id, ok := headers[correlationid.Header]; ok && id != "" {
		ctx = correlationid.NewContext(ctx, id)
	}
	return ctx
}

// RecordHeaders converts stored headers to Kafka record headers.
func RecordHeaders(headers map[string]string) []kgo.RecordHeader {
	out := make([]kgo.RecordHeader, 0, len(headers))
	for k, v := range headers {
		out = append(out, kgo.RecordHeader{Key: k, Value: []byte(v)})
	}
	return out
}

// ExtractContextFromRecord is ExtractContextFromHeaders for a consumed Kafka record.
func ExtractContextFromRecord(ctx context.Context, rec *kgo.Record) context.Context {
	headers := make(map[string]string, len(rec.Headers))
	for _, h := range rec.Headers {
		headers[h.Key] = string(h.Value)
	}
	return ExtractContextFromHeaders(ctx, headers)
}
