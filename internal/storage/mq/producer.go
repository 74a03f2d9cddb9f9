package mq

import (
	"context"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tuanvumaihuynh/inventory/internal/config"
	"github.com/tuanvumaihuynh/inventory/pkg/outbox"
)

// ProduceMsg is a message relayed from the outbox.
type ProduceMsg struct {
	Topic        string
	Headers      map[string]string
	Payload      []byte
	PartitionKey *string
}

type Producer interface {
	Produce(ctx context.Context, msg ProduceMsg) error
}

var (
	_ Producer = (*KafkaProducer)(nil)
)

type KafkaProducer struct {
	cl *kgo.Client
}

// NewKafkaProducer connects to the configured brokers and verifies they are reachable.
func NewKafkaProducer(ctx context.Context, cfg config.Kafka) (*KafkaProducer, error) {
	cl, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Addresses...),
		kgo.ClientID(cfg.ClientID),
		kgo.AllowAutoTopicCreation(),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
		kgo.RequiredAcks(kgo.AllISRAcks()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	defer pingCancel()
	if err := cl.Ping(pingCtx); err != nil {
		cl.Close()
		return nil, fmt.Errorf("ping kafka: %w", err)
	}

	return &KafkaProducer{cl: cl}, nil
}

// Produce sends msg and waits for the brokers to acknowledge it.
func (p *KafkaProducer) Produce(ctx context.Context, msg ProduceMsg) error {
	ctx, span := tracer.Start(ctx, "KafkaProducer.Produce",
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			attribute.String("messaging.destination.name", msg.Topic),
			attribute.Int("messaging.message.body.size", len(msg.Payload)),
		),
	)
	defer span.End()

	res := p.cl.ProduceSync(ctx, buildProduceRecord(msg))
	rec, err := res.First()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to produce message")
		return fmt.Errorf("produce to %s: %w", msg.Topic, err)
	}

	span.SetAttributes(
		attribute.Int("messaging.kafka.destination.partition", int(rec.Partition)),
		attribute.Int64("messaging.kafka.message.offset", rec.Offset),
	)
	span.SetStatus(codes.Ok, "")
	return nil
}

func (p *KafkaProducer) Close() {
	p.cl.Close()
}

func buildProduceRecord(msg ProduceMsg) *kgo.Record {
	r := &kgo.Record{
		Topic:   msg.Topic,
		Value:   msg.Payload,
		Headers: outbox.RecordHeaders(msg.Headers),
	}

	if msg.PartitionKey != nil {
		r.Key = []byte(*msg.PartitionKey)
	}

	return r
}
