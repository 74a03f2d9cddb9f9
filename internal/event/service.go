package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/tuanvumaihuynh/inventory/internal/storage/mq"
)

// Service consumes inventory change events.
type Service struct {
	logger     *slog.Logger
	mqConsumer mq.Consumer
}

// New creates a new event service.
func New(
	logger *slog.Logger,
	mqConsumer mq.Consumer,
) *Service {
	return &Service{
		logger:     logger.With(slog.String("service", "event")),
		mqConsumer: mqConsumer,
	}
}

type CleanupFunc func()

func (s *Service) Run(ctx context.Context) (CleanupFunc, error) {
	handlers := map[string]mq.HandlerFunc{
		TopicProductAdded:      handle(s.handleProductAddedEvent),
		TopicProductDeleted:    handle(s.handleProductDeletedEvent),
		TopicInventoryImported: handle(s.handleInventoryImportedEvent),
	}

	for topic, h := range handlers {
		if err := s.mqConsumer.RegisterHandler(topic, h); err != nil {
			return nil, fmt.Errorf("register %s handler: %w", topic, err)
		}
	}

	mqCleanup, err := s.mqConsumer.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("run mq consumer: %w", err)
	}

	cleanup := func() {
		mqCleanup()
	}

	return cleanup, nil
}

// handle decodes the JSON payload into T before calling fn.
func handle[T any](fn func(context.Context, T) error) mq.HandlerFunc {
	return func(ctx context.Context, topic string, payload []byte) error {
		var ev T
		if err := json.Unmarshal(payload, &ev); err != nil {
			return fmt.Errorf("unmarshal %s event: %w", topic, err)
		}

		if err := fn(ctx, ev); err != nil {
			return fmt.Errorf("handle %s event: %w", topic, err)
		}

		return nil
	}
}
