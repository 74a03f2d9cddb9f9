package relay

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/tuanvumaihuynh/inventory/internal/config"
	"github.com/tuanvumaihuynh/inventory/internal/repository"
	"github.com/tuanvumaihuynh/inventory/internal/storage/db"
	"github.com/tuanvumaihuynh/inventory/internal/storage/mq"
	"github.com/tuanvumaihuynh/inventory/pkg/outbox"
	"github.com/tuanvumaihuynh/inventory/pkg/ptr"
)

const stopTimeout = 5 * time.Second

// Service publishes pending outbox messages to the message broker.
type Service struct {
	cfg           config.Relay
	logger        *slog.Logger
	db            db.DB
	outboxMsgRepo repository.OutboxMsgRepository
	mqProducer    mq.Producer

	stopChan chan struct{}
}

func NewService(
	cfg config.Relay,
	logger *slog.Logger,
	db db.DB,
	outboxMsgRepo repository.OutboxMsgRepository,
	mqProducer mq.Producer,
) *Service {
	return &Service{
		cfg:           cfg,
		logger:        logger.With(slog.String("service", "relay")),
		db:            db,
		outboxMsgRepo: outboxMsgRepo,
		mqProducer:    mqProducer,
		stopChan:      make(chan struct{}),
	}
}

type CleanupFunc func()

// Run relays a batch every cfg.Interval until the returned cleanup is called.
func (s *Service) Run(ctx context.Context) CleanupFunc {
	ctx, cancel := context.WithCancel(ctx)

	stoppedChan := make(chan struct{})
	go func() {
		defer close(stoppedChan)
		s.loop(ctx)
	}()

	return func() {
		close(s.stopChan)
		select {
		case <-stoppedChan:
		case <-time.After(stopTimeout):
			cancel()
			<-stoppedChan
		}
		cancel()
	}
}

func (s *Service) loop(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopChan:
			return
		case <-ticker.C:
			if _, err := s.RelayOnce(ctx); err != nil {
				s.logger.ErrorContext(ctx, "error relaying outbox msgs", slog.Any("error", err))
			}
		}
	}
}

// RelayOnce publishes at most one batch of unprocessed messages and marks
// them processed, recording the producer error of each failed message. It
// returns the number of messages handled.
func (s *Service) RelayOnce(ctx context.Context) (int, error) {
	var handled int
	err := s.db.WithTx(ctx, func(db db.DB) error {
		outboxMsgs, err := s.outboxMsgRepo.
			WithDB(db).
			ListUnprocessedOutboxMsgs(ctx, repository.ListUnprocessedOutboxMsgsParams{
				//nolint:gosec
				BatchSize: int32(s.cfg.BatchSize),
			})
		if err != nil {
			return fmt.Errorf("list unprocessed outbox msgs: %w", err)
		}

		if len(outboxMsgs) == 0 {
			return nil
		}

		s.logger.InfoContext(ctx, "relaying outbox msgs", slog.Int("count", len(outboxMsgs)))

		items := s.produceAll(ctx, outboxMsgs)

		if err := s.outboxMsgRepo.
			WithDB(db).
			BulkUpdateOutboxMsgs(ctx, repository.BulkUpdateOutboxMsgsParams{
				Items: items,
			}); err != nil {
			return fmt.Errorf("bulk update outbox msgs: %w", err)
		}

		handled = len(items)
		return nil
	})
	if err != nil {
		return 0, err
	}

	return handled, nil
}

// produceAll sends msgs concurrently. The result has one item per message.
func (s *Service) produceAll(ctx context.Context, msgs []repository.ListUnprocessedOutboxMsgsResult) []repository.BulkUpdateOutboxMsgsItem {
	items := make([]repository.BulkUpdateOutboxMsgsItem, len(msgs))

	var wg sync.WaitGroup
	for i, msg := range msgs {
		wg.Go(func() {
			items[i] = repository.BulkUpdateOutboxMsgsItem{ID: msg.ID}

			// produce under the trace and correlation id of the original write
			msgCtx := outbox.ExtractContextFromHeaders(ctx, msg.Headers)
			err := s.mqProducer.Produce(msgCtx, mq.ProduceMsg{
				Topic:        msg.Topic,
				Headers:      msg.Headers,
				Payload:      msg.Payload,
				PartitionKey: msg.PartitionKey,
			})
			if err != nil {
				s.logger.ErrorContext(msgCtx,
					"error producing message",
					slog.String("outbox_msg_id", msg.ID.String()),
					slog.String("topic", msg.Topic),
					slog.String("key", ptr.Deref(msg.PartitionKey)),
					slog.Any("error", err),
				)
				items[i].Error = ptr.New(err.Error())
			}
		})
	}
	wg.Wait()

	return items
}
