package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tuanvumaihuynh/inventory/internal/config"
	"github.com/tuanvumaihuynh/inventory/internal/event"
	"github.com/tuanvumaihuynh/inventory/internal/storage/mq"
	"github.com/tuanvumaihuynh/inventory/pkg/cmdutil"
)

func newEventsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "events",
		Short: "Consume and log inventory events until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			kafkaCfg, err := config.New[config.Kafka]()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			consumer, err := mq.NewKafkaConsumer(ctx, kafkaCfg, a.logger)
			if err != nil {
				return fmt.Errorf("create kafka consumer: %w", err)
			}
			a.onClose(func(context.Context) error {
				consumer.Close()
				return nil
			})

			cleanup, err := event.New(a.logger, consumer).Run(ctx)
			if err != nil {
				return fmt.Errorf("run event service: %w", err)
			}
			a.logger.InfoContext(ctx, "event service started")

			select {
			case <-cmdutil.InterruptChan():
			case <-ctx.Done():
			}

			a.logger.InfoContext(ctx, "event service is shutting down")
			cleanup()
			a.logger.InfoContext(ctx, "event service is stopped")

			return nil
		},
	}
}
