package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/tuanvumaihuynh/inventory/internal/config"
	"github.com/tuanvumaihuynh/inventory/internal/relay"
	"github.com/tuanvumaihuynh/inventory/internal/repository"
	"github.com/tuanvumaihuynh/inventory/internal/storage/db"
	"github.com/tuanvumaihuynh/inventory/internal/storage/mq"
	"github.com/tuanvumaihuynh/inventory/pkg/cmdutil"
)

type relayConfig struct {
	Relay config.Relay
	Kafka config.Kafka
}

func newRelayCommand(a *app) *cobra.Command {
	var once bool

	cmd := &cobra.Command{
		Use:   "relay",
		Short: "Publish pending inventory events to Kafka",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			cfg, err := config.New[relayConfig]()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			storeCfg, err := a.loadStoreConfig()
			if err != nil {
				return err
			}
			pool, err := a.openStore(ctx, storeCfg.Postgres)
			if err != nil {
				return err
			}
			dbClient := db.NewClient(pool)

			producer, err := mq.NewKafkaProducer(ctx, cfg.Kafka)
			if err != nil {
				return fmt.Errorf("create kafka producer: %w", err)
			}
			a.onClose(func(context.Context) error {
				producer.Close()
				return nil
			})

			svc := relay.NewService(cfg.Relay, a.logger, dbClient, repository.NewOutboxMsgRepository(dbClient), producer)

			if once {
				n, err := svc.RelayOnce(ctx)
				if err != nil {
					return fmt.Errorf("relay: %w", err)
				}
				fmt.Fprintf(a.stdout, "relayed %d events\n", n)
				return nil
			}

			cleanup := svc.Run(ctx)
			a.logger.InfoContext(ctx, "relay service started", slog.Duration("interval", cfg.Relay.Interval))

			select {
			case <-cmdutil.InterruptChan():
			case <-ctx.Done():
			}

			a.logger.InfoContext(ctx, "relay service is shutting down")
			cleanup()
			a.logger.InfoContext(ctx, "relay service is stopped")

			return nil
		},
	}

	cmd.Flags().BoolVar(&once, "once", false, "relay a single batch and exit")
	return cmd
}
