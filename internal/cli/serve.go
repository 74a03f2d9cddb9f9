package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/tuanvumaihuynh/inventory/internal/config"
	"github.com/tuanvumaihuynh/inventory/internal/http"
	"github.com/tuanvumaihuynh/inventory/pkg/cmdutil"
)

func newServeCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the inventory over HTTP until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			httpCfg, err := config.New[config.HTTP]()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			svcs, err := a.services(ctx)
			if err != nil {
				return err
			}

			svc := http.New(httpCfg, a.logger, http.Services{
				Product: svcs.product,
				Search:  svcs.search,
				Report:  svcs.report,
				Health:  svcs.db,
			})
			cleanup, err := svc.Run(ctx)
			if err != nil {
				return fmt.Errorf("run http service: %w", err)
			}
			a.logger.InfoContext(ctx, "http service started", slog.String("address", fmt.Sprintf(":%d", httpCfg.Port)))

			select {
			case <-cmdutil.InterruptChan():
			case <-ctx.Done():
			}

			a.logger.InfoContext(ctx, "http service is shutting down")
			if err := cleanup(ctx); err != nil {
				return fmt.Errorf("shut down http service: %w", err)
			}
			a.logger.InfoContext(ctx, "http service is stopped")

			return nil
		},
	}
}
