package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tuanvumaihuynh/inventory/internal/storage/db"
)

func newInitCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the inventory schema if it does not exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := a.loadStoreConfig()
			if err != nil {
				return err
			}

			if _, err := a.openStore(cmd.Context(), cfg.Postgres); err != nil {
				return err
			}

			fmt.Fprintln(a.stdout, "inventory store is ready")
			return nil
		},
	}
}

func newMigrateCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			cfg, err := a.loadStoreConfig()
			if err != nil {
				return err
			}

			pool, err := db.NewPgxPool(ctx, cfg.Postgres)
			if err != nil {
				return fmt.Errorf("connect: %w", err)
			}
			defer pool.Close()

			if err := db.Migrate(ctx, pool); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}

			a.logger.InfoContext(ctx, "migrations applied")
			return nil
		},
	}
}
