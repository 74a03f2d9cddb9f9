// Package cli is the command line surface of the inventory manager.
package cli

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/tuanvumaihuynh/inventory/internal/log"
	"github.com/tuanvumaihuynh/inventory/pkg/correlationid"
	"github.com/tuanvumaihuynh/inventory/pkg/zerror"
)

// Execute runs the command line given by args. Command output goes to stdout
// and logs go to stderr.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	a := &app{stdout: stdout, stderr: stderr}
	defer a.close(ctx)

	root := newRootCommand(a)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	return root.ExecuteContext(ctx)
}

// ErrorMessage returns the user facing text of err. Application errors are
// reduced to their message; anything else is printed as is.
func ErrorMessage(err error) string {
	var zErr zerror.ZError
	if errors.As(err, &zErr) {
		return zErr.Msg()
	}
	return err.Error()
}

func newRootCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "inventory",
		Short:         "Manage a product inventory stored in PostgreSQL",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			ctx := correlationid.NewContext(cmd.Context(), correlationid.New())
			ctx = log.ContextWithAttrs(ctx, slog.String("command", cmd.Name()))
			cmd.SetContext(ctx)

			return a.setup(ctx)
		},
	}

	cmd.PersistentFlags().StringVar(&a.dbURL, "db", "", "PostgreSQL connection string (overrides DATABASE_URL)")
	cmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log at debug level")

	cmd.AddCommand(
		newInitCommand(a),
		newMigrateCommand(a),
		newAddCommand(a),
		newDeleteCommand(a),
		newListCommand(a),
		newImportCommand(a),
		newSearchCommand(a),
		newReportCommand(a),
		newServeCommand(a),
		newRelayCommand(a),
		newEventsCommand(a),
	)

	return cmd
}
