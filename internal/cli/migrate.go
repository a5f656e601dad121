package cli

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/taskpulse/internal/app"
	"github.com/emiliopalmerini/taskpulse/internal/database"
	"github.com/emiliopalmerini/taskpulse/internal/migrate"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate [version]",
	Short: "Run counter store migrations",
	Long: `Run migrations on the libsql counter store.

Without arguments, runs all pending migrations (up).
With a version number, migrates to that specific version (up or down as needed).

Examples:
  taskpulse migrate      # Run all pending migrations
  taskpulse migrate 0    # Rollback all migrations`,
	Args: cobra.MaximumNArgs(1),
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	target := -1
	if len(args) == 1 {
		v, err := strconv.Atoi(args[0])
		if err != nil || v < 0 {
			return fmt.Errorf("invalid version number: %s", args[0])
		}
		target = v
	}

	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.StoreBackend != app.BackendLibsql {
		return fmt.Errorf("migrations only apply to the %s backend, configured backend is %s", app.BackendLibsql, cfg.StoreBackend)
	}

	ctx := log.WithContext(cmd.Context(), logger)
	client, err := database.New(ctx, cfg.TursoDatabaseURL, cfg.TursoAuthToken)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer client.Close()

	all, err := migrate.Load()
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}

	version, err := migrate.To(ctx, client.DB, all, target)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Database at version %d\n", version)
	return nil
}
