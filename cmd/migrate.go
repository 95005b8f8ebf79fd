package cmd

import (
	"fmt"
	"strings"

	"github.com/killallgit/resume-api/internal/models"
	"github.com/killallgit/resume-api/pkg/logger"
	"github.com/spf13/cobra"
	"gorm.io/gorm/schema"
)

// migrateCmd represents the migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
	Long: `Manage database migrations for the Resume API.

The schema is a single watch_states table keyed by user and video.
SQLite is migrated with GORM, PostgreSQL with CREATE TABLE IF NOT EXISTS.

Available subcommands:
  up      - Create or update the progress tables`,
}

// migrateUpCmd applies pending migrations
var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Create or update the progress tables",
	Long: `Apply all pending database migrations.

The configured driver decides the backend. Running it twice is harmless.`,
	RunE: runMigrateUp,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateUpCmd)

	migrateCmd.PersistentFlags().Bool("dry-run", false, "show what would be done without making changes")
}

func runMigrateUp(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	out := cmd.OutOrStdout()

	target := cfg.Database.Path
	if cfg.Database.Driver == "postgres" {
		target = "postgres"
	}

	if dryRun {
		fmt.Fprintln(out, "Dry run mode - no changes will be made")
		fmt.Fprintf(out, "Driver: %s (%s)\n", cfg.Database.Driver, target)
		fmt.Fprintf(out, "Tables: %s\n", strings.Join(tableNames(), ", "))
		return nil
	}

	opened, err := openStore(cmd.Context(), cfg.Database, logger.Nop())
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	defer func() { _ = opened.close() }()

	fmt.Fprintf(out, "Migrated %s on %s (%s)\n", strings.Join(tableNames(), ", "), cfg.Database.Driver, target)
	return nil
}

func tableNames() []string {
	var names []string
	for _, m := range models.AllModels() {
		if t, ok := m.(schema.Tabler); ok {
			names = append(names, t.TableName())
		}
	}
	return names
}
