package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AI2HU/geolens/internal/db"
)

var migrationsDir string

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the SQLite schema migrations",
	RunE:  runMigrate,
}

func init() {
	migrateCmd.Flags().StringVar(&migrationsDir, "dir", "", "Migrations directory (default: autodetect)")
}

func runMigrate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	if err := connectSQL(ctx); err != nil {
		return err
	}

	fmt.Printf("🗃️  Applying migrations to %s...\n", cfg.SQLDatabase.URI)
	if err := db.RunMigrations(ctx, sqlStore.DB(), migrationsDir); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	fmt.Println(FormatSuccess("✅ Database is up to date"))
	return nil
}
