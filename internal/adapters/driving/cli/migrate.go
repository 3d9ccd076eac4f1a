package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/waiverdesk/internal/adapters/driven/storage/sqlite"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or upgrade the database",
	Long:  `Apply pending database migrations and print the schema version.`,
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	settings, err := currentSettings()
	if err != nil {
		return err
	}

	store, err := sqlite.NewStore(settings.Database.Dir)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	schema, err := store.SchemaVersion(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	cmd.Printf("Database: %s\n", store.Path())
	cmd.Println(successStyle.Render(fmt.Sprintf("Schema version %d is up to date.", schema)))
	return nil
}
