package cmd

import (
	"database/sql"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/streed/exo/internal/migrations"
)

// migrateCmd represents the migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Database migration management",
	Long: `Manage database migrations and schema changes.

Migrations run automatically whenever the database is opened.`,
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the status of database migrations",
	RunE:  showMigrationStatus,
}

var migrateRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Run pending database migrations",
	RunE:  runMigrations,
}

var migrateRollbackCmd = &cobra.Command{
	Use:   "rollback <migration-id>",
	Short: "Revert one applied migration",
	Long: `Revert one applied migration by ID. See 'exo migrate status' for IDs.

Rolling back 000_create_notes drops the notes table and every note in it.
The next command that opens the database applies pending migrations again.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if db == nil {
			return fmt.Errorf("database not initialized")
		}
		return rollbackMigration(cmd.OutOrStdout(), db.Conn(), args[0])
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateStatusCmd)
	migrateCmd.AddCommand(migrateRunCmd)
	migrateCmd.AddCommand(migrateRollbackCmd)
}

func rollbackMigration(out io.Writer, conn *sql.DB, id string) error {
	if err := migrations.NewMigrationRunner(conn).RollbackMigration(id); err != nil {
		return fmt.Errorf("failed to roll back migration: %w", err)
	}
	fmt.Fprintf(out, "Rolled back migration %s.\n", id)
	return nil
}

func showMigrationStatus(cmd *cobra.Command, args []string) error {
	if db == nil {
		return fmt.Errorf("database not initialized")
	}

	migrationRunner := migrations.NewMigrationRunner(db.Conn())

	status, err := migrationRunner.GetMigrationStatus()
	if err != nil {
		return fmt.Errorf("failed to get migration status: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintf(w, "MIGRATION ID\tSTATUS\tDESCRIPTION\n")
	fmt.Fprintf(w, "------------\t------\t-----------\n")

	appliedCount := 0
	for _, migration := range status {
		statusText := "PENDING"
		if migration.Applied {
			statusText = "APPLIED"
			appliedCount++
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", migration.ID, statusText, migration.Description)
	}
	w.Flush()

	fmt.Printf("\nTotal migrations: %d\n", len(status))
	fmt.Printf("Applied: %d\n", appliedCount)
	fmt.Printf("Pending: %d\n", len(status)-appliedCount)

	return nil
}

func runMigrations(cmd *cobra.Command, args []string) error {
	if db == nil {
		return fmt.Errorf("database not initialized")
	}

	applied, err := migrations.NewMigrationRunner(db.Conn()).RunMigrations()
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	fmt.Printf("Migration run completed: %d applied.\n", applied)
	return nil
}
