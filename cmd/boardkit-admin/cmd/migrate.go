package cmd

import (
	"github.com/spf13/cobra"

	"github.com/boardkit/api/pkg/migrations"
)

var flagMigrationsDir string

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage database schema migrations",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRunner(cmd, func(r *migrations.Runner) error {
			return r.Up(cmd.Context())
		})
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the most recently applied migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRunner(cmd, func(r *migrations.Runner) error {
			return r.Down(cmd.Context())
		})
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show applied and pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRunner(cmd, func(r *migrations.Runner) error {
			return r.Status(cmd.Context())
		})
	},
}

func withRunner(cmd *cobra.Command, fn func(*migrations.Runner) error) error {
	_, db, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	return fn(migrations.NewRunner(db.DB, flagMigrationsDir))
}

func init() {
	migrateCmd.PersistentFlags().StringVar(&flagMigrationsDir, "dir", "migrations", "Directory containing migration files")

	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateDownCmd)
	migrateCmd.AddCommand(migrateStatusCmd)
	rootCmd.AddCommand(migrateCmd)
}
