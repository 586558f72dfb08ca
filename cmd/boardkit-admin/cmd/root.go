package cmd

import (
	"github.com/spf13/cobra"

	"github.com/boardkit/api/internal/config"
	"github.com/boardkit/api/internal/infra/postgres"
	"github.com/boardkit/api/pkg/logger"
)

var flagVerbose bool

var rootCmd = &cobra.Command{
	Use:   "boardkit-admin",
	Short: "boardkit platform administration CLI",
	Long: `boardkit-admin manages the boardkit API out of band.

It provides commands to run database migrations, seed initial data,
and trigger maintenance tasks. Connection settings come from the same
environment variables the server reads.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable debug logging")
}

func newLogger() *logger.Logger {
	level := "info"
	if flagVerbose {
		level = "debug"
	}
	return logger.New(logger.Config{Level: level, Format: "text"})
}

func loadConfig() (*config.Config, error) {
	return config.Load()
}

// openDatabase loads config and connects to Postgres. The caller owns
// the returned DB.
func openDatabase() (*config.Config, *postgres.DB, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	db, err := postgres.New(&cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}
