package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/boardkit/api/internal/infra/jobs"
	"github.com/boardkit/api/internal/infra/postgres"
)

var flagSweepDirect bool

var sweepLinksCmd = &cobra.Command{
	Use:   "sweep-links",
	Short: "Deactivate expired invite links",
	Long: `sweep-links enqueues the invite link sweep task for the background
worker. With --direct it runs the sweep against the database in this
process instead, for environments without a worker.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if flagSweepDirect {
			_, db, err := openDatabase()
			if err != nil {
				return err
			}
			defer db.Close()

			swept, err := postgres.NewBoardRepository(db).DeactivateExpiredInviteLinks(cmd.Context())
			if err != nil {
				return fmt.Errorf("sweep failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deactivated %d expired invite links\n", swept)
			return nil
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		client := jobs.NewClient(jobs.ClientConfig{
			RedisAddr:     cfg.Redis.Addr(),
			RedisPassword: cfg.Redis.Password,
			RedisDB:       cfg.Redis.DB,
		}, newLogger())
		defer client.Close()

		if err := client.EnqueueSweepInviteLinks(cmd.Context()); err != nil {
			return fmt.Errorf("failed to enqueue sweep: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "sweep task enqueued")
		return nil
	},
}

func init() {
	sweepLinksCmd.Flags().BoolVar(&flagSweepDirect, "direct", false, "Run the sweep in this process instead of enqueuing it")
	rootCmd.AddCommand(sweepLinksCmd)
}
