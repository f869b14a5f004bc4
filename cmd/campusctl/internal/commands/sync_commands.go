package commands

import (
	"encoding/json"
	"fmt"

	catalog_db "campus-events/internal/catalog/db"
	"campus-events/internal/jobsync"
	"campus-events/internal/kafka"

	"github.com/spf13/cobra"
)

// InitSyncCommands registers `sync internships`.
func InitSyncCommands(rootCmd *cobra.Command, env *Env) {
	syncCmd := &cobra.Command{
		Use:   "sync",
		Short: "Pull external data into the catalog",
	}

	internshipsCmd := &cobra.Command{
		Use:   "internships",
		Short: "Fetch internship postings from the job boards once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := env.DB(cmd.Context())
			if err != nil {
				return err
			}

			syncer := jobsync.NewFromConfig(env.Config.Sync, &catalog_db.DB{Bun: db}, kafka.NoopPublisher{}, "", env.Logger)
			report := syncer.Run(cmd.Context())

			out, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return err
			}
			env.printf("%s\n", out)

			if report.Failed() {
				return fmt.Errorf("every source failed")
			}
			return nil
		},
	}

	syncCmd.AddCommand(internshipsCmd)
	rootCmd.AddCommand(syncCmd)
}
