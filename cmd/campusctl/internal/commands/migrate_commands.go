package commands

import (
	"fmt"
	"strconv"

	"campus-events/internal/database/migrations"

	"github.com/spf13/cobra"
)

func (e *Env) runner(cmd *cobra.Command) (*migrations.Runner, func(), error) {
	db, err := e.DB(cmd.Context())
	if err != nil {
		return nil, nil, err
	}

	seed, _ := cmd.Flags().GetBool("seed")
	opts := migrations.DefaultOptions()
	opts.Dir = e.Config.Database.MigrationsDir
	opts.Seed = seed || e.Config.Database.SeedDemo

	runner := migrations.NewRunner(db.DB, opts, e.Logger)
	cleanup := func() {
		if err := runner.Close(); err != nil {
			e.Logger.Warn("MIGRATE", err.Error())
		}
	}
	return runner, cleanup, nil
}

// InitMigrateCommands registers `migrate up|down|to|version`.
func InitMigrateCommands(rootCmd *cobra.Command, env *Env) {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back database migrations",
	}
	migrateCmd.PersistentFlags().Bool("seed", false, "Also apply demo seed migrations")

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			runner, cleanup, err := env.runner(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := runner.Run(); err != nil {
				return err
			}
			env.printf("migrations applied\n")
			return nil
		},
	}

	downCmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back every migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if yes, _ := cmd.Flags().GetBool("yes"); !yes {
				return fmt.Errorf("refusing to drop all tables without --yes")
			}
			runner, cleanup, err := env.runner(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := runner.MigrateDown(); err != nil {
				return err
			}
			env.printf("migrations rolled back\n")
			return nil
		},
	}
	downCmd.Flags().Bool("yes", false, "Confirm the rollback")

	toCmd := &cobra.Command{
		Use:   "to <version>",
		Short: "Migrate up or down to a specific version",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			version, err := strconv.ParseUint(args[0], 10, 32)
			if err != nil {
				return fmt.Errorf("invalid version %q: %w", args[0], err)
			}
			runner, cleanup, err := env.runner(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := runner.MigrateTo(uint(version)); err != nil {
				return err
			}
			env.printf("migrated to version %d\n", version)
			return nil
		},
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the applied schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			runner, cleanup, err := env.runner(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			version, dirty, err := runner.Version()
			if err != nil {
				return err
			}
			env.printf("version %d (dirty=%t)\n", version, dirty)
			return nil
		},
	}

	migrateCmd.AddCommand(upCmd, downCmd, toCmd, versionCmd)
	rootCmd.AddCommand(migrateCmd)
}
