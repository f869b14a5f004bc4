// Package main is the entry point for campusctl, the operator CLI for the
// campus events backend.
package main

import (
	"fmt"
	"log"
	"os"

	"campus-events/cmd/campusctl/internal/commands"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func run() error {
	_ = godotenv.Load()
	env := commands.NewEnv()
	defer env.Close()

	rootCmd := &cobra.Command{
		Use:   "campusctl",
		Short: "Operator tooling for the campus events backend",
		Long: `campusctl runs maintenance tasks against the same database, Redis and
job boards the API server uses. It reads the same environment variables
(POSTGRES_DSN, REDIS_ADDR, MIGRATIONS_DIR, ...) and an optional .env file.`,
		SilenceUsage: true,
	}

	initializeCommands(rootCmd, env)

	if err := rootCmd.Execute(); err != nil {
		return fmt.Errorf("command execution failed: %w", err)
	}
	return nil
}

// initializeCommands registers all command groups with the root command.
func initializeCommands(rootCmd *cobra.Command, env *commands.Env) {
	commands.InitMigrateCommands(rootCmd, env)
	commands.InitSyncCommands(rootCmd, env)
	commands.InitRoleCommands(rootCmd, env)
}

func init() {
	log.SetFlags(log.Ldate | log.Ltime)
	log.SetOutput(os.Stderr)
}
