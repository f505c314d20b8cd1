package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/turtacn/MemberPulse-Intelligence/internal/config"
	"github.com/turtacn/MemberPulse-Intelligence/internal/infrastructure/database/postgres"
	"github.com/turtacn/MemberPulse-Intelligence/pkg/errors"
)

// migrateOptions holds flags shared by the migrate subcommands.
type migrateOptions struct {
	DatabaseURL    string
	MigrationsPath string
}

// NewMigrateCmd creates the migrate command group. Migrations run directly
// against the database, so these subcommands never need the API server.
func NewMigrateCmd() *cobra.Command {
	opts := &migrateOptions{}

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database schema migrations",
		Long:  "Applies, rolls back or inspects the schema migrations. The database\nis resolved from --db-url when given, otherwise from the loaded\nconfiguration.",
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.DatabaseURL, "db-url", "", "database URL (overrides configuration)")
	pf.StringVar(&opts.MigrationsPath, "path", "", "migrations directory (default from configuration)")

	cmd.AddCommand(
		newMigrateUpCmd(opts),
		newMigrateDownCmd(opts),
		newMigrateStatusCmd(opts),
		newMigrateForceCmd(opts),
	)

	return cmd
}

func newMigrateUpCmd(opts *migrateOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dbURL, path, err := resolveMigrateTarget(cmd, opts)
			if err != nil {
				return err
			}
			if err := postgres.RunMigrations(dbURL, path); err != nil {
				return err
			}
			PrintSuccess(cmd, "migrations applied")
			return nil
		},
	}
}

func newMigrateDownCmd(opts *migrateOptions) *cobra.Command {
	var steps int

	cmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if steps < 1 {
				return errors.Newf(errors.ErrCodeValidation, "steps must be at least 1, got %d", steps)
			}
			dbURL, path, err := resolveMigrateTarget(cmd, opts)
			if err != nil {
				return err
			}
			if err := postgres.RollbackMigration(dbURL, path, steps); err != nil {
				return err
			}
			PrintSuccess(cmd, fmt.Sprintf("rolled back %d migration(s)", steps))
			return nil
		},
	}

	cmd.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")

	return cmd
}

func newMigrateStatusCmd(opts *migrateOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current migration version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dbURL, path, err := resolveMigrateTarget(cmd, opts)
			if err != nil {
				return err
			}
			version, dirty, err := postgres.MigrationStatus(dbURL, path)
			if err != nil {
				return err
			}

			cliCtx, ctxErr := GetCLIContext(cmd)
			if ctxErr == nil && cliCtx.OutputFormat == "json" {
				return PrintResult(cmd, map[string]interface{}{
					"version": version,
					"dirty":   dirty,
				})
			}

			state := "clean"
			if dirty {
				state = "dirty"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "version: %d (%s)\n", version, state)
			return nil
		},
	}
}

func newMigrateForceCmd(opts *migrateOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "force <version>",
		Short: "Force the migration version after a failed migration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			version, err := strconv.Atoi(args[0])
			if err != nil {
				return errors.Newf(errors.ErrCodeValidation, "version must be a number, got %q", args[0])
			}
			dbURL, path, err := resolveMigrateTarget(cmd, opts)
			if err != nil {
				return err
			}
			if err := postgres.ForceMigrationVersion(dbURL, path, version); err != nil {
				return err
			}
			PrintSuccess(cmd, fmt.Sprintf("forced version %d", version))
			return nil
		},
	}
}

// resolveMigrateTarget works out the database URL and migrations source.
// The --db-url flag wins; otherwise the configuration supplies the
// connection parameters and the migrations directory.
func resolveMigrateTarget(cmd *cobra.Command, opts *migrateOptions) (dbURL, migrationsPath string, err error) {
	dbURL = opts.DatabaseURL
	migrationsDir := opts.MigrationsPath

	if dbURL == "" {
		cfg, cfgErr := loadConfig(cmd)
		if cfgErr != nil {
			return "", "", cfgErr
		}
		dbURL = postgres.BuildDSN(postgres.PostgresConfig{
			Host:     cfg.Database.Host,
			Port:     cfg.Database.Port,
			Database: cfg.Database.DBName,
			Username: cfg.Database.User,
			Password: cfg.Database.Password,
			SSLMode:  cfg.Database.SSLMode,
		})
		if migrationsDir == "" {
			migrationsDir = cfg.Database.MigrationPath
		}
	}

	if migrationsDir == "" {
		migrationsDir = "migrations"
	}

	return dbURL, "file://" + migrationsDir, nil
}

// loadConfig resolves configuration for subcommands that talk to backends
// directly instead of going through the API server.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return nil, err
	}
	if cliCtx.ConfigPath != "" {
		return config.Load(cliCtx.ConfigPath)
	}
	return config.LoadFromEnv()
}
