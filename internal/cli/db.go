package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mcoot/realmgate/internal/config"
	"github.com/mcoot/realmgate/internal/factory"
	"github.com/mcoot/realmgate/internal/storage/postgres"
)

// dbTimeout bounds each database command
const dbTimeout = 30 * time.Second

// databaseConfig loads DB_ settings from the environment and the env file
func databaseConfig() (postgres.Config, error) {
	db, err := config.LoadDatabase(cfg.EnvFile)
	if err != nil {
		return postgres.Config{}, err
	}
	return factory.PostgresConfig(db), nil
}

func newDBCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dbcheck",
		Short: "Check the account database connection and table",
		RunE: func(cmd *cobra.Command, args []string) error {
			pgCfg, err := databaseConfig()
			if err != nil {
				return err
			}
			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			if cfg.Verbose {
				out.PrintMessage("Connecting to " + pgCfg.Redacted())
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), dbTimeout)
			defer cancel()

			pool, err := postgres.Open(ctx, pgCfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			report, err := postgres.New(pool).Inspect(ctx)
			if err != nil {
				return err
			}

			out.Print(DBReportFromTable(report))
			if !report.TableExists {
				return errors.New("account table not found; run 'realmctl migrate up'")
			}
			return nil
		},
	}
}

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the account database schema",
	}

	cmd.AddCommand(newMigrateStepCmd("up", "Apply all pending migrations", (*postgres.Migrator).Up))
	cmd.AddCommand(newMigrateStepCmd("down", "Roll back every migration (drops the account table)", (*postgres.Migrator).Down))
	cmd.AddCommand(newMigrateStepCmd("version", "Show the applied schema version", nil))

	return cmd
}

func newMigrateStepCmd(action, short string, step func(*postgres.Migrator) error) *cobra.Command {
	return &cobra.Command{
		Use:   action,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			pgCfg, err := databaseConfig()
			if err != nil {
				return err
			}

			m, err := postgres.NewMigrator(pgCfg.URL())
			if err != nil {
				return err
			}
			defer func() {
				err = errors.Join(err, m.Close())
			}()

			if step != nil {
				if err := step(m); err != nil {
					return fmt.Errorf("migrate %s: %w", action, err)
				}
			}

			version, dirty, err := m.Version()
			if err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(MigrationStatus{Action: action, Version: version, Dirty: dirty})
			return nil
		},
	}
}
