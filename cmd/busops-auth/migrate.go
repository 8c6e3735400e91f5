package main

import (
	"context"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/busops/identity-service/internal/infrastructure/db/postgres"
	"github.com/busops/identity-service/internal/pkg/config"
)

// NewMigrateCmd creates the migrate subcommand.
func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the PostgreSQL schema",
		Long:  `Apply or roll back the embedded PostgreSQL migrations. MongoDB needs no migrations.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMigrate(cmd, (*postgres.Migrator).Up)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back all migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMigrate(cmd, (*postgres.Migrator).Down)
		},
	})

	return cmd
}

func runMigrate(cmd *cobra.Command, apply func(*postgres.Migrator) error) error {
	cfg, err := config.Load(context.Background())
	if err != nil {
		return oops.Code("CONFIG_INVALID").Wrap(err)
	}
	if cfg.StoreDriver != config.StoreDriverPostgres {
		return oops.Code("CONFIG_INVALID").
			With("store_driver", cfg.StoreDriver).
			Errorf("migrations apply to the postgres store only")
	}

	migrator, err := postgres.NewMigrator(cfg.Postgres.URL)
	if err != nil {
		return oops.Code("DB_CONNECT_FAILED").With("operation", "open migrator").Wrap(err)
	}
	defer func() {
		if err := migrator.Close(); err != nil {
			cmd.PrintErrln("close migrator:", err)
		}
	}()

	cmd.Println("Running migrations...")
	if err := apply(migrator); err != nil {
		return oops.Code("MIGRATION_FAILED").Wrap(err)
	}

	v, dirty, err := migrator.Version()
	if err != nil {
		return oops.Code("MIGRATION_FAILED").With("operation", "read version").Wrap(err)
	}
	cmd.Printf("Schema at version %d (dirty: %t)\n", v, dirty)
	return nil
}
