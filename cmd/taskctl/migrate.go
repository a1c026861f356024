package main

import (
	"errors"
	"fmt"

	"task_tracker/internal/db"

	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	var dsn string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.Root().PersistentPreRun(cmd, args)
			if dsn == "" {
				dsn = envOr("DATABASE_URL", "")
			}
			if dsn == "" {
				return errors.New("DATABASE_URL not set")
			}
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&dsn, "database-url", "", "Postgres DSN (default $DATABASE_URL)")

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return db.Migrate(cmd.Context(), dsn)
		},
	})

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return db.Rollback(cmd.Context(), dsn, steps)
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "Number of migrations to roll back")
	cmd.AddCommand(down)

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Print the current schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := db.MigrationVersion(cmd.Context(), dsn)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema version %d\n", v)
			return nil
		},
	})

	return cmd
}
