package main

import (
	"errors"
	"fmt"

	"github.com/DanielPopoola/vpnshop-gateway/internal/infrastructure/persistence/postgres"
	"github.com/spf13/cobra"
)

var migrateSteps int

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the issuance ledger schema",
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, closeDB, err := connectDB(cmd)
			if err != nil {
				return err
			}
			defer closeDB()
			return postgres.RunMigrations(db)
		},
	}

	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if migrateSteps < 1 {
				return errors.New("--steps must be at least 1")
			}
			db, closeDB, err := connectDB(cmd)
			if err != nil {
				return err
			}
			defer closeDB()
			return postgres.RollbackMigrations(db, migrateSteps)
		},
	}
	down.Flags().IntVar(&migrateSteps, "steps", 1, "number of migrations to roll back")

	cmd.AddCommand(up, down)
	return cmd
}

func connectDB(cmd *cobra.Command) (*postgres.DB, func(), error) {
	cfg, logger, err := bootstrap()
	if err != nil {
		return nil, nil, err
	}
	if !cfg.Database.Enabled {
		return nil, nil, errors.New("database is disabled; set VPNSHOP_DATABASE__ENABLED=true")
	}
	db, err := postgres.Connect(cmd.Context(), &cfg.Database, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, db.Close, nil
}
