package main

import (
	"errors"
	"fmt"

	"herd-mating/internal/adapters/storage"
	"herd-mating/internal/adapters/storage/sqlrepo"
	"herd-mating/internal/config"

	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		Long:  `Crea las tablas e índices del driver configurado (STORAGE_DRIVER=sqlite|postgres). Es idempotente.`,
		Args:  cobra.NoArgs,
		RunE:  runMigrate,
	}
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	db, d, err := storage.Open(cfg)
	if errors.Is(err, storage.ErrNoDatabase) {
		return errors.New("migrate requires STORAGE_DRIVER=sqlite or postgres")
	}
	if err != nil {
		return err
	}
	defer db.Close()

	if err := sqlrepo.Migrate(cmd.Context(), db, d); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s schema up to date\n", d.Name)
	return nil
}
