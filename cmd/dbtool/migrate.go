package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/yourusername/millionaire-api/pkg/database"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Управление миграциями схемы",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Применить все миграции",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			db, err := openSQL(cfg)
			if err != nil {
				return err
			}
			defer db.Close()
			return database.MigrateUp(db, cfg.Database.MigrationsPath)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "force VERSION",
		Short: "Выставить версию миграций и снять флаг dirty",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			version, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid version %q: %w", args[0], err)
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			db, err := openSQL(cfg)
			if err != nil {
				return err
			}
			defer db.Close()
			return database.ForceMigrationVersion(db, cfg.Database.MigrationsPath, version)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Показать текущую версию схемы",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			db, err := openSQL(cfg)
			if err != nil {
				return err
			}
			defer db.Close()
			version, dirty, err := database.MigrationVersion(db, cfg.Database.MigrationsPath)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "version=%d dirty=%t\n", version, dirty)
			return nil
		},
	})
	return cmd
}
