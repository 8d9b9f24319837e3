package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/yourusername/millionaire-api/internal/config"
	"github.com/yourusername/millionaire-api/pkg/database"
)

var configPath string

func newRootCmd() *cobra.Command {
	envConfig := os.Getenv("CONFIG_PATH")
	if envConfig == "" {
		envConfig = "config/config.yaml"
	}

	cmd := &cobra.Command{
		Use:           "dbtool",
		Short:         "Обслуживание базы данных millionaire-api",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return config.LoadDotEnv(".env")
		},
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", envConfig, "path to YAML config")
	cmd.AddCommand(newMigrateCmd())
	cmd.AddCommand(newPurgeGamesCmd())
	cmd.AddCommand(newImportQuestionsCmd())
	return cmd
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// openSQL открывает соединение через lib/pq для golang-migrate
func openSQL(cfg *config.Config) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.Database.PostgresConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// openGorm открывает соединение для команд, работающих через репозитории
func openGorm(cfg *config.Config) (*gorm.DB, func(), error) {
	db, err := database.NewPostgresDB(cfg.Database.PostgresConnectionString(), false)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if sqlDB, err := db.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				log.Printf("[dbtool] Ошибка закрытия соединения: %v", err)
			}
		}
	}
	return db, closeFn, nil
}
