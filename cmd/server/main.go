package main

import (
	"context"
	"database/sql"
	"os"

	"nightclub_backoffice/internal/config"
	"nightclub_backoffice/internal/database"
	"nightclub_backoffice/pkg/utils"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "club-backoffice",
	Short:         "Nightclub back-office API: inventory, orders and ticket templates",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		utils.LogError(err, "Command failed")
		os.Exit(1)
	}
}

// bootstrap loads configuration, initializes the logger and opens the configured storage.
// The in-memory backend is migrated on every start since it begins empty.
func bootstrap(ctx context.Context) (*config.Config, *sql.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	utils.InitLogger(cfg.App.LogLevel, cfg.App.LogFormat)

	db, err := database.Open(ctx, cfg.Storage)
	if err != nil {
		return nil, nil, err
	}

	if cfg.Storage.AutoMigrate || cfg.Storage.Backend == config.StorageBackendMemory {
		if err := database.Migrate(ctx, db, cfg.Storage.Backend, "up"); err != nil {
			db.Close()
			return nil, nil, err
		}
	}
	return cfg, db, nil
}
