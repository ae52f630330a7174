package main

import (
	"fmt"

	"nightclub_backoffice/internal/config"
	"nightclub_backoffice/internal/database"
	"nightclub_backoffice/pkg/utils"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:       "migrate [up|down|status|version]",
	Short:     "Run schema migrations against the live database",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"up", "down", "status", "version"},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		utils.InitLogger(cfg.App.LogLevel, cfg.App.LogFormat)

		if cfg.Storage.Backend != config.StorageBackendLive {
			return fmt.Errorf("migrate needs CLUB_STORAGE_BACKEND=%s; the memory backend is migrated on start", config.StorageBackendLive)
		}

		db, err := database.Open(cmd.Context(), cfg.Storage)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := database.Migrate(cmd.Context(), db, cfg.Storage.Backend, args[0]); err != nil {
			return err
		}
		utils.LogInfo("Migration command finished", map[string]interface{}{"command": args[0]})
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
